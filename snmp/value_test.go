// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snmp

import (
	"net"
	"testing"

	"github.com/edgeo/drivers/snmp/ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripValue(t *testing.T, v Value) Value {
	t.Helper()
	b := ber.NewEncodeBuffer(64)
	require.NoError(t, v.pushInto(b))
	r := ber.NewReader(b.Bytes())
	tag, content, err := r.ReadTLV()
	require.NoError(t, err)
	got, err := decodeValue(tag, content)
	require.NoError(t, err)
	return got
}

func TestValue_RoundTrip_Int(t *testing.T) {
	got := roundTripValue(t, IntValue(-42))
	assert.Equal(t, ValueInt, got.Kind)
	assert.Equal(t, int64(-42), got.Int)
}

func TestValue_RoundTrip_Boolean(t *testing.T) {
	got := roundTripValue(t, BooleanValue(true))
	assert.Equal(t, ValueBoolean, got.Kind)
	assert.True(t, got.Bool)

	got = roundTripValue(t, BooleanValue(false))
	assert.Equal(t, ValueBoolean, got.Kind)
	assert.False(t, got.Bool)
}

func TestValue_RoundTrip_OctetString(t *testing.T) {
	got := roundTripValue(t, OctetStringValue([]byte("hello")))
	assert.Equal(t, ValueOctetString, got.Kind)
	assert.Equal(t, []byte("hello"), got.Bytes)
}

func TestValue_RoundTrip_Null(t *testing.T) {
	got := roundTripValue(t, NullValue())
	assert.Equal(t, ValueNull, got.Kind)
}

func TestValue_RoundTrip_ObjectIdentifier(t *testing.T) {
	oid := MustOID(1, 3, 6, 1, 2, 1, 1, 1, 0)
	got := roundTripValue(t, ObjectIdentifierValue(oid))
	assert.Equal(t, ValueObjectIdentifier, got.Kind)
	assert.True(t, oid.Equal(got.OID))
}

func TestValue_RoundTrip_UnsignedKinds(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want ValueKind
	}{
		{"Counter32", Counter32Value(4294967295), ValueCounter32},
		{"Gauge32", Gauge32Value(1), ValueGauge32},
		{"TimeTicks", TimeTicksValue(12345), ValueTimeTicks},
		{"Counter64", Counter64Value(1 << 40), ValueCounter64},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := roundTripValue(t, c.v)
			assert.Equal(t, c.want, got.Kind)
			assert.Equal(t, c.v.Counter, got.Counter)
		})
	}
}

func TestValue_RoundTrip_ExceptionKinds(t *testing.T) {
	for _, v := range []Value{NoSuchObjectValue(), NoSuchInstanceValue(), EndOfMibViewValue()} {
		got := roundTripValue(t, v)
		assert.Equal(t, v.Kind, got.Kind)
		assert.True(t, got.IsException())
	}
}

func TestValue_IsException_FalseForOrdinary(t *testing.T) {
	assert.False(t, IntValue(1).IsException())
	assert.False(t, NullValue().IsException())
}

func TestIPAddressValue_RequiresIPv4(t *testing.T) {
	_, err := IPAddressValue(net.ParseIP("::1"))
	require.Error(t, err)
	var ee *EncodeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ValueUnrepresentable, ee.Kind)
}

func TestIPAddressValue_RoundTrip(t *testing.T) {
	v, err := IPAddressValue(net.ParseIP("192.168.1.1"))
	require.NoError(t, err)
	got := roundTripValue(t, v)
	assert.Equal(t, ValueIPAddress, got.Kind)
	assert.Equal(t, []byte{192, 168, 1, 1}, got.Bytes)
}

func TestPushTaggedUint_MinimalEncoding(t *testing.T) {
	// A value with the top bit of its leading byte set must get a
	// leading 0x00 so it isn't misread as a negative INTEGER.
	b := ber.NewEncodeBuffer(16)
	require.NoError(t, Counter32Value(0x80000000).pushInto(b))
	want := []byte{tagCounter32, 0x05, 0x00, 0x80, 0x00, 0x00, 0x00}
	assert.Equal(t, want, b.Bytes())
}

func TestDecodeValue_UnknownTag(t *testing.T) {
	_, err := decodeValue(0xFE, nil)
	require.Error(t, err)
	var de *ber.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ber.AsnUnexpectedType, de.Kind)
}
