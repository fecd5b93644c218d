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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPduBuilder_BuildSet_CarriesSuppliedValues(t *testing.T) {
	builder := NewPduBuilder(VersionV1, "private", nil)
	oid := MustOID(1, 3, 6, 1, 2, 1, 1, 4, 0)
	raw, err := builder.BuildSet([]Varbind{{OID: oid, Value: OctetStringValue([]byte("admin@example.com"))}}, 3)
	require.NoError(t, err)

	pdu, err := Decode(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, MessageSetRequest, pdu.Type)
	vbs, err := pdu.Varbinds.Slice()
	require.NoError(t, err)
	require.Len(t, vbs, 1)
	assert.Equal(t, ValueOctetString, vbs[0].Value.Kind)
	assert.Equal(t, "admin@example.com", string(vbs[0].Value.Bytes))
}

func TestPduBuilder_BuildGetBulk_NonRepeatersAndMaxRepetitions(t *testing.T) {
	builder := NewPduBuilder(VersionV2c, "public", nil)
	oids := []OID{MustOID(1, 3, 6, 1, 2, 1, 2, 2, 1, 1), MustOID(1, 3, 6, 1, 2, 1, 2, 2, 1, 2)}
	raw, err := builder.BuildGetBulk(oids, 11, 1, 20)
	require.NoError(t, err)

	pdu, err := Decode(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), pdu.NonRepeaters)
	assert.Equal(t, uint32(20), pdu.MaxRepetitions)
	vbs, err := pdu.Varbinds.Slice()
	require.NoError(t, err)
	require.Len(t, vbs, 2)
	assert.True(t, vbs[0].OID.Equal(oids[0]))
	assert.True(t, vbs[1].OID.Equal(oids[1]))
}

func TestPduBuilder_BuildGetNext(t *testing.T) {
	builder := NewPduBuilder(VersionV1, "public", nil)
	raw, err := builder.BuildGetNext([]OID{MustOID(1, 3, 6, 1, 2, 1, 1)}, 9)
	require.NoError(t, err)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, MessageGetNextRequest, pdu.Type)
	assert.Equal(t, int32(9), pdu.RequestID)
}

func TestPduBuilder_V3WithoutSecurity_Errors(t *testing.T) {
	builder := NewPduBuilder(VersionV3, "", nil)
	_, err := builder.BuildGet([]OID{MustOID(1, 3, 6, 1)}, 1)
	require.Error(t, err)
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, SecurityNotProvided, ae.Kind)

	_, err = builder.BuildInit(1)
	require.Error(t, err)
	require.ErrorAs(t, err, &ae)
}

func TestPduBuilder_BuildInit_RejectsNonV3(t *testing.T) {
	builder := NewPduBuilder(VersionV2c, "public", nil)
	_, err := builder.BuildInit(1)
	require.Error(t, err)
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, SecurityNotProvided, ae.Kind)
}
