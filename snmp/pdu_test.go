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

	"github.com/edgeo/drivers/snmp/ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_V2cGetRequest_RoundTrip(t *testing.T) {
	builder := NewPduBuilder(VersionV2c, "public", nil)
	oids := []OID{MustOID(1, 3, 6, 1, 2, 1, 1, 1, 0)}
	raw, err := builder.BuildGet(oids, 7)
	require.NoError(t, err)

	pdu, err := Decode(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, VersionV2c, pdu.Version)
	assert.Equal(t, "public", pdu.Community)
	assert.Equal(t, MessageGetRequest, pdu.Type)
	assert.Equal(t, int32(7), pdu.RequestID)

	vbs, err := pdu.Varbinds.Slice()
	require.NoError(t, err)
	require.Len(t, vbs, 1)
	assert.True(t, vbs[0].OID.Equal(oids[0]))
	assert.Equal(t, ValueNull, vbs[0].Value.Kind)
}

func TestDecode_GetBulkRequest_DecodesBulkFields(t *testing.T) {
	// A GetBulkRequest decodes back with its PDU type, and its third
	// header field lands in MaxRepetitions rather than ErrorIndex.
	builder := NewPduBuilder(VersionV2c, "public", nil)
	raw, err := builder.BuildGetBulk([]OID{MustOID(1, 3, 6, 1, 2, 1, 2, 2)}, 1, 0, 10)
	require.NoError(t, err)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, MessageGetBulkRequest, pdu.Type)
	assert.Equal(t, uint32(10), pdu.MaxRepetitions)
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	b := ber.NewEncodeBuffer(32)
	err := b.PushSequence(func(b *ber.EncodeBuffer) error {
		return b.PushInteger(99)
	})
	require.NoError(t, err)
	_, err = Decode(b.Bytes(), nil)
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, UnsupportedVersion, pe.Kind)
}

func TestDecode_V3WithoutSecurity(t *testing.T) {
	b := ber.NewEncodeBuffer(32)
	err := b.PushSequence(func(b *ber.EncodeBuffer) error {
		return b.PushInteger(int64(VersionV3))
	})
	require.NoError(t, err)
	_, err = Decode(b.Bytes(), nil)
	require.Error(t, err)
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, SecurityNotProvided, ae.Kind)
}

func buildReportPDU(t *testing.T, requestID int32, reportOID OID) []byte {
	t.Helper()
	b := ber.NewEncodeBuffer(256)
	err := b.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := b.PushConstructed(byte(MessageReport), standardPduBody(requestID, 0, 0, []Varbind{
			{OID: reportOID, Value: Counter32Value(1)},
		})); err != nil {
			return err
		}
		if err := pushTaggedBytes(b, byte(ber.TagOctetString), []byte("public")); err != nil {
			return err
		}
		return b.PushInteger(int64(VersionV2c))
	})
	require.NoError(t, err)
	return b.Bytes()
}

func buildTrapV1PDU(t *testing.T, version Version) []byte {
	t.Helper()
	enterprise := MustOID(1, 3, 6, 1, 4, 1, 8072)
	trapBody := func(b *ber.EncodeBuffer) error {
		if err := pushVarbindsReverse(b, nil); err != nil {
			return err
		}
		if err := pushTaggedBytes(b, tagTimeTicks, []byte{0x00, 0x00, 0x01, 0x00}); err != nil {
			return err
		}
		if err := b.PushInteger(0); err != nil { // specificTrap
			return err
		}
		if err := b.PushInteger(6); err != nil { // genericTrap
			return err
		}
		if err := pushTaggedBytes(b, tagIPAddress, []byte{192, 0, 2, 1}); err != nil {
			return err
		}
		return enterprise.pushInto(b)
	}
	b := ber.NewEncodeBuffer(256)
	err := b.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := b.PushConstructed(byte(MessageTrapV1), trapBody); err != nil {
			return err
		}
		if err := pushTaggedBytes(b, byte(ber.TagOctetString), []byte("public")); err != nil {
			return err
		}
		return b.PushInteger(int64(version))
	})
	require.NoError(t, err)
	return b.Bytes()
}

func TestDecode_TrapV1_AcceptedUnderV1(t *testing.T) {
	raw := buildTrapV1PDU(t, VersionV1)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)
	require.NotNil(t, pdu.Trap)
	assert.Equal(t, int32(6), pdu.Trap.GenericTrap)
}

func TestDecode_TrapV1_RejectedUnderV2c(t *testing.T) {
	raw := buildTrapV1PDU(t, VersionV2c)
	_, err := Decode(raw, nil)
	require.Error(t, err)
	var de *ber.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ber.AsnWrongType, de.Kind)
}

func TestPdu_Validate_ReportAlwaysSurfacedAsReportError(t *testing.T) {
	reportOID := MustOID(1, 3, 6, 1, 6, 3, 15, 1, 1, 2, 0) // usmStatsNotInTimeWindows
	raw := buildReportPDU(t, 42, reportOID)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)

	err = pdu.Validate(MessageGetRequest, 42, "public")
	require.Error(t, err)
	var re *ReportError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "usmStatsNotInTimeWindows", re.Kind)
}

func TestPdu_Validate_RequestIDMismatch(t *testing.T) {
	builder := NewPduBuilder(VersionV2c, "public", nil)
	raw, err := builder.BuildGet([]OID{MustOID(1, 3, 6, 1)}, 5)
	require.NoError(t, err)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)

	err = pdu.Validate(MessageGetRequest, 999, "public")
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, RequestIDMismatch, pe.Kind)
}

func TestPdu_Validate_CommunityMismatch(t *testing.T) {
	builder := NewPduBuilder(VersionV2c, "public", nil)
	raw, err := builder.BuildGet([]OID{MustOID(1, 3, 6, 1)}, 5)
	require.NoError(t, err)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)

	err = pdu.Validate(MessageGetRequest, 5, "private")
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CommunityMismatch, pe.Kind)
}

func TestPdu_Validate_UnexpectedMessageType(t *testing.T) {
	builder := NewPduBuilder(VersionV2c, "public", nil)
	raw, err := builder.BuildGet([]OID{MustOID(1, 3, 6, 1)}, 5)
	require.NoError(t, err)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)

	err = pdu.Validate(MessageResponse, 5, "public")
	require.Error(t, err)
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, UnexpectedMessageType, pe.Kind)
}

func TestPdu_Validate_Success(t *testing.T) {
	builder := NewPduBuilder(VersionV2c, "public", nil)
	raw, err := builder.BuildGet([]OID{MustOID(1, 3, 6, 1)}, 5)
	require.NoError(t, err)
	pdu, err := Decode(raw, nil)
	require.NoError(t, err)
	assert.NoError(t, pdu.Validate(MessageGetRequest, 5, "public"))
}
