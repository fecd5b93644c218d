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

package v3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeo/drivers/snmp/ber"
	"github.com/edgeo/drivers/snmp/snmp"
)

// emptyGetRequest writes a minimal context-tagged GetRequest PDU
// (empty varbind list) as the pdu callback Security.Build expects.
func emptyGetRequest(requestID int32) func(*ber.EncodeBuffer) error {
	return func(b *ber.EncodeBuffer) error {
		return b.PushConstructed(byte(snmp.MessageGetRequest), func(b *ber.EncodeBuffer) error {
			if err := b.PushSequence(func(b *ber.EncodeBuffer) error { return nil }); err != nil {
				return err
			}
			if err := b.PushInteger(0); err != nil { // errorIndex
				return err
			}
			if err := b.PushInteger(0); err != nil { // errorStatus
				return err
			}
			return b.PushInteger(int64(requestID))
		})
	}
}

func TestBuildParse_NoAuthNoPriv_RoundTrip(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x00, 0x01, 0x03}
	sender := New("admin", NoAuthNoPriv, WithEngineID(engineID))
	receiver := New("admin", NoAuthNoPriv, WithEngineID(engineID))

	requestID := int32(42)
	raw, err := sender.Build(ber.NewEncodeBuffer(snmp.BufferSize), requestID, emptyGetRequest(requestID))
	require.NoError(t, err)

	got, err := receiver.ParseV3(raw)
	require.NoError(t, err)
	assert.Equal(t, snmp.MessageGetRequest, got.Type)
	assert.Equal(t, requestID, got.RequestID)
}

func TestBuildParse_AuthNoPriv_RoundTrip(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x00, 0x01, 0x04}
	sender := New("admin", AuthNoPriv, WithAuth(MD5, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, sender.UpdateKey())
	receiver := New("admin", AuthNoPriv, WithAuth(MD5, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, receiver.UpdateKey())

	requestID := int32(7)
	raw, err := sender.Build(ber.NewEncodeBuffer(snmp.BufferSize), requestID, emptyGetRequest(requestID))
	require.NoError(t, err)

	got, err := receiver.ParseV3(raw)
	require.NoError(t, err)
	assert.Equal(t, requestID, got.RequestID)
}

func TestBuildParse_AuthNoPriv_TamperedMessageFailsAuth(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x00, 0x01, 0x05}
	sender := New("admin", AuthNoPriv, WithAuth(SHA, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, sender.UpdateKey())
	receiver := New("admin", AuthNoPriv, WithAuth(SHA, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, receiver.UpdateKey())

	requestID := int32(8)
	raw, err := sender.Build(ber.NewEncodeBuffer(snmp.BufferSize), requestID, emptyGetRequest(requestID))
	require.NoError(t, err)

	tampered := append([]byte(nil), raw...)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = receiver.ParseV3(tampered)
	require.Error(t, err)
	var ae *snmp.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, snmp.NotAuthenticated, ae.Kind)
}

func TestBuildParse_AuthPriv_DES_RoundTrip(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x00, 0x01, 0x06}
	sender := New("admin", AuthPriv, WithAuth(MD5, "maplesyrup"), WithPriv(DES, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, sender.UpdateKey())
	receiver := New("admin", AuthPriv, WithAuth(MD5, "maplesyrup"), WithPriv(DES, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, receiver.UpdateKey())

	requestID := int32(9)
	raw, err := sender.Build(ber.NewEncodeBuffer(snmp.BufferSize), requestID, emptyGetRequest(requestID))
	require.NoError(t, err)

	got, err := receiver.ParseV3(raw)
	require.NoError(t, err)
	assert.Equal(t, requestID, got.RequestID)
}

func TestBuildParse_AuthPriv_AES_RoundTrip(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x00, 0x01, 0x09}
	sender := New("admin", AuthPriv, WithAuth(SHA, "maplesyrup"), WithPriv(AES, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, sender.UpdateKey())
	receiver := New("admin", AuthPriv, WithAuth(SHA, "maplesyrup"), WithPriv(AES, "maplesyrup"), WithEngineID(engineID))
	require.NoError(t, receiver.UpdateKey())

	requestID := int32(10)
	raw, err := sender.Build(ber.NewEncodeBuffer(snmp.BufferSize), requestID, emptyGetRequest(requestID))
	require.NoError(t, err)

	got, err := receiver.ParseV3(raw)
	require.NoError(t, err)
	assert.Equal(t, requestID, got.RequestID)
}

func TestBuildParse_UsernameMismatchRejected(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x00, 0x01, 0x0A}
	sender := New("alice", NoAuthNoPriv, WithEngineID(engineID))
	receiver := New("bob", NoAuthNoPriv, WithEngineID(engineID))

	requestID := int32(1)
	raw, err := sender.Build(ber.NewEncodeBuffer(snmp.BufferSize), requestID, emptyGetRequest(requestID))
	require.NoError(t, err)

	_, err = receiver.ParseV3(raw)
	require.Error(t, err)
	var ae *snmp.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, snmp.NotAuthenticated, ae.Kind)
}

func TestBuild_RejectsBeforeEngineDiscovery(t *testing.T) {
	sender := New("admin", NoAuthNoPriv)
	_, err := sender.Build(ber.NewEncodeBuffer(snmp.BufferSize), 1, emptyGetRequest(1))
	require.Error(t, err)
}

func TestBuildInit_ProducesUnauthenticatedDiscoveryRequest(t *testing.T) {
	sender := New("admin", AuthPriv, WithAuth(MD5, "maplesyrup"), WithPriv(DES, "maplesyrup"))
	raw, err := sender.BuildInit(ber.NewEncodeBuffer(snmp.BufferSize), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

// discoveryReportBytes hand-assembles a minimal v3 Report carrying
// only engine-id/boots/time with an empty scoped PDU, the shape a
// real agent's discovery reply takes (RFC 3414 §4).
func discoveryReportBytes(t *testing.T, engineID []byte, boots, engTime int32, requestID int32) []byte {
	t.Helper()
	scoped := ber.NewEncodeBuffer(snmp.BufferSize)
	require.NoError(t, scoped.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := pushOctetString(b, nil); err != nil { // contextName
			return err
		}
		return pushOctetString(b, nil) // contextEngineID
	}))
	scopedBytes := append([]byte(nil), scoped.Bytes()...)

	flags := msgFlagsByte(false, false, true)
	buf := ber.NewEncodeBuffer(snmp.BufferSize)
	err := buf.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := b.PushBytes(scopedBytes); err != nil {
			return err
		}
		if err := b.PushConstructed(byte(ber.TagOctetString), func(b *ber.EncodeBuffer) error {
			return b.PushSequence(func(b *ber.EncodeBuffer) error {
				if err := pushOctetString(b, nil); err != nil { // msgPrivacyParameters
					return err
				}
				if err := pushOctetString(b, nil); err != nil { // msgAuthenticationParameters
					return err
				}
				if err := pushOctetString(b, nil); err != nil { // msgUserName
					return err
				}
				if err := b.PushInteger(int64(engTime)); err != nil {
					return err
				}
				if err := b.PushInteger(int64(boots)); err != nil {
					return err
				}
				return pushOctetString(b, engineID)
			})
		}); err != nil {
			return err
		}
		if err := pushGlobalData(b, requestID, flags); err != nil {
			return err
		}
		return b.PushInteger(int64(snmp.VersionV3))
	})
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseV3_DiscoveryReport_AbsorbsEngineParamsAndSignalsUpdate(t *testing.T) {
	engineID := []byte{0x80, 0x00, 0x00, 0x01, 0x07}
	receiver := New("admin", NoAuthNoPriv)
	require.True(t, receiver.NeedInit())

	raw := discoveryReportBytes(t, engineID, 3, 9000, 1)
	_, err := receiver.ParseV3(raw)
	require.ErrorIs(t, err, snmp.ErrAuthUpdated)
	assert.False(t, receiver.NeedInit())
	assert.Equal(t, int32(3), receiver.engineBoots)
	assert.Equal(t, int32(9000), receiver.engineTime)
}
