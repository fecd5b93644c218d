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
)

func TestSecurity_NeedInit_TrueUntilEngineKnown(t *testing.T) {
	s := New("admin", NoAuthNoPriv)
	assert.True(t, s.NeedInit())
	s.setEngineID([]byte{0x80, 0x00, 0x00, 0x01})
	assert.False(t, s.NeedInit())
}

func TestSecurity_UpdateKey_NoopForNoAuthNoPriv(t *testing.T) {
	s := New("admin", NoAuthNoPriv)
	assert.NoError(t, s.UpdateKey())
}

func TestSecurity_UpdateKey_RequiresEngineID(t *testing.T) {
	s := New("admin", AuthNoPriv, WithAuth(MD5, "maplesyrup"))
	err := s.UpdateKey()
	require.Error(t, err)
}

func TestSecurity_UpdateKey_RequiresAuthOption(t *testing.T) {
	s := New("admin", AuthNoPriv)
	s.setEngineID([]byte{0x80, 0x00, 0x00, 0x01})
	err := s.UpdateKey()
	require.Error(t, err)
}

func TestSecurity_UpdateKey_RequiresPrivOptionForAuthPriv(t *testing.T) {
	s := New("admin", AuthPriv, WithAuth(MD5, "maplesyrup"))
	s.setEngineID([]byte{0x80, 0x00, 0x00, 0x01})
	err := s.UpdateKey()
	require.Error(t, err)
}

func TestSecurity_UpdateKey_DerivesAuthAndPrivKeys(t *testing.T) {
	s := New("admin", AuthPriv, WithAuth(MD5, "maplesyrup"), WithPriv(DES, "maplesyrup"))
	s.setEngineID([]byte{0x80, 0x00, 0x00, 0x01})
	require.NoError(t, s.UpdateKey())
	assert.NotEmpty(t, s.authKey)
	assert.NotEmpty(t, s.privKey)
}

func TestSecurity_ResetEngineID_ClearsKeys(t *testing.T) {
	s := New("admin", AuthNoPriv, WithAuth(MD5, "maplesyrup"))
	s.setEngineID([]byte{0x80, 0x00, 0x00, 0x01})
	require.NoError(t, s.UpdateKey())
	require.NotEmpty(t, s.authKey)

	s.ResetEngineID()
	assert.True(t, s.NeedInit())
	assert.Empty(t, s.authKey)
}

func TestSecurity_ResetEngineCounters_KeepsEngineID(t *testing.T) {
	s := New("admin", NoAuthNoPriv)
	s.setEngineID([]byte{0x80, 0x00, 0x00, 0x01})
	s.CorrectAuthoritativeEngineTime(3, 1000)

	s.ResetEngineCounters()
	assert.False(t, s.NeedInit())
	assert.Equal(t, int32(0), s.engineBoots)
	assert.Equal(t, int32(0), s.engineTime)
}

func TestSecurity_CorrectAuthoritativeEngineTime_ExtrapolatesForward(t *testing.T) {
	s := New("admin", NoAuthNoPriv)
	s.CorrectAuthoritativeEngineTime(1, 1000)
	// Immediately after syncing, currentEngineTime should be at least
	// the synced value (elapsed wall-clock time is >= 0).
	assert.GreaterOrEqual(t, s.currentEngineTime(), int32(1000))
}

func TestSecurity_WithEngineID_SeedsWithoutDiscovery(t *testing.T) {
	s := New("admin", NoAuthNoPriv, WithEngineID([]byte{0x80, 0x00, 0x00, 0x02}))
	assert.False(t, s.NeedInit())
}

func TestSecurity_Username(t *testing.T) {
	s := New("monitoring-user", NoAuthNoPriv)
	assert.Equal(t, "monitoring-user", s.Username())
}

func TestAuthProtocol_String(t *testing.T) {
	assert.Equal(t, "NoAuth", NoAuth.String())
	assert.Equal(t, "MD5", MD5.String())
	assert.Equal(t, "SHA", SHA.String())
}

func TestPrivProtocol_String(t *testing.T) {
	assert.Equal(t, "NoPriv", NoPriv.String())
	assert.Equal(t, "DES", DES.String())
	assert.Equal(t, "AES", AES.String())
}
