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
	"crypto/md5"
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPasswordToKey_Deterministic checks the RFC 3414 Appendix A.2
// password-to-key algorithm (passphrase repeated to fill 2^20 bytes,
// then hashed) is deterministic and produces the hash's native output
// size, regardless of how short the passphrase is.
func TestPasswordToKey_Deterministic(t *testing.T) {
	md5Key1 := passwordToKey(md5.New(), "maplesyrup")
	md5Key2 := passwordToKey(md5.New(), "maplesyrup")
	require.Len(t, md5Key1, md5.Size)
	assert.Equal(t, md5Key1, md5Key2)

	shaKey := passwordToKey(sha1.New(), "maplesyrup")
	require.Len(t, shaKey, sha1.Size)
}

func TestPasswordToKey_DifferentPassphrasesDiffer(t *testing.T) {
	k1 := passwordToKey(md5.New(), "maplesyrup")
	k2 := passwordToKey(md5.New(), "otherpassword")
	assert.NotEqual(t, k1, k2)
}

func TestLocalizeKey_DeterministicAndEngineDependent(t *testing.T) {
	engineA := []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04}
	engineB := []byte{0x00, 0x00, 0x00, 0x00, 0x05, 0x06, 0x07, 0x08}

	k1 := localizeKey(MD5, "maplesyrup", engineA)
	k2 := localizeKey(MD5, "maplesyrup", engineA)
	assert.Equal(t, k1, k2, "localization must be deterministic for the same inputs")

	k3 := localizeKey(MD5, "maplesyrup", engineB)
	assert.NotEqual(t, k1, k3, "different engine-ids must localize to different keys")
}

func TestHmacDigest_TruncatedToDigestSize(t *testing.T) {
	key := []byte("0123456789abcdef")
	msg := []byte("the quick brown fox")
	d1 := hmacDigest(MD5, key, msg)
	d2 := hmacDigest(SHA, key, msg)
	assert.Len(t, d1, digestSize)
	assert.Len(t, d2, digestSize)
	assert.NotEqual(t, d1, d2)
}

func TestHmacDigest_DetectsTampering(t *testing.T) {
	key := []byte("0123456789abcdef")
	msg := []byte("the quick brown fox")
	tampered := append([]byte(nil), msg...)
	tampered[0] ^= 0xFF

	d1 := hmacDigest(MD5, key, msg)
	d2 := hmacDigest(MD5, key, tampered)
	assert.NotEqual(t, d1, d2)
}

func TestPrivKeyMaterial_PadsShortKey(t *testing.T) {
	got := privKeyMaterial([]byte{1, 2, 3}, 8)
	assert.Len(t, got, 8)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, got)
}

func TestPrivKeyMaterial_TruncatesLongKey(t *testing.T) {
	got := privKeyMaterial([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 8)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, got)
}

func TestDESPrivacy_RoundTrip(t *testing.T) {
	privKey := make([]byte, 16)
	for i := range privKey {
		privKey[i] = byte(i + 1)
	}
	plaintext := []byte("a scoped PDU that is definitely longer than one DES block")

	ciphertext, salt, err := encryptPriv(DES, privKey, 5, 0, plaintext)
	require.NoError(t, err)
	assert.Len(t, salt, 8)

	got, err := decryptPriv(DES, privKey, 5, 0, salt, ciphertext)
	require.NoError(t, err)
	// DES privacy zero-pads to a block boundary; the decrypted prefix
	// must reproduce the plaintext exactly.
	assert.Equal(t, plaintext, got[:len(plaintext)])
}

func TestDESPrivacy_WrongKeyFailsToRoundTrip(t *testing.T) {
	privKey := make([]byte, 16)
	for i := range privKey {
		privKey[i] = byte(i + 1)
	}
	wrongKey := make([]byte, 16)
	for i := range wrongKey {
		wrongKey[i] = byte(255 - i)
	}
	plaintext := []byte("01234567")

	ciphertext, salt, err := encryptPriv(DES, privKey, 1, 0, plaintext)
	require.NoError(t, err)

	got, err := decryptPriv(DES, wrongKey, 1, 0, salt, ciphertext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, got[:len(plaintext)])
}

func TestAESPrivacy_RoundTrip(t *testing.T) {
	privKey := make([]byte, 16)
	for i := range privKey {
		privKey[i] = byte(i * 3)
	}
	plaintext := []byte("a scoped PDU encrypted under AES-128-CFB")

	ciphertext, salt, err := encryptPriv(AES, privKey, 7, 123456, plaintext)
	require.NoError(t, err)
	assert.Len(t, salt, 8)

	got, err := decryptPriv(AES, privKey, 7, 123456, salt, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestAESPrivacy_WrongEngineTimeFailsToRoundTrip(t *testing.T) {
	privKey := make([]byte, 16)
	for i := range privKey {
		privKey[i] = byte(i * 3)
	}
	plaintext := []byte("a scoped PDU encrypted under AES-128-CFB")

	ciphertext, salt, err := encryptPriv(AES, privKey, 7, 123456, plaintext)
	require.NoError(t, err)

	got, err := decryptPriv(AES, privKey, 7, 999999, salt, ciphertext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, got)
}
