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
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"hash"

	"github.com/pkg/errors"
)

// passwordToKey implements the RFC 3414 Appendix A.2 password-to-key
// algorithm: the passphrase is repeated to fill exactly 2^20 bytes
// and hashed, regardless of the passphrase's own length.
func passwordToKey(h hash.Hash, passphrase string) []byte {
	const total = 1048576
	pw := []byte(passphrase)
	chunk := make([]byte, 64)
	var pi int
	for i := 0; i < total; i += 64 {
		for e := range chunk {
			chunk[e] = pw[pi%len(pw)]
			pi++
		}
		h.Write(chunk)
	}
	return h.Sum(nil)
}

// localizeKey implements RFC 3414 Appendix A.2's key localization:
// Hash(passwordToKey || engineID || passwordToKey).
func localizeKey(protocol AuthProtocol, passphrase string, engineID []byte) []byte {
	newHash := func() hash.Hash {
		if protocol == SHA {
			return sha1.New()
		}
		return md5.New()
	}
	digest := passwordToKey(newHash(), passphrase)
	local := newHash()
	local.Write(digest)
	local.Write(engineID)
	local.Write(digest)
	return local.Sum(nil)
}

// hmacDigest computes the truncated HMAC USM places in
// msgAuthenticationParameters over msg, which must have that field
// zero-filled to digestSize bytes at the time of this call (RFC 3414
// §6.3.1 step 4).
func hmacDigest(protocol AuthProtocol, key, msg []byte) []byte {
	var newHash func() hash.Hash
	if protocol == SHA {
		newHash = sha1.New
	} else {
		newHash = md5.New
	}
	mac := hmac.New(newHash, key)
	mac.Write(msg)
	return mac.Sum(nil)[:digestSize]
}

// privKeyMaterial returns the bytes of key actually used for the
// cipher: DES/AES-128 here both want 16 bytes of localized key
// material but DES only consumes the first 8 as the key and the next
// 8 as an IV salt base, per RFC 3414 §8.1.1.1.
func privKeyMaterial(key []byte, n int) []byte {
	if len(key) < n {
		padded := make([]byte, n)
		copy(padded, key)
		return padded
	}
	return key[:n]
}

// encryptPriv encrypts plaintext (the BER-encoded scoped PDU) and
// returns the ciphertext plus the msgPrivacyParameters salt to place
// on the wire.
func encryptPriv(protocol PrivProtocol, privKey []byte, engineBoots, engineTime int32, plaintext []byte) (ciphertext, salt []byte, err error) {
	switch protocol {
	case DES:
		return encryptDES(privKey, engineBoots, plaintext)
	case AES:
		return encryptAES(privKey, engineBoots, engineTime, plaintext)
	default:
		return nil, nil, errors.New("v3: unsupported privacy protocol")
	}
}

func decryptPriv(protocol PrivProtocol, privKey []byte, engineBoots, engineTime int32, salt, ciphertext []byte) ([]byte, error) {
	switch protocol {
	case DES:
		return decryptDES(privKey, salt, ciphertext)
	case AES:
		return decryptAES(privKey, engineBoots, engineTime, salt, ciphertext)
	default:
		return nil, errors.New("v3: unsupported privacy protocol")
	}
}

func encryptDES(privKey []byte, engineBoots int32, plaintext []byte) ([]byte, []byte, error) {
	key := privKeyMaterial(privKey, 16)
	desKey, preIV := key[:8], key[8:16]

	localSalt := make([]byte, 4)
	if _, err := rand.Read(localSalt); err != nil {
		return nil, nil, errors.Wrap(err, "v3: generate DES salt")
	}
	salt := make([]byte, 8)
	binary.BigEndian.PutUint32(salt[0:4], uint32(engineBoots))
	copy(salt[4:8], localSalt)

	iv := make([]byte, 8)
	for i := range iv {
		iv[i] = preIV[i] ^ salt[i]
	}

	padded := padDES(plaintext)
	block, err := des.NewCipher(desKey)
	if err != nil {
		return nil, nil, err
	}
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, salt, nil
}

func decryptDES(privKey, salt, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%des.BlockSize != 0 {
		return nil, errors.New("v3: DES ciphertext not block-aligned")
	}
	key := privKeyMaterial(privKey, 16)
	desKey, preIV := key[:8], key[8:16]
	if len(salt) != 8 {
		return nil, errors.New("v3: DES privacy parameters must be 8 bytes")
	}
	iv := make([]byte, 8)
	for i := range iv {
		iv[i] = preIV[i] ^ salt[i]
	}
	block, err := des.NewCipher(desKey)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return unpadDES(out), nil
}

func padDES(plaintext []byte) []byte {
	pad := des.BlockSize - len(plaintext)%des.BlockSize
	if pad == 0 {
		pad = des.BlockSize
	}
	return append(append([]byte(nil), plaintext...), make([]byte, pad)...)
}

// unpadDES cannot recover the original length from PKCS-style padding
// because USM's DES padding is zero bytes, not a length-prefixed
// scheme; callers instead rely on the BER length embedded in the
// decrypted scoped PDU to know where it ends, so no trimming happens
// here.
func unpadDES(out []byte) []byte { return out }

func encryptAES(privKey []byte, engineBoots, engineTime int32, plaintext []byte) ([]byte, []byte, error) {
	key := privKeyMaterial(privKey, 16)
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, errors.Wrap(err, "v3: generate AES salt")
	}
	iv := aesIV(engineBoots, engineTime, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	out := make([]byte, len(plaintext))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(out, plaintext)
	return out, salt, nil
}

func decryptAES(privKey []byte, engineBoots, engineTime int32, salt, ciphertext []byte) ([]byte, error) {
	if len(salt) != 8 {
		return nil, errors.New("v3: AES privacy parameters must be 8 bytes")
	}
	key := privKeyMaterial(privKey, 16)
	iv := aesIV(engineBoots, engineTime, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(out, ciphertext)
	return out, nil
}

// aesIV builds the 16-byte CFB IV from engineBoots, engineTime and
// the 8-byte salt, per RFC 3826 §3.1.2.1.
func aesIV(engineBoots, engineTime int32, salt []byte) []byte {
	iv := make([]byte, 16)
	binary.BigEndian.PutUint32(iv[0:4], uint32(engineBoots))
	binary.BigEndian.PutUint32(iv[4:8], uint32(engineTime))
	copy(iv[8:16], salt)
	return iv
}
