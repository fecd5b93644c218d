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
	"github.com/pkg/errors"

	"github.com/edgeo/drivers/snmp/ber"
	"github.com/edgeo/drivers/snmp/snmp"
)

const defaultMsgMaxSize = 65507

func pushOctetString(b *ber.EncodeBuffer, content []byte) error {
	if err := b.PushBytes(content); err != nil {
		return err
	}
	if err := b.PushLength(len(content)); err != nil {
		return err
	}
	return b.PushByte(byte(ber.TagOctetString))
}

// msgFlagsByte packs the authFlag/privFlag/reportable bits of
// msgFlags (RFC 3412 §6.3, table in RFC 3414 §3).
func msgFlagsByte(authFlag, privFlag, reportable bool) byte {
	var f byte
	if authFlag {
		f |= 0x01
	}
	if privFlag {
		f |= 0x02
	}
	if reportable {
		f |= 0x04
	}
	return f
}

func pushGlobalData(b *ber.EncodeBuffer, requestID int32, flags byte) error {
	return b.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := b.PushInteger(3); err != nil { // msgSecurityModel: USM
			return err
		}
		if err := pushOctetString(b, []byte{flags}); err != nil {
			return err
		}
		if err := b.PushInteger(defaultMsgMaxSize); err != nil {
			return err
		}
		return b.PushInteger(int64(requestID))
	})
}

// BuildInit assembles the noAuthNoPriv discovery GetRequest: an empty
// varbind list addressed to an unknown engine, sent purely to elicit
// a Report carrying that engine's id/boots/time.
func (s *Security) BuildInit(buf *ber.EncodeBuffer, requestID int32) ([]byte, error) {
	scoped := ber.NewEncodeBuffer(snmp.BufferSize)
	if err := scoped.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := b.PushConstructed(byte(snmp.MessageGetRequest), func(b *ber.EncodeBuffer) error {
			if err := b.PushSequence(func(b *ber.EncodeBuffer) error { return nil }); err != nil {
				return err
			}
			if err := b.PushInteger(0); err != nil {
				return err
			}
			if err := b.PushInteger(0); err != nil {
				return err
			}
			return b.PushInteger(int64(requestID))
		}); err != nil {
			return err
		}
		if err := pushOctetString(b, nil); err != nil { // contextName
			return err
		}
		return pushOctetString(b, nil) // contextEngineID
	}); err != nil {
		return nil, err
	}
	scopedBytes := append([]byte(nil), scoped.Bytes()...)

	flags := msgFlagsByte(false, false, true)
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
				if err := b.PushInteger(0); err != nil { // msgAuthoritativeEngineTime
					return err
				}
				if err := b.PushInteger(0); err != nil { // msgAuthoritativeEngineBoots
					return err
				}
				return pushOctetString(b, nil) // msgAuthoritativeEngineID
			})
		}); err != nil {
			return err
		}
		if err := pushGlobalData(b, requestID, flags); err != nil {
			return err
		}
		return b.PushInteger(int64(snmp.VersionV3))
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build wraps the scoped PDU written by pdu (request-id, error
// fields, varbinds, already inside its context-tagged PDU SEQUENCE)
// in a full v3 message: USM security parameters, optional encryption
// of the scoped PDU, and the outer SEQUENCE. If the security level
// requires authentication, the authentication digest is computed over
// the finished message (with msgAuthenticationParameters zero-filled)
// and spliced back into the already-written buffer — BER's
// length-prefixed TLVs mean the digest's own length never changes, so
// overwriting its content bytes in place after the fact is safe.
func (s *Security) Build(buf *ber.EncodeBuffer, requestID int32, pdu func(*ber.EncodeBuffer) error) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.level != NoAuthNoPriv && len(s.authKey) == 0 {
		return nil, errors.New("v3: authenticated level requires UpdateKey (engine-id not yet known?)")
	}
	if len(s.engineID) == 0 {
		return nil, errors.New("v3: cannot build a normal request before engine discovery")
	}

	scoped := ber.NewEncodeBuffer(snmp.BufferSize)
	if err := scoped.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := pdu(b); err != nil {
			return err
		}
		if err := pushOctetString(b, []byte(s.contextName)); err != nil {
			return err
		}
		return pushOctetString(b, s.engineID)
	}); err != nil {
		return nil, err
	}
	scopedBytes := append([]byte(nil), scoped.Bytes()...)

	authFlag := s.level != NoAuthNoPriv
	privFlag := s.level == AuthPriv

	var msgDataBytes, privParams []byte
	if privFlag {
		ciphertext, salt, err := encryptPriv(s.privProtocol, s.privKey, s.engineBoots, s.currentEngineTime(), scopedBytes)
		if err != nil {
			return nil, err
		}
		privParams = salt
		wrapper := ber.NewEncodeBuffer(len(ciphertext) + 16)
		if err := pushOctetString(wrapper, ciphertext); err != nil {
			return nil, err
		}
		msgDataBytes = append([]byte(nil), wrapper.Bytes()...)
	} else {
		msgDataBytes = scopedBytes
	}

	var authContentLenAfter int
	flags := msgFlagsByte(authFlag, privFlag, true)

	err := buf.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := b.PushBytes(msgDataBytes); err != nil {
			return err
		}
		if err := b.PushConstructed(byte(ber.TagOctetString), func(b *ber.EncodeBuffer) error {
			return b.PushSequence(func(b *ber.EncodeBuffer) error {
				if err := pushOctetString(b, privParams); err != nil {
					return err
				}
				if authFlag {
					if err := b.PushBytes(make([]byte, digestSize)); err != nil {
						return err
					}
					authContentLenAfter = b.Len()
					if err := b.PushLength(digestSize); err != nil {
						return err
					}
					if err := b.PushByte(byte(ber.TagOctetString)); err != nil {
						return err
					}
				} else if err := pushOctetString(b, nil); err != nil {
					return err
				}
				if err := pushOctetString(b, []byte(s.username)); err != nil {
					return err
				}
				if err := b.PushInteger(int64(s.currentEngineTime())); err != nil {
					return err
				}
				if err := b.PushInteger(int64(s.engineBoots)); err != nil {
					return err
				}
				return pushOctetString(b, s.engineID)
			})
		}); err != nil {
			return err
		}
		if err := pushGlobalData(b, requestID, flags); err != nil {
			return err
		}
		return b.PushInteger(int64(snmp.VersionV3))
	})
	if err != nil {
		return nil, err
	}

	final := buf.Bytes()
	if authFlag {
		offset := len(final) - authContentLenAfter
		digest := hmacDigest(s.authProtocol, s.authKey, final)
		copy(final[offset:offset+digestSize], digest)
	}
	return final, nil
}
