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

import "github.com/edgeo/drivers/snmp/ber"

// V3Security is implemented by package v3's Security type. Package
// snmp declares the interface rather than importing package v3 so
// that v3 can freely import snmp's OID/Value/Varbind/Pdu types
// without an import cycle; a caller that wants v3 support imports
// both and passes a *v3.Security into WithV3Security.
type V3Security interface {
	// NeedInit reports whether the engine-id/boots/time handshake
	// must run (or re-run) before a normal request can be sent.
	NeedInit() bool
	// ResetEngineID discards cached engine-id/boots/time, forcing
	// NeedInit to report true again.
	ResetEngineID()
	// ResetEngineCounters zeroes the engine boots/time tracking while
	// keeping the engine-id and its localized keys.
	ResetEngineCounters()
	// CorrectAuthoritativeEngineTime absorbs the engine time carried
	// by a Report so the next request's time field is in-window.
	CorrectAuthoritativeEngineTime(engineBoots, engineTime int32)
	// UpdateKey derives the localized auth/priv keys from the current
	// passphrase and engine-id. Called automatically whenever the
	// engine-id changes; exposed so a caller can pre-derive the key
	// before the first exchange.
	UpdateKey() error
	// Username returns the USM security name carried in every
	// message.
	Username() string
	// BuildInit builds a discovery GetRequest (noAuthNoPriv, no
	// engine-id yet) meant only to elicit a Report from the agent.
	BuildInit(buf *ber.EncodeBuffer, requestID int32) ([]byte, error)
	// Build wraps a scoped PDU (written by pdu into buf using the
	// normal context-tagged PDU shape) in a full v3 message: USM
	// security parameters, optional encryption, and the outer
	// SEQUENCE.
	Build(buf *ber.EncodeBuffer, requestID int32, pdu func(*ber.EncodeBuffer) error) ([]byte, error)
	// ParseV3 parses a received v3 message, absorbing any
	// engine-id/boots/time it carries, verifying the authentication
	// digest if the security level requires it, and decrypting the
	// scoped PDU if privacy is in use. It returns ErrAuthUpdated
	// (not a *Pdu) when the message was a discovery-only Report.
	ParseV3(msg []byte) (*Pdu, error)
}

// PduBuilder assembles request PDUs for one Session. It owns a single
// reusable EncodeBuffer: each Build* call resets and rewrites it, so
// the []byte it returns is only valid until the next Build* call (the
// caller is expected to send it immediately, which is exactly what
// Session does).
type PduBuilder struct {
	buf       *ber.EncodeBuffer
	version   Version
	community string
	security  V3Security
}

// NewPduBuilder constructs a builder for the given version. community
// is ignored for VersionV3; security is ignored (and may be nil) for
// VersionV1/VersionV2c.
func NewPduBuilder(version Version, community string, security V3Security) *PduBuilder {
	return &PduBuilder{
		buf:       ber.NewEncodeBuffer(BufferSize),
		version:   version,
		community: community,
		security:  security,
	}
}

func (p *PduBuilder) buildV1V2c(tag MessageType, requestID int32, inner func(*ber.EncodeBuffer) error) ([]byte, error) {
	p.buf.Reset()
	err := p.buf.PushSequence(func(b *ber.EncodeBuffer) error {
		if err := b.PushConstructed(byte(tag), inner); err != nil {
			return err
		}
		if err := pushTaggedBytes(b, byte(ber.TagOctetString), []byte(p.community)); err != nil {
			return err
		}
		return b.PushInteger(int64(p.version))
	})
	if err != nil {
		return nil, err
	}
	return p.buf.Bytes(), nil
}

// standardPduBody writes the four-field body shared by Get,
// GetNext, Set and Response PDUs: request-id, error-status,
// error-index, varbind-list.
func standardPduBody(requestID int32, errorStatus, errorIndex uint32, varbinds []Varbind) func(*ber.EncodeBuffer) error {
	return func(b *ber.EncodeBuffer) error {
		if err := pushVarbindsReverse(b, varbinds); err != nil {
			return err
		}
		if err := b.PushInteger(int64(errorIndex)); err != nil {
			return err
		}
		if err := b.PushInteger(int64(errorStatus)); err != nil {
			return err
		}
		return b.PushInteger(int64(requestID))
	}
}

func oidsToNullVarbinds(oids []OID) []Varbind {
	out := make([]Varbind, len(oids))
	for i, o := range oids {
		out[i] = Varbind{OID: o, Value: NullValue()}
	}
	return out
}

// BuildGet assembles a GetRequest for the given OIDs.
func (p *PduBuilder) BuildGet(oids []OID, requestID int32) ([]byte, error) {
	body := standardPduBody(requestID, 0, 0, oidsToNullVarbinds(oids))
	return p.build(MessageGetRequest, requestID, body)
}

// BuildGetNext assembles a GetNextRequest for the given OIDs.
func (p *PduBuilder) BuildGetNext(oids []OID, requestID int32) ([]byte, error) {
	body := standardPduBody(requestID, 0, 0, oidsToNullVarbinds(oids))
	return p.build(MessageGetNextRequest, requestID, body)
}

// BuildSet assembles a SetRequest carrying varbinds' values.
func (p *PduBuilder) BuildSet(varbinds []Varbind, requestID int32) ([]byte, error) {
	body := standardPduBody(requestID, 0, 0, varbinds)
	return p.build(MessageSetRequest, requestID, body)
}

// BuildGetBulk assembles a GetBulkRequest. oids is streamed directly
// into the varbind list (each paired with a NULL value) rather than
// being pre-materialized as a []Varbind, matching the single-pass
// shape of the original implementation: no intermediate allocation
// proportional to len(oids) beyond the one the varbind list itself
// needs.
func (p *PduBuilder) BuildGetBulk(oids []OID, requestID int32, nonRepeaters, maxRepetitions uint32) ([]byte, error) {
	body := func(b *ber.EncodeBuffer) error {
		if err := b.PushSequence(func(b *ber.EncodeBuffer) error {
			for i := len(oids) - 1; i >= 0; i-- {
				oid := oids[i]
				if err := b.PushSequence(func(b *ber.EncodeBuffer) error {
					if err := NullValue().pushInto(b); err != nil {
						return err
					}
					return oid.pushInto(b)
				}); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
		if err := b.PushInteger(int64(maxRepetitions)); err != nil {
			return err
		}
		if err := b.PushInteger(int64(nonRepeaters)); err != nil {
			return err
		}
		return b.PushInteger(int64(requestID))
	}
	return p.build(MessageGetBulkRequest, requestID, body)
}

// build dispatches to the v1/v2c or v3 wire shape depending on the
// builder's configured version.
func (p *PduBuilder) build(tag MessageType, requestID int32, inner func(*ber.EncodeBuffer) error) ([]byte, error) {
	if p.version == VersionV3 {
		if p.security == nil {
			return nil, &AuthError{Kind: SecurityNotProvided, Detail: "v3 session configured without a V3Security"}
		}
		p.buf.Reset()
		return p.security.Build(p.buf, requestID, func(b *ber.EncodeBuffer) error {
			return b.PushConstructed(byte(tag), inner)
		})
	}
	return p.buildV1V2c(tag, requestID, inner)
}

// BuildInit assembles the v3 discovery GetRequest. On a non-v3
// builder, or one without a security, it returns an *AuthError of kind
// SecurityNotProvided.
func (p *PduBuilder) BuildInit(requestID int32) ([]byte, error) {
	if p.version != VersionV3 || p.security == nil {
		return nil, &AuthError{Kind: SecurityNotProvided, Detail: "BuildInit requires a v3 security"}
	}
	p.buf.Reset()
	return p.security.BuildInit(p.buf, requestID)
}
