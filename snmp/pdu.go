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

	"github.com/edgeo/drivers/snmp/ber"
)

// V1TrapInfo carries the five fixed fields of an SNMPv1 Trap-PDU
// (RFC 1157 §4.1.6), which has a different shape from every other
// PDU type and so can't reuse the standard request-id/error-status
// body.
type V1TrapInfo struct {
	Enterprise   OID
	AgentAddr    net.IP
	GenericTrap  int32
	SpecificTrap int32
	Timestamp    uint32
}

// Pdu is a parsed, still-borrowed view over a received message: the
// varbind list is a lazy Varbinds iterator over the original buffer,
// and Trap.Enterprise aliases it too (Community is a copy). It must not outlive the
// buffer Decode was called with unless cloned field by field.
type Pdu struct {
	Version        Version
	Community      string
	Type           MessageType
	RequestID      int32
	ErrorStatus    uint32
	ErrorIndex     uint32
	NonRepeaters   uint32
	MaxRepetitions uint32
	Varbinds       Varbinds
	Trap           *V1TrapInfo
}

// Decode parses a received UDP datagram into a Pdu. security is
// consulted only for v3 messages (nil is fine for v1/v2c traffic);
// v3 decoding is delegated entirely to security.ParseV3 because the
// outer message must be authenticated and optionally decrypted before
// the inner scoped PDU can even be located.
func Decode(raw []byte, security V3Security) (*Pdu, error) {
	r := ber.NewReader(raw)
	seqContent, err := r.ReadRaw(byte(ber.TagSequence))
	if err != nil {
		return nil, err
	}
	inner := ber.NewReader(seqContent)
	versionContent, err := inner.ReadRaw(byte(ber.TagInteger))
	if err != nil {
		return nil, err
	}
	versionNum, err := ber.ReadInteger(versionContent)
	if err != nil {
		return nil, err
	}

	switch Version(versionNum) {
	case VersionV1, VersionV2c:
		return decodeV1V2c(Version(versionNum), &inner)
	case VersionV3:
		if security == nil {
			return nil, &AuthError{Kind: SecurityNotProvided, Detail: "received v3 message but no V3Security configured"}
		}
		return security.ParseV3(raw)
	default:
		return nil, &ProtocolError{Kind: UnsupportedVersion, Detail: Version(versionNum).String()}
	}
}

func decodeV1V2c(version Version, inner *ber.Reader) (*Pdu, error) {
	communityContent, err := inner.ReadRaw(byte(ber.TagOctetString))
	if err != nil {
		return nil, err
	}
	tag, pduContent, err := inner.ReadTLV()
	if err != nil {
		return nil, err
	}
	msgType, ok := messageTypeFromTag(tag)
	if !ok {
		return nil, &ProtocolError{Kind: UnexpectedMessageType, Detail: "unrecognised PDU tag"}
	}

	body := ber.NewReader(pduContent)
	pdu, err := DecodePDUBody(msgType, version, &body)
	if err != nil {
		return nil, err
	}
	pdu.Version = version
	pdu.Community = string(communityContent)
	return pdu, nil
}

// MessageTypeFromTag maps a wire tag byte to a MessageType; used by
// package v3 to dispatch on a v3 scoped PDU's tag the same way
// decodeV1V2c does for v1/v2c.
func MessageTypeFromTag(tag byte) (MessageType, bool) {
	return messageTypeFromTag(tag)
}

// DecodePDUBody parses a context-tagged PDU's content (everything
// after its own tag and length, which the caller has already
// consumed) into a Pdu with Version set to version. Community is left
// at its zero value; the
// v1/v2c caller (decodeV1V2c) fills it in, and v3 messages have no
// community. version is the outer message's protocol version, needed
// here because a Trap-PDU (tag 0xA4) is an SNMPv1-only shape (RFC
// 1157 §4.1.6) and must be rejected outside a v1 message.
func DecodePDUBody(msgType MessageType, version Version, body *ber.Reader) (*Pdu, error) {
	pdu := &Pdu{Type: msgType, Version: version}

	if msgType == MessageTrapV1 {
		if version != VersionV1 {
			return nil, &ber.DecodeError{Kind: ber.AsnWrongType, Message: "TrapV1 PDU outside an SNMPv1 message"}
		}
		trap, varbinds, err := decodeTrapV1Body(body)
		if err != nil {
			return nil, err
		}
		pdu.Trap = trap
		pdu.Varbinds = varbinds
		return pdu, nil
	}

	requestID, err := body.ReadInt32Integer()
	if err != nil {
		return nil, err
	}
	pdu.RequestID = requestID

	second, err := body.ReadNonNegativeInt32()
	if err != nil {
		return nil, err
	}
	third, err := body.ReadNonNegativeInt32()
	if err != nil {
		return nil, err
	}
	if msgType == MessageGetBulkRequest {
		pdu.NonRepeaters = second
		pdu.MaxRepetitions = third
	} else {
		pdu.ErrorStatus = second
		pdu.ErrorIndex = third
	}

	varbindsContent, err := body.ReadRaw(byte(ber.TagSequence))
	if err != nil {
		return nil, err
	}
	pdu.Varbinds = newVarbinds(varbindsContent)
	return pdu, nil
}

func decodeTrapV1Body(body *ber.Reader) (*V1TrapInfo, Varbinds, error) {
	enterpriseContent, err := body.ReadRaw(byte(ber.TagObjectIdentifier))
	if err != nil {
		return nil, Varbinds{}, err
	}
	if _, err := ber.DecodeOIDInts(enterpriseContent); err != nil {
		return nil, Varbinds{}, err
	}
	agentAddr, err := body.ReadRaw(tagIPAddress)
	if err != nil {
		return nil, Varbinds{}, err
	}
	genericContent, err := body.ReadRaw(byte(ber.TagInteger))
	if err != nil {
		return nil, Varbinds{}, err
	}
	generic, err := ber.ReadInteger(genericContent)
	if err != nil {
		return nil, Varbinds{}, err
	}
	specificContent, err := body.ReadRaw(byte(ber.TagInteger))
	if err != nil {
		return nil, Varbinds{}, err
	}
	specific, err := ber.ReadInteger(specificContent)
	if err != nil {
		return nil, Varbinds{}, err
	}
	tsContent, err := body.ReadRaw(tagTimeTicks)
	if err != nil {
		return nil, Varbinds{}, err
	}
	timestamp, err := ber.ReadUnsignedInteger(tsContent)
	if err != nil {
		return nil, Varbinds{}, err
	}
	varbindsContent, err := body.ReadRaw(byte(ber.TagSequence))
	if err != nil {
		return nil, Varbinds{}, err
	}
	return &V1TrapInfo{
		Enterprise:   oidFromContent(enterpriseContent),
		AgentAddr:    net.IP(agentAddr),
		GenericTrap:  int32(generic),
		SpecificTrap: int32(specific),
		Timestamp:    uint32(timestamp),
	}, newVarbinds(varbindsContent), nil
}

// Validate checks a decoded Pdu against the request it is expected to
// be answering: a Report PDU is surfaced as a *ReportError regardless
// of expectedType (or as a *ProtocolError if it carries no varbind),
// since an agent sends Report instead of Response to refuse a request
// rather than answer it.
func (p *Pdu) Validate(expectedType MessageType, expectedRequestID int32, expectedCommunity string) error {
	if p.Type == MessageReport {
		vbs := p.Varbinds.Clone()
		vb, ok := vbs.Next()
		if !ok {
			return &ProtocolError{Kind: MalformedTrap, Detail: "report PDU carries no varbind"}
		}
		kind, known := classifyReport(vb.OID)
		if !known {
			kind = vb.OID.String()
		}
		return &ReportError{OID: vb.OID, Kind: kind}
	}
	if p.Type != expectedType {
		return &ProtocolError{Kind: UnexpectedMessageType, Detail: expectedType.String() + " expected, got " + p.Type.String()}
	}
	if p.RequestID != expectedRequestID {
		return &ProtocolError{Kind: RequestIDMismatch}
	}
	if p.Version != VersionV3 && expectedCommunity != "" && p.Community != expectedCommunity {
		return &ProtocolError{Kind: CommunityMismatch}
	}
	return nil
}
