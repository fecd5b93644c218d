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
	"crypto/subtle"

	"github.com/pkg/errors"

	"github.com/edgeo/drivers/snmp/ber"
	"github.com/edgeo/drivers/snmp/snmp"
)

// usmParams is the parsed content of msgSecurityParameters.
type usmParams struct {
	engineID    []byte
	engineBoots int32
	engineTime  int32
	username    string
	authParams  []byte // offsets are relative to the full message
	authOffset  int
	privParams  []byte
}

// ParseV3 parses a received v3 message: the outer header, the USM
// security parameters, digest verification, privacy decryption, and
// finally the scoped PDU's inner request/response PDU. It mutates s
// to absorb the responding engine's id/boots/time, and returns
// snmp.ErrAuthUpdated (rather than a *snmp.Pdu) when msg was a
// discovery-only Report with an empty scoped PDU the caller already
// has nothing further to act on.
func (s *Security) ParseV3(msg []byte) (*snmp.Pdu, error) {
	r := ber.NewReader(msg)
	outer, err := r.ReadRaw(byte(ber.TagSequence))
	if err != nil {
		return nil, err
	}
	outerBase := r.Pos() - len(outer)

	or := ber.NewReader(outer)
	versionContent, err := or.ReadRaw(byte(ber.TagInteger))
	if err != nil {
		return nil, err
	}
	if _, err := ber.ReadInteger(versionContent); err != nil {
		return nil, err
	}

	globalDataContent, err := or.ReadRaw(byte(ber.TagSequence))
	if err != nil {
		return nil, err
	}
	flags, err := parseGlobalData(globalDataContent)
	if err != nil {
		return nil, err
	}
	authFlag := flags&0x01 != 0
	privFlag := flags&0x02 != 0

	secParamsOctet, err := or.ReadRaw(byte(ber.TagOctetString))
	if err != nil {
		return nil, err
	}
	secParamsBase := outerBase + or.Pos() - len(secParamsOctet)
	params, err := parseUSMParams(secParamsOctet, secParamsBase)
	if err != nil {
		return nil, err
	}

	if len(params.engineID) > 0 {
		s.setEngineID(params.engineID)
	}
	s.CorrectAuthoritativeEngineTime(params.engineBoots, params.engineTime)
	if params.username != "" && s.username != "" && params.username != s.username {
		return nil, &snmp.AuthError{Kind: snmp.NotAuthenticated, Detail: "username mismatch"}
	}

	if authFlag {
		if len(s.authKey) == 0 {
			return nil, &snmp.AuthError{Kind: snmp.NotAuthenticated, Detail: "received authenticated message but no local auth key"}
		}
		verifyBuf := append([]byte(nil), msg...)
		for i := 0; i < len(params.authParams); i++ {
			verifyBuf[params.authOffset+i] = 0
		}
		expected := hmacDigest(s.authProtocol, s.authKey, verifyBuf)
		if subtle.ConstantTimeCompare(expected, params.authParams) != 1 {
			return nil, &snmp.AuthError{Kind: snmp.NotAuthenticated, Detail: "authentication digest mismatch"}
		}
	}

	// msgData: either the scopedPDU SEQUENCE directly, or an OCTET
	// STRING of ciphertext when privacy is in use.
	var scopedContent []byte
	if privFlag {
		tag, content, err := or.ReadTLV()
		if err != nil {
			return nil, err
		}
		if tag != byte(ber.TagOctetString) {
			return nil, &snmp.ProtocolError{Kind: snmp.MalformedTrap, Detail: "encrypted msgData must be an OCTET STRING"}
		}
		plaintext, err := decryptPriv(s.privProtocol, s.privKey, params.engineBoots, params.engineTime, params.privParams, content)
		if err != nil {
			return nil, errors.Wrap(err, "v3: decrypt scoped PDU")
		}
		scopedContent = plaintext
	} else {
		content, err := or.ReadRaw(byte(ber.TagSequence))
		if err != nil {
			return nil, err
		}
		scopedContent = content
	}

	// For the plaintext path scopedContent is already the SEQUENCE's
	// content (ReadRaw above stripped its tag/length). The decrypted
	// path instead yields the full plaintext SEQUENCE bytes, tag and
	// length included, so unwrap those the same way before reading
	// fields.
	scopedOuter := ber.NewReader(scopedContent)
	if privFlag {
		inner, err := scopedOuter.ReadRaw(byte(ber.TagSequence))
		if err != nil {
			return nil, errors.Wrap(err, "v3: malformed decrypted scoped PDU")
		}
		scopedOuter = ber.NewReader(inner)
	}

	if _, err := scopedOuter.ReadRaw(byte(ber.TagOctetString)); err != nil { // contextEngineID
		return nil, err
	}
	if _, err := scopedOuter.ReadRaw(byte(ber.TagOctetString)); err != nil { // contextName
		return nil, err
	}
	if scopedOuter.Len() == 0 {
		// Discovery Report: scoped PDU carries no inner PDU at all in
		// some agents' minimal replies; nothing further to decode.
		return nil, snmp.ErrAuthUpdated
	}
	pduTag, err := scopedOuter.PeekByte()
	if err != nil {
		return nil, err
	}
	msgType, ok := snmp.MessageTypeFromTag(pduTag)
	if !ok {
		return nil, &snmp.ProtocolError{Kind: snmp.UnexpectedMessageType, Detail: "unrecognised v3 PDU tag"}
	}
	return snmp.DecodePDUBody(msgType, snmp.VersionV3, &scopedOuter)
}

func parseGlobalData(content []byte) (flags byte, err error) {
	r := ber.NewReader(content)
	if _, err = r.ReadRaw(byte(ber.TagInteger)); err != nil { // msgID
		return 0, err
	}
	if _, err = r.ReadRaw(byte(ber.TagInteger)); err != nil { // msgMaxSize
		return 0, err
	}
	flagsContent, err := r.ReadRaw(byte(ber.TagOctetString))
	if err != nil {
		return 0, err
	}
	if len(flagsContent) != 1 {
		return 0, &snmp.ProtocolError{Kind: snmp.MalformedTrap, Detail: "msgFlags must be one byte"}
	}
	if _, err = r.ReadRaw(byte(ber.TagInteger)); err != nil { // msgSecurityModel
		return 0, err
	}
	return flagsContent[0], nil
}

func parseUSMParams(octetContent []byte, base int) (usmParams, error) {
	r := ber.NewReader(octetContent)
	seqContent, err := r.ReadRaw(byte(ber.TagSequence))
	if err != nil {
		return usmParams{}, err
	}
	seqBase := base + r.Pos() - len(seqContent)

	sr := ber.NewReader(seqContent)
	engineID, err := sr.ReadRaw(byte(ber.TagOctetString))
	if err != nil {
		return usmParams{}, err
	}
	bootsContent, err := sr.ReadRaw(byte(ber.TagInteger))
	if err != nil {
		return usmParams{}, err
	}
	boots, err := ber.ReadInteger(bootsContent)
	if err != nil {
		return usmParams{}, err
	}
	timeContent, err := sr.ReadRaw(byte(ber.TagInteger))
	if err != nil {
		return usmParams{}, err
	}
	engTime, err := ber.ReadInteger(timeContent)
	if err != nil {
		return usmParams{}, err
	}
	username, err := sr.ReadRaw(byte(ber.TagOctetString))
	if err != nil {
		return usmParams{}, err
	}
	authParams, err := sr.ReadRaw(byte(ber.TagOctetString))
	if err != nil {
		return usmParams{}, err
	}
	authOffset := seqBase + sr.Pos() - len(authParams)
	privParams, err := sr.ReadRaw(byte(ber.TagOctetString))
	if err != nil {
		return usmParams{}, err
	}
	return usmParams{
		engineID:    append([]byte(nil), engineID...),
		engineBoots: int32(boots),
		engineTime:  int32(engTime),
		username:    string(username),
		authParams:  append([]byte(nil), authParams...),
		authOffset:  authOffset,
		privParams:  append([]byte(nil), privParams...),
	}, nil
}
