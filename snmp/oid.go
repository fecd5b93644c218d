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
	"strconv"
	"strings"

	"github.com/edgeo/drivers/snmp/ber"
)

// OID is an Object Identifier. It holds raw BER content octets
// (everything between the tag and the next TLV), not a decoded
// []uint32 slice: an OID read out of a response PDU can be
// re-emitted into a follow-up request (GetNext, a Walk step) via
// EncodeBuffer.PushOIDRaw without ever decoding its sub-identifiers.
// content aliases the PDU buffer it was parsed from until Clone is
// called.
type OID struct {
	content []byte
}

// OIDFromInts builds an owned OID from sub-identifiers, e.g.
// OIDFromInts(1, 3, 6, 1, 2, 1, 1, 1, 0).
func OIDFromInts(subids ...uint32) (OID, error) {
	content, err := ber.EncodeOIDInts(subids)
	if err != nil {
		return OID{}, err
	}
	return OID{content: content}, nil
}

// MustOID is OIDFromInts for package-level table literals where the
// sub-identifiers are known-valid constants.
func MustOID(subids ...uint32) OID {
	o, err := OIDFromInts(subids...)
	if err != nil {
		panic(err)
	}
	return o
}

// ParseOID parses a dotted-decimal string such as "1.3.6.1.2.1.1.1.0".
func ParseOID(s string) (OID, error) {
	parts := strings.Split(strings.TrimPrefix(s, "."), ".")
	subids := make([]uint32, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return OID{}, &ProtocolError{Kind: MalformedOID, Detail: "invalid sub-identifier " + p}
		}
		subids[i] = uint32(n)
	}
	return OIDFromInts(subids...)
}

// oidFromContent wraps already-validated BER content bytes, aliasing
// them. Used by the decode path, which has already had ber.Reader
// slice out the content.
func oidFromContent(content []byte) OID {
	return OID{content: content}
}

// Ints decodes the OID into its sub-identifiers.
func (o OID) Ints() ([]uint32, error) {
	return ber.DecodeOIDInts(o.content)
}

// String renders the OID in dotted-decimal form. A malformed OID
// (which should not occur for a value this type has accepted)
// renders as "<invalid-oid>".
func (o OID) String() string {
	subids, err := o.Ints()
	if err != nil {
		return "<invalid-oid>"
	}
	parts := make([]string, len(subids))
	for i, s := range subids {
		parts[i] = strconv.FormatUint(uint64(s), 10)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two OIDs have identical content, without
// decoding either.
func (o OID) Equal(other OID) bool {
	return string(o.content) == string(other.content)
}

// HasPrefix reports whether prefix's sub-identifiers are a leading
// subsequence of o's — the core test of a Walk loop's termination
// condition.
func (o OID) HasPrefix(prefix OID) bool {
	return len(o.content) >= len(prefix.content) && string(o.content[:len(prefix.content)]) == string(prefix.content)
}

// Clone copies the content bytes so the OID outlives the buffer it
// was parsed from.
func (o OID) Clone() OID {
	c := make([]byte, len(o.content))
	copy(c, o.content)
	return OID{content: c}
}

// pushInto prepends this OID (tag, length, content) into b.
func (o OID) pushInto(b *ber.EncodeBuffer) error {
	return b.PushOIDRaw(o.content)
}
