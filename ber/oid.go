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

package ber

// PushOID prepends the BER content octets of an OBJECT IDENTIFIER
// built from subids (first two sub-identifiers combined into a single
// byte 40*a+b, remaining sub-identifiers each base-128 encoded,
// most-significant-byte-first, continuation bit set on every byte but
// the last), then its length and tag. Bytes are emitted tail-first
// like every other Push method: sub-ids are pushed last to first, and
// each sub-id's base-128 groups are pushed least-significant first, so
// the wire order comes out most-significant first.
func (b *EncodeBuffer) PushOID(subids []uint32) error {
	if len(subids) < 2 {
		return newDecodeError(AsnInvalidLen, "oid needs at least 2 sub-identifiers")
	}
	before := b.len
	for i := len(subids) - 1; i >= 2; i-- {
		if err := b.pushOIDComponent(subids[i]); err != nil {
			return err
		}
	}
	if err := b.PushByte(byte(subids[0]*40 + subids[1])); err != nil {
		return err
	}
	written := b.len - before
	if err := b.PushLength(written); err != nil {
		return err
	}
	return b.PushByte(byte(TagObjectIdentifier))
}

// pushOIDComponent prepends the base-128 encoding of a single
// sub-identifier, continuation bit set on all but the last emitted
// byte (which — since we write tail-first — is the first one pushed).
func (b *EncodeBuffer) pushOIDComponent(v uint32) error {
	var tmp [5]byte
	n := 0
	tmp[n] = byte(v & 0x7f)
	n++
	v >>= 7
	for v > 0 {
		tmp[n] = byte(v&0x7f) | 0x80
		n++
		v >>= 7
	}
	// tmp[0..n] holds the component least-significant-group first; the
	// wire order is most-significant-group first, so push tmp[0]
	// (least significant, continuation clear) last i.e. first in our
	// tail-first scheme is fine since PushByte prepends: push tmp[0]
	// first (ends up rightmost/last on the wire), then tmp[1], etc.
	for i := 0; i < n; i++ {
		if err := b.PushByte(tmp[i]); err != nil {
			return err
		}
	}
	return nil
}

// PushOIDRaw prepends already-BER-encoded OID content bytes verbatim
// (the zero-copy path: re-emitting an OID borrowed from a received
// PDU without re-parsing its sub-identifiers).
func (b *EncodeBuffer) PushOIDRaw(content []byte) error {
	if err := b.PushBytes(content); err != nil {
		return err
	}
	if err := b.PushLength(len(content)); err != nil {
		return err
	}
	return b.PushByte(byte(TagObjectIdentifier))
}

// DecodeOIDInts decodes raw OBJECT IDENTIFIER content bytes (no tag or
// length, just the payload) into sub-identifiers.
func DecodeOIDInts(content []byte) ([]uint32, error) {
	if len(content) == 0 {
		return nil, newDecodeError(AsnInvalidLen, "empty oid")
	}
	subids := make([]uint32, 0, len(content)+1)
	subids = append(subids, uint32(content[0])/40, uint32(content[0])%40)

	var current uint64
	have := false
	for _, b := range content[1:] {
		current = (current << 7) | uint64(b&0x7f)
		have = true
		if current > 0xFFFFFFFF {
			return nil, newDecodeError(AsnIntOverflow, "oid sub-identifier overflow")
		}
		if b&0x80 == 0 {
			subids = append(subids, uint32(current))
			current = 0
			have = false
		}
	}
	if have {
		return nil, newDecodeError(AsnEof, "truncated oid sub-identifier")
	}
	return subids, nil
}

// EncodeOIDInts is the allocation-based counterpart of PushOID, used
// where the caller wants the plain byte encoding rather than a
// prepend into an EncodeBuffer (e.g. OIDFromInts building the owned
// representation of an OID for later zero-copy re-emission).
func EncodeOIDInts(subids []uint32) ([]byte, error) {
	if len(subids) < 2 {
		return nil, newDecodeError(AsnInvalidLen, "oid needs at least 2 sub-identifiers")
	}
	out := []byte{byte(subids[0]*40 + subids[1])}
	for _, v := range subids[2:] {
		out = append(out, encodeOIDComponentForward(v)...)
	}
	return out, nil
}

func encodeOIDComponentForward(v uint32) []byte {
	if v < 0x80 {
		return []byte{byte(v)}
	}
	var tmp [5]byte
	n := 0
	tmp[n] = byte(v & 0x7f)
	n++
	v >>= 7
	for v > 0 {
		tmp[n] = byte(v & 0x7f)
		n++
		v >>= 7
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = tmp[n-1-i]
	}
	for i := 0; i < n-1; i++ {
		out[i] |= 0x80
	}
	return out
}
