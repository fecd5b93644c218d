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

import "math"

// Reader is a forward BER parser over a borrowed byte slice. It never
// allocates and never copies: every returned []byte aliases the input
// slice passed to NewReader. The cursor is a plain integer offset, so a
// Reader value is cheap to copy ("clone") to checkpoint/restart parsing
// (spec §4.4's "restartable" property).
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for forward parsing starting at offset 0.
func NewReader(buf []byte) Reader {
	return Reader{buf: buf}
}

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Pos returns the cursor's current byte offset into the slice passed
// to NewReader, for callers that need to locate a just-read TLV's
// content within a larger enclosing buffer (e.g. USM's authentication
// digest, computed over the whole message with one field zeroed).
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the unconsumed tail of the underlying slice without
// advancing the cursor.
func (r *Reader) Remaining() []byte {
	return r.buf[r.pos:]
}

// ReadByte consumes and returns one byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, newDecodeError(AsnEof, "read_byte")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// PeekByte returns the next byte without advancing the cursor, for
// dispatch on PDU type (spec §4.5 step 5).
func (r *Reader) PeekByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, newDecodeError(AsnEof, "peek_byte")
	}
	return r.buf[r.pos], nil
}

// ReadLength consumes a BER definite-length prefix (short or long
// form) and returns its value. Indefinite length (0x80) is rejected,
// as is a long-form count that would overflow an int or that claims
// more length-octets than the reader has left.
func (r *Reader) ReadLength() (int, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if first < 128 {
		return int(first), nil
	}
	if first == indefiniteLengthByte {
		return 0, newDecodeError(AsnInvalidLen, "indefinite length not supported")
	}
	numOctets := int(first & 0x7f)
	if numOctets > 8 {
		return 0, newDecodeError(AsnInvalidLen, "length too large")
	}
	if r.Len() < numOctets {
		return 0, newDecodeError(AsnEof, "read_length")
	}
	var n int
	for i := 0; i < numOctets; i++ {
		b, _ := r.ReadByte()
		n = (n << 8) | int(b)
	}
	if n < 0 {
		return 0, newDecodeError(AsnInvalidLen, "negative length")
	}
	return n, nil
}

// ReadRaw asserts the next tag equals expectedTag, reads its length,
// and returns the content slice, advancing the cursor past it.
func (r *Reader) ReadRaw(expectedTag byte) ([]byte, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != expectedTag {
		return nil, newDecodeError(AsnWrongType, "unexpected tag")
	}
	length, err := r.ReadLength()
	if err != nil {
		return nil, err
	}
	if r.Len() < length {
		return nil, newDecodeError(AsnEof, "read_raw content")
	}
	content := r.buf[r.pos : r.pos+length]
	r.pos += length
	return content, nil
}

// ReadTLV reads the next tag, its length, and returns (tag, content),
// without asserting what the tag should be — used for dispatch (e.g.
// the varbind value tag, which can be any of a dozen types).
func (r *Reader) ReadTLV() (byte, []byte, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	length, err := r.ReadLength()
	if err != nil {
		return 0, nil, err
	}
	if r.Len() < length {
		return 0, nil, newDecodeError(AsnEof, "read_tlv content")
	}
	content := r.buf[r.pos : r.pos+length]
	r.pos += length
	return tag, content, nil
}

// ReadInteger decodes the content of an already-tag-checked INTEGER
// (or an INTEGER-shaped application type such as Counter32) as a
// signed big-endian two's-complement value. Lengths over 8 bytes
// cannot be represented in an int64 and are rejected.
func ReadInteger(content []byte) (int64, error) {
	if len(content) == 0 {
		return 0, newDecodeError(AsnInvalidLen, "empty integer")
	}
	if len(content) > 8 {
		return 0, newDecodeError(AsnIntOverflow, "integer too long")
	}
	var n int64
	if content[0]&0x80 != 0 {
		n = -1
	}
	for _, b := range content {
		n = (n << 8) | int64(b)
	}
	return n, nil
}

// ReadUnsignedInteger decodes the content of an application-tagged
// unsigned type (Counter32, Unsigned32, Timeticks, Counter64) as an
// unsigned big-endian value. SNMP unsigned application types are
// encoded with the same "no redundant leading 0xFF" rule as INTEGER,
// but never carry a sign bit of their own, so this simply widens.
func ReadUnsignedInteger(content []byte) (uint64, error) {
	if len(content) == 0 {
		return 0, newDecodeError(AsnInvalidLen, "empty unsigned integer")
	}
	if len(content) > 9 {
		return 0, newDecodeError(AsnIntOverflow, "unsigned integer too long")
	}
	var n uint64
	for _, b := range content {
		n = (n << 8) | uint64(b)
	}
	return n, nil
}

// ReadInt32Integer reads an INTEGER and range-checks it into an int32
// (used for request-id, which the wire encodes as a signed INTEGER
// that must fit in 32 bits).
func (r *Reader) ReadInt32Integer() (int32, error) {
	content, err := r.ReadRaw(byte(TagInteger))
	if err != nil {
		return 0, err
	}
	n, err := ReadInteger(content)
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, newDecodeError(ValueOutOfRange, "request-id out of int32 range")
	}
	return int32(n), nil
}

// ReadNonNegativeInt32 reads an INTEGER and range-checks it into
// [0, 2^31-1] (used for error-status/error-index per RFC 3416's
// INTEGER (0..max) constraint, adopted per spec §9).
func (r *Reader) ReadNonNegativeInt32() (uint32, error) {
	content, err := r.ReadRaw(byte(TagInteger))
	if err != nil {
		return 0, err
	}
	n, err := ReadInteger(content)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, newDecodeError(ValueOutOfRange, "value out of [0, 2^31-1] range")
	}
	return uint32(n), nil
}
