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

// Varbind is one OID/value pair out of a PDU's variable-bindings
// list.
type Varbind struct {
	OID   OID
	Value Value
}

// Varbinds is a lazy iterator over a PDU's variable-bindings
// SEQUENCE. It wraps a ber.Reader over the still-encoded content,
// decoding one varbind at a time as Next is called. It copies no
// payload bytes, but Next is not allocation-free: validating each
// varbind's OID (and any OID-typed value) decodes its sub-identifiers
// into a temporary slice. Because a Varbinds value is just a cursor into a borrowed
// slice, copying it ("Clone") gives an independent restart point —
// used by Report classification, which needs a second pass over the
// same list a caller may also want to iterate.
type Varbinds struct {
	r   ber.Reader
	err error
}

// newVarbinds wraps the raw content of a variable-bindings SEQUENCE
// (tag already consumed by the caller).
func newVarbinds(content []byte) Varbinds {
	return Varbinds{r: ber.NewReader(content)}
}

// Clone returns an independent copy of the iterator's current
// position; advancing the clone does not affect the original.
func (v Varbinds) Clone() Varbinds {
	return v
}

// Len reports the number of unconsumed bytes, not the number of
// remaining varbinds (which would require parsing them).
func (v *Varbinds) Len() int {
	return v.r.Len()
}

// Err returns the error that stopped the most recent Next call, if
// any. Once Next returns false because of an error, Err is non-nil;
// if Next returns false because the list is exhausted, Err is nil.
func (v *Varbinds) Err() error {
	return v.err
}

// Next decodes the next varbind. It returns false when the list is
// exhausted or a decode error occurred; callers distinguish the two
// with Err.
func (v *Varbinds) Next() (Varbind, bool) {
	if v.err != nil || v.r.Len() == 0 {
		return Varbind{}, false
	}
	content, err := v.r.ReadRaw(byte(ber.TagSequence))
	if err != nil {
		v.err = err
		return Varbind{}, false
	}
	pair := ber.NewReader(content)
	oidContent, err := pair.ReadRaw(byte(ber.TagObjectIdentifier))
	if err != nil {
		v.err = err
		return Varbind{}, false
	}
	if _, err := ber.DecodeOIDInts(oidContent); err != nil {
		v.err = err
		return Varbind{}, false
	}
	valueTag, valueContent, err := pair.ReadTLV()
	if err != nil {
		v.err = err
		return Varbind{}, false
	}
	value, err := decodeValue(valueTag, valueContent)
	if err != nil {
		v.err = err
		return Varbind{}, false
	}
	return Varbind{OID: oidFromContent(oidContent), Value: value}, true
}

// Slice drains the iterator into a slice, for callers that want
// random access instead of streaming (Session's Get, GetNext,
// GetBulk and Set return their response varbinds this way).
func (v *Varbinds) Slice() ([]Varbind, error) {
	var out []Varbind
	for {
		vb, ok := v.Next()
		if !ok {
			break
		}
		out = append(out, vb)
	}
	return out, v.err
}

// pushVarbindsReverse prepends the variable-bindings SEQUENCE for
// pairs, writing them tail-first so the wire order matches pairs'
// order: since EncodeBuffer prepends, pairs must be pushed starting
// from the last element.
func pushVarbindsReverse(b *ber.EncodeBuffer, pairs []Varbind) error {
	return b.PushSequence(func(b *ber.EncodeBuffer) error {
		for i := len(pairs) - 1; i >= 0; i-- {
			pair := pairs[i]
			if err := b.PushSequence(func(b *ber.EncodeBuffer) error {
				if err := pair.Value.pushInto(b); err != nil {
					return err
				}
				return pair.OID.pushInto(b)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
