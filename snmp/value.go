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
	"fmt"
	"net"

	"github.com/edgeo/drivers/snmp/ber"
)

// ValueKind discriminates the tagged union in Value.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueBoolean
	ValueOctetString
	ValueNull
	ValueObjectIdentifier
	ValueIPAddress
	ValueCounter32
	ValueGauge32
	ValueTimeTicks
	ValueOpaque
	ValueCounter64
	// ValueNoSuchObject, ValueNoSuchInstance and ValueEndOfMibView are
	// the three SNMPv2 exception values a GetBulk/GetNext walk must
	// recognise to know when to stop (RFC 1905 §3).
	ValueNoSuchObject
	ValueNoSuchInstance
	ValueEndOfMibView
)

// Value is a varbind's value half: a tagged union over every type the
// wire format can carry. OctetString and Opaque payloads alias the
// PDU buffer they were parsed from, same as OID.
type Value struct {
	Kind    ValueKind
	Int     int64
	Bool    bool
	Bytes   []byte
	OID     OID
	Counter uint64 // Counter32, Gauge32, TimeTicks, Counter64 share this field, widened
}

func IntValue(n int64) Value                { return Value{Kind: ValueInt, Int: n} }
func BooleanValue(b bool) Value             { return Value{Kind: ValueBoolean, Bool: b} }
func OctetStringValue(b []byte) Value       { return Value{Kind: ValueOctetString, Bytes: b} }
func NullValue() Value                      { return Value{Kind: ValueNull} }
func ObjectIdentifierValue(o OID) Value     { return Value{Kind: ValueObjectIdentifier, OID: o} }
func Counter32Value(n uint32) Value         { return Value{Kind: ValueCounter32, Counter: uint64(n)} }
func Gauge32Value(n uint32) Value           { return Value{Kind: ValueGauge32, Counter: uint64(n)} }
func TimeTicksValue(n uint32) Value         { return Value{Kind: ValueTimeTicks, Counter: uint64(n)} }
func OpaqueValue(b []byte) Value            { return Value{Kind: ValueOpaque, Bytes: b} }
func Counter64Value(n uint64) Value         { return Value{Kind: ValueCounter64, Counter: n} }
func NoSuchObjectValue() Value              { return Value{Kind: ValueNoSuchObject} }
func NoSuchInstanceValue() Value            { return Value{Kind: ValueNoSuchInstance} }
func EndOfMibViewValue() Value              { return Value{Kind: ValueEndOfMibView} }

// IPAddressValue builds an IpAddress varbind value from a 4-byte IPv4
// address. SNMP has no IPv6 address application type.
func IPAddressValue(ip net.IP) (Value, error) {
	v4 := ip.To4()
	if v4 == nil {
		return Value{}, &EncodeError{Kind: ValueUnrepresentable, Detail: "IpAddress requires an IPv4 address"}
	}
	return Value{Kind: ValueIPAddress, Bytes: v4}, nil
}

// IsException reports whether v is one of the three SNMPv2 exception
// values a walk must treat as "no data here, move on" rather than as
// a usable result.
func (v Value) IsException() bool {
	switch v.Kind {
	case ValueNoSuchObject, ValueNoSuchInstance, ValueEndOfMibView:
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	case ValueBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case ValueOctetString:
		return fmt.Sprintf("%q", v.Bytes)
	case ValueNull:
		return "NULL"
	case ValueObjectIdentifier:
		return v.OID.String()
	case ValueIPAddress:
		return net.IP(v.Bytes).String()
	case ValueCounter32:
		return fmt.Sprintf("Counter32: %d", v.Counter)
	case ValueGauge32:
		return fmt.Sprintf("Gauge32: %d", v.Counter)
	case ValueTimeTicks:
		return fmt.Sprintf("Timeticks: %d", v.Counter)
	case ValueOpaque:
		return fmt.Sprintf("Opaque: %x", v.Bytes)
	case ValueCounter64:
		return fmt.Sprintf("Counter64: %d", v.Counter)
	case ValueNoSuchObject:
		return "noSuchObject"
	case ValueNoSuchInstance:
		return "noSuchInstance"
	case ValueEndOfMibView:
		return "endOfMibView"
	default:
		return "<unknown value>"
	}
}

// pushInto prepends this value's TLV into b, dispatching on Kind to
// the right tag and integer width.
func (v Value) pushInto(b *ber.EncodeBuffer) error {
	switch v.Kind {
	case ValueInt:
		return b.PushInteger(v.Int)
	case ValueBoolean:
		content := []byte{0x00}
		if v.Bool {
			content[0] = 0xFF
		}
		return pushTaggedBytes(b, byte(ber.TagBoolean), content)
	case ValueOctetString:
		return pushTaggedBytes(b, byte(ber.TagOctetString), v.Bytes)
	case ValueNull:
		if err := b.PushLength(0); err != nil {
			return err
		}
		return b.PushByte(byte(ber.TagNull))
	case ValueObjectIdentifier:
		return v.OID.pushInto(b)
	case ValueIPAddress:
		return pushTaggedBytes(b, tagIPAddress, v.Bytes)
	case ValueCounter32:
		return pushTaggedUint(b, tagCounter32, v.Counter)
	case ValueGauge32:
		return pushTaggedUint(b, tagGauge32, v.Counter)
	case ValueTimeTicks:
		return pushTaggedUint(b, tagTimeTicks, v.Counter)
	case ValueOpaque:
		return pushTaggedBytes(b, tagOpaque, v.Bytes)
	case ValueCounter64:
		return pushTaggedUint(b, tagCounter64, v.Counter)
	case ValueNoSuchObject:
		return pushEmptyTagged(b, tagNoSuchObj)
	case ValueNoSuchInstance:
		return pushEmptyTagged(b, tagNoSuchInst)
	case ValueEndOfMibView:
		return pushEmptyTagged(b, tagEndOfView)
	default:
		return &EncodeError{Kind: ValueUnrepresentable, Detail: "unknown value kind"}
	}
}

func pushTaggedBytes(b *ber.EncodeBuffer, tag byte, content []byte) error {
	if err := b.PushBytes(content); err != nil {
		return err
	}
	if err := b.PushLength(len(content)); err != nil {
		return err
	}
	return b.PushByte(tag)
}

func pushEmptyTagged(b *ber.EncodeBuffer, tag byte) error {
	if err := b.PushLength(0); err != nil {
		return err
	}
	return b.PushByte(tag)
}

// pushTaggedUint pushes an application-tagged unsigned integer using
// the same minimal two's-complement rule as INTEGER, but the content
// is logically unsigned: a value with its top bit set gets a leading
// 0x00 so it cannot be misread as negative.
func pushTaggedUint(b *ber.EncodeBuffer, tag byte, n uint64) error {
	var be [9]byte
	be[0] = 0
	for i := 0; i < 8; i++ {
		be[8-i] = byte(n >> (8 * i))
	}
	start := 1
	for start < 8 && be[start] == 0x00 && be[start+1]&0x80 == 0 {
		start++
	}
	if be[start]&0x80 != 0 {
		start--
	}
	content := be[start:]
	if err := b.PushBytes(content); err != nil {
		return err
	}
	if err := b.PushLength(len(content)); err != nil {
		return err
	}
	return b.PushByte(tag)
}

// decodeValue dispatches on a varbind's value tag, producing a Value
// that aliases content where possible.
func decodeValue(tag byte, content []byte) (Value, error) {
	switch tag {
	case byte(ber.TagInteger):
		n, err := ber.ReadInteger(content)
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case byte(ber.TagBoolean):
		if len(content) != 1 {
			return Value{}, &ber.DecodeError{Kind: ber.AsnInvalidLen, Message: "BOOLEAN content must be 1 byte"}
		}
		return BooleanValue(content[0] != 0x00), nil
	case byte(ber.TagOctetString):
		return OctetStringValue(content), nil
	case byte(ber.TagNull):
		return NullValue(), nil
	case byte(ber.TagObjectIdentifier):
		if _, err := ber.DecodeOIDInts(content); err != nil {
			return Value{}, err
		}
		return ObjectIdentifierValue(oidFromContent(content)), nil
	case tagIPAddress:
		return Value{Kind: ValueIPAddress, Bytes: content}, nil
	case tagCounter32:
		n, err := ber.ReadUnsignedInteger(content)
		if err != nil {
			return Value{}, err
		}
		return Counter32Value(uint32(n)), nil
	case tagGauge32:
		n, err := ber.ReadUnsignedInteger(content)
		if err != nil {
			return Value{}, err
		}
		return Gauge32Value(uint32(n)), nil
	case tagTimeTicks:
		n, err := ber.ReadUnsignedInteger(content)
		if err != nil {
			return Value{}, err
		}
		return TimeTicksValue(uint32(n)), nil
	case tagOpaque:
		return OpaqueValue(content), nil
	case tagCounter64:
		n, err := ber.ReadUnsignedInteger(content)
		if err != nil {
			return Value{}, err
		}
		return Counter64Value(n), nil
	case tagNoSuchObj:
		return NoSuchObjectValue(), nil
	case tagNoSuchInst:
		return NoSuchInstanceValue(), nil
	case tagEndOfView:
		return EndOfMibViewValue(), nil
	default:
		return Value{}, &ber.DecodeError{Kind: ber.AsnUnexpectedType, Message: fmt.Sprintf("varbind value tag 0x%02x", tag)}
	}
}
