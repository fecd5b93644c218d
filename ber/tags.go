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

// Package ber implements the Basic Encoding Rules of ASN.1 as used by
// SNMP: a fixed-capacity, backward-growing TLV builder and a zero-copy
// forward TLV reader. It has no SNMP-specific semantics; the snmp and
// v3 packages layer application tags (§6 of the protocol) on top.
package ber

// Tag is a BER identifier octet (universal class, primitive or
// constructed as indicated by the caller's use of it).
type Tag byte

// Universal ASN.1 tags used by SNMP's BER encoding.
const (
	TagBoolean          Tag = 0x01
	TagInteger          Tag = 0x02
	TagBitString        Tag = 0x03
	TagOctetString      Tag = 0x04
	TagNull             Tag = 0x05
	TagObjectIdentifier Tag = 0x06
	TagSequence         Tag = 0x30
)

// indefiniteLengthByte is the reserved long-form length octet meaning
// "indefinite length" (BER, not DER); SNMP never uses it and Reader
// rejects it.
const indefiniteLengthByte = 0x80
