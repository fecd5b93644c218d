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

import "fmt"

// Application-class tags (RFC 1155 §3.2.4) used by SNMP varbind
// values, layered on top of package ber's universal tags.
const (
	tagIPAddress  = 0x40
	tagCounter32  = 0x41
	tagGauge32    = 0x42 // also known as Unsigned32
	tagTimeTicks  = 0x43
	tagOpaque     = 0x44
	tagCounter64  = 0x46
	tagNoSuchObj  = 0x80
	tagNoSuchInst = 0x81
	tagEndOfView  = 0x82
)

// MessageType identifies a PDU by its context-specific constructed
// tag (RFC 1157 §4.1, RFC 1905 §4).
type MessageType byte

const (
	MessageGetRequest     MessageType = 0xA0
	MessageGetNextRequest MessageType = 0xA1
	MessageResponse       MessageType = 0xA2
	MessageSetRequest     MessageType = 0xA3
	MessageTrapV1         MessageType = 0xA4
	MessageGetBulkRequest MessageType = 0xA5
	MessageInformRequest  MessageType = 0xA6
	MessageTrapV2         MessageType = 0xA7
	MessageReport         MessageType = 0xA8
)

func (m MessageType) String() string {
	switch m {
	case MessageGetRequest:
		return "GetRequest"
	case MessageGetNextRequest:
		return "GetNextRequest"
	case MessageResponse:
		return "Response"
	case MessageSetRequest:
		return "SetRequest"
	case MessageTrapV1:
		return "TrapV1"
	case MessageGetBulkRequest:
		return "GetBulkRequest"
	case MessageInformRequest:
		return "InformRequest"
	case MessageTrapV2:
		return "TrapV2"
	case MessageReport:
		return "Report"
	default:
		return fmt.Sprintf("MessageType(0x%02x)", byte(m))
	}
}

// messageTypeFromTag maps a wire tag byte to a MessageType, rejecting
// anything not in the table above.
func messageTypeFromTag(tag byte) (MessageType, bool) {
	switch MessageType(tag) {
	case MessageGetRequest, MessageGetNextRequest, MessageResponse,
		MessageSetRequest, MessageTrapV1, MessageGetBulkRequest,
		MessageInformRequest, MessageTrapV2, MessageReport:
		return MessageType(tag), true
	default:
		return 0, false
	}
}
