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

// Package snmp implements the SNMP wire protocol (v1, v2c and v3) on
// top of package ber: PDU assembly, parsing, request/response
// validation, and a synchronous UDP session. Package v3 supplies the
// User-based Security Model and plugs into Session through the
// V3Security interface declared here.
package snmp

import "fmt"

// Version identifies the SNMP message version on the wire. It is
// encoded as the first element of the outer SEQUENCE, a plain
// INTEGER.
type Version int32

const (
	VersionV1  Version = 0
	VersionV2c Version = 1
	VersionV3  Version = 3
)

func (v Version) String() string {
	switch v {
	case VersionV1:
		return "v1"
	case VersionV2c:
		return "v2c"
	case VersionV3:
		return "v3"
	default:
		return fmt.Sprintf("Version(%d)", int32(v))
	}
}

// BufferSize is the default EncodeBuffer capacity: large enough for
// any UDP datagram an SNMP agent is expected to accept without
// fragmentation-aware negotiation.
const BufferSize = 4096

// DefaultMaxRepetitions is the default max-repetitions value used when
// building a GetBulk request with the zero value.
const DefaultMaxRepetitions = 10
