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

	"github.com/pkg/errors"
)

// ProtocolErrorKind enumerates malformed-but-not-BER-level protocol
// failures: the bytes parsed as valid BER, but the PDU they describe
// doesn't match what was expected.
type ProtocolErrorKind int

const (
	UnsupportedVersion ProtocolErrorKind = iota
	RequestIDMismatch
	CommunityMismatch
	UnexpectedMessageType
	MalformedOID
	MalformedTrap
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case RequestIDMismatch:
		return "RequestIDMismatch"
	case CommunityMismatch:
		return "CommunityMismatch"
	case UnexpectedMessageType:
		return "UnexpectedMessageType"
	case MalformedOID:
		return "MalformedOID"
	case MalformedTrap:
		return "MalformedTrap"
	default:
		return fmt.Sprintf("ProtocolErrorKind(%d)", int(k))
	}
}

// ProtocolError reports a PDU that decoded cleanly as BER but
// violates an SNMP-level expectation.
type ProtocolError struct {
	Kind   ProtocolErrorKind
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail == "" {
		return "snmp: " + e.Kind.String()
	}
	return fmt.Sprintf("snmp: %s: %s", e.Kind, e.Detail)
}

// ReportError wraps a classified varbind from a v3 Report PDU (the
// agent refusing a request instead of answering it); see report.go
// for the classification tables.
type ReportError struct {
	OID  OID
	Kind string // "usmStatsUnknownUserNames", "usmStatsNotInTimeWindows", ..., or the dotted OID if unclassified
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("snmp: report: %s (%s)", e.Kind, e.OID)
}

// TransportErrorOp names the UDP operation that failed.
type TransportErrorOp int

const (
	TransportSend TransportErrorOp = iota
	TransportReceive
	TransportTimeout
)

// TransportError wraps an underlying net.Conn failure with the
// operation being attempted.
type TransportError struct {
	Op  TransportErrorOp
	Err error
}

func (e *TransportError) Error() string {
	var op string
	switch e.Op {
	case TransportSend:
		op = "send"
	case TransportReceive:
		op = "receive"
	case TransportTimeout:
		op = "timeout"
	}
	return fmt.Sprintf("snmp: transport %s: %v", op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthErrorKind enumerates v3 security failures: missing or unusable
// security setup, and received messages that fail authentication.
type AuthErrorKind int

const (
	SecurityNotProvided AuthErrorKind = iota
	NotAuthenticated
	UnsupportedSecurityLevel
)

func (k AuthErrorKind) String() string {
	switch k {
	case SecurityNotProvided:
		return "SecurityNotProvided"
	case NotAuthenticated:
		return "NotAuthenticated"
	case UnsupportedSecurityLevel:
		return "UnsupportedSecurityLevel"
	default:
		return fmt.Sprintf("AuthErrorKind(%d)", int(k))
	}
}

// AuthError reports a v3 security precondition violation: a v3
// session without a V3Security, or one that must run engine discovery
// before a normal request.
type AuthError struct {
	Kind   AuthErrorKind
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "snmp: " + e.Kind.String()
	}
	return fmt.Sprintf("snmp: %s: %s", e.Kind, e.Detail)
}

// EncodeErrorKind enumerates PDU-assembly failures that are specific
// to SNMP (as opposed to ber.ErrEncodeOverflow, which also applies
// here and is returned directly).
type EncodeErrorKind int

const (
	OIDTooLong EncodeErrorKind = iota
	ValueUnrepresentable
)

// EncodeError reports a value that cannot be placed on the wire.
type EncodeError struct {
	Kind   EncodeErrorKind
	Detail string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("snmp: encode: %d: %s", e.Kind, e.Detail)
}

// ErrAuthUpdated is a non-error internal signal: ParseV3 returns it
// from a discovery-only Report to tell Session.init that the engine
// parameters were absorbed and the handshake should continue, not
// that the exchange failed.
var ErrAuthUpdated = errors.New("snmp: v3 security parameters updated, retry")

// wrapf is the package's single entry point for adding call-site
// context to an error at a package boundary, using pkg/errors so the
// original stack trace from the deepest failure is preserved for
// logging.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
