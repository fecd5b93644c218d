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
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Session is a synchronous SNMP client bound to one agent. Every
// request is one UDP round trip; there is no background reader and no
// request pipelining. A lost or late datagram is not retried: the only
// retry is the single resend after a resynchronisable v3 Report (see
// request), and Walk issues one request per page. A caller
// that wants retries, timeouts-with-backoff, or concurrent requests
// composes that on top of Session (or uses Pool, which checks out an
// independent Session per caller rather than multiplexing one
// connection).
//
// A Session is not safe for concurrent use from multiple goroutines:
// it owns one UDP socket and one reusable receive buffer.
type Session struct {
	conn      *net.UDPConn
	opts      Options
	builder   *PduBuilder
	requestID int32
	recvBuf   []byte
	logger    *slog.Logger
}

// New dials target:port over UDP and, for v3, completes engine
// discovery before returning. The connection is not verified to be
// reachable (UDP has no handshake); the first Get/Set call is the
// first point a network-level failure can surface.
func New(opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Target == "" {
		return nil, errors.New("snmp: WithTarget is required")
	}

	addr := net.JoinHostPort(o.Target, strconv.Itoa(o.Port))
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "snmp: resolve %s", addr)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "snmp: dial %s", addr)
	}

	s := &Session{
		conn:      conn,
		opts:      o,
		builder:   NewPduBuilder(o.Version, o.Community, o.Security),
		requestID: int32(time.Now().UnixNano()),
		recvBuf:   make([]byte, BufferSize),
		logger:    o.Logger,
	}

	if o.Version == VersionV3 {
		if err := s.init(); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases the underlying UDP socket.
func (s *Session) Close() error {
	return s.conn.Close()
}

func (s *Session) nextRequestID() int32 {
	id := s.requestID
	s.requestID++
	return id
}

// init runs the v3 engine-id/boots/time discovery handshake: an
// empty, unauthenticated GetRequest elicits a Report carrying the
// authoritative engine's parameters, which ParseV3 absorbs into
// opts.Security as a side effect. It is a no-op while the engine-id is
// already known, and fails with NotAuthenticated if the reply leaves
// the engine-id unknown.
func (s *Session) init() error {
	if s.opts.Security == nil {
		return &AuthError{Kind: SecurityNotProvided, Detail: "v3 session requires WithV3Security"}
	}
	if !s.opts.Security.NeedInit() {
		return nil
	}
	reqID := s.nextRequestID()
	raw, err := s.builder.BuildInit(reqID)
	if err != nil {
		return errors.Wrap(err, "snmp: build discovery request")
	}
	respRaw, err := s.roundTrip(raw)
	if err != nil {
		return err
	}
	_, err = Decode(respRaw, s.opts.Security)
	if err != nil && !errors.Is(err, ErrAuthUpdated) {
		return errors.Wrap(err, "snmp: engine discovery")
	}
	if s.opts.Security.NeedInit() {
		return &AuthError{Kind: NotAuthenticated, Detail: "engine discovery reply carried no engine-id"}
	}
	s.logger.Debug("snmp v3 engine discovery complete", "target", s.opts.Target)
	return nil
}

// roundTrip writes raw and reads exactly one response datagram,
// enforcing opts.Timeout as the total deadline for both.
func (s *Session) roundTrip(raw []byte) ([]byte, error) {
	if err := s.conn.SetDeadline(time.Now().Add(s.opts.Timeout)); err != nil {
		return nil, errors.Wrap(err, "snmp: set deadline")
	}
	if _, err := s.conn.Write(raw); err != nil {
		return nil, &TransportError{Op: TransportSend, Err: err}
	}
	n, err := s.conn.Read(s.recvBuf)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, &TransportError{Op: TransportTimeout, Err: err}
		}
		return nil, &TransportError{Op: TransportReceive, Err: err}
	}
	return s.recvBuf[:n], nil
}

// request performs build -> send -> receive -> decode -> validate for
// one operation, recording metrics and recovering once from a
// resynchronisable v3 Report (wrong engine boots/time, unknown
// engine-id) by discarding the cached engine state and retrying the
// same request after init() has rediscovered it.
func (s *Session) request(ctx context.Context, op string, expectedType MessageType, build func(reqID int32) ([]byte, error)) (*Pdu, error) {
	start := time.Now()
	pdu, err := s.requestOnce(ctx, expectedType, build)
	if err != nil {
		var rerr *ReportError
		if errors.As(err, &rerr) && s.opts.Version == VersionV3 && ReportRecoverable(rerr.Kind) {
			s.opts.Security.ResetEngineID()
			if initErr := s.init(); initErr == nil {
				pdu, err = s.requestOnce(ctx, expectedType, build)
			}
		}
	}
	outcome := "ok"
	switch {
	case err == nil:
		outcome = "ok"
	case isTimeout(err):
		outcome = "timeout"
	default:
		var rerr *ReportError
		if errors.As(err, &rerr) {
			outcome = "report"
		} else {
			outcome = "error"
		}
	}
	s.opts.Metrics.observe(op, outcome, time.Since(start))
	return pdu, err
}

func (s *Session) requestOnce(ctx context.Context, expectedType MessageType, build func(reqID int32) ([]byte, error)) (*Pdu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reqID := s.nextRequestID()
	raw, err := build(reqID)
	if err != nil {
		return nil, errors.Wrap(err, "snmp: build request")
	}
	respRaw, err := s.roundTrip(raw)
	if err != nil {
		return nil, err
	}
	pdu, err := Decode(respRaw, s.opts.Security)
	if err != nil {
		return nil, errors.Wrap(err, "snmp: decode response")
	}
	if err := pdu.Validate(expectedType, reqID, s.opts.Community); err != nil {
		return nil, err
	}
	return pdu, nil
}

func isTimeout(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr) && terr.Op == TransportTimeout
}

// Get issues a GetRequest for oids and returns the response varbinds
// in the order requested.
func (s *Session) Get(ctx context.Context, oids ...OID) ([]Varbind, error) {
	pdu, err := s.request(ctx, "get", MessageResponse, func(reqID int32) ([]byte, error) {
		return s.builder.BuildGet(oids, reqID)
	})
	if err != nil {
		return nil, err
	}
	return pdu.Varbinds.Slice()
}

// GetNext issues a GetNextRequest for oids.
func (s *Session) GetNext(ctx context.Context, oids ...OID) ([]Varbind, error) {
	pdu, err := s.request(ctx, "getnext", MessageResponse, func(reqID int32) ([]byte, error) {
		return s.builder.BuildGetNext(oids, reqID)
	})
	if err != nil {
		return nil, err
	}
	return pdu.Varbinds.Slice()
}

// GetBulk issues a GetBulkRequest for oids. nonRepeaters and
// maxRepetitions of 0 fall back to the Session's configured defaults
// (WithNonRepeaters/WithMaxRepetitions).
func (s *Session) GetBulk(ctx context.Context, nonRepeaters, maxRepetitions uint32, oids ...OID) ([]Varbind, error) {
	if nonRepeaters == 0 {
		nonRepeaters = s.opts.NonRepeaters
	}
	if maxRepetitions == 0 {
		maxRepetitions = s.opts.MaxRepetitions
	}
	pdu, err := s.request(ctx, "getbulk", MessageResponse, func(reqID int32) ([]byte, error) {
		return s.builder.BuildGetBulk(oids, reqID, nonRepeaters, maxRepetitions)
	})
	if err != nil {
		return nil, err
	}
	return pdu.Varbinds.Slice()
}

// Set issues a SetRequest carrying varbinds' values.
func (s *Session) Set(ctx context.Context, varbinds ...Varbind) ([]Varbind, error) {
	pdu, err := s.request(ctx, "set", MessageResponse, func(reqID int32) ([]byte, error) {
		return s.builder.BuildSet(varbinds, reqID)
	})
	if err != nil {
		return nil, err
	}
	return pdu.Varbinds.Slice()
}

// Walk lazily traverses every OID under root using repeated
// GetNext calls (v1) or a single GetBulk per page (v2c/v3), invoking
// fn for each in-subtree varbind until root's subtree is exhausted,
// fn returns an error, or ctx is cancelled.
func (s *Session) Walk(ctx context.Context, root OID, fn func(Varbind) error) error {
	current := root
	for {
		var vbs []Varbind
		var err error
		if s.opts.Version == VersionV1 {
			vbs, err = s.GetNext(ctx, current)
		} else {
			vbs, err = s.GetBulk(ctx, 0, s.opts.MaxRepetitions, current)
		}
		if err != nil {
			return err
		}
		if len(vbs) == 0 {
			return nil
		}
		progressed := false
		for _, vb := range vbs {
			if !vb.OID.HasPrefix(root) || vb.Value.IsException() {
				return nil
			}
			if err := fn(vb); err != nil {
				return err
			}
			current = vb.OID
			progressed = true
		}
		if !progressed {
			return nil
		}
	}
}
