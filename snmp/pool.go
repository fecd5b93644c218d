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

	"github.com/pkg/errors"
)

// Pool holds a fixed number of independent Sessions to a single
// target, each with its own UDP socket and request-id counter. Unlike
// a connection pool for a stream protocol, this buys nothing for
// throughput to one agent over UDP — it exists so a caller issuing
// requests to the same target from several goroutines doesn't need to
// hand-roll its own Session checkout, and so a v3 target's engine
// discovery happens once per Session rather than once per call.
type Pool struct {
	sessions []*Session
	free     chan int
}

// NewPool opens size independent Sessions using the same options.
// Every Session in the pool shares one v3 Security if one is
// configured via WithV3Security — USM engine-boots/time state is
// per-target, not per-socket, so sharing it is correct; concurrent
// calls to Security methods must therefore be safe for the *v3.Security
// implementation supplied, which its package documents.
func NewPool(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, errors.New("snmp: pool size must be at least 1")
	}
	p := &Pool{
		sessions: make([]*Session, 0, size),
		free:     make(chan int, size),
	}
	for i := 0; i < size; i++ {
		s, err := New(opts...)
		if err != nil {
			p.Close()
			return nil, errors.Wrapf(err, "snmp: pool session %d", i)
		}
		p.sessions = append(p.sessions, s)
		p.free <- i
	}
	return p, nil
}

// checkout blocks until a Session is available or ctx is done.
func (p *Pool) checkout(ctx context.Context) (int, *Session, error) {
	select {
	case idx := <-p.free:
		return idx, p.sessions[idx], nil
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (p *Pool) checkin(idx int) {
	p.free <- idx
}

// Get checks out a Session, issues Get, and returns it.
func (p *Pool) Get(ctx context.Context, oids ...OID) ([]Varbind, error) {
	idx, s, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}
	defer p.checkin(idx)
	return s.Get(ctx, oids...)
}

// GetNext checks out a Session, issues GetNext, and returns it.
func (p *Pool) GetNext(ctx context.Context, oids ...OID) ([]Varbind, error) {
	idx, s, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}
	defer p.checkin(idx)
	return s.GetNext(ctx, oids...)
}

// GetBulk checks out a Session, issues GetBulk, and returns it.
func (p *Pool) GetBulk(ctx context.Context, nonRepeaters, maxRepetitions uint32, oids ...OID) ([]Varbind, error) {
	idx, s, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}
	defer p.checkin(idx)
	return s.GetBulk(ctx, nonRepeaters, maxRepetitions, oids...)
}

// Set checks out a Session, issues Set, and returns it.
func (p *Pool) Set(ctx context.Context, varbinds ...Varbind) ([]Varbind, error) {
	idx, s, err := p.checkout(ctx)
	if err != nil {
		return nil, err
	}
	defer p.checkin(idx)
	return s.Set(ctx, varbinds...)
}

// Walk checks out a Session for the duration of the traversal.
func (p *Pool) Walk(ctx context.Context, root OID, fn func(Varbind) error) error {
	idx, s, err := p.checkout(ctx)
	if err != nil {
		return err
	}
	defer p.checkin(idx)
	return s.Walk(ctx, root, fn)
}

// Close closes every Session in the pool, returning the first error
// encountered (closing continues regardless).
func (p *Pool) Close() error {
	var first error
	for _, s := range p.sessions {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
