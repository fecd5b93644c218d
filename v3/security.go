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

// Package v3 implements the User-based Security Model (RFC 3414) for
// SNMPv3: engine discovery, message authentication, and privacy. It
// satisfies the snmp.V3Security interface, which package snmp
// declares and depends on without importing this package, so Security
// is free to import snmp for the shared OID/Value/Varbind/Pdu types.
package v3

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// AuthProtocol selects the USM authentication algorithm.
type AuthProtocol int

const (
	NoAuth AuthProtocol = iota
	MD5
	SHA
)

// PrivProtocol selects the USM privacy (encryption) algorithm.
type PrivProtocol int

const (
	NoPriv PrivProtocol = iota
	DES
	AES
)

// Level is the USM security level, RFC 3414's msgFlags auth/priv
// bits reduced to the three combinations SNMP actually allows
// (privacy implies authentication).
type Level int

const (
	NoAuthNoPriv Level = iota
	AuthNoPriv
	AuthPriv
)

// Security holds one target engine's USM state: the discovered
// engine-id/boots/time, the configured user and protocols, and the
// keys localized from the user's passphrases once the engine-id is
// known. A single Security is shared by every Session in a Pool
// pointed at the same target (see snmp.NewPool) and is therefore safe
// for concurrent use.
type Security struct {
	mu sync.Mutex

	username string
	level    Level

	authProtocol   AuthProtocol
	authPassphrase string
	authKey        []byte

	privProtocol   PrivProtocol
	privPassphrase string
	privKey        []byte

	contextName string

	engineID    []byte
	engineBoots int32
	engineTime  int32
	syncedAt    time.Time
}

// Option configures a Security at construction time.
type Option func(*Security)

// New builds a Security for username at the given level. Additional
// protocol/passphrase/context options are applied after; a Security
// with an AuthNoPriv or AuthPriv level but no WithAuth option is
// invalid and UpdateKey will report it.
func New(username string, level Level, opts ...Option) *Security {
	s := &Security{username: username, level: level}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithAuth sets the authentication protocol and passphrase.
func WithAuth(protocol AuthProtocol, passphrase string) Option {
	return func(s *Security) { s.authProtocol = protocol; s.authPassphrase = passphrase }
}

// WithPriv sets the privacy protocol and passphrase.
func WithPriv(protocol PrivProtocol, passphrase string) Option {
	return func(s *Security) { s.privProtocol = protocol; s.privPassphrase = passphrase }
}

// WithContextName sets the scoped PDU's contextName (empty/default
// context otherwise).
func WithContextName(name string) Option {
	return func(s *Security) { s.contextName = name }
}

// WithEngineID pre-seeds a previously-discovered engine-id, letting a
// caller that persisted it across restarts skip the discovery round
// trip. It does not seed engineBoots/engineTime, which must still be
// (re)synchronised.
func WithEngineID(engineID []byte) Option {
	return func(s *Security) { s.engineID = append([]byte(nil), engineID...) }
}

// NeedInit reports whether engine discovery must run before a normal
// request can be built.
func (s *Security) NeedInit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.engineID) == 0
}

// ResetEngineID discards all cached engine state, forcing a fresh
// discovery handshake.
func (s *Security) ResetEngineID() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engineID = nil
	s.engineBoots = 0
	s.engineTime = 0
	s.authKey = nil
	s.privKey = nil
}

// ResetEngineCounters discards only the boots/time tracking; the
// engine-id (and therefore the localized keys) remain valid.
func (s *Security) ResetEngineCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engineBoots = 0
	s.engineTime = 0
}

// CorrectAuthoritativeEngineTime absorbs the engine's boots/time,
// recording the local instant they were valid as of so
// currentEngineTime can extrapolate between exchanges (RFC 3414
// §2.3's +/-150s time window is otherwise violated by any session
// that runs longer than a few requests).
func (s *Security) CorrectAuthoritativeEngineTime(engineBoots, engineTime int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engineBoots = engineBoots
	s.engineTime = engineTime
	s.syncedAt = time.Now()
}

func (s *Security) setEngineID(id []byte) {
	s.mu.Lock()
	changed := string(s.engineID) != string(id)
	s.engineID = append([]byte(nil), id...)
	s.mu.Unlock()
	if changed {
		_ = s.UpdateKey()
	}
}

// currentEngineTime extrapolates msgAuthoritativeEngineTime forward
// from the last synchronisation point using the local clock.
func (s *Security) currentEngineTime() int32 {
	if s.syncedAt.IsZero() {
		return s.engineTime
	}
	return s.engineTime + int32(time.Since(s.syncedAt).Seconds())
}

// Username returns the USM security name.
func (s *Security) Username() string {
	return s.username
}

// UpdateKey (re)derives the localized authentication/privacy keys
// from the configured passphrases and the current engine-id. It is a
// no-op for NoAuthNoPriv. Called automatically whenever the engine-id
// changes; a caller restoring a known engine-id across restarts
// (WithEngineID) may call it eagerly too.
func (s *Security) UpdateKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.level == NoAuthNoPriv {
		return nil
	}
	if len(s.engineID) == 0 {
		return errors.New("v3: cannot derive key before engine-id is known")
	}
	if s.authProtocol == NoAuth {
		return errors.New("v3: auth level requires WithAuth")
	}
	s.authKey = localizeKey(s.authProtocol, s.authPassphrase, s.engineID)
	if s.level == AuthPriv {
		if s.privProtocol == NoPriv {
			return errors.New("v3: authPriv level requires WithPriv")
		}
		s.privKey = localizeKey(s.authProtocol, s.privPassphrase, s.engineID)
	}
	return nil
}

// digestSize is the truncated HMAC length USM places on the wire
// (RFC 3414 §6.3.1): 12 bytes regardless of the underlying hash's
// native output size.
const digestSize = 12

func (p AuthProtocol) String() string {
	switch p {
	case NoAuth:
		return "NoAuth"
	case MD5:
		return "MD5"
	case SHA:
		return "SHA"
	default:
		return fmt.Sprintf("AuthProtocol(%d)", int(p))
	}
}

func (p PrivProtocol) String() string {
	switch p {
	case NoPriv:
		return "NoPriv"
	case DES:
		return "DES"
	case AES:
		return "AES"
	default:
		return fmt.Sprintf("PrivProtocol(%d)", int(p))
	}
}
