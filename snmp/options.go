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
	"log/slog"
	"time"
)

// Options configures a Session. Use the With* functions with New
// rather than constructing Options directly; the zero value is not
// usable (Target is required).
type Options struct {
	Target         string
	Port           int
	Version        Version
	Community      string
	Timeout        time.Duration
	Security       V3Security
	Logger         *slog.Logger
	NonRepeaters   uint32
	MaxRepetitions uint32
	Metrics        *Metrics
}

// Option configures a Session at construction time.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Port:           161,
		Version:        VersionV2c,
		Community:      "public",
		Timeout:        5 * time.Second,
		Logger:         slog.Default(),
		MaxRepetitions: DefaultMaxRepetitions,
	}
}

// WithTarget sets the agent's host or IP address. Required.
func WithTarget(target string) Option {
	return func(o *Options) { o.Target = target }
}

// WithPort overrides the default UDP port 161.
func WithPort(port int) Option {
	return func(o *Options) { o.Port = port }
}

// WithCommunity sets the v1/v2c community string. Ignored for v3.
func WithCommunity(community string) Option {
	return func(o *Options) { o.Community = community }
}

// WithVersion selects v1 instead of the default v2c; v3 is selected
// implicitly by WithV3Security.
func WithVersion(v Version) Option {
	return func(o *Options) { o.Version = v }
}

// WithTimeout sets the UDP read deadline applied to every request;
// Session does not retry on timeout, matching the single
// request/single response model (see Session.roundTrip).
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithV3Security selects SNMPv3 and supplies the USM security state.
// If security already has a passphrase and engine-id configured (a
// caller restoring a previously-discovered engine across process
// restarts), its localized keys are derived immediately so the first
// request doesn't need a redundant UpdateKey call; a security with no
// engine-id yet simply no-ops here and derives its key after the
// discovery handshake instead.
func WithV3Security(security V3Security) Option {
	return func(o *Options) {
		o.Version = VersionV3
		o.Security = security
		if security != nil && !security.NeedInit() {
			_ = security.UpdateKey()
		}
	}
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithMaxRepetitions overrides the default GetBulk max-repetitions
// (DefaultMaxRepetitions).
func WithMaxRepetitions(n uint32) Option {
	return func(o *Options) { o.MaxRepetitions = n }
}

// WithNonRepeaters sets the GetBulk non-repeaters field (0 by
// default: every requested OID repeats).
func WithNonRepeaters(n uint32) Option {
	return func(o *Options) { o.NonRepeaters = n }
}

// WithMetrics attaches a Metrics collector; if omitted, Session
// records no metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}
