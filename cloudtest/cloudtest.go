// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package cloudtest drives end-to-end checks of dataset writes against
// cloud and local filesystems: polling eventually consistent stores
// until output turns up, validating committed saves down to the row
// count, and copying files between stores with checksum verification.
package cloudtest

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/lakecheck/lakecheck-go"
	"github.com/lakecheck/lakecheck-go/dataset"
	"github.com/lakecheck/lakecheck-go/fsio"
	"github.com/lakecheck/lakecheck-go/ledger"
)

// Properties understood by New. Explicit options take precedence over
// these, which in turn take precedence over the defaults.
const (
	PollTimeoutKey      = "cloudtest.poll-timeout"
	PollIntervalKey     = "cloudtest.poll-interval"
	ConsistencyDelayKey = "cloudtest.consistency-delay"
)

// Poller defaults, applied when neither an option nor a property sets
// the value.
const (
	DefaultPollTimeout  = 30 * time.Second
	DefaultPollInterval = time.Second
)

// Integration bundles everything a storage check needs: the filesystem
// under test, an optional compute session for loads, and the knobs that
// control polling. Construct one per store with New.
type Integration struct {
	fs    fsio.FS
	sess  dataset.Session
	props lakecheck.Properties
	log   *zap.SugaredLogger
	clock clockwork.Clock
	runs  *ledger.Ledger

	timeout  time.Duration
	interval time.Duration
}

// Option configures an Integration.
type Option func(*Integration)

// WithSession routes dataset loads through sess instead of the local
// engine.
func WithSession(sess dataset.Session) Option {
	return func(in *Integration) { in.sess = sess }
}

// WithProperties supplies the property set consulted for poller and
// consistency settings.
func WithProperties(props lakecheck.Properties) Option {
	return func(in *Integration) { in.props = props }
}

// WithLogger replaces the default no-op logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(in *Integration) { in.log = log }
}

// WithClock replaces the wall clock, letting tests control elapsed time
// and consistency delays.
func WithClock(clock clockwork.Clock) Option {
	return func(in *Integration) { in.clock = clock }
}

// WithLedger records validation outcomes to l.
func WithLedger(l *ledger.Ledger) Option {
	return func(in *Integration) { in.runs = l }
}

// WithPollTimeout overrides how long probes are retried.
func WithPollTimeout(d time.Duration) Option {
	return func(in *Integration) { in.timeout = d }
}

// WithPollInterval overrides the pause between probe attempts.
func WithPollInterval(d time.Duration) Option {
	return func(in *Integration) { in.interval = d }
}

// New builds an Integration over fsys. Unset knobs fall back to the
// cloudtest.* properties and then to the package defaults.
func New(fsys fsio.FS, opts ...Option) *Integration {
	in := &Integration{
		fs:    fsys,
		props: lakecheck.Properties{},
		log:   zap.NewNop().Sugar(),
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.timeout == 0 {
		in.timeout = in.props.GetDuration(PollTimeoutKey, DefaultPollTimeout)
	}
	if in.interval == 0 {
		in.interval = in.props.GetDuration(PollIntervalKey, DefaultPollInterval)
	}

	return in
}

// FS returns the filesystem under test.
func (in *Integration) FS() fsio.FS { return in.fs }

// Session returns the configured compute session, or nil when loads use
// the local engine.
func (in *Integration) Session() dataset.Session { return in.sess }

// Properties returns the property set the Integration was built with.
func (in *Integration) Properties() lakecheck.Properties { return in.props }

// DiffStats snapshots a counting filesystem and returns a function that
// reports the I/O done since the snapshot. Bracket an operation with it
// to measure just that operation's traffic.
func DiffStats(c *fsio.CountingFS) func() fsio.StorageStats {
	before := c.Stats()

	return func() fsio.StorageStats {
		return c.Stats().Sub(before)
	}
}
