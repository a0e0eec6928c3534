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

package cloudtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/lakecheck/lakecheck-go/fsio"
)

// ErrConsistencyTimeout reports a probe that never succeeded within the
// poll timeout. It always wraps the last failure the probe observed.
var ErrConsistencyTimeout = errors.New("path not found or inconsistent within timeout")

// Eventually retries probe at a fixed interval until it succeeds or
// timeout elapses. Object stores may serve stale status and listings
// shortly after a write, so "not found" from a probe is retried rather
// than trusted.
func Eventually[T any](ctx context.Context, timeout, interval time.Duration, probe func() (T, error)) (T, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The last probe failure is tracked here rather than taken from the
	// retry library, which reports the context error once the deadline
	// interrupts a delay.
	var lastErr error
	v, err := retry.DoWithData(func() (T, error) {
		v, err := probe()
		if err != nil {
			lastErr = err
		}

		return v, err
	},
		retry.Context(waitCtx),
		retry.Attempts(0),
		retry.Delay(interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		var zero T
		if ctx.Err() != nil {
			// The caller's own context ended first.
			return zero, ctx.Err()
		}
		if lastErr == nil {
			lastErr = err
		}

		return zero, fmt.Errorf("%w: %w", ErrConsistencyTimeout, lastErr)
	}

	return v, nil
}

// EventuallyStat polls the configured filesystem until the named path
// exists and returns its status.
func (in *Integration) EventuallyStat(ctx context.Context, name string) (fsio.FileStatus, error) {
	return Eventually(ctx, in.timeout, in.interval, func() (fsio.FileStatus, error) {
		return in.fs.Stat(name)
	})
}

// EventuallyList polls the configured filesystem until the named
// directory can be listed and returns its immediate children.
func (in *Integration) EventuallyList(ctx context.Context, name string) ([]fsio.FileStatus, error) {
	return Eventually(ctx, in.timeout, in.interval, func() ([]fsio.FileStatus, error) {
		return in.fs.List(name)
	})
}
