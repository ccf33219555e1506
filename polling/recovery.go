// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package polling

import (
	"context"
	"errors"
	"fmt"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
)

// ErrRecoveryFailed wraps the last error once a recoverer gives up.
var ErrRecoveryFailed = errors.New("recovery failed")

// Recoverer brings the link back after a sleep or a run of failures.
type Recoverer interface {
	AttemptRecovery(ctx context.Context) error
}

// ReopenFunc reopens the transport and restarts the driver on it.
type ReopenFunc func(ctx context.Context) error

// DefaultRecoverer first repeats the check, which is enough when the port
// survived. If that fails and a reopen is configured it reconnects and
// checks again. Rounds are separated by a fixed pause.
type DefaultRecoverer struct {
	mu       syncutil.Mutex
	check    RefreshFunc
	reopen   ReopenFunc
	pause    time.Duration
	attempts int
}

// NewDefaultRecoverer builds a recoverer. Non-positive backoff and
// maxAttempts fall back to 500ms and 3.
func NewDefaultRecoverer(check RefreshFunc, reopen ReopenFunc, backoff time.Duration, maxAttempts int) *DefaultRecoverer {
	r := &DefaultRecoverer{check: check, reopen: reopen, pause: backoff, attempts: maxAttempts}
	if r.pause <= 0 {
		r.pause = 500 * time.Millisecond
	}
	if r.attempts <= 0 {
		r.attempts = 3
	}
	return r
}

// AttemptRecovery runs up to the configured number of rounds and returns
// nil as soon as the check passes.
func (r *DefaultRecoverer) AttemptRecovery(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for round := 1; round <= r.attempts; round++ {
		if round > 1 {
			t := time.NewTimer(r.pause)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("recovery: %w", ctx.Err())
			case <-t.C:
			}
		}
		if err = r.round(ctx); err == nil {
			return nil
		}
		zwave.Debugf("recovery round %d/%d: %v", round, r.attempts, err)
	}
	return fmt.Errorf("%w: %w", ErrRecoveryFailed, err)
}

func (r *DefaultRecoverer) round(ctx context.Context) error {
	err := r.check(ctx)
	if err == nil || r.reopen == nil {
		return err
	}
	if rerr := r.reopen(ctx); rerr != nil {
		return rerr
	}
	return r.check(ctx)
}
