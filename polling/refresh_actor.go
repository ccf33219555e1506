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
	"sync"
	"sync/atomic"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
)

// RefreshFunc performs one refresh cycle.
type RefreshFunc func(ctx context.Context) error

// RefreshMetrics tracks operational metrics for RefreshActor
type RefreshMetrics struct {
	Cycles      int64         // Total number of refresh cycles
	Errors      int64         // Number of failed cycles
	Recoveries  int64         // Number of recovery attempts
	LastLatency time.Duration // Duration of the last cycle
	Interval    time.Duration // Current adaptive interval
}

// RefreshActor runs a RefreshFunc on an adaptive interval. Failures back
// the interval off up to MaxInterval; a success restores it.
type RefreshActor struct {
	refresh   RefreshFunc
	recoverer Recoverer
	config    *Config
	trigger   chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex

	cycles      atomic.Int64
	errors      atomic.Int64
	recoveries  atomic.Int64
	lastLatency atomic.Int64
	interval    atomic.Int64
	running     atomic.Bool
}

// ActorOption configures a RefreshActor.
type ActorOption func(*RefreshActor)

// WithRecoverer runs r when a host sleep is detected.
func WithRecoverer(r Recoverer) ActorOption {
	return func(a *RefreshActor) { a.recoverer = r }
}

// NewRefreshActor creates an actor. A nil config uses DefaultConfig.
func NewRefreshActor(refresh RefreshFunc, config *Config, opts ...ActorOption) *RefreshActor {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxInterval < config.Interval {
		config.MaxInterval = config.Interval
	}
	a := &RefreshActor{
		refresh: refresh,
		config:  config,
		trigger: make(chan struct{}, 1),
	}
	a.interval.Store(int64(config.Interval))
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start launches the loop. The first refresh runs immediately. Starting a
// running actor is a no-op.
func (a *RefreshActor) Start(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()
	a.wg.Add(1)
	go a.loop(ctx)
	return nil
}

// Stop ends the loop and waits for an in-progress cycle to return.
func (a *RefreshActor) Stop(_ context.Context) error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
	return nil
}

// Trigger requests a refresh now. Requests made while one is pending
// coalesce.
func (a *RefreshActor) Trigger() {
	select {
	case a.trigger <- struct{}{}:
	default:
	}
}

// IsRunning reports whether the loop is active.
func (a *RefreshActor) IsRunning() bool {
	return a.running.Load()
}

func (a *RefreshActor) loop(ctx context.Context) {
	defer a.wg.Done()
	defer a.running.Store(false)

	a.cycle(ctx)
	last := time.Now()
	timer := time.NewTimer(a.CurrentInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.trigger:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
			interval := a.CurrentInterval()
			if a.config.SleepRecovery.DetectSleep(time.Since(last), interval) {
				a.recover(ctx)
			}
		}
		a.cycle(ctx)
		last = time.Now()
		timer.Reset(a.CurrentInterval())
	}
}

func (a *RefreshActor) recover(ctx context.Context) {
	if a.recoverer == nil {
		return
	}
	zwave.Debugln("host sleep detected, recovering link")
	a.recoveries.Add(1)
	if err := a.recoverer.AttemptRecovery(ctx); err != nil {
		zwave.Debugf("recovery: %v", err)
	}
}

// cycle runs one refresh and adapts the interval.
func (a *RefreshActor) cycle(ctx context.Context) {
	if a.refresh == nil || ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := a.refresh(ctx)
	a.lastLatency.Store(int64(time.Since(start)))
	a.cycles.Add(1)

	if err != nil {
		a.errors.Add(1)
		next := min(2*a.CurrentInterval(), a.config.MaxInterval)
		a.interval.Store(int64(next))
		zwave.Debugf("refresh failed, next in %s: %v", next, err)
		return
	}
	a.interval.Store(int64(a.config.Interval))
}

// GetMetrics returns current operational metrics
func (a *RefreshActor) GetMetrics() RefreshMetrics {
	return RefreshMetrics{
		Cycles:      a.cycles.Load(),
		Errors:      a.errors.Load(),
		Recoveries:  a.recoveries.Load(),
		LastLatency: time.Duration(a.lastLatency.Load()),
		Interval:    a.CurrentInterval(),
	}
}

// CurrentInterval returns the current adaptive interval
func (a *RefreshActor) CurrentInterval() time.Duration {
	return time.Duration(a.interval.Load())
}
