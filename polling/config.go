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

// Package polling refreshes the network view on a timer.
package polling

import "time"

// SleepRecoveryConfig tunes what happens after the host wakes from sleep.
// The stick may have been re-enumerated and unsolicited reports lost, so a
// tick that arrives much later than scheduled triggers a recovery.
type SleepRecoveryConfig struct {
	Enabled bool
	// TimeDiscontinuityThreshold is how late a tick must be to count as a
	// wake-up.
	TimeDiscontinuityThreshold time.Duration
	MaxRecoveryAttempts        int
	RecoveryBackoff            time.Duration
}

// DefaultSleepRecoveryConfig allows two seconds of slack and three
// recovery attempts half a second apart.
func DefaultSleepRecoveryConfig() SleepRecoveryConfig {
	return SleepRecoveryConfig{
		Enabled:                    true,
		TimeDiscontinuityThreshold: 2 * time.Second,
		MaxRecoveryAttempts:        3,
		RecoveryBackoff:            500 * time.Millisecond,
	}
}

// DetectSleep reports whether a tick expected after interval but seen after
// elapsed means the host slept in between.
func (cfg SleepRecoveryConfig) DetectSleep(elapsed, interval time.Duration) bool {
	return cfg.Enabled && elapsed-interval > cfg.TimeDiscontinuityThreshold
}

// Config is the refresh schedule. Failed refreshes double the interval up
// to MaxInterval.
type Config struct {
	Interval      time.Duration
	MaxInterval   time.Duration
	SleepRecovery SleepRecoveryConfig
}

// DefaultConfig refreshes once a minute.
func DefaultConfig() *Config {
	return &Config{
		Interval:      time.Minute,
		MaxInterval:   10 * time.Minute,
		SleepRecovery: DefaultSleepRecoveryConfig(),
	}
}
