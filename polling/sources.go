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

	"github.com/ZaparooProject/go-zwave/node"
)

// ErrRefreshTimeout is returned when the controller did not finish an
// update in time.
var ErrRefreshTimeout = errors.New("refresh timed out")

// Updater is the part of the controller a refresh drives.
type Updater interface {
	Update(done func())
}

// ControllerRefresh re-reads the node list and failed states and waits for
// the update to finish.
func ControllerRefresh(u Updater, timeout time.Duration) RefreshFunc {
	return func(ctx context.Context) error {
		done := make(chan struct{})
		u.Update(func() { close(done) })
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-done:
			return nil
		case <-timer.C:
			return fmt.Errorf("%w after %s", ErrRefreshTimeout, timeout)
		case <-ctx.Done():
			return fmt.Errorf("controller refresh: %w", ctx.Err())
		}
	}
}

// EndpointRefresh queues a smart refresh for every endpoint that is not
// failed. The queries complete asynchronously.
func EndpointRefresh(set *node.EndpointSet) RefreshFunc {
	return func(context.Context) error {
		for _, e := range set.All() {
			if e.IsController() || e.IsFailed() {
				continue
			}
			e.SmartRefresh()
		}
		return nil
	}
}

// Chain runs fns in order and stops at the first error.
func Chain(fns ...RefreshFunc) RefreshFunc {
	return func(ctx context.Context) error {
		for _, fn := range fns {
			if err := fn(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
