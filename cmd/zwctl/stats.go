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

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Run a network refresh and print driver statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := startSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			done := make(chan struct{})
			s.ctrl.Update(func() { close(done) })
			if err := waitFor(ctx, done, cfg.Driver.MessageTimeout*10); err != nil {
				return err
			}
			if err := s.drain(ctx); err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func printStats(w io.Writer, s *session) {
	snap := s.driver.Stats()
	section(w, "Messages", snap.String())

	pacing := s.driver.PacingSnapshot()
	nodes := make([]int, 0, len(pacing))
	for n := range pacing {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	lines := []string{field("queued", fmt.Sprint(s.driver.QueueLen()))}
	for _, n := range nodes {
		lines = append(lines, field(fmt.Sprintf("node %d delay", n), pacing[n].String()))
	}
	section(w, "Queue", lines...)
}

// waitFor blocks until done is closed, ctx ends or timeout passes.
func waitFor(ctx context.Context, done <-chan struct{}, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("no answer within %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
