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
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/internal/syncutil"
	"github.com/ZaparooProject/go-zwave/node"
	"github.com/ZaparooProject/go-zwave/polling"
	"github.com/ZaparooProject/go-zwave/security"
	"github.com/ZaparooProject/go-zwave/translator"
	"github.com/spf13/cobra"
)

func newMonitorCmd(flags *globalFlags) *cobra.Command {
	var noPing bool
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print every command the network sends until interrupted",
		Long: `Print every command the network sends until interrupted.

All nodes are pinged on startup. When network.refresh_interval is set in the
config file the network is refreshed in the background, backing off while
nothing changes.`,
		Args: cobra.NoArgs,
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

			out := cmd.OutOrStdout()
			var opts []node.SetOption
			if cfg.Network.SecurePairing {
				opts = append(opts, node.WithSecurityHook(security.NewHandshake()))
			}
			set := node.NewEndpointSet(s.translator, s.ctrl.NodeID(), opts...)
			s.translator.AddListener(set)
			s.translator.AddListener(newEventPrinter(out))

			if !noPing {
				for _, n := range s.ctrl.Nodes() {
					if n != s.ctrl.NodeID() {
						s.translator.Ping(n, 3, false, "startup")
					}
				}
			}

			if pc := cfg.PollingConfig(); pc != nil {
				refresh := polling.Chain(
					polling.ControllerRefresh(s.ctrl, cfg.Driver.MessageTimeout*10),
					polling.EndpointRefresh(set),
				)
				check := polling.ControllerRefresh(s.ctrl, cfg.Driver.MessageTimeout*10)
				actor := polling.NewRefreshActor(refresh, pc,
					polling.WithRecoverer(polling.NewDefaultRecoverer(check, nil,
						pc.SleepRecovery.RecoveryBackoff, pc.SleepRecovery.MaxRecoveryAttempts)))
				if err := actor.Start(ctx); err != nil {
					return err
				}
				defer func() { _ = actor.Stop(ctx) }()
			}

			_, _ = fmt.Fprintf(out, "%s\n", styles.title.Render("monitoring, press Ctrl-C to stop"))
			select {
			case <-ctx.Done():
			case <-s.driver.Done():
			}
			printStats(out, s)
			printEndpoints(out, set)
			if err := s.driver.Err(); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noPing, "no-ping", false, "Do not ping nodes on startup")
	return cmd
}

// eventPrinter writes one line per translator event. Listeners run on the
// dispatch goroutine, the mutex keeps lines whole when output is shared.
type eventPrinter struct {
	out io.Writer
	mu  syncutil.Mutex
}

func newEventPrinter(out io.Writer) *eventPrinter {
	return &eventPrinter{out: out}
}

func (p *eventPrinter) OnEvent(endpoint int, ts time.Time, key command.Key, values command.Values) {
	line := fmt.Sprintf("%s %-8s %-36s %s",
		styles.dim.Render(ts.Format("15:04:05.000")),
		translator.EndpointName(endpoint),
		command.StringifyCommand(key),
		formatValues(values))
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, line)
}

// formatValues renders values as sorted name=value pairs.
func formatValues(values command.Values) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, values[name]))
	}
	return strings.Join(parts, " ")
}

func printEndpoints(w io.Writer, set *node.EndpointSet) {
	lines := make([]string, 0, set.Len())
	for _, e := range set.All() {
		lines = append(lines, e.String())
	}
	if len(lines) == 0 {
		lines = append(lines, styles.dim.Render("no endpoints seen"))
	}
	section(w, "Endpoints", lines...)
}
