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
	"strconv"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/translator"
	"github.com/spf13/cobra"
)

const verifyTimeout = 5 * time.Second

func newSendCmd(flags *globalFlags) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "send <node> <level>",
		Short: "Send a Basic Set to a node",
		Example: `  zwctl send 5 255        # on
  zwctl send 5 0 --verify # off, then read the level back`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := parseNode(args[0])
			if err != nil {
				return err
			}
			level, err := strconv.Atoi(args[1])
			if err != nil || level < 0 || level > 0xff {
				return fmt.Errorf("level %q must be 0-255", args[1])
			}
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			s, err := startSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			return runSend(cmd.Context(), s, node, level, verify, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Read the level back with a Basic Get")
	return cmd
}

func runSend(ctx context.Context, s *session, node, level int, verify bool, out io.Writer) error {
	reports := make(chan int, 1)
	if verify {
		s.translator.AddListener(translator.ListenerFunc(
			func(endpoint int, _ time.Time, key command.Key, values command.Values) {
				if endpoint != node || key != command.BasicReport {
					return
				}
				if v, ok := values.Int("level"); ok {
					select {
					case reports <- v:
					default:
					}
				}
			}))
	}

	keys := []command.Key{command.BasicSet}
	if verify {
		keys = append(keys, command.BasicGet)
	}
	for _, key := range keys {
		values := command.Values{}
		if key == command.BasicSet {
			values["level"] = level
		}
		raw, err := command.Assemble(key, values)
		if err != nil {
			return err
		}
		entry, err := exchange(ctx, s, nodeTarget(node, raw))
		_, _ = fmt.Fprintf(out, "%s node %d %s (%s)\n",
			status(err == nil), node, command.StringifyCommand(key), entry.Duration.Round(time.Millisecond))
		if err != nil {
			return fmt.Errorf("node %d: %w", node, err)
		}
	}
	if !verify {
		return nil
	}

	timer := time.NewTimer(verifyTimeout)
	defer timer.Stop()
	select {
	case got := <-reports:
		_, _ = fmt.Fprintf(out, "%s node %d reports level %d\n", status(got == level), node, got)
	case <-timer.C:
		return fmt.Errorf("node %d: no Basic Report within %s", node, verifyTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func parseNode(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > zwave.MaxNodes {
		return 0, fmt.Errorf("node %q must be 1-%d", s, zwave.MaxNodes)
	}
	return n, nil
}
