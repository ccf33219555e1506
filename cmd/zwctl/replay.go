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
	"os"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/capture"
	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/spf13/cobra"
)

func newReplayCmd() *cobra.Command {
	var decode bool
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Print a recorded pcap or trace file",
		Long: `Print a recorded pcap or trace file.

Both formats written by --pcap and --trace are accepted; the format is
detected from the file contents. No controller is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			records, err := capture.ReadAll(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			printRecords(cmd.OutOrStdout(), records, decode)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&decode, "decode", "d", false, "Decode application commands")
	return cmd
}

func printRecords(w io.Writer, records []capture.Record, decode bool) {
	var start time.Time
	for i, r := range records {
		if i == 0 {
			start = r.Time
		}
		offset := r.Time.Sub(start)
		line := fmt.Sprintf("%10s %s %s",
			styles.dim.Render(fmt.Sprintf("+%.3fs", offset.Seconds())),
			r.Direction, frame.Describe(r.Frame))
		if decode {
			if s := decodeCommand(r.Frame); s != "" {
				line += "\n" + styles.value.Render("           "+s)
			}
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintf(w, "%s\n", styles.dim.Render(fmt.Sprintf("%d frames", len(records))))
}

// decodeCommand renders the application command carried by an
// APPLICATION_COMMAND_HANDLER request, or "" for any other frame.
func decodeCommand(f []byte) string {
	if len(f) < frame.MinFrameLength || frame.Direction(f) != frame.Request ||
		frame.Function(f) != zwave.FuncApplicationCommandHandler {
		return ""
	}
	p := frame.Payload(f)
	if len(p) < 3 || 3+int(p[2]) > len(p) {
		return ""
	}
	node := p[1]
	key, values, err := command.ParseCommand(p[3 : 3+int(p[2])])
	if err != nil {
		return fmt.Sprintf("node %d: %v", node, err)
	}
	return fmt.Sprintf("node %d: %s %s", node, command.StringifyCommand(key), formatValues(values))
}
