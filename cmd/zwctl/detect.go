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
	"maps"
	"slices"
	"strings"

	"github.com/ZaparooProject/go-zwave/detection"
	"github.com/spf13/cobra"
)

func newDetectCmd() *cobra.Command {
	var (
		mode   string
		ignore []string
	)
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "List attached Z-Wave controllers",
		Example: `  zwctl detect
  zwctl detect --mode full --ignore /dev/ttyAMA0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := parseMode(mode)
			if err != nil {
				return err
			}
			opts := detection.DefaultOptions()
			opts.Mode = m
			opts.EnableCache = false
			opts.IgnorePaths = ignore
			devices, err := detection.DetectAll(cmd.Context(), &opts)
			if err != nil {
				return err
			}
			printDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "safe", "Detection mode: passive, safe or full")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Ports to skip")
	return cmd
}

func parseMode(s string) (detection.Mode, error) {
	switch strings.ToLower(s) {
	case "passive":
		return detection.Passive, nil
	case "safe":
		return detection.Safe, nil
	case "full":
		return detection.Full, nil
	default:
		return 0, fmt.Errorf("unknown detection mode %q", s)
	}
}

func printDevices(w io.Writer, devices []detection.DeviceInfo) {
	for _, d := range devices {
		lines := []string{field("name", d.Name), field("confidence", confidenceLabel(d.Confidence))}
		for _, k := range slices.Sorted(maps.Keys(d.Metadata)) {
			lines = append(lines, field(k, d.Metadata[k]))
		}
		section(w, d.Path, lines...)
	}
}

func confidenceLabel(c detection.Confidence) string {
	switch c {
	case detection.High:
		return styles.good.Render("high")
	case detection.Medium:
		return styles.warn.Render("medium")
	default:
		return styles.dim.Render("low")
	}
}
