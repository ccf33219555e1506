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

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/controller"
	"github.com/spf13/cobra"
)

func newInfoCmd(flags *globalFlags) *cobra.Command {
	var routes bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show controller properties and the node list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			s, err := startSession(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			done := make(chan struct{})
			s.ctrl.Update(func() { close(done) })
			if routes {
				s.ctrl.UpdateRoutingInfo()
			}
			if err := waitFor(cmd.Context(), done, cfg.Driver.MessageTimeout*10); err != nil {
				return err
			}
			if err := s.drain(cmd.Context()); err != nil {
				return err
			}
			printController(cmd.OutOrStdout(), s.ctrl, routes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&routes, "routes", false, "Also read and print the routing table")
	return cmd
}

func printController(w io.Writer, c *controller.Controller, routes bool) {
	p := c.Properties()
	section(w, "Controller",
		field("home id", fmt.Sprintf("%08x", p.HomeID)),
		field("node id", p.NodeID),
		field("library", fmt.Sprintf("%s (%s)", p.Version, zwave.LibraryTypeName(p.LibraryType))),
		field("serial api", fmt.Sprintf("%d.%d", p.SerialAPIVersion>>8, p.SerialAPIVersion&0xff)),
		field("product", fmt.Sprintf("%04x:%04x:%04x", p.Manufacturer, p.ProductType, p.ProductID)),
		field("chip", fmt.Sprintf("%x.%02x", p.ChipType, p.ChipVersion)),
		field("attributes", strings.Join(p.Attrs(), " ")),
	)

	failed := c.FailedNodes()
	lines := make([]string, 0, len(c.Nodes()))
	for _, n := range c.Nodes() {
		state := styles.good.Render("ok")
		switch {
		case n == c.NodeID():
			state = styles.dim.Render("controller")
		case slices.Contains(failed, n):
			state = styles.bad.Render("failed")
		}
		lines = append(lines, field(fmt.Sprintf("node %d", n), state))
	}
	section(w, "Nodes", lines...)

	if routes {
		section(w, "Routes", c.StringRoutes())
	}
}
