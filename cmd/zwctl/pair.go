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
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/controller"
	"github.com/spf13/cobra"
)

var errPairingFailed = errors.New("pairing failed")

// pairingResult is the final event of a pairing operation.
type pairingResult struct {
	event controller.Event
	node  int
}

func newIncludeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "include",
		Short: "Put the controller into inclusion mode",
		Long:  "Put the controller into inclusion mode and wait for one device to join. Press the device's pairing button after starting.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPairingCmd(cmd, flags, "include", zwave.FuncAddNodeToNetwork,
				func(c *controller.Controller, ev controller.EventFunc) { c.AddNodeToNetwork(ev) },
				func(c *controller.Controller) { c.StopAddNodeToNetwork(func(controller.Activity, controller.Event, int) {}) })
		},
	}
}

func newExcludeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exclude",
		Short: "Put the controller into exclusion mode",
		Long:  "Put the controller into exclusion mode and wait for one device to leave.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPairingCmd(cmd, flags, "exclude", zwave.FuncRemoveNodeFromNetwork,
				func(c *controller.Controller, ev controller.EventFunc) { c.RemoveNodeFromNetwork(ev) },
				func(c *controller.Controller) { c.StopRemoveNodeFromNetwork() })
		},
	}
}

func runPairingCmd(
	cmd *cobra.Command,
	flags *globalFlags,
	name string,
	fn byte,
	start func(*controller.Controller, controller.EventFunc),
	stop func(*controller.Controller),
) error {
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
	if !s.ctrl.HasAPI(fn) {
		return fmt.Errorf("%s: %w", name, zwave.ErrAPINotSupported)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s\n", styles.title.Render("Z-Wave "+name))
	res, err := pair(ctx, s.ctrl, out, start, stop)
	if err != nil {
		return err
	}
	if err := s.drain(ctx); err != nil {
		return err
	}
	if res.event != controller.EventSuccess {
		return fmt.Errorf("%s: %w (%s)", name, errPairingFailed, res.event)
	}
	_, _ = fmt.Fprintf(out, "%s node %d\n", status(true), res.node)
	return nil
}

// pair runs one pairing operation and returns its final event. Events are
// printed as they arrive; cancelling ctx sends the matching stop request.
func pair(
	ctx context.Context,
	c *controller.Controller,
	out io.Writer,
	start func(*controller.Controller, controller.EventFunc),
	stop func(*controller.Controller),
) (pairingResult, error) {
	events := make(chan pairingResult, 16)
	start(c, func(activity controller.Activity, event controller.Event, node int) {
		_, _ = fmt.Fprintf(out, "%s %s %s node=%d\n",
			styles.dim.Render(time.Now().Format("15:04:05.000")), activity, event, node)
		select {
		case events <- pairingResult{event: event, node: node}:
		default:
		}
	})

	for {
		select {
		case r := <-events:
			switch r.event {
			case controller.EventSuccess, controller.EventFailed, controller.EventAborted:
				return r, nil
			case controller.EventStarted, controller.EventInProgress:
			}
		case <-ctx.Done():
			stop(c)
			return pairingResult{}, ctx.Err()
		}
	}
}
