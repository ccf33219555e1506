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

// Command zwctl inspects and drives a Z-Wave controller stick.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/config"
	_ "github.com/ZaparooProject/go-zwave/detection/uart"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags are the persistent flags shared by every command. Set flags
// override the config file.
type globalFlags struct {
	configPath string
	port       string
	url        string
	username   string
	pcap       string
	trace      string
	baud       int
	debug      bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "zwctl",
		Short: "Z-Wave controller tool",
		Long: `zwctl talks to a Z-Wave controller over its serial API.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]   (auto-detected when omitted)
  WebSocket: --url wss://host/path [--username user]

For WebSocket authentication the password is read from ZWAVE_PASSWORD or
prompted for. There is no --password flag so it stays out of shell history.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	addGlobalFlags(root, flags)

	root.AddCommand(
		newDetectCmd(),
		newInfoCmd(flags),
		newMonitorCmd(flags),
		newStatsCmd(flags),
		newSendCmd(flags),
		newIncludeCmd(flags),
		newExcludeCmd(flags),
		newStressCmd(flags),
		newReplayCmd(),
	)
	return root
}

func addGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&flags.port, "port", "p", "", "Serial port device")
	pf.IntVarP(&flags.baud, "baud", "b", 0, "Baud rate (serial only)")
	pf.StringVarP(&flags.url, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	pf.StringVar(&flags.username, "username", "", "Username for HTTP Basic auth")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug output")
	pf.StringVar(&flags.pcap, "pcap", "", "Record traffic to a pcap file")
	pf.StringVar(&flags.trace, "trace", "", "Record traffic to a CBOR trace file")
}

// loadConfig reads the config file, if any, and applies the flags.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		var err error
		if cfg, err = config.Load(flags.configPath); err != nil {
			return nil, err
		}
	}

	set := cmd.Flags().Changed
	if set("url") {
		cfg.Transport.Kind = config.KindWebSocket
		cfg.Transport.URL = flags.url
	}
	if set("port") {
		cfg.Transport.Kind = config.KindUART
		cfg.Transport.Port = flags.port
	}
	if set("baud") {
		cfg.Transport.BaudRate = flags.baud
	}
	if set("username") {
		cfg.Transport.Username = flags.username
	}
	if set("pcap") {
		cfg.Capture.PcapPath = flags.pcap
	}
	if set("trace") {
		cfg.Capture.TracePath = flags.trace
	}
	if set("debug") {
		cfg.Log.Debug = flags.debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	zwave.SetDebugEnabled(cfg.Log.Debug)
	return cfg, nil
}

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		_, _ = fmt.Fprintln(os.Stderr, styles.bad.Render("error:"), err)
		return 1
	}
	return 0
}
