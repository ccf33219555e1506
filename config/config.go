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

// Package config loads the YAML settings shared by the CLI commands.
//
// Durations are Go duration strings ("150ms", "1m"). Keys left out of a
// file keep their defaults; unknown keys are an error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/controller"
	"github.com/ZaparooProject/go-zwave/polling"
	"github.com/ZaparooProject/go-zwave/transport/uart"
	"gopkg.in/yaml.v3"
)

// Transport kinds
const (
	KindUART      = "uart"
	KindWebSocket = "websocket"
)

// The stick stores serial API timeouts in one byte of 10ms units.
const maxSerialTimeout = 255 * 10 * time.Millisecond

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// Config is the root of the YAML document.
type Config struct {
	Transport Transport `yaml:"transport"`
	Capture   Capture   `yaml:"capture"`
	Log       Log       `yaml:"log"`
	Driver    Driver    `yaml:"driver"`
	Network   Network   `yaml:"network"`
}

// Transport selects and addresses the link to the stick.
type Transport struct {
	// Kind is "uart" or "websocket".
	Kind string `yaml:"kind"`
	// Port is the serial device. Empty means auto-detect.
	Port     string `yaml:"port,omitempty"`
	URL      string `yaml:"url,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	// ResetPin is a GPIO line name pulsed before opening the port, for
	// modules wired to a header rather than USB.
	ResetPin   string `yaml:"reset_pin,omitempty"`
	BaudRate   int    `yaml:"baud_rate"`
	SkipVerify bool   `yaml:"skip_verify,omitempty"`
}

// Driver tunes the link layer.
type Driver struct {
	AckTimeout              time.Duration `yaml:"ack_timeout"`
	ByteTimeout             time.Duration `yaml:"byte_timeout"`
	MessageTimeout          time.Duration `yaml:"message_timeout"`
	PacingStep              time.Duration `yaml:"pacing_step"`
	PacingCeiling           time.Duration `yaml:"pacing_ceiling"`
	LegacyRequestCompletion bool          `yaml:"legacy_request_completion"`
}

// Network holds settings for the node layer.
type Network struct {
	RefreshInterval    time.Duration `yaml:"refresh_interval"`
	MaxRefreshInterval time.Duration `yaml:"max_refresh_interval"`
	SecurePairing      bool          `yaml:"secure_pairing"`
}

// Capture names the files traffic is recorded to. Empty disables.
type Capture struct {
	PcapPath  string `yaml:"pcap_path,omitempty"`
	TracePath string `yaml:"trace_path,omitempty"`
}

// Log configures debug output.
type Log struct {
	// SessionLog is a directory for per-session debug logs.
	SessionLog string `yaml:"session_log,omitempty"`
	Debug      bool   `yaml:"debug"`
}

// Default returns the built-in settings.
func Default() *Config {
	d := zwave.DefaultDriverConfig()
	p := polling.DefaultConfig()
	return &Config{
		Transport: Transport{Kind: KindUART, BaudRate: uart.DefaultBaudRate},
		Driver: Driver{
			AckTimeout:              controller.DefaultACKTimeout,
			ByteTimeout:             controller.DefaultByteTimeout,
			MessageTimeout:          zwave.DefaultMessageTimeout,
			PacingStep:              d.PacingStep,
			PacingCeiling:           d.PacingCeiling,
			LegacyRequestCompletion: d.LegacyRequestCompletion,
		},
		Network: Network{
			RefreshInterval:    p.Interval,
			MaxRefreshInterval: p.MaxInterval,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the settings for values the stack cannot use.
func (c *Config) Validate() error {
	switch c.Transport.Kind {
	case KindUART:
		if c.Transport.BaudRate <= 0 {
			return fmt.Errorf("%w: transport.baud_rate must be positive", ErrInvalid)
		}
	case KindWebSocket:
		u, err := url.Parse(c.Transport.URL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return fmt.Errorf("%w: transport.url %q is not a ws:// or wss:// URL", ErrInvalid, c.Transport.URL)
		}
	default:
		return fmt.Errorf("%w: transport.kind %q (want %s or %s)", ErrInvalid, c.Transport.Kind, KindUART, KindWebSocket)
	}

	d := c.Driver
	if d.AckTimeout < 10*time.Millisecond || d.AckTimeout > maxSerialTimeout {
		return fmt.Errorf("%w: driver.ack_timeout %s out of range", ErrInvalid, d.AckTimeout)
	}
	if d.ByteTimeout < 10*time.Millisecond || d.ByteTimeout > maxSerialTimeout {
		return fmt.Errorf("%w: driver.byte_timeout %s out of range", ErrInvalid, d.ByteTimeout)
	}
	if d.MessageTimeout <= 0 {
		return fmt.Errorf("%w: driver.message_timeout must be positive", ErrInvalid)
	}
	if d.PacingStep < 0 || d.PacingCeiling < d.PacingStep {
		return fmt.Errorf("%w: driver.pacing_ceiling must be at least pacing_step", ErrInvalid)
	}

	n := c.Network
	if n.RefreshInterval < 0 || (n.RefreshInterval > 0 && n.MaxRefreshInterval < n.RefreshInterval) {
		return fmt.Errorf("%w: network.max_refresh_interval must be at least refresh_interval", ErrInvalid)
	}
	return nil
}

// DriverConfig returns the link settings for zwave.NewDriver.
func (c *Config) DriverConfig() zwave.DriverConfig {
	cfg := zwave.DefaultDriverConfig()
	cfg.PacingStep = c.Driver.PacingStep
	cfg.PacingCeiling = c.Driver.PacingCeiling
	cfg.LegacyRequestCompletion = c.Driver.LegacyRequestCompletion
	switch c.Transport.Kind {
	case KindWebSocket:
		cfg.Port = c.Transport.URL
	default:
		cfg.Port = c.Transport.Port
	}
	return cfg
}

// ControllerOptions returns the options for controller.New.
func (c *Config) ControllerOptions() []controller.Option {
	return []controller.Option{
		controller.WithMessageTimeout(c.Driver.MessageTimeout),
		controller.WithSerialTimeouts(c.Driver.AckTimeout, c.Driver.ByteTimeout),
	}
}

// PollingConfig returns the refresh schedule. A zero interval disables
// background refresh and yields nil.
func (c *Config) PollingConfig() *polling.Config {
	if c.Network.RefreshInterval == 0 {
		return nil
	}
	p := polling.DefaultConfig()
	p.Interval = c.Network.RefreshInterval
	p.MaxInterval = c.Network.MaxRefreshInterval
	return p
}

// UARTOptions returns the options for opening the serial port.
func (c *Config) UARTOptions() []uart.Option {
	opts := []uart.Option{uart.WithBaudRate(c.Transport.BaudRate)}
	if c.Transport.ResetPin != "" {
		opts = append(opts, uart.WithResetPin(c.Transport.ResetPin))
	}
	return opts
}
