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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/capture"
	"github.com/ZaparooProject/go-zwave/config"
	"github.com/ZaparooProject/go-zwave/controller"
	"github.com/ZaparooProject/go-zwave/detection"
	"github.com/ZaparooProject/go-zwave/translator"
	"github.com/ZaparooProject/go-zwave/transport/uart"
	"github.com/ZaparooProject/go-zwave/transport/websocket"
	"golang.org/x/term"
)

const (
	initTimeout   = 10 * time.Second
	passwordEnv   = "ZWAVE_PASSWORD"
	detectTimeout = 5 * time.Second
)

// openTransportFn is swapped out by tests.
var openTransportFn = openTransport

// session is one connected stick with the standard stack on top.
type session struct {
	cfg        *config.Config
	transport  zwave.Transport
	driver     *zwave.Driver
	ctrl       *controller.Controller
	translator *translator.Translator
	closers    []io.Closer
}

// startSession connects, starts the driver and initializes the controller.
func startSession(ctx context.Context, cfg *config.Config) (s *session, err error) {
	if cfg.Log.SessionLog != "" {
		path, err := zwave.InitSessionLog(cfg.Log.SessionLog)
		if err != nil {
			return nil, fmt.Errorf("session log: %w", err)
		}
		zwave.Debugf("session log at %s", path)
	}

	t, err := openTransportFn(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s = &session{cfg: cfg, transport: t}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	s.driver = zwave.NewDriver(t, cfg.DriverConfig())
	if err := s.attachCapture(); err != nil {
		return nil, err
	}
	s.translator = translator.New(s.driver)
	s.ctrl = controller.New(s.driver, cfg.ControllerOptions()...)
	if err := s.driver.Start(ctx); err != nil {
		return nil, fmt.Errorf("start driver: %w", err)
	}

	s.ctrl.Initialize()
	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()
	if err := s.ctrl.WaitUntilInitialized(initCtx); err != nil {
		if derr := s.driver.Err(); derr != nil {
			return nil, fmt.Errorf("driver stopped: %w", derr)
		}
		return nil, err
	}
	return s, nil
}

func (s *session) attachCapture() error {
	if path := s.cfg.Capture.PcapPath; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create pcap: %w", err)
		}
		w, err := capture.NewPcapWriter(f)
		if err != nil {
			_ = f.Close()
			return err
		}
		s.driver.AddObserver(w)
		s.closers = append(s.closers, w)
	}
	if path := s.cfg.Capture.TracePath; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create trace: %w", err)
		}
		r := capture.NewTraceRecorder(f)
		s.driver.AddObserver(r)
		s.closers = append(s.closers, r)
	}
	return nil
}

// Close stops the driver, flushes captures and closes the transport.
func (s *session) Close() error {
	var errs []error
	if s.driver != nil {
		errs = append(errs, s.driver.Terminate())
	}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.transport.Close())
	if s.cfg.Log.SessionLog != "" {
		errs = append(errs, zwave.CloseSessionLog())
	}
	return errors.Join(errs...)
}

// drain waits until every queued message has resolved.
func (s *session) drain(ctx context.Context) error {
	if err := s.driver.WaitForDrain(ctx); err != nil {
		return fmt.Errorf("waiting for queue: %w", err)
	}
	return nil
}

func openTransport(ctx context.Context, cfg *config.Config) (zwave.Transport, error) {
	tc := cfg.Transport
	if tc.Kind == config.KindWebSocket {
		password := tc.Password
		if tc.Username != "" && password == "" {
			var err error
			if password, err = readPassword(os.Stdin, os.Stderr); err != nil {
				return nil, err
			}
		}
		t, err := websocket.Dial(ctx, websocket.Config{
			URL:        tc.URL,
			Username:   tc.Username,
			Password:   password,
			SkipVerify: tc.SkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", tc.URL, err)
		}
		return t, nil
	}

	port := tc.Port
	if port == "" {
		device, err := detectStick(ctx)
		if err != nil {
			return nil, err
		}
		zwave.Debugf("using %s", device)
		port = device.Path
	}
	t, err := uart.Open(ctx, port, cfg.UARTOptions()...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	return t, nil
}

// detectStick returns the most confident serial detection. DetectAll
// orders its result by confidence.
func detectStick(ctx context.Context) (detection.DeviceInfo, error) {
	opts := detection.DefaultOptions()
	opts.Transports = []string{"uart"}
	opts.Timeout = detectTimeout
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return detection.DeviceInfo{}, fmt.Errorf("auto-detect (use --port): %w", err)
	}
	return devices[0], nil
}

// readPassword takes the password from the environment or prompts without
// echo. Piped input is read as a plain line.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}
	_, _ = fmt.Fprint(prompt, "Password: ")
	defer func() { _, _ = fmt.Fprintln(prompt) }()

	fd := int(in.Fd()) //nolint:gosec // file descriptors fit in int
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
