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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/command"
	"github.com/ZaparooProject/go-zwave/internal/frame"
	"github.com/spf13/cobra"
)

var (
	errNoReply     = errors.New("no reply")
	errRejected    = errors.New("rejected by controller")
	errTransmitNOK = errors.New("transmit failed")
)

// StressTestResult holds the outcome for one target over all rounds.
type StressTestResult struct {
	Target    string
	CrashFile string
	Passed    int
	Failed    int
	Duration  time.Duration
}

// Success reports whether every round passed.
func (r *StressTestResult) Success() bool { return r.Failed == 0 && r.Passed > 0 }

// CrashReport contains everything needed to debug a failed exchange.
type CrashReport struct {
	Timestamp    time.Time  `json:"timestamp"`
	Target       string     `json:"target"`
	Operation    string     `json:"operation"`
	Error        string     `json:"error"`
	HomeID       string     `json:"home_id"`
	Version      string     `json:"version"`
	Stats        string     `json:"stats"`
	FrameTrace   []string   `json:"frame_trace,omitempty"`
	OperationLog []LogEntry `json:"operation_log"`
	Round        int        `json:"round"`
}

// LogEntry represents a single exchange in the log.
type LogEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	DataHex   string        `json:"data_hex,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
}

// stressTarget is one thing exercised each round: the controller itself or
// a node reached over the air.
type stressTarget struct {
	name    string
	payload func() []byte
	check   func(reply []byte) error
	node    int
}

type stressOptions struct {
	crashDir string
	nodes    []int
	rounds   int
	interval time.Duration
}

func newStressCmd(flags *globalFlags) *cobra.Command {
	opts := stressOptions{}
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Exercise the serial link and nodes repeatedly",
		Long: `Exercise the serial link and nodes repeatedly.

Every round asks the controller for its version and sends a No Operation to
each selected node. The first failure of a target writes a crash report with
the recent frame trace.`,
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

			done := make(chan struct{})
			s.ctrl.Update(func() { close(done) })
			if err := waitFor(ctx, done, cfg.Driver.MessageTimeout*10); err != nil {
				return err
			}
			if len(opts.nodes) == 0 {
				for _, n := range s.ctrl.Nodes() {
					if n != s.ctrl.NodeID() && !slices.Contains(s.ctrl.FailedNodes(), n) {
						opts.nodes = append(opts.nodes, n)
					}
				}
			}
			results := runStress(ctx, s, opts, cmd.OutOrStdout())
			printFinalSummary(cmd.OutOrStdout(), results)
			for _, r := range results {
				if !r.Success() {
					return fmt.Errorf("%s: %d of %d rounds failed", r.Target, r.Failed, r.Passed+r.Failed)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.rounds, "rounds", "n", 10, "Number of rounds")
	cmd.Flags().IntSliceVar(&opts.nodes, "nodes", nil, "Nodes to exercise (default: all nodes that are not failed)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "Pause between rounds")
	cmd.Flags().StringVar(&opts.crashDir, "crash-dir", ".", "Directory for crash reports")
	return cmd
}

func stressTargets(nodes []int) []stressTarget {
	targets := []stressTarget{{
		name:    "controller",
		node:    zwave.NodeNone,
		payload: func() []byte { return zwave.MakeRawMessage(zwave.FuncGetVersion, nil) },
		check:   checkVersionReply,
	}}
	nop := []byte{byte(command.NoOperationSet.Class), command.NoOperationSet.Command}
	for _, n := range nodes {
		targets = append(targets, nodeTarget(n, nop))
	}
	return targets
}

// nodeTarget sends cmd to node and requires an acknowledged transmit.
func nodeTarget(node int, cmd []byte) stressTarget {
	return stressTarget{
		name: fmt.Sprintf("node %d", node),
		node: node,
		payload: func() []byte {
			return zwave.MakeRawCommandWithID(byte(node), cmd, zwave.XmitOptions)
		},
		check: checkSendDataReply,
	}
}

func checkVersionReply(reply []byte) error {
	if reply == nil {
		return errNoReply
	}
	if len(frame.Payload(reply)) < 2 {
		return fmt.Errorf("short version reply % x", reply)
	}
	return nil
}

// checkSendDataReply accepts only a transmit callback with an OK status. A
// RESPONSE resolving the message means the controller refused the frame.
func checkSendDataReply(reply []byte) error {
	if reply == nil {
		return errNoReply
	}
	if frame.Direction(reply) == frame.Response {
		return errRejected
	}
	p := frame.Payload(reply)
	if len(p) < 2 {
		return fmt.Errorf("short transmit callback % x", reply)
	}
	if p[1] != zwave.TransmitCompleteOK {
		return fmt.Errorf("%w: status %#02x", errTransmitNOK, p[1])
	}
	return nil
}

func runStress(ctx context.Context, s *session, opts stressOptions, out io.Writer) []*StressTestResult {
	targets := stressTargets(opts.nodes)
	results := make([]*StressTestResult, len(targets))
	logs := make([][]LogEntry, len(targets))
	for i, t := range targets {
		results[i] = &StressTestResult{Target: t.name}
	}

	_, _ = fmt.Fprintf(out, "%s\n", styles.title.Render(
		fmt.Sprintf("Stress test: %d rounds, %d targets", opts.rounds, len(targets))))

	for round := 1; round <= opts.rounds; round++ {
		if ctx.Err() != nil {
			break
		}
		_, _ = fmt.Fprintf(out, "[round %d]", round)
		for i, t := range targets {
			entry, _ := exchange(ctx, s, t)
			logs[i] = append(logs[i], entry)
			results[i].Duration += entry.Duration
			if entry.Success {
				results[i].Passed++
				_, _ = fmt.Fprintf(out, "  %s %s", t.name, styles.good.Render("OK"))
				continue
			}
			results[i].Failed++
			_, _ = fmt.Fprintf(out, "  %s %s", t.name, styles.bad.Render("FAIL"))
			if results[i].CrashFile == "" {
				report := createCrashReport(s, t, round, entry, logs[i])
				if name, err := writeCrashReportToFile(opts.crashDir, report); err != nil {
					_, _ = fmt.Fprintf(out, "\n  [!] crash report: %v\n", err)
				} else {
					results[i].CrashFile = name
				}
			}
		}
		_, _ = fmt.Fprintln(out)
		if opts.interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.interval):
			}
		}
	}
	return results
}

// exchange sends one message for t and waits for it to resolve.
func exchange(ctx context.Context, s *session, t stressTarget) (LogEntry, error) {
	payload := t.payload()
	entry := LogEntry{
		Timestamp: time.Now(),
		Operation: t.name + " " + frame.Describe(payload),
		DataHex:   formatHexString(payload),
	}
	replies := make(chan []byte, 1)
	prio := zwave.ControllerPriority()
	if t.node != zwave.NodeNone {
		prio = zwave.NodePriorityHi(t.node)
	}
	s.driver.SendMessage(zwave.NewMessage(payload, prio, func(reply []byte) { replies <- reply }, t.node))

	var err error
	select {
	case reply := <-replies:
		err = t.check(reply)
	case <-ctx.Done():
		err = ctx.Err()
	case <-s.driver.Done():
		err = s.driver.Err()
		if err == nil {
			err = zwave.ErrDriverStopped
		}
	}
	entry.Duration = time.Since(entry.Timestamp)
	entry.Success = err == nil
	if err != nil {
		entry.Error = err.Error()
	}
	return entry, err
}

func createCrashReport(s *session, t stressTarget, round int, failed LogEntry, log []LogEntry) *CrashReport {
	p := s.ctrl.Properties()
	report := &CrashReport{
		Timestamp:    failed.Timestamp,
		Target:       t.name,
		Operation:    failed.Operation,
		Error:        failed.Error,
		HomeID:       fmt.Sprintf("%08x", p.HomeID),
		Version:      p.Version,
		Stats:        s.driver.Stats().String(),
		OperationLog: log,
		Round:        round,
	}
	for _, e := range s.driver.Trace() {
		report.FrameTrace = append(report.FrameTrace, e.String())
	}
	return report
}

func writeCrashReportToFile(dir string, report *CrashReport) (string, error) {
	target := strings.ReplaceAll(report.Target, " ", "")
	timestamp := report.Timestamp.Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("zwave_crash_%s_%s.json", target, timestamp))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal crash report: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write crash report: %w", err)
	}
	return filename, nil
}

func formatHexString(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

func printFinalSummary(w io.Writer, results []*StressTestResult) {
	if len(results) == 0 {
		return
	}
	lines := make([]string, 0, len(results)+1)
	crashes := 0
	for _, r := range results {
		avg := time.Duration(0)
		if n := r.Passed + r.Failed; n > 0 {
			avg = r.Duration / time.Duration(n)
		}
		line := fmt.Sprintf("%s %d/%d avg %s", status(r.Success()), r.Passed, r.Passed+r.Failed, avg.Round(time.Millisecond))
		if r.CrashFile != "" {
			crashes++
			line += " " + styles.dim.Render(r.CrashFile)
		}
		lines = append(lines, field(r.Target, line))
	}
	if crashes > 0 {
		lines = append(lines, styles.warn.Render(fmt.Sprintf("crash reports written: %d", crashes)))
	}
	section(w, "Stress test summary", lines...)
}
