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

// Package detection finds Z-Wave controllers attached to the host.
//
// Detectors register themselves per transport; DetectAll runs the selected
// ones concurrently and returns what they found, most confident first.
// Importing a detector package for its side effects enables it:
//
//	import _ "github.com/ZaparooProject/go-zwave/detection/uart"
package detection

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Mode selects how much a detector may talk to a candidate port.
type Mode int

const (
	// Passive only looks at USB descriptors. Nothing is written.
	Passive Mode = iota
	// Safe asks the port for its serial API capabilities.
	Safe
	// Full also reads the library version and the home id.
	Full
)

func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Safe:
		return "safe"
	case Full:
		return "full"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Confidence grades how sure a detector is that a port is a controller.
type Confidence int

const (
	// Low is a serial port nothing is known about.
	Low Confidence = iota
	// Medium is a port whose USB ids or product string match a stick.
	Medium
	// High is a port that answered the serial API.
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	}
	return "unknown"
}

// DeviceInfo describes one candidate controller.
type DeviceInfo struct {
	// Metadata holds vidpid, manufacturer and product descriptors plus
	// whatever a probe read back (api_version, version, home_id).
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s device at %s (confidence: %s)", d.Transport, d.Path, d.Confidence)
}

// Options configures DetectAll.
type Options struct {
	// Blocklist holds VID:PID pairs that are never reported.
	Blocklist []string
	// IgnorePaths holds device paths that are never reported or opened.
	IgnorePaths []string
	// Transports limits detection to these detectors; empty means all.
	Transports []string
	CacheTTL   time.Duration
	// Timeout bounds the whole run. Zero waits for the detectors.
	Timeout     time.Duration
	Mode        Mode
	EnableCache bool
}

// DefaultOptions probes in Safe mode and caches results for 30 seconds.
func DefaultOptions() Options {
	return Options{
		Mode:        Safe,
		Timeout:     5 * time.Second,
		Blocklist:   DefaultBlocklist(),
		EnableCache: true,
		CacheTTL:    30 * time.Second,
	}
}

// Detector searches one transport for controllers.
type Detector interface {
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
	Transport() string
}

var (
	// ErrNoDevicesFound is returned when every detector came back empty.
	ErrNoDevicesFound = errors.New("no Z-Wave controllers found")
	// ErrNoDetectors is returned when no registered detector matches
	// Options.Transports.
	ErrNoDetectors = errors.New("no detectors available for specified transports")
	// ErrDetectionTimeout is returned when Options.Timeout expires first.
	ErrDetectionTimeout = errors.New("detection timeout")
)

var registry []Detector

// RegisterDetector adds d to the registry. Detector packages call it from
// init.
func RegisterDetector(d Detector) {
	registry = append(registry, d)
}

func getDetectors(transports []string) []Detector {
	if len(transports) == 0 {
		return registry
	}
	var out []Detector
	for _, d := range registry {
		if slices.Contains(transports, d.Transport()) {
			out = append(out, d)
		}
	}
	return out
}

type detectionResult struct {
	err     error
	devices []DeviceInfo
}

// DetectAll runs the selected detectors concurrently. Devices found by one
// detector are returned even when another failed; the error of the first
// failing detector is returned only when nothing was found. The result is
// ordered by confidence, highest first.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	detectors := getDetectors(opts.Transports)
	if len(detectors) == 0 {
		return nil, ErrNoDetectors
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	results := make([]detectionResult, len(detectors))
	var g errgroup.Group
	for i, d := range detectors {
		g.Go(func() error {
			results[i] = runSingleDetector(ctx, d, opts)
			return nil
		})
	}

	// a detector stuck in a blocking open must not hold up the caller
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
		return processDetectionResults(results)
	case <-ctx.Done():
		return nil, ErrDetectionTimeout
	}
}

func runSingleDetector(ctx context.Context, d Detector, opts *Options) detectionResult {
	transport := d.Transport()
	if opts.EnableCache {
		if cached, ok := getCached(transport, opts.Mode, opts.CacheTTL); ok {
			// the filters may differ from the run that filled the cache
			return detectionResult{devices: filterDevices(cached, opts)}
		}
	}

	devices, err := d.Detect(ctx, opts)
	if err != nil && !errors.Is(err, ErrNoDevicesFound) {
		return detectionResult{err: err}
	}
	if opts.EnableCache {
		if len(devices) > 0 {
			setCached(transport, opts.Mode, devices)
		} else {
			// an unplugged stick must not be reported until the TTL runs out
			clearCacheForTransport(transport)
		}
	}
	return detectionResult{devices: devices}
}

func processDetectionResults(results []detectionResult) ([]DeviceInfo, error) {
	var devices []DeviceInfo
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			firstErr = cmp.Or(firstErr, r.err)
			continue
		}
		devices = append(devices, r.devices...)
	}
	switch {
	case len(devices) > 0:
		slices.SortStableFunc(devices, func(a, b DeviceInfo) int {
			return cmp.Compare(b.Confidence, a.Confidence)
		})
		return devices, nil
	case firstErr != nil:
		return nil, firstErr
	default:
		return nil, ErrNoDevicesFound
	}
}

// filterDevices drops ignored paths and blocked USB ids.
func filterDevices(devices []DeviceInfo, opts *Options) []DeviceInfo {
	if len(opts.IgnorePaths) == 0 && len(opts.Blocklist) == 0 {
		return devices
	}
	return slices.DeleteFunc(slices.Clone(devices), func(d DeviceInfo) bool {
		if IsPathIgnored(d.Path, opts.IgnorePaths) {
			return true
		}
		vidpid, ok := d.Metadata["vidpid"]
		return ok && IsBlocked(vidpid, opts.Blocklist)
	})
}

// ClearDetectionCache drops every cached result.
func ClearDetectionCache() {
	clearCache()
}

// ClearDetectionCacheForTransport drops the cached results of one
// transport.
func ClearDetectionCacheForTransport(transport string) {
	clearCacheForTransport(transport)
}
