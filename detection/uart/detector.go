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

// Package uart finds Z-Wave controllers behind serial ports. A blank import
// registers it with the detection package.
package uart

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/ZaparooProject/go-zwave/detection"
)

const probeTimeout = 2 * time.Second

// Device node fragments that USB serial bridges and GPIO UART boards use.
var bridgeNames = []string{
	"ttyacm",         // CDC ACM sticks (Aeotec, UZB)
	"ttyusb",         // FTDI and CP210x on Linux
	"ttyama",         // GPIO modules such as RaZberry
	"usbmodem",       // CDC ACM on macOS
	"usbserial",      // FTDI on macOS
	"slab_usbtouart", // CP210x on macOS
	"com",            // Windows
}

// Product string fragments of known controllers.
var stickKeywords = []string{"z-wave", "zwave", "uzb", "z-stick", "zst10", "zooz"}

var probeDeviceFn = probeDevice

type detector struct{}

// New returns the serial port detector.
func New() detection.Detector { return &detector{} }

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string { return "uart" }

// Detect lists serial ports and keeps those that answer as a controller, or
// in passive mode those whose USB identity names one.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := getSerialPorts(ctx)
	if err != nil {
		return nil, err
	}

	var found []detection.DeviceInfo
	for _, port := range d.filterPorts(ports, opts) {
		if ctx.Err() != nil {
			break
		}
		if dev, ok := d.processPort(ctx, &port, opts); ok {
			found = append(found, dev)
		}
	}
	if len(found) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return found, nil
}

func (*detector) filterPorts(ports []serialPort, opts *detection.Options) []serialPort {
	return slices.DeleteFunc(slices.Clone(ports), func(p serialPort) bool {
		switch {
		case p.VIDPID != "" && detection.IsBlocked(p.VIDPID, opts.Blocklist):
			return true
		case detection.IsPathIgnored(p.Path, opts.IgnorePaths):
			return true
		}
		return !isBridgePath(p.Path) && !isLikelyStick(&p)
	})
}

func isBridgePath(path string) bool {
	lower := strings.ToLower(path)
	return slices.ContainsFunc(bridgeNames, func(s string) bool {
		return strings.Contains(lower, s)
	})
}

// isLikelyStick matches the port's USB ids and product string against
// known controllers.
func isLikelyStick(port *serialPort) bool {
	if _, known := detection.LookupStick(port.VIDPID); known {
		return true
	}
	product := strings.ToLower(port.Product)
	return slices.ContainsFunc(stickKeywords, func(k string) bool {
		return strings.Contains(product, k)
	})
}

// processPort rates one port. Passive mode trusts USB ids alone; the probing
// modes require a capabilities reply.
func (*detector) processPort(ctx context.Context, port *serialPort,
	opts *detection.Options,
) (detection.DeviceInfo, bool) {
	dev := createDeviceInfo(port)

	switch opts.Mode {
	case detection.Passive:
		if !isLikelyStick(port) {
			return detection.DeviceInfo{}, false
		}
		dev.Confidence = detection.Medium
		return dev, true
	case detection.Safe, detection.Full:
	default:
		return detection.DeviceInfo{}, false
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	meta, ok := probeDeviceFn(probeCtx, port.Path, opts.Mode)
	if !ok {
		// Silent known bridges are usually some other gadget.
		return detection.DeviceInfo{}, false
	}
	dev.Confidence = detection.High
	maps.Copy(dev.Metadata, meta)
	return dev, true
}

func createDeviceInfo(port *serialPort) detection.DeviceInfo {
	name := port.Name
	if stick, ok := detection.LookupStick(port.VIDPID); ok && name == "" {
		name = stick.Name
	}
	meta := map[string]string{}
	for k, v := range map[string]string{
		"vidpid":  port.VIDPID,
		"product": port.Product,
		"serial":  port.SerialNumber,
	} {
		if v != "" {
			meta[k] = v
		}
	}
	return detection.DeviceInfo{
		Transport:  "uart",
		Path:       port.Path,
		Name:       name,
		Confidence: detection.Low,
		Metadata:   meta,
	}
}
