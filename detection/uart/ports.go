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

package uart

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// serialPort is one enumerated port and whatever USB descriptor data the OS
// exposed for it.
type serialPort struct {
	Path         string
	Name         string
	VIDPID       string
	Product      string
	SerialNumber string
}

var (
	listDetailedPorts = enumerator.GetDetailedPortsList
	listPortNames     = serial.GetPortsList
)

// getSerialPorts prefers the detailed USB listing and falls back to bare
// port names when it fails or finds nothing.
func getSerialPorts(ctx context.Context) ([]serialPort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, detailErr := listDetailedPorts()
	if detailErr == nil && len(details) > 0 {
		out := make([]serialPort, len(details))
		for i, d := range details {
			out[i] = fromDetails(d)
		}
		return out, nil
	}

	names, err := listPortNames()
	if err != nil {
		if detailErr != nil {
			err = detailErr
		}
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	out := make([]serialPort, len(names))
	for i, name := range names {
		out[i] = serialPort{Path: name}
	}
	return out, nil
}

func fromDetails(d *enumerator.PortDetails) serialPort {
	product := strings.TrimSpace(d.Product)
	p := serialPort{Path: d.Name, Name: product, Product: product, SerialNumber: d.SerialNumber}
	if d.IsUSB && d.VID != "" && d.PID != "" {
		p.VIDPID = strings.ToUpper(d.VID + ":" + d.PID)
	}
	return p
}
