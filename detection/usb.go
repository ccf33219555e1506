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

package detection

import (
	"path/filepath"
	"strings"
)

// Stick describes a USB bridge that Z-Wave controllers are known to ship on.
type Stick struct {
	VIDPID string
	Name   string
	// Shared marks generic bridges that are also used by unrelated hardware,
	// so a match alone is not proof of a Z-Wave controller.
	Shared bool
}

var knownSticks = []Stick{
	{VIDPID: "0658:0200", Name: "Sigma Designs / Aeotec Z-Stick"},
	{VIDPID: "10C4:EA60", Name: "Silicon Labs CP210x", Shared: true},
	{VIDPID: "1A86:55D4", Name: "WCH CH9102 (Zooz 800)", Shared: true},
	{VIDPID: "0403:6001", Name: "FTDI FT232", Shared: true},
}

// KnownSticks returns the USB ids matched during detection.
func KnownSticks() []Stick {
	out := make([]Stick, len(knownSticks))
	copy(out, knownSticks)
	return out
}

// LookupStick finds a known stick by VID:PID.
func LookupStick(vidpid string) (Stick, bool) {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, s := range knownSticks {
		if s.VIDPID == vidpid {
			return s, true
		}
	}
	return Stick{}, false
}

// DefaultBlocklist returns USB devices that must not be opened during
// detection. Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"2341:0043", // Arduino Uno, resets when the port opens
		"2341:0001", // Arduino Uno (older firmware)
		"1366:1015", // SEGGER J-Link CDC
	}
}

// IsBlocked checks if a USB device is in the blocklist.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

var (
	vidKeys = []string{"VID:", "VENDOR=", "VID="}
	pidKeys = []string{"PID:", "PRODUCT=", "PID="}
)

// ParseVIDPID extracts VID:PID from the descriptor strings different
// platforms report, e.g. "VID:1234 PID:5678", "vendor=1234 product=5678"
// or plain "1234:5678".
func ParseVIDPID(descriptor string) string {
	descriptor = strings.ToUpper(descriptor)

	vid := valueAfter(descriptor, vidKeys)
	pid := valueAfter(descriptor, pidKeys)
	if vid != "" && pid != "" {
		return vid + ":" + pid
	}

	if before, after, ok := strings.Cut(descriptor, ":"); ok && !strings.Contains(after, ":") &&
		isHex(before) && isHex(after) {
		return descriptor
	}
	return ""
}

func valueAfter(s string, keys []string) string {
	for _, k := range keys {
		if idx := strings.Index(s, k); idx >= 0 {
			return extractHex(s[idx+len(k):])
		}
	}
	return ""
}

// extractHex returns the first run of upper-case hex digits in s.
func extractHex(s string) string {
	start := -1
	for i, r := range s {
		hex := (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F')
		switch {
		case hex && start < 0:
			start = i
		case !hex && start >= 0:
			return s[start:i]
		}
	}
	if start < 0 {
		return ""
	}
	return s[start:]
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// IsPathIgnored reports whether devicePath matches one of ignorePaths.
// Paths are cleaned and compared case-insensitively, so "COM3" and "com3"
// are the same port.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	for _, p := range ignorePaths {
		if p != "" && normalizedPath(p) == device {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
