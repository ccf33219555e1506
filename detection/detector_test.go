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

//nolint:paralleltest // shares the package-level registry and cache
package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	err       error
	transport string
	devices   []DeviceInfo
	calls     int
}

func (f *fakeDetector) Detect(_ context.Context, _ *Options) ([]DeviceInfo, error) {
	f.calls++
	return f.devices, f.err
}

func (f *fakeDetector) Transport() string { return f.transport }

type blockingDetector struct{}

func (blockingDetector) Detect(ctx context.Context, _ *Options) ([]DeviceInfo, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingDetector) Transport() string { return "blocking" }

func withRegistry(t *testing.T, ds ...Detector) {
	t.Helper()
	saved := registry
	registry = ds
	clearCache()
	t.Cleanup(func() {
		registry = saved
		clearCache()
	})
}

func TestDeviceInfo_String(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		device   DeviceInfo
	}{
		{"low", "uart device at /dev/ttyUSB0 (confidence: low)",
			DeviceInfo{Transport: "uart", Path: "/dev/ttyUSB0", Confidence: Low}},
		{"medium", "uart device at COM3 (confidence: medium)",
			DeviceInfo{Transport: "uart", Path: "COM3", Confidence: Medium}},
		{"high", "uart device at /dev/ttyACM0 (confidence: high)",
			DeviceInfo{Transport: "uart", Path: "/dev/ttyACM0", Confidence: High}},
		{"unknown", "uart device at /dev/ttyUSB1 (confidence: unknown)",
			DeviceInfo{Transport: "uart", Path: "/dev/ttyUSB1", Confidence: Confidence(99)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.device.String())
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, Safe, opts.Mode)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.True(t, opts.EnableCache)
	assert.Equal(t, 30*time.Second, opts.CacheTTL)
	assert.Contains(t, opts.Blocklist, "2341:0043")
	assert.Nil(t, opts.IgnorePaths)
}

func TestCache(t *testing.T) {
	withRegistry(t)
	devices := []DeviceInfo{{Transport: "uart", Path: "/dev/ttyACM0", Confidence: High}}

	_, found := getCached("uart", Safe, time.Minute)
	assert.False(t, found)

	setCached("uart", Safe, devices)
	devices[0].Path = "/dev/ttyACM1"

	cached, found := getCached("uart", Safe, time.Minute)
	require.True(t, found)
	assert.Equal(t, "/dev/ttyACM0", cached[0].Path, "stored a copy")
	cached[0].Path = "mutated"
	again, _ := getCached("uart", Safe, time.Minute)
	assert.Equal(t, "/dev/ttyACM0", again[0].Path, "returned a copy")

	_, found = getCached("uart", Full, time.Minute)
	assert.False(t, found, "modes are cached separately")

	time.Sleep(time.Millisecond)
	_, found = getCached("uart", Safe, time.Nanosecond)
	assert.False(t, found, "expired")
}

func TestClearDetectionCacheForTransport(t *testing.T) {
	withRegistry(t)
	setCached("uart", Safe, []DeviceInfo{{Transport: "uart"}})
	setCached("uart", Full, []DeviceInfo{{Transport: "uart"}})
	setCached("ws", Safe, []DeviceInfo{{Transport: "ws"}})

	ClearDetectionCacheForTransport("uart")
	_, found := getCached("uart", Safe, time.Minute)
	assert.False(t, found)
	_, found = getCached("uart", Full, time.Minute)
	assert.False(t, found)
	_, found = getCached("ws", Safe, time.Minute)
	assert.True(t, found)

	ClearDetectionCache()
	_, found = getCached("ws", Safe, time.Minute)
	assert.False(t, found)
}

func TestKnownSticks(t *testing.T) {
	tests := []struct {
		vidpid string
		shared bool
		found  bool
	}{
		{"0658:0200", false, true},
		{"10c4:ea60", true, true},
		{" 1A86:55D4 ", true, true},
		{"0403:6001", true, true},
		{"2341:0043", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.vidpid, func(t *testing.T) {
			s, ok := LookupStick(tc.vidpid)
			require.Equal(t, tc.found, ok)
			assert.Equal(t, tc.shared, s.Shared)
		})
	}

	list := KnownSticks()
	list[0].Name = "changed"
	s, _ := LookupStick("0658:0200")
	assert.NotEqual(t, "changed", s.Name)
}

func TestIsBlocked(t *testing.T) {
	blocklist := []string{"2341:0043", "ABCD:EF01"}
	tests := []struct {
		name    string
		vidpid  string
		blocked bool
	}{
		{"exact", "2341:0043", true},
		{"case insensitive", "abcd:ef01", true},
		{"whitespace", "  2341:0043  ", true},
		{"not listed", "0658:0200", false},
		{"empty", "", false},
		{"partial", "2341:", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.blocked, IsBlocked(tc.vidpid, blocklist))
		})
	}
}

func TestParseVIDPID(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		expected   string
	}{
		{"plain", "0658:0200", "0658:0200"},
		{"windows hardware id", "USB VID:10C4 PID:EA60 SER=0001", "10C4:EA60"},
		{"equals", "VID=1A86 PID=55D4", "1A86:55D4"},
		{"vendor product", "vendor=0403 product=6001", "0403:6001"},
		{"lower case", "vid:abcd pid:ef01", "ABCD:EF01"},
		{"garbage", "not a descriptor", ""},
		{"empty", "", ""},
		{"vid only", "VID:0658", ""},
		{"two colons", "12:34:56", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseVIDPID(tc.descriptor))
		})
	}
}

func TestExtractHex(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1234", "1234"},
		{" 1234 abc", "1234"},
		{"0x1234", "0"},
		{"1234ABC", "1234ABC"},
		{"xyz", ""},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractHex(tc.input))
		})
	}
}

func TestIsPathIgnored(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		ignore   []string
		expected bool
	}{
		{"empty list", "/dev/ttyACM0", nil, false},
		{"empty path", "", []string{"/dev/ttyACM0"}, false},
		{"exact", "/dev/ttyACM0", []string{"/dev/ttyACM0"}, true},
		{"windows case", "com2", []string{"COM2"}, true},
		{"relative parts", "/dev/../dev/ttyUSB0", []string{"/dev/ttyUSB0"}, true},
		{"blank entries", "/dev/ttyAMA0", []string{"", "/dev/ttyAMA0"}, true},
		{"no match", "/dev/ttyUSB1", []string{"/dev/ttyUSB0", "COM2"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsPathIgnored(tc.path, tc.ignore))
		})
	}
}

func TestGetDetectors_FilterByTransport(t *testing.T) {
	withRegistry(t, &fakeDetector{transport: "uart"}, &fakeDetector{transport: "websocket"})

	assert.Len(t, getDetectors(nil), 2)
	assert.Len(t, getDetectors([]string{"uart"}), 1)
	assert.Empty(t, getDetectors([]string{"usb"}))
}

func TestDetectAll(t *testing.T) {
	t.Run("no detectors", func(t *testing.T) {
		withRegistry(t)
		opts := DefaultOptions()
		_, err := DetectAll(context.Background(), &opts)
		require.ErrorIs(t, err, ErrNoDetectors)
	})

	t.Run("merges and tolerates partial failure", func(t *testing.T) {
		withRegistry(t,
			&fakeDetector{transport: "a", err: errors.New("permission denied")},
			&fakeDetector{transport: "b", devices: []DeviceInfo{{Transport: "b", Path: "/dev/ttyACM0"}}},
		)
		opts := DefaultOptions()
		devices, err := DetectAll(context.Background(), &opts)
		require.NoError(t, err)
		require.Len(t, devices, 1)
		assert.Equal(t, "/dev/ttyACM0", devices[0].Path)
	})

	t.Run("most confident first", func(t *testing.T) {
		withRegistry(t,
			&fakeDetector{transport: "a", devices: []DeviceInfo{
				{Transport: "a", Path: "/dev/ttyUSB0", Confidence: Low},
				{Transport: "a", Path: "/dev/ttyUSB1", Confidence: Medium},
			}},
			&fakeDetector{transport: "b", devices: []DeviceInfo{{Transport: "b", Path: "/dev/ttyACM0", Confidence: High}}},
		)
		opts := DefaultOptions()
		opts.EnableCache = false
		devices, err := DetectAll(context.Background(), &opts)
		require.NoError(t, err)
		require.Len(t, devices, 3)
		assert.Equal(t, []string{"/dev/ttyACM0", "/dev/ttyUSB1", "/dev/ttyUSB0"},
			[]string{devices[0].Path, devices[1].Path, devices[2].Path})
	})

	t.Run("all failed", func(t *testing.T) {
		boom := errors.New("boom")
		withRegistry(t, &fakeDetector{transport: "a", err: boom})
		opts := DefaultOptions()
		_, err := DetectAll(context.Background(), &opts)
		require.ErrorIs(t, err, boom)
	})

	t.Run("nothing found", func(t *testing.T) {
		withRegistry(t, &fakeDetector{transport: "a", err: ErrNoDevicesFound})
		opts := DefaultOptions()
		_, err := DetectAll(context.Background(), &opts)
		require.ErrorIs(t, err, ErrNoDevicesFound)
	})

	t.Run("timeout", func(t *testing.T) {
		withRegistry(t, blockingDetector{})
		opts := DefaultOptions()
		opts.Timeout = 10 * time.Millisecond
		opts.EnableCache = false
		_, err := DetectAll(context.Background(), &opts)
		require.ErrorIs(t, err, ErrDetectionTimeout)
	})

	t.Run("cache hit is refiltered", func(t *testing.T) {
		d := &fakeDetector{transport: "uart", devices: []DeviceInfo{
			{Transport: "uart", Path: "/dev/ttyACM0", Metadata: map[string]string{"vidpid": "0658:0200"}},
			{Transport: "uart", Path: "/dev/ttyUSB0", Metadata: map[string]string{"vidpid": "0403:6001"}},
		}}
		withRegistry(t, d)
		opts := DefaultOptions()
		devices, err := DetectAll(context.Background(), &opts)
		require.NoError(t, err)
		assert.Len(t, devices, 2)

		opts.IgnorePaths = []string{"/dev/ttyUSB0"}
		devices, err = DetectAll(context.Background(), &opts)
		require.NoError(t, err)
		require.Len(t, devices, 1)
		assert.Equal(t, "/dev/ttyACM0", devices[0].Path)
		assert.Equal(t, 1, d.calls, "second call served from cache")

		opts.Blocklist = []string{"0658:0200"}
		opts.IgnorePaths = nil
		devices, err = DetectAll(context.Background(), &opts)
		require.NoError(t, err)
		require.Len(t, devices, 1)
		assert.Equal(t, "/dev/ttyUSB0", devices[0].Path)
	})
}
