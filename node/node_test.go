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

package node

import (
	"sync"
	"time"

	zwave "github.com/ZaparooProject/go-zwave"
	"github.com/ZaparooProject/go-zwave/command"
)

type sent struct {
	values   command.Values
	key      command.Key
	priority zwave.Priority
	endpoint int
	xmit     byte
}

type ping struct {
	reason   string
	endpoint int
	retries  int
	force    bool
}

// fakeSender records what an endpoint asks the translator to do.
type fakeSender struct {
	sends []sent
	pings []ping
	mu    sync.Mutex
}

func (f *fakeSender) Send(endpoint int, key command.Key, values command.Values, priority zwave.Priority, xmit byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sent{endpoint: endpoint, key: key, values: values, priority: priority, xmit: xmit})
	return nil
}

func (f *fakeSender) Ping(endpoint, retries int, force bool, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings = append(f.pings, ping{endpoint: endpoint, retries: retries, force: force, reason: reason})
}

func (f *fakeSender) takeSends() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sends
	f.sends = nil
	return out
}

func (f *fakeSender) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pings)
}

func keysOf(sends []sent) []command.Key {
	out := make([]command.Key, len(sends))
	for i, s := range sends {
		out[i] = s.key
	}
	return out
}

func parse(t interface {
	Helper()
	Fatalf(string, ...any)
}, data ...byte,
) (command.Key, command.Values) {
	t.Helper()
	k, v, err := command.ParseCommand(data)
	if err != nil {
		t.Fatalf("parse % x: %v", data, err)
	}
	return k, v
}

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// nodeInfo is the application update of a binary power switch.
func nodeInfo(classes ...command.Class) command.Values {
	return command.Values{
		"basic":    0x04,
		"generic":  0x10,
		"specific": 0x01,
		"commands": classes,
		"controls": []command.Class(nil),
	}
}
