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

//go:build !unix

package zwave

import (
	"errors"
	"slices"
	"syscall"
)

// Windows reports a pulled USB serial adapter with one of these codes:
// ERROR_ACCESS_DENIED, ERROR_GEN_FAILURE and ERROR_NO_SUCH_DEVICE.
var goneErrnos = []syscall.Errno{5, 31, 433}

func isDeviceGoneError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && slices.Contains(goneErrnos, errno)
}
