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

package zwave

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Session log state, guarded by logMu.
var (
	sessionLogFile   *os.File
	sessionLogPath   string
	sessionLogWriter io.Writer
)

const sessionLogPrefix = "zwave_"

// InitSessionLog starts a session log in dir, creating dir if needed. An
// empty dir means the working directory. A log that is already open is
// closed first. The returned path is meant for the user.
func InitSessionLog(dir string) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("create session log directory: %w", err)
		}
	}
	path := filepath.Join(dir, sessionLogPrefix+time.Now().Format("20060102_150405")+".log")
	f, err := os.Create(path) //nolint:gosec // path is built from the caller's directory
	if err != nil {
		return "", fmt.Errorf("create session log: %w", err)
	}

	logMu.Lock()
	defer logMu.Unlock()
	if sessionLogFile != nil {
		endSessionLocked()
	}
	sessionLogFile, sessionLogPath, sessionLogWriter = f, path, f
	writeSessionHeader(f)
	return path, nil
}

// CloseSessionLog ends the session log. It is a no-op without one.
func CloseSessionLog() error {
	logMu.Lock()
	defer logMu.Unlock()
	if sessionLogFile == nil {
		return nil
	}
	if err := endSessionLocked(); err != nil {
		return fmt.Errorf("close session log: %w", err)
	}
	return nil
}

// endSessionLocked writes the trailer and closes the file. Callers hold
// logMu.
func endSessionLocked() error {
	_, _ = fmt.Fprintf(sessionLogWriter, "\n%s === Session ended ===\n", time.Now().Format("15:04:05.000"))
	err := sessionLogFile.Close()
	sessionLogFile, sessionLogPath, sessionLogWriter = nil, "", nil
	return err
}

// GetSessionLogPath returns the path of the open session log, or "".
func GetSessionLogPath() string {
	logMu.Lock()
	defer logMu.Unlock()
	return sessionLogPath
}

func writeSessionHeader(w io.Writer) {
	var b strings.Builder
	b.WriteString("=== Z-Wave Serial API Session Log ===\n")
	fmt.Fprintf(&b, "Started:      %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "PID:          %d\n", os.Getpid())
	fmt.Fprintf(&b, "Platform:     %s/%s %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	fmt.Fprintf(&b, "Command line: %s\n", strings.Join(os.Args, " "))
	b.WriteString("=====================================\n\n")
	_, _ = io.WriteString(w, b.String())
}
