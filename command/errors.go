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

package command

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	ErrUnknownCommand = errors.New("command: unknown command")
	ErrMalformed      = errors.New("command: malformed payload")
	ErrMissingField   = errors.New("command: missing field")
	ErrOutOfRange     = errors.New("command: field out of range")
)

// ParseError describes a payload that does not match its schema.
type ParseError struct {
	Err    error
	Field  string
	Data   []byte
	Offset int
	Key    Key
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse %s % x: %v", e.Key, e.Data, e.Err)
	}
	return fmt.Sprintf("parse %s field %q at offset %d (% x): %v", e.Key, e.Field, e.Offset, e.Data, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AssembleError describes a Values record that cannot be encoded.
type AssembleError struct {
	Err   error
	Value any
	Field string
	Key   Key
}

func (e *AssembleError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("assemble %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("assemble %s field %q (%v): %v", e.Key, e.Field, e.Value, e.Err)
}

func (e *AssembleError) Unwrap() error {
	return e.Err
}
