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
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var styles = struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	dim   lipgloss.Style
	good  lipgloss.Style
	warn  lipgloss.Style
	bad   lipgloss.Style
	box   lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	label: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Width(18),
	value: lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	good:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	bad:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1),
}

// section prints a titled box.
func section(w io.Writer, title string, lines ...string) {
	body := styles.title.Render(title) + "\n" + strings.Join(lines, "\n")
	_, _ = fmt.Fprintln(w, styles.box.Render(body))
}

// field renders one "label  value" line.
func field(label string, value any) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), styles.value.Render(fmt.Sprint(value)))
}

// status renders a pass/fail tag.
func status(ok bool) string {
	if ok {
		return styles.good.Render("PASS")
	}
	return styles.bad.Render("FAIL")
}
