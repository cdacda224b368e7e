/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package tui provides terminal front-ends for the orchestrator's collaborators.
package tui

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	applog "blockfactory/internal/log"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

// nameModel is a single-line name prompt. Enter confirms, Esc or Ctrl+C cancels.
type nameModel struct {
	label     string
	errText   string
	input     textinput.Model
	confirmed bool
	cancelled bool
}

func newNameModel(label, errText string) nameModel {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 128
	in.Width = 48
	in.Focus()
	return nameModel{label: label, errText: errText, input: in}
}

func (m nameModel) Init() tea.Cmd { return textinput.Blink }

func (m nameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.confirmed = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m nameModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(labelStyle.Render(m.label))
	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter to confirm, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

// result maps the final model state onto the prompter contract.
func (m nameModel) result() (string, bool) {
	if m.cancelled || !m.confirmed {
		return "", false
	}
	return m.input.Value(), true
}

// Prompter asks for resource names in the terminal.
type Prompter struct {
	in   io.Reader
	out  io.Writer
	opts []tea.ProgramOption
}

// NewPrompter reads keys from in and draws on out. nil values use the process terminal.
func NewPrompter(in io.Reader, out io.Writer, opts ...tea.ProgramOption) *Prompter {
	return &Prompter{in: in, out: out, opts: opts}
}

// PromptForName runs one prompt to completion. A failed terminal counts as a cancel.
func (p *Prompter) PromptForName(label, errText string) (string, bool) {
	opts := append([]tea.ProgramOption{}, p.opts...)
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}
	if p.out != nil {
		opts = append(opts, tea.WithOutput(p.out))
	}
	final, err := tea.NewProgram(newNameModel(label, errText), opts...).Run()
	if err != nil {
		applog.WithOperation(applog.WithComponent("tui"), "prompt").Error("prompt failed", slog.Any("err", err))
		return "", false
	}
	m, ok := final.(nameModel)
	if !ok {
		return "", false
	}
	return m.result()
}
