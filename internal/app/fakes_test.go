/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package app

import (
	"fmt"
	"sync"

	"blockfactory/internal/domain"
	"blockfactory/internal/environment"
	"blockfactory/internal/popup"
)

// events collects collaborator calls in order.
type events struct{ log []string }

func (e *events) add(format string, args ...any) { e.log = append(e.log, fmt.Sprintf(format, args...)) }

type fakeView struct{ ev *events }

func (v fakeView) SwitchView(id environment.ViewID, res domain.Resource) {
	v.ev.add("view %v %s", id, res.Name())
}
func (v fakeView) CloseModal() { v.ev.add("close-modal") }

type fakeEditor struct{ ev *events }

func (e fakeEditor) Activate(id environment.ControllerID, res domain.Resource) {
	e.ev.add("activate %v %s", id, res.Name())
}

type fakePresenter struct{ ev *events }

func (p fakePresenter) ShowPopup(pp popup.Popup) { p.ev.add("show %v", pp.Mode()) }
func (p fakePresenter) HidePopup(pp popup.Popup) { p.ev.add("hide %v", pp.Mode()) }

type fakeNavigator struct{ ready []func() }

func (n *fakeNavigator) Ready(fn func()) { n.ready = append(n.ready, fn) }

func (n *fakeNavigator) fire() {
	for _, fn := range n.ready {
		fn()
	}
}

// scripted answers prompts from a queue; an exhausted queue cancels.
type scripted struct {
	answers  []string
	labels   []string
	errTexts []string
	onPrompt func()
}

func (s *scripted) PromptForName(label, errText string) (string, bool) {
	s.labels = append(s.labels, label)
	s.errTexts = append(s.errTexts, errText)
	if s.onPrompt != nil {
		s.onPrompt()
	}
	if len(s.answers) == 0 {
		return "", false
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, true
}

type exportCall struct{ content, filename, mime string }

type fakeExporter struct {
	mu    sync.Mutex
	calls []exportCall
}

func (f *fakeExporter) Export(content, filename, mimeType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, exportCall{content, filename, mimeType})
}

type harness struct {
	app      *App
	ev       *events
	prompter *scripted
	nav      *fakeNavigator
	exporter *fakeExporter
}

func newHarness(opts Options) *harness {
	ev := &events{}
	h := &harness{ev: ev, prompter: &scripted{}, nav: &fakeNavigator{}, exporter: &fakeExporter{}}
	opts.View = fakeView{ev}
	opts.Editor = fakeEditor{ev}
	opts.Presenter = fakePresenter{ev}
	opts.Navigator = h.nav
	opts.Prompter = h.prompter
	opts.Exporter = h.exporter
	if opts.ProjectName == "" {
		opts.ProjectName = "Test Project"
	}
	h.app = New(opts)
	return h
}

func (h *harness) answer(names ...string) { h.prompter.answers = append(h.prompter.answers, names...) }
