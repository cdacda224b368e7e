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
	"errors"
	"strings"
	"testing"

	"blockfactory/internal/domain"
	"blockfactory/internal/popup"
)

func TestPopup_MandatoryLibraryContinuesIntoBlock(t *testing.T) {
	h := newHarness(Options{})
	if err := h.app.CreatePopup(popup.ModeNewBlock); err != nil {
		t.Fatalf("CreatePopup: %v", err)
	}
	p, ok := h.app.Popups().Current()
	nl, isLib := p.(*popup.NewLibrary)
	if !ok || !isLib || !nl.Mandatory {
		t.Fatalf("current popup = %#v, want mandatory NewLibrary", p)
	}

	h.answer("Shapes", "draw_circle")
	if err := h.app.CompletePopup(); err != nil {
		t.Fatalf("complete library: %v", err)
	}
	p, ok = h.app.Popups().Current()
	nb, isBlock := p.(*popup.NewBlock)
	if !ok || !isBlock || nb.Library != "Shapes" {
		t.Fatalf("current popup = %#v, want NewBlock for Shapes", p)
	}
	if err := h.app.CompletePopup(); err != nil {
		t.Fatalf("complete block: %v", err)
	}
	if h.app.Popups().Session().Active {
		t.Fatalf("popup should be closed after the block was created")
	}
	if _, ok := h.app.Project().Libraries["Shapes"].Blocks["draw_circle"]; !ok {
		t.Fatalf("block not created")
	}
	want := []string{
		"show NEW_LIBRARY",
		"view block Shapes", "activate block Shapes", "hide NEW_LIBRARY",
		"show NEW_BLOCK",
		"view block Shapes", "activate block Shapes", "hide NEW_BLOCK",
	}
	if strings.Join(h.ev.log, "|") != strings.Join(want, "|") {
		t.Fatalf("log = %v\nwant %v", h.ev.log, want)
	}
}

func TestPopup_NewBlockTargetsShownLibrary(t *testing.T) {
	p := domain.NewProject("P")
	for _, n := range []string{"A", "B"} {
		lib, _ := domain.NewResource(domain.KindBlockLibrary, n)
		p.Put(lib)
	}
	h := newHarness(Options{Project: p})
	if err := h.app.CreatePopup(popup.ModeNewBlock); err != nil {
		t.Fatal(err)
	}
	if cur, _ := h.app.Popups().Current(); cur.(*popup.NewBlock).Library != "A" {
		t.Fatalf("without a selection the first library is targeted, got %q", cur.(*popup.NewBlock).Library)
	}
	if err := h.app.SwitchTo(domain.KindBlockLibrary, "B"); err != nil {
		t.Fatal(err)
	}
	if err := h.app.CreatePopup(popup.ModeNewBlock); err != nil {
		t.Fatal(err)
	}
	if cur, _ := h.app.Popups().Current(); cur.(*popup.NewBlock).Library != "B" {
		t.Fatalf("shown library should be targeted, got %q", cur.(*popup.NewBlock).Library)
	}
}

func TestPopup_OpeningReplacesPriorPopup(t *testing.T) {
	h := newHarness(Options{})
	if err := h.app.CreatePopup(popup.ModeNewConfig); err != nil {
		t.Fatal(err)
	}
	if err := h.app.CreatePopup(popup.ModeNewProject); err != nil {
		t.Fatal(err)
	}
	want := "show NEW_CONFIG|hide NEW_CONFIG|show NEW_PROJECT"
	if got := strings.Join(h.ev.log, "|"); got != want {
		t.Fatalf("log = %s, want %s", got, want)
	}
	if s := h.app.Popups().Session(); !s.Active || s.Mode != popup.ModeNewProject {
		t.Fatalf("session = %+v", s)
	}
}

func TestPopup_UnknownModeIsContractError(t *testing.T) {
	h := newHarness(Options{})
	err := h.app.CreatePopup(popup.Mode(42))
	var unknown *popup.UnknownPopupModeError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want UnknownPopupModeError", err)
	}
	if h.app.Popups().Session().Active {
		t.Fatalf("no popup should open")
	}
}

func TestPopup_CancelledCompletionCloses(t *testing.T) {
	h := newHarness(Options{})
	if err := h.app.CreatePopup(popup.ModeNewBlock); err != nil {
		t.Fatal(err)
	}
	if err := h.app.CompletePopup(); err != nil {
		t.Fatalf("CompletePopup: %v", err)
	}
	if h.app.Popups().Session().Active {
		t.Fatalf("cancelled popup should close")
	}
	if !h.app.Store().IsEmpty(domain.KindBlockLibrary) {
		t.Fatalf("nothing should be created")
	}
	if err := h.app.CompletePopup(); err != nil {
		t.Fatalf("completing with nothing open: %v", err)
	}
}

func TestPopup_CompletionDuringNamingIsBusy(t *testing.T) {
	h := newHarness(Options{})
	if err := h.app.CreatePopup(popup.ModeNewConfig); err != nil {
		t.Fatal(err)
	}
	var nested []error
	h.prompter.onPrompt = func() {
		nested = append(nested,
			h.app.CompletePopup(),
			h.app.CreatePopup(popup.ModeNewLibrary),
			h.app.Remove(domain.KindToolbox, "x"),
		)
		_, err := h.app.CreateToolbox()
		nested = append(nested, err)
	}
	h.answer("Cfg")
	if err := h.app.CompletePopup(); err != nil {
		t.Fatalf("CompletePopup: %v", err)
	}
	for i, err := range nested {
		if !errors.Is(err, ErrBusy) {
			t.Fatalf("nested call %d = %v, want ErrBusy", i, err)
		}
	}
	if n := h.app.Store().Len(domain.KindWorkspaceConfiguration); n != 1 {
		t.Fatalf("configs = %d, want 1", n)
	}
	if n := h.app.Store().Len(domain.KindToolbox); n != 0 {
		t.Fatalf("nested create must not run, toolboxes = %d", n)
	}
	h.prompter.onPrompt = nil
	if err := h.app.CreatePopup(popup.ModeNewLibrary); err != nil {
		t.Fatalf("guard not released: %v", err)
	}
}

func TestPopup_NewProjectResetsContents(t *testing.T) {
	h := newHarness(Options{})
	h.answer("Old Toolbox", "Fresh")
	if _, err := h.app.CreateToolbox(); err != nil {
		t.Fatal(err)
	}
	proj := h.app.Project()
	if err := h.app.CreatePopup(popup.ModeNewProject); err != nil {
		t.Fatal(err)
	}
	if err := h.app.CompletePopup(); err != nil {
		t.Fatalf("CompletePopup: %v", err)
	}
	if h.app.Project() != proj {
		t.Fatalf("project must be reset in place")
	}
	if proj.Name != "Fresh" {
		t.Fatalf("name = %q, want Fresh", proj.Name)
	}
	if h.app.Store().Exists(domain.KindToolbox, "Old Toolbox") {
		t.Fatalf("old resources should be gone")
	}
	if !h.app.Store().Exists(domain.KindBlockLibrary, "MyFirstBlockLibrary") {
		t.Fatalf("fresh project should get the demo library")
	}
}

func TestPopup_PreviewOpensAndCompletes(t *testing.T) {
	h := newHarness(Options{})
	if err := h.app.PopulateDefaults(); err != nil {
		t.Fatal(err)
	}
	lib, _ := h.app.Store().Get(domain.KindBlockLibrary, "MyFirstBlockLibrary")
	if err := h.app.Preview(lib); err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if s := h.app.Popups().Session(); s.Mode != popup.ModePreview {
		t.Fatalf("session = %+v", s)
	}
	if err := h.app.CompletePopup(); err != nil {
		t.Fatal(err)
	}
	if h.app.Popups().Session().Active {
		t.Fatalf("preview should close on completion")
	}
	if err := h.app.Preview(nil); err == nil {
		t.Fatalf("preview without a resource should fail")
	}
}
