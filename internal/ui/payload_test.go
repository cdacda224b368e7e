/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"strings"
	"testing"

	"blockfactory/internal/app"
	"blockfactory/internal/domain"
	"blockfactory/internal/resource"
)

func newTestApp(t *testing.T, answers ...string) *app.App {
	t.Helper()
	a := app.New(app.Options{
		ProjectName: "UI",
		Prompter: resource.PrompterFunc(func(string, string) (string, bool) {
			if len(answers) == 0 {
				return "", false
			}
			n := answers[0]
			answers = answers[1:]
			return n, true
		}),
	})
	if err := a.PopulateDefaults(); err != nil {
		t.Fatalf("PopulateDefaults: %v", err)
	}
	return a
}

func TestPayload_ConfigRoundTrip(t *testing.T) {
	a := newTestApp(t, "Cfg")
	cfg, err := a.CreateWorkspaceConfiguration()
	if err != nil || cfg == nil {
		t.Fatal(err)
	}
	text := PayloadText(cfg)
	if !strings.Contains(text, "trashcan=true\n") {
		t.Fatalf("payload missing default option:\n%s", text)
	}
	edited := strings.Replace(text, "readOnly=false", "readOnly=true", 1)
	edited = strings.Replace(edited, "trashcan=true\n", "", 1)
	edited += "# comment\n\nmedia = ./media/\n"
	if err := ApplyPayload(a, cfg, edited); err != nil {
		t.Fatalf("ApplyPayload: %v", err)
	}
	if cfg.Options["readOnly"] != "true" || cfg.Options["media"] != "./media/" {
		t.Fatalf("options = %v", cfg.Options)
	}
	if _, ok := cfg.Options["trashcan"]; ok {
		t.Fatalf("removed line should delete the option")
	}
	if err := ApplyPayload(a, cfg, "novalue\n"); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Fatalf("err = %v, want line error", err)
	}
}

func TestPayload_LibraryEdit(t *testing.T) {
	a := newTestApp(t)
	res, _ := a.Store().Get(domain.KindBlockLibrary, "MyFirstBlockLibrary")
	lib := res.(*domain.BlockLibrary)
	text := `{"logic_gate": {"type": "logic_gate", "colour": 120}}`
	if err := ApplyPayload(a, lib, text); err != nil {
		t.Fatalf("ApplyPayload: %v", err)
	}
	if got := lib.BlockNames(); len(got) != 1 || got[0] != "logic_gate" {
		t.Fatalf("blocks = %v", got)
	}
	if !a.CanUndo(domain.KindBlockLibrary, "MyFirstBlockLibrary") {
		t.Fatalf("library edit should be undoable")
	}
	if !strings.Contains(PayloadText(lib), `"colour": 120`) {
		t.Fatalf("payload text = %s", PayloadText(lib))
	}
	if err := ApplyPayload(a, lib, "{broken"); err == nil {
		t.Fatalf("invalid JSON should fail")
	}
}

func TestPayload_ToolboxUnchangedIsNoop(t *testing.T) {
	a := newTestApp(t, "TB")
	tb, _ := a.CreateToolbox()
	if err := ApplyPayload(a, tb, tb.XML); err != nil {
		t.Fatal(err)
	}
	if a.CanUndo(domain.KindToolbox, "TB") {
		t.Fatalf("unchanged payload must not record history")
	}
	if err := ApplyPayload(a, tb, "<xml/>"); err != nil || tb.XML != "<xml/>" {
		t.Fatalf("apply = %v, xml %q", err, tb.XML)
	}
}
