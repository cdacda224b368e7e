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
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blockfactory/internal/domain"
	"blockfactory/internal/resource"
	"blockfactory/internal/storage"
)

func TestEdit_UndoRedoToolboxXML(t *testing.T) {
	h := newHarness(Options{})
	h.answer("TB")
	tb, err := h.app.CreateToolbox()
	if err != nil || tb == nil {
		t.Fatal(err)
	}
	orig := tb.XML
	if err := h.app.UpdateToolboxXML("TB", "<xml><block type=\"a\"/></xml>"); err != nil {
		t.Fatalf("UpdateToolboxXML: %v", err)
	}
	ok, err := h.app.Undo(domain.KindToolbox, "TB")
	if err != nil || !ok {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if tb.XML != orig {
		t.Fatalf("after undo XML = %q, want %q", tb.XML, orig)
	}
	ok, err = h.app.Redo(domain.KindToolbox, "TB")
	if err != nil || !ok {
		t.Fatalf("Redo = %v, %v", ok, err)
	}
	if tb.XML != "<xml><block type=\"a\"/></xml>" {
		t.Fatalf("after redo XML = %q", tb.XML)
	}
	id := tb.ID()
	if _, err := h.app.Undo(domain.KindToolbox, "TB"); err != nil {
		t.Fatal(err)
	}
	if tb.ID() != id || tb.Name() != "TB" {
		t.Fatalf("undo must not touch identity")
	}
}

func TestEdit_UndoWithoutHistory(t *testing.T) {
	h := newHarness(Options{})
	if err := h.app.PopulateDefaults(); err != nil {
		t.Fatal(err)
	}
	ok, err := h.app.Undo(domain.KindBlockLibrary, "MyFirstBlockLibrary")
	if err != nil || ok {
		t.Fatalf("Undo = %v, %v; want false, nil", ok, err)
	}
	var nf *resource.NotFoundError
	if _, err := h.app.Redo(domain.KindToolbox, "none"); !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestEdit_ConfigOptionsAndBlocks(t *testing.T) {
	h := newHarness(Options{})
	h.answer("Cfg")
	cfg, _ := h.app.CreateWorkspaceConfiguration()
	if err := h.app.SetConfigOption("Cfg", "readOnly", "true"); err != nil {
		t.Fatal(err)
	}
	if err := h.app.SetConfigOption("Cfg", "grid", ""); err != nil {
		t.Fatal(err)
	}
	if cfg.Options["readOnly"] != "true" {
		t.Fatalf("readOnly = %q", cfg.Options["readOnly"])
	}
	if _, ok := cfg.Options["grid"]; ok {
		t.Fatalf("empty value should remove the option")
	}
	if err := h.app.SetConfigOption("Cfg", " ", "x"); err == nil {
		t.Fatalf("blank key should fail")
	}

	if err := h.app.PopulateDefaults(); err != nil {
		t.Fatal(err)
	}
	def := domain.BlockDefinition{Type: "logic_gate", JSON: `{"type":"logic_gate"}`}
	if err := h.app.PutBlock("MyFirstBlockLibrary", def); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}
	if err := h.app.PutBlock("MyFirstBlockLibrary", domain.BlockDefinition{}); err == nil {
		t.Fatalf("blank block type should fail")
	}
	if err := h.app.RemoveBlock("MyFirstBlockLibrary", "block_type"); err != nil {
		t.Fatalf("RemoveBlock: %v", err)
	}
	if err := h.app.RemoveBlock("MyFirstBlockLibrary", "block_type"); err == nil {
		t.Fatalf("removing a missing block should fail")
	}
	lib := h.app.Project().Libraries["MyFirstBlockLibrary"]
	if got := lib.BlockNames(); len(got) != 1 || got[0] != "logic_gate" {
		t.Fatalf("blocks = %v", got)
	}
	var nf *resource.NotFoundError
	if err := h.app.UpdateWorkspaceContentsXML("none", "<xml/>"); !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestSave_PersistsAndExportsOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	ph, err := storage.InitProject(dir, domain.NewProject("Saved Project"))
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	h := newHarness(Options{Handle: ph})
	if err := h.app.PopulateDefaults(); err != nil {
		t.Fatal(err)
	}
	if !h.app.HasUnsavedChanges() {
		t.Fatalf("expected unsaved changes")
	}
	if err := h.app.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if h.app.HasUnsavedChanges() {
		t.Fatalf("save should clear the dirty flag")
	}
	if len(h.exporter.calls) != 1 {
		t.Fatalf("exports = %d, want 1", len(h.exporter.calls))
	}
	call := h.exporter.calls[0]
	if call.filename != "Saved_Project.json" || call.mime != "application/json" {
		t.Fatalf("export = %s (%s)", call.filename, call.mime)
	}
	if !strings.Contains(call.content, "MyFirstBlockLibrary") {
		t.Fatalf("export content missing library:\n%s", call.content)
	}
	reopened, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := reopened.Project.Libraries["MyFirstBlockLibrary"]; !ok {
		t.Fatalf("saved manifest lacks the demo library")
	}
}

func TestSave_RequiresLocation(t *testing.T) {
	h := newHarness(Options{})
	if err := h.app.Save(context.Background()); !errors.Is(err, ErrNoLocation) {
		t.Fatalf("err = %v, want ErrNoLocation", err)
	}
	dir := t.TempDir()
	if err := h.app.SaveAs(context.Background(), dir); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if h.app.Handle() == nil || h.app.Handle().Root != dir {
		t.Fatalf("handle = %+v", h.app.Handle())
	}
	if _, err := os.Stat(filepath.Join(dir, storage.ManifestFileName)); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if err := h.app.Save(context.Background()); err != nil {
		t.Fatalf("Save after SaveAs: %v", err)
	}
	if len(h.exporter.calls) != 2 {
		t.Fatalf("exports = %d, want 2", len(h.exporter.calls))
	}
}

func TestSave_CancelledContextKeepsDirty(t *testing.T) {
	dir := t.TempDir()
	ph, err := storage.InitProject(dir, domain.NewProject("C"))
	if err != nil {
		t.Fatal(err)
	}
	h := newHarness(Options{Handle: ph})
	if err := h.app.PopulateDefaults(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.app.Save(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !h.app.HasUnsavedChanges() || len(h.exporter.calls) != 0 {
		t.Fatalf("cancelled save must not clear dirty or export")
	}
}
