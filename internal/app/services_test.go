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
	"os"
	"path/filepath"
	"testing"

	"blockfactory/internal/config"
	"blockfactory/internal/domain"
	"blockfactory/internal/storage"
)

func TestServices_SaveExportsToProjectDir(t *testing.T) {
	dir := t.TempDir()
	ph, err := storage.InitProject(dir, domain.NewProject("Wired"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()
	svc, err := NewServices(context.Background(), cfg, "", dir)
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	a := New(Options{Handle: ph, Exporter: svc.Exports, Metrics: svc.Metrics})
	if err := a.PopulateDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := a.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	svc.Close()
	b, err := os.ReadFile(filepath.Join(dir, storage.ExportsDirName, "Wired.json"))
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("empty export")
	}
}

func TestServices_RejectsUnknownSink(t *testing.T) {
	cfg := config.Defaults()
	cfg.Export.Sink = "carrier-pigeon"
	if _, err := NewServices(context.Background(), cfg, "", t.TempDir()); err == nil {
		t.Fatalf("expected error")
	}
}
