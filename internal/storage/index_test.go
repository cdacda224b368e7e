/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"blockfactory/internal/domain"

	_ "modernc.org/sqlite"
)

func TestIndexInitCreatesWALAndMetaVersion(t *testing.T) {
	root := t.TempDir()
	if _, err := InitProject(root, sampleProject(t, "Index Test")); err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	idxPath := IndexPath(root)
	if _, err := os.Stat(idxPath); err != nil {
		t.Fatalf("index file missing at %s: %v", idxPath, err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(idxPath))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" && mode != "WAL" {
		t.Fatalf("expected WAL mode, got %s", mode)
	}
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('meta','version','documents','fts_documents')").Scan(&cnt); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if cnt != 4 {
		t.Fatalf("expected 4 tables, got %d", cnt)
	}
	// project + 4 resources + 1 block
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&cnt); err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if cnt != 6 {
		t.Fatalf("documents after InitProject: got %d want 6", cnt)
	}
	var ftsCount int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fts_documents WHERE fts_documents MATCH 'math_plus'").Scan(&ftsCount); err != nil {
		t.Fatalf("fts query: %v", err)
	}
	if ftsCount == 0 {
		t.Fatalf("expected FTS to find the indexed block")
	}
}

func TestDocumentsFromProject(t *testing.T) {
	p := sampleProject(t, "Docs")
	docs := DocumentsFromProject(p)
	byPath := map[string]Document{}
	for _, d := range docs {
		byPath[d.Path] = d
	}
	tests := []struct {
		path, typ, text string
	}{
		{"project:name", DocTypeProject, ""},
		{"library:MyFirstBlockLibrary", "library", "math_plus"},
		{"library:MyFirstBlockLibrary/block:math_plus", DocTypeBlock, `{"type":"math_plus","message0":"plus"}`},
		{"toolbox:Level 1 Toolbox", "toolbox", `<xml><block type="math_plus"></block></xml>`},
		{"workspace-config:Readonly", "workspace-config", "readOnly=true"},
	}
	for _, tc := range tests {
		d, ok := byPath[tc.path]
		if !ok {
			t.Fatalf("missing document %q in %+v", tc.path, docs)
		}
		if d.Type != tc.typ || d.Text != tc.text {
			t.Fatalf("document %q: got type=%q text=%q want type=%q text=%q", tc.path, d.Type, d.Text, tc.typ, tc.text)
		}
	}
	if DocumentsFromProject(nil) != nil {
		t.Fatalf("expected nil documents for nil project")
	}
}

func TestUpdateIndexReplacesDocuments(t *testing.T) {
	root := t.TempDir()
	p := sampleProject(t, "Update")
	ph, err := InitProject(root, p)
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}
	if !ph.Project.Delete(domain.KindToolbox, "Level 1 Toolbox") {
		t.Fatalf("toolbox not found")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := UpdateIndex(ctx, root, ph.Project); err != nil {
		t.Fatalf("UpdateIndex: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{Types: []string{"toolbox"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 0 {
		t.Fatalf("expected removed toolbox to leave the index, got %+v", res)
	}
}

func TestBuildIndexIfEmptyKeepsExistingRows(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := sampleProject(t, "Lazy")
	if err := BuildIndexIfEmpty(ctx, root, p); err != nil {
		t.Fatalf("BuildIndexIfEmpty: %v", err)
	}
	// A second call with an empty project must not wipe the built index.
	if err := BuildIndexIfEmpty(ctx, root, nil); err != nil {
		t.Fatalf("BuildIndexIfEmpty again: %v", err)
	}
	res, err := Search(ctx, root, SearchQuery{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 6 {
		t.Fatalf("documents: got %d want 6", len(res))
	}
}
