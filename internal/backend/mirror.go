/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"blockfactory/internal/domain"
	applog "blockfactory/internal/log"
	"blockfactory/internal/storage"
)

// ProjectRow is the mirror's listing projection of a project.
type ProjectRow struct {
	ID        int64
	Name      string
	UpdatedAt time.Time
	Version   int64
}

// Mirror pushes proj into the remote database: the project row is upserted by name and its
// version bumped, the searchable documents are replaced and a manifest snapshot is appended.
// Everything happens in one transaction.
func Mirror(ctx context.Context, db *sql.DB, proj *domain.Project) (ProjectRow, error) {
	if db == nil {
		return ProjectRow{}, errors.New("nil db")
	}
	if proj == nil {
		return ProjectRow{}, errors.New("nil project")
	}
	l := applog.WithOperation(applog.WithComponent("backend"), "mirror").With(slog.String("project", proj.Name))
	snap, err := json.Marshal(proj)
	if err != nil {
		return ProjectRow{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ProjectRow{}, fmt.Errorf("begin tx: %w", err)
	}
	row := ProjectRow{Name: proj.Name}
	err = tx.QueryRowContext(ctx, `INSERT INTO projects(name) VALUES($1)
		ON CONFLICT (name) DO UPDATE SET version = projects.version + 1, updated_at = now()
		RETURNING id, version, updated_at`, proj.Name).Scan(&row.ID, &row.Version, &row.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return ProjectRow{}, fmt.Errorf("upsert project: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE project_id = $1`, row.ID); err != nil {
		_ = tx.Rollback()
		return ProjectRow{}, fmt.Errorf("clear documents: %w", err)
	}
	docs := storage.DocumentsFromProject(proj)
	for _, d := range docs {
		rid := sql.NullString{String: d.ResourceID, Valid: d.ResourceID != ""}
		if _, err := tx.ExecContext(ctx, `INSERT INTO documents(project_id, doc_type, external_ref, name, resource_id, raw_text)
			VALUES($1,$2,$3,$4,$5,$6)`, row.ID, d.Type, d.Path, d.Name, rid, d.Text); err != nil {
			_ = tx.Rollback()
			return ProjectRow{}, fmt.Errorf("insert document %s: %w", d.Path, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO manifest_snapshots(project_id, version, snapshot) VALUES($1,$2,$3)`,
		row.ID, row.Version, string(snap)); err != nil {
		_ = tx.Rollback()
		return ProjectRow{}, fmt.Errorf("insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ProjectRow{}, fmt.Errorf("commit: %w", err)
	}
	l.Info("project mirrored", slog.Int64("id", row.ID), slog.Int64("version", row.Version), slog.Int("documents", len(docs)))
	return row, nil
}

// ListProjects returns the mirrored projects, most recently updated first.
func ListProjects(ctx context.Context, db *sql.DB) ([]ProjectRow, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, updated_at, version FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var list []ProjectRow
	for rows.Next() {
		var p ProjectRow
		if err := rows.Scan(&p.ID, &p.Name, &p.UpdatedAt, &p.Version); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// LatestSnapshot loads the newest mirrored manifest of a project.
// It returns sql.ErrNoRows (wrapped) when the project was never mirrored.
func LatestSnapshot(ctx context.Context, db *sql.DB, projectID int64) (*domain.Project, int64, error) {
	var (
		version int64
		raw     []byte
	)
	err := db.QueryRowContext(ctx, `SELECT version, snapshot FROM manifest_snapshots
		WHERE project_id = $1 ORDER BY version DESC, id DESC LIMIT 1`, projectID).Scan(&version, &raw)
	if err != nil {
		return nil, 0, fmt.Errorf("latest snapshot: %w", err)
	}
	var p domain.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	p.EnsureCollections()
	return &p, version, nil
}
