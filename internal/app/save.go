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
	"fmt"
	"log/slog"
	"time"

	"blockfactory/internal/domain"
	"blockfactory/internal/export"
	applog "blockfactory/internal/log"
	"blockfactory/internal/storage"
	"blockfactory/internal/telemetry"
)

// ErrNoLocation is returned by Save for a project that was never saved to disk.
var ErrNoLocation = errors.New("project has no location on disk")

// Save persists the project to its handle and hands the generated library document to the
// exporter. The export runs on its own; its outcome does not affect Save.
func (a *App) Save(ctx context.Context) error {
	if a.resolving {
		return ErrBusy
	}
	if a.handle == nil {
		return ErrNoLocation
	}
	return a.save(ctx, func() error { return storage.Save(a.handle) })
}

// SaveAs persists the project under root and makes root its location.
func (a *App) SaveAs(ctx context.Context, root string) error {
	if a.resolving {
		return ErrBusy
	}
	if a.handle == nil {
		a.handle = &storage.ProjectHandle{Project: a.project}
	}
	return a.save(ctx, func() error { return storage.SaveAs(a.handle, root) })
}

func (a *App) save(ctx context.Context, persist func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.handle.Project = a.project
	start := time.Now()
	if err := persist(); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	a.metrics.ObserveSave(time.Since(start))
	a.dirty = false

	l := applog.WithOperation(a.log, "save")
	ctx = applog.ContextWithProject(ctx, a.project.Name)
	if doc, err := export.Document(a.project); err != nil {
		l.WarnContext(ctx, "export document", slog.Any("err", err))
	} else {
		a.exporter.Export(doc, export.Filename(a.project.Name, ".json"), export.MimeJSON)
	}
	total := 0
	for _, k := range domain.Kinds {
		total += a.project.Count(k)
	}
	telemetry.Event(telemetry.EventProjectSaved, map[string]any{"resources": total})
	l.InfoContext(ctx, "project saved", slog.String("root", a.handle.Root), slog.Int("resources", total))
	return nil
}
