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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blockfactory/internal/domain"
	"blockfactory/internal/resource"
	"blockfactory/internal/undo"
)

// UpdateToolboxXML replaces the XML of the named toolbox.
func (a *App) UpdateToolboxXML(name, xml string) error {
	return a.edit(domain.KindToolbox, name, func(r domain.Resource) {
		r.(*domain.Toolbox).XML = xml
	})
}

// UpdateWorkspaceContentsXML replaces the XML of the named workspace contents.
func (a *App) UpdateWorkspaceContentsXML(name, xml string) error {
	return a.edit(domain.KindWorkspaceContents, name, func(r domain.Resource) {
		r.(*domain.WorkspaceContents).XML = xml
	})
}

// SetConfigOption sets one injection option; an empty value removes it.
func (a *App) SetConfigOption(name, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("option key must not be blank")
	}
	return a.edit(domain.KindWorkspaceConfiguration, name, func(r domain.Resource) {
		opts := r.(*domain.WorkspaceConfiguration).Options
		if value == "" {
			delete(opts, key)
			return
		}
		opts[key] = value
	})
}

// PutBlock adds or replaces a block definition in library.
func (a *App) PutBlock(library string, def domain.BlockDefinition) error {
	if strings.TrimSpace(def.Type) == "" {
		return errors.New("block type must not be blank")
	}
	return a.edit(domain.KindBlockLibrary, library, func(r domain.Resource) {
		r.(*domain.BlockLibrary).Blocks[def.Type] = def
	})
}

// RemoveBlock deletes a block definition from library.
func (a *App) RemoveBlock(library, blockType string) error {
	lib, err := a.library(library)
	if err != nil {
		return err
	}
	if _, ok := lib.Blocks[blockType]; !ok {
		return fmt.Errorf("library %q has no block %q", library, blockType)
	}
	return a.edit(domain.KindBlockLibrary, library, func(r domain.Resource) {
		delete(r.(*domain.BlockLibrary).Blocks, blockType)
	})
}

// edit snapshots the resource for undo, applies fn and marks the project dirty.
func (a *App) edit(kind domain.Kind, name string, fn func(domain.Resource)) error {
	if a.resolving {
		return ErrBusy
	}
	res, ok := a.store.Get(kind, name)
	if !ok {
		return &resource.NotFoundError{Kind: kind, Name: name}
	}
	a.snapshot(res)
	fn(res)
	a.markDirty()
	return nil
}

func historyKey(res domain.Resource) string { return undo.ResourceKey(res.Kind().Slug(), res.Name()) }

func (a *App) snapshot(res domain.Resource) {
	blob, err := json.Marshal(res)
	if err != nil {
		a.log.Warn("snapshot skipped", slog.String("name", res.Name()), slog.Any("err", err))
		return
	}
	a.history.PushSnapshot(undo.Snapshot{Key: historyKey(res), Blob: blob, TS: time.Now()})
}

// CanUndo reports whether the named resource has edits to undo.
func (a *App) CanUndo(kind domain.Kind, name string) bool {
	return a.history.CanUndo(undo.ResourceKey(kind.Slug(), name))
}

// Undo reverts the last payload edit of a resource. It reports false when there is nothing
// to undo.
func (a *App) Undo(kind domain.Kind, name string) (bool, error) {
	return a.step(kind, name, a.history.Undo)
}

// Redo re-applies an undone edit.
func (a *App) Redo(kind domain.Kind, name string) (bool, error) {
	return a.step(kind, name, a.history.Redo)
}

func (a *App) step(kind domain.Kind, name string, pop func(string, []byte) (undo.Snapshot, bool)) (bool, error) {
	if a.resolving {
		return false, ErrBusy
	}
	res, ok := a.store.Get(kind, name)
	if !ok {
		return false, &resource.NotFoundError{Kind: kind, Name: name}
	}
	current, err := json.Marshal(res)
	if err != nil {
		return false, fmt.Errorf("encode %s %q: %w", kind, name, err)
	}
	snap, ok := pop(historyKey(res), current)
	if !ok {
		return false, nil
	}
	if err := restorePayload(res, snap.Blob); err != nil {
		return false, fmt.Errorf("restore %s %q: %w", kind, name, err)
	}
	a.markDirty()
	return true, nil
}

// restorePayload copies the payload from blob into res. Identity fields are left alone.
func restorePayload(res domain.Resource, blob []byte) error {
	switch r := res.(type) {
	case *domain.Toolbox:
		var v domain.Toolbox
		if err := json.Unmarshal(blob, &v); err != nil {
			return err
		}
		r.XML = v.XML
	case *domain.WorkspaceContents:
		var v domain.WorkspaceContents
		if err := json.Unmarshal(blob, &v); err != nil {
			return err
		}
		r.XML = v.XML
	case *domain.WorkspaceConfiguration:
		var v domain.WorkspaceConfiguration
		if err := json.Unmarshal(blob, &v); err != nil {
			return err
		}
		if v.Options == nil {
			v.Options = map[string]string{}
		}
		r.Options = v.Options
	case *domain.BlockLibrary:
		var v domain.BlockLibrary
		if err := json.Unmarshal(blob, &v); err != nil {
			return err
		}
		if v.Blocks == nil {
			v.Blocks = map[string]domain.BlockDefinition{}
		}
		r.Blocks = v.Blocks
	default:
		return fmt.Errorf("unsupported resource %T", res)
	}
	return nil
}
