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
	"log/slog"

	"blockfactory/internal/domain"
	"blockfactory/internal/environment"
	applog "blockfactory/internal/log"
	"blockfactory/internal/resource"
	"blockfactory/internal/telemetry"
	"blockfactory/internal/undo"
)

// Prompt labels shown by the naming loop.
const (
	LabelToolbox           = "Enter the name of your new toolbox."
	LabelWorkspaceContents = "Enter the name of your new workspace contents."
	LabelWorkspaceConfig   = "Enter the name of your new workspace configuration."
	LabelLibrary           = "Enter the name of your new block library."
	LabelBlock             = "Enter the type of your new block."
	LabelProject           = "Enter the name of your new project."
)

// PopulateDefaults seeds an empty project with the demo library and opens it in the block
// editor. It does nothing when a library already exists.
func (a *App) PopulateDefaults() error {
	if a.resolving {
		return ErrBusy
	}
	return a.populateDefaults()
}

// populateDefaults skips the busy guard. The naming loop re-checks names after every answer,
// so seeding the demo library while a prompt is open cannot produce a duplicate.
func (a *App) populateDefaults() error {
	if !a.store.IsEmpty(domain.KindBlockLibrary) {
		return nil
	}
	res, err := a.store.Create(domain.KindBlockLibrary, a.defaults.DemoLibrary)
	if err != nil {
		return fmt.Errorf("create demo library: %w", err)
	}
	lib := res.(*domain.BlockLibrary)
	demo := a.defaults.demoBlock()
	lib.Blocks[demo.Type] = demo
	a.created(res)
	return a.switchTo(environment.BlockEditor, lib, "populate-defaults")
}

// CreateToolbox asks for a name, creates a seeded toolbox and opens it in the toolbox editor.
// A cancelled prompt returns (nil, nil).
func (a *App) CreateToolbox() (*domain.Toolbox, error) {
	res, err := a.create(domain.KindToolbox, LabelToolbox)
	if res == nil {
		return nil, err
	}
	return res.(*domain.Toolbox), err
}

// CreateWorkspaceContents is CreateToolbox for workspace contents.
func (a *App) CreateWorkspaceContents() (*domain.WorkspaceContents, error) {
	res, err := a.create(domain.KindWorkspaceContents, LabelWorkspaceContents)
	if res == nil {
		return nil, err
	}
	return res.(*domain.WorkspaceContents), err
}

// CreateWorkspaceConfiguration is CreateToolbox for workspace configurations.
func (a *App) CreateWorkspaceConfiguration() (*domain.WorkspaceConfiguration, error) {
	res, err := a.create(domain.KindWorkspaceConfiguration, LabelWorkspaceConfig)
	if res == nil {
		return nil, err
	}
	return res.(*domain.WorkspaceConfiguration), err
}

// CreateLibrary is CreateToolbox for block libraries; the library opens in the block editor.
func (a *App) CreateLibrary() (*domain.BlockLibrary, error) {
	res, err := a.create(domain.KindBlockLibrary, LabelLibrary)
	if res == nil {
		return nil, err
	}
	return res.(*domain.BlockLibrary), err
}

func (a *App) create(kind domain.Kind, label string) (domain.Resource, error) {
	if a.resolving {
		return nil, ErrBusy
	}
	return a.createNamed(kind, label)
}

// createNamed is create without the busy check, for flows that already hold it.
func (a *App) createNamed(kind domain.Kind, label string) (domain.Resource, error) {
	name, ok := a.resolve(kind.Slug(), label, func(n string) bool { return a.store.Exists(kind, n) })
	if !ok {
		return nil, nil
	}
	res, err := a.store.Create(kind, name)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	a.defaults.seed(res)
	a.created(res)
	if err := a.switchTo(environment.EditorFor(kind), res, "create"); err != nil {
		return res, err
	}
	return res, nil
}

// CreateBlock asks for a block type and adds a templated definition to library. Block types
// are unique within their library. A cancelled prompt returns (nil, nil).
func (a *App) CreateBlock(library string) (*domain.BlockDefinition, error) {
	if a.resolving {
		return nil, ErrBusy
	}
	return a.createBlock(library)
}

func (a *App) createBlock(library string) (*domain.BlockDefinition, error) {
	lib, err := a.library(library)
	if err != nil {
		return nil, err
	}
	blockType, ok := a.resolve("block", LabelBlock, func(n string) bool {
		_, taken := lib.Blocks[n]
		return taken
	})
	if !ok {
		return nil, nil
	}
	a.snapshot(lib)
	def := a.defaults.newBlock(blockType)
	lib.Blocks[blockType] = def
	a.markDirty()
	a.metrics.ResourceCreated("block")
	if err := a.switchTo(environment.BlockEditor, lib, "create-block"); err != nil {
		return &def, err
	}
	return &def, nil
}

// Remove destroys a resource and its undo history. The name becomes available again.
func (a *App) Remove(kind domain.Kind, name string) error {
	if a.resolving {
		return ErrBusy
	}
	if err := a.store.Remove(kind, name); err != nil {
		return err
	}
	a.history.Clear(undo.ResourceKey(kind.Slug(), name))
	a.metrics.ResourceRemoved(kind.Slug())
	a.markDirty()
	applog.WithOperation(a.log, "remove").Info("resource removed",
		slog.String("kind", kind.Slug()), slog.String("name", name))
	return nil
}

func (a *App) library(name string) (*domain.BlockLibrary, error) {
	res, ok := a.store.Get(domain.KindBlockLibrary, name)
	if !ok {
		return nil, &resource.NotFoundError{Kind: domain.KindBlockLibrary, Name: name}
	}
	return res.(*domain.BlockLibrary), nil
}

func (a *App) created(res domain.Resource) {
	a.markDirty()
	a.metrics.ResourceCreated(res.Kind().Slug())
	telemetry.Event(telemetry.EventResourceCreated, map[string]any{"kind": res.Kind().Slug()})
	applog.WithOperation(a.log, "create").Info("resource created",
		slog.String("kind", res.Kind().Slug()), slog.String("name", res.Name()))
}
