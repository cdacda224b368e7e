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
	applog "blockfactory/internal/log"
	"blockfactory/internal/popup"
	"blockfactory/internal/undo"
)

// CreatePopup builds the popup for mode and opens it, exiting any popup already open.
// NEW_BLOCK targets the library on screen, or the first library when none is shown.
func (a *App) CreatePopup(mode popup.Mode) error {
	return a.openPopup(popup.Request{Mode: mode, Library: a.targetLibrary()})
}

// Preview opens a read-only preview of res.
func (a *App) Preview(res domain.Resource) error {
	return a.openPopup(popup.Request{Mode: popup.ModePreview, Resource: res})
}

func (a *App) openPopup(req popup.Request) error {
	if a.resolving {
		return ErrBusy
	}
	p, err := popup.Build(req, a.store)
	if err != nil {
		return a.contractError("create-popup", err)
	}
	a.popups.Open(p)
	a.metrics.PopupOpened(p.Mode().String())
	return nil
}

func (a *App) targetLibrary() string {
	if sel, ok := a.switcher.Current(); ok {
		if lib, isLib := sel.Resource.(*domain.BlockLibrary); isLib && a.store.Exists(domain.KindBlockLibrary, lib.Name()) {
			return lib.Name()
		}
	}
	if names := a.store.Names(domain.KindBlockLibrary); len(names) > 0 {
		return names[0]
	}
	return ""
}

// CompletePopup runs the completion flow of the active popup. Creation popups prompt for a
// name; a cancelled prompt closes the popup without creating anything. A mandatory
// NEW_LIBRARY continues into NEW_BLOCK for the library it created.
func (a *App) CompletePopup() error {
	if a.resolving {
		return ErrBusy
	}
	p, ok := a.popups.Current()
	if !ok {
		return nil
	}
	l := applog.WithOperation(a.log, "complete-popup").With(slog.String("mode", p.Mode().String()))
	l.Debug("completing popup")

	switch v := p.(type) {
	case *popup.NewLibrary:
		res, err := a.createNamed(domain.KindBlockLibrary, LabelLibrary)
		if err != nil {
			return err
		}
		if res == nil {
			a.popups.Close()
			return nil
		}
		if v.Mandatory {
			next := &popup.NewBlock{Library: res.Name()}
			a.popups.Open(next)
			a.metrics.PopupOpened(next.Mode().String())
		}
		return nil
	case *popup.NewBlock:
		def, err := a.createBlock(v.Library)
		if err != nil {
			a.popups.Close()
			return err
		}
		if def == nil {
			a.popups.Close()
		}
		return nil
	case *popup.NewConfig:
		res, err := a.createNamed(domain.KindWorkspaceConfiguration, LabelWorkspaceConfig)
		if res == nil {
			a.popups.Close()
		}
		return err
	case *popup.NewProject:
		name, ok := a.resolve("project", LabelProject, func(string) bool { return false })
		a.popups.Close()
		if !ok {
			return nil
		}
		a.resetProject(name)
		return a.PopulateDefaults()
	case *popup.Preview:
		a.popups.Close()
		return nil
	default:
		return fmt.Errorf("complete popup: unhandled %T", p)
	}
}

// resetProject replaces the project contents in place, so the store and the persistence
// handle keep pointing at the live project.
func (a *App) resetProject(name string) {
	*a.project = *domain.NewProject(name)
	a.history = undo.NewManager(a.undoCfg)
	a.markDirty()
	applog.WithOperation(a.log, "new-project").Info("project reset", slog.String("project", name))
}
