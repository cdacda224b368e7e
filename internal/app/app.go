/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package app is the orchestration layer of the block factory. An App owns one project with
// its resource store and popup coordinator, and drives the environment switcher in response
// to user actions. It does not lock: callers serialise access, typically from the UI thread.
package app

import (
	"errors"
	"log/slog"
	"sync"

	"blockfactory/internal/domain"
	"blockfactory/internal/environment"
	applog "blockfactory/internal/log"
	"blockfactory/internal/popup"
	"blockfactory/internal/resource"
	"blockfactory/internal/storage"
	"blockfactory/internal/telemetry"
	"blockfactory/internal/undo"
)

// ErrBusy is returned by mutating operations invoked while a naming prompt is still open.
var ErrBusy = errors.New("app: a naming prompt is in progress")

// View shows resources and dismisses the modal layer.
type View interface {
	environment.View
	CloseModal()
}

// Navigator signals once that the UI is ready for content.
type Navigator interface {
	Ready(func())
}

// Exporter receives generated documents. The result of an export is never inspected.
type Exporter interface {
	Export(content, filename, mimeType string)
}

// Options wires an App. Every collaborator is optional; missing ones are replaced by no-ops,
// which is how the CLI runs the orchestrator headless.
type Options struct {
	// ProjectName names the project created when neither Project nor Handle is given.
	ProjectName string
	Project     *domain.Project
	// Handle is where Save persists; it takes precedence over Project.
	Handle *storage.ProjectHandle

	View      View
	Editor    environment.Editor
	Navigator Navigator
	Prompter  resource.Prompter
	// Presenter shows popups. Defaults to one that only closes the view's modal on exit.
	Presenter popup.Presenter
	Exporter  Exporter
	Metrics   *telemetry.Metrics
	Defaults  *Defaults
	Undo      undo.Config
}

// App is the orchestrator.
type App struct {
	project  *domain.Project
	handle   *storage.ProjectHandle
	store    *resource.Store
	popups   *popup.Coordinator
	switcher *environment.Switcher

	view      View
	navigator Navigator
	prompter  resource.Prompter
	exporter  Exporter
	metrics   *telemetry.Metrics
	defaults  *Defaults
	undoCfg   undo.Config
	history   *undo.Manager

	resolving bool
	dirty     bool
	initOnce  sync.Once
	log       *slog.Logger
}

// New constructs the project, store, popup coordinator and switcher.
func New(opts Options) *App {
	proj := opts.Project
	if opts.Handle != nil && opts.Handle.Project != nil {
		proj = opts.Handle.Project
	}
	if proj == nil {
		proj = domain.NewProject(opts.ProjectName)
	}
	proj.EnsureCollections()

	a := &App{
		project:   proj,
		handle:    opts.Handle,
		store:     resource.NewStore(proj),
		view:      opts.View,
		navigator: opts.Navigator,
		prompter:  opts.Prompter,
		exporter:  opts.Exporter,
		metrics:   opts.Metrics,
		defaults:  opts.Defaults,
		undoCfg:   opts.Undo,
		history:   undo.NewManager(opts.Undo),
		log:       applog.WithComponent("app"),
	}
	if a.view == nil {
		a.view = nopView{}
	}
	if a.prompter == nil {
		a.prompter = resource.PrompterFunc(func(string, string) (string, bool) { return "", false })
	}
	if a.exporter == nil {
		a.exporter = nopExporter{}
	}
	if a.defaults == nil {
		a.defaults = BuiltinDefaults()
	}
	editor := opts.Editor
	if editor == nil {
		editor = nopEditor{}
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = modalPresenter{view: a.view}
	}
	a.popups = popup.NewCoordinator(presenter)
	a.switcher = environment.NewSwitcher(a.view, editor, a.popups, a.store)
	return a
}

// Init registers the one-shot default-content callback with the navigator. Without a
// navigator the defaults are populated immediately. Calling Init again has no effect. The
// callback populates even while a naming loop is open, since it fires only once.
func (a *App) Init() {
	a.initOnce.Do(func() {
		ready := func() {
			if err := a.populateDefaults(); err != nil {
				applog.WithOperation(a.log, "init").Error("populate defaults", slog.Any("err", err))
			}
		}
		if a.navigator == nil {
			ready()
			return
		}
		var once sync.Once
		a.navigator.Ready(func() { once.Do(ready) })
	})
}

// Project returns the live project.
func (a *App) Project() *domain.Project { return a.project }

// Store returns the resource store.
func (a *App) Store() *resource.Store { return a.store }

// Popups returns the popup coordinator.
func (a *App) Popups() *popup.Coordinator { return a.popups }

// Selection returns what the environment currently shows.
func (a *App) Selection() (environment.Selection, bool) { return a.switcher.Current() }

// Handle returns the persistence handle, or nil for an unsaved in-memory project.
func (a *App) Handle() *storage.ProjectHandle { return a.handle }

// HasUnsavedChanges reports whether the project changed since the last successful save.
func (a *App) HasUnsavedChanges() bool { return a.dirty }

// SwitchTo shows the named resource of kind in its editor.
func (a *App) SwitchTo(kind domain.Kind, name string) error {
	if a.resolving {
		return ErrBusy
	}
	res, ok := a.store.Get(kind, name)
	if !ok {
		return &resource.NotFoundError{Kind: kind, Name: name}
	}
	return a.switchTo(environment.EditorFor(kind), res, "switch")
}

func (a *App) switchTo(kind environment.EditorKind, res domain.Resource, op string) error {
	if err := a.switcher.SwitchTo(kind, res); err != nil {
		return a.contractError(op, err)
	}
	a.metrics.Switched(kind.String())
	return nil
}

// contractError logs contract violations at ERROR and counts them. Other errors pass through.
func (a *App) contractError(op string, err error) error {
	var missing *environment.MissingResourceError
	var unknown *popup.UnknownPopupModeError
	switch {
	case errors.As(err, &missing):
		a.metrics.ContractError("MissingResourceError")
	case errors.As(err, &unknown):
		a.metrics.ContractError("UnknownPopupModeError")
	default:
		return err
	}
	applog.WithOperation(a.log, op).Error("contract violation", slog.Any("err", err))
	return err
}

// resolve runs the naming loop with the busy flag raised. what labels metrics and logs.
func (a *App) resolve(what, label string, taken func(string) bool) (string, bool) {
	a.resolving = true
	defer func() { a.resolving = false }()
	name, ok := resource.Resolve(a.prompter, label, taken)
	if !ok {
		a.metrics.NamingCancelled(what)
		a.log.Debug("naming cancelled", slog.String("what", what))
	}
	return name, ok
}

func (a *App) markDirty() { a.dirty = true }

type nopView struct{}

func (nopView) SwitchView(environment.ViewID, domain.Resource) {}
func (nopView) CloseModal()                                    {}

type nopEditor struct{}

func (nopEditor) Activate(environment.ControllerID, domain.Resource) {}

type nopExporter struct{}

func (nopExporter) Export(string, string, string) {}

// modalPresenter maps popup teardown onto the view's modal layer.
type modalPresenter struct{ view View }

func (modalPresenter) ShowPopup(popup.Popup) {}

func (p modalPresenter) HidePopup(popup.Popup) { p.view.CloseModal() }
