//go:build fyne && cgo

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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"blockfactory/internal/app"
	"blockfactory/internal/config"
	"blockfactory/internal/crash"
	"blockfactory/internal/domain"
	"blockfactory/internal/environment"
	"blockfactory/internal/export"
	applog "blockfactory/internal/log"
	"blockfactory/internal/popup"
	"blockfactory/internal/storage"
	"blockfactory/internal/telemetry"
	"blockfactory/internal/version"
)

// shell is the desktop front-end. Every orchestrator call runs on one worker goroutine fed by
// actions; widgets are only touched through fyne.Do.
type shell struct {
	win     fyne.Window
	actions chan func()
	done    chan struct{}
	log     *slog.Logger
	cfg     config.AppConfig
	secret  string

	// worker-owned
	orch    *app.App
	svc     *app.Services
	kind    domain.Kind
	shown   domain.Resource
	ready   []func()
	started bool

	// UI-owned
	names  []string
	list   *widget.List
	title  *widget.Label
	editor *widget.Entry
	status *widget.Label
	modal  modalSlot
}

// Run starts the desktop UI. projectDir, when set, is opened immediately.
func Run(projectDir string) error {
	cfg, secret, err := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("ui")
	if err != nil {
		l.Warn("config load", slog.Any("err", err))
	}
	l.Info("starting UI", slog.String("version", version.String()))
	if projectDir == "" {
		projectDir = cfg.General.ProjectDir
	}
	var ph *storage.ProjectHandle
	if projectDir != "" {
		if ph, err = storage.Open(projectDir); err != nil {
			return fmt.Errorf("open project: %w", err)
		}
	}
	telemetry.NewDefault(telemetry.FromEnv().WithOptIn(cfg.General.TelemetryOptIn))
	telemetry.Event(telemetry.EventAppStarted, map[string]any{"surface": "fyne"})

	fyneApp := fyneapp.NewWithID("blockfactory")
	prefs := fyneApp.Preferences()
	s := &shell{
		win:     fyneApp.NewWindow("Block Factory"),
		actions: make(chan func(), 16),
		done:    make(chan struct{}),
		log:     l,
		cfg:     cfg,
		secret:  secret,
		kind:    domain.KindBlockLibrary,
	}
	s.build(prefs)
	go s.work()
	s.do(func() { s.attach(ph) })
	fyneApp.Lifecycle().SetOnStarted(func() {
		s.do(func() {
			s.started = true
			for _, fn := range s.ready {
				fn()
			}
			s.ready = nil
		})
	})
	if ph != nil {
		addRecentProject(prefs, ph.Root)
	}
	s.win.ShowAndRun()
	close(s.actions)
	<-s.done
	s.svc.Close()
	telemetry.Flush(context.Background())
	return nil
}

// attach replaces the orchestrator with one editing ph (a new untitled project when nil).
// Export services follow the project so file exports land in its exports directory.
func (s *shell) attach(ph *storage.ProjectHandle) {
	root := ""
	if ph != nil {
		ph.SkipIndex = !s.cfg.Storage.IndexEnabled
		root = ph.Root
	}
	svc, err := app.NewServices(context.Background(), s.cfg, s.secret, root)
	if err != nil {
		s.log.Warn("export disabled", slog.Any("err", err))
		m := telemetry.NewMetrics("")
		svc = &app.Services{Config: s.cfg, Metrics: m, Exports: export.NewService(nil, m)}
	}
	s.svc.Close()
	s.svc = svc
	s.shown = nil
	s.orch = app.New(app.Options{
		ProjectName: "Untitled",
		Handle:      ph,
		View:        s,
		Editor:      s,
		Navigator:   s,
		Prompter:    s,
		Presenter:   s,
		Exporter:    svc.Exports,
		Metrics:     svc.Metrics,
	})
	s.orch.Init()
}

// openProject asks before dropping unsaved changes, then attaches the project at root.
func (s *shell) openProject(prefs fyne.Preferences, root string) {
	load := func() {
		s.do(func() {
			ph, err := storage.Open(root)
			if err != nil {
				s.report("open", err, "")
				return
			}
			s.attach(ph)
			fyne.Do(func() {
				s.title.SetText("")
				s.editor.SetText("")
			})
			s.setStatus("Opened " + ph.Root)
		})
		addRecentProject(prefs, root)
	}
	s.do(func() {
		dirty := s.orch.HasUnsavedChanges()
		fyne.Do(func() {
			if !dirty {
				load()
				return
			}
			dialog.ShowConfirm("Unsaved changes", "Open another project without saving?", func(ok bool) {
				if ok {
					load()
				}
			}, s.win)
		})
	})
}

func (s *shell) work() {
	defer close(s.done)
	defer crash.RecoverFunc(func() *storage.ProjectHandle {
		if s.orch == nil {
			return nil
		}
		return s.orch.Handle()
	})
	for fn := range s.actions {
		fn()
		s.refresh()
	}
}

// do queues fn for the worker.
func (s *shell) do(fn func()) { s.actions <- fn }

// try runs fn on the worker and reports a returned error in a dialog.
func (s *shell) try(op string, fn func() error) {
	s.do(func() {
		if err := fn(); err != nil {
			s.log.Error("action failed", slog.String("op", op), slog.Any("err", err))
			fyne.Do(func() { dialog.ShowError(err, s.win) })
		}
	})
}

// refresh publishes the worker's view of the project to the widgets.
func (s *shell) refresh() {
	names := s.orch.Store().Names(s.kind)
	title := fmt.Sprintf("Block Factory %s", s.orch.Project().Name)
	if s.orch.HasUnsavedChanges() {
		title += " *"
	}
	fyne.Do(func() {
		s.names = names
		s.list.Refresh()
		s.win.SetTitle(title)
	})
}

func (s *shell) build(prefs fyne.Preferences) {
	s.title = widget.NewLabel("")
	s.status = widget.NewLabel("Ready")
	s.editor = widget.NewMultiLineEntry()
	s.editor.Wrapping = fyne.TextWrapOff

	s.list = widget.NewList(
		func() int { return len(s.names) },
		func() fyne.CanvasObject { return widget.NewLabel("resource") },
		func(id widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(s.names[id]) },
	)
	s.list.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(s.names) {
			return
		}
		name := s.names[id]
		s.try("switch", func() error { return s.orch.SwitchTo(s.kind, name) })
	}

	kinds := make([]string, 0, len(domain.Kinds))
	for _, k := range domain.Kinds {
		kinds = append(kinds, k.String())
	}
	kindSelect := widget.NewSelect(kinds, func(label string) {
		for _, k := range domain.Kinds {
			if k.String() == label {
				kind := k
				s.do(func() { s.kind = kind })
			}
		}
	})
	kindSelect.SetSelected(domain.KindBlockLibrary.String())

	apply := widget.NewButton("Apply", func() {
		text := s.editor.Text
		s.try("apply", func() error {
			if s.shown == nil {
				return nil
			}
			return ApplyPayload(s.orch, s.shown, text)
		})
	})
	undoBtn := widget.NewButton("Undo", func() { s.step((*app.App).Undo) })
	redoBtn := widget.NewButton("Redo", func() { s.step((*app.App).Redo) })
	removeBtn := widget.NewButton("Remove", func() {
		s.try("remove", func() error {
			if s.shown == nil {
				return nil
			}
			res := s.shown
			s.shown = nil
			fyne.Do(func() {
				s.title.SetText("")
				s.editor.SetText("")
			})
			return s.orch.Remove(res.Kind(), res.Name())
		})
	})

	left := container.NewBorder(kindSelect, nil, nil, nil, s.list)
	center := container.NewBorder(s.title, container.NewHBox(apply, undoBtn, redoBtn, removeBtn), nil, nil, s.editor)
	split := container.NewHSplit(left, center)
	split.Offset = 0.25
	s.win.SetContent(container.NewBorder(nil, s.status, nil, nil, split))
	s.win.SetMainMenu(s.menu(prefs))
	s.win.Resize(fyne.NewSize(float32(prefs.IntWithFallback("window.width", 1100)),
		float32(prefs.IntWithFallback("window.height", 720))))
	s.win.SetCloseIntercept(func() {
		size := s.win.Canvas().Size()
		prefs.SetInt("window.width", int(size.Width))
		prefs.SetInt("window.height", int(size.Height))
		s.do(func() {
			dirty := s.orch.HasUnsavedChanges()
			fyne.Do(func() {
				if !dirty {
					s.win.Close()
					return
				}
				dialog.ShowConfirm("Unsaved changes", "Quit without saving?", func(ok bool) {
					if ok {
						s.win.Close()
					}
				}, s.win)
			})
		})
	})
}

func (s *shell) step(fn func(*app.App, domain.Kind, string) (bool, error)) {
	s.try("history", func() error {
		if s.shown == nil {
			return nil
		}
		ok, err := fn(s.orch, s.shown.Kind(), s.shown.Name())
		if err != nil || !ok {
			return err
		}
		text := PayloadText(s.shown)
		fyne.Do(func() { s.editor.SetText(text) })
		return nil
	})
}

func (s *shell) menu(prefs fyne.Preferences) *fyne.MainMenu {
	popupItem := func(label string, mode popup.Mode) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() {
			s.try("create-popup", func() error { return s.orch.CreatePopup(mode) })
		})
	}
	newMenu := fyne.NewMenu("New",
		popupItem("Block…", popup.ModeNewBlock),
		popupItem("Block Library…", popup.ModeNewLibrary),
		popupItem("Workspace Configuration…", popup.ModeNewConfig),
		fyne.NewMenuItem("Toolbox…", func() {
			s.try("create", func() error { _, err := s.orch.CreateToolbox(); return err })
		}),
		fyne.NewMenuItem("Workspace Contents…", func() {
			s.try("create", func() error { _, err := s.orch.CreateWorkspaceContents(); return err })
		}),
		fyne.NewMenuItemSeparator(),
		popupItem("Project…", popup.ModeNewProject),
	)

	openItem := fyne.NewMenuItem("Open…", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			s.openProject(prefs, uri.Path())
		}, s.win)
	})
	saveItem := fyne.NewMenuItem("Save", func() {
		s.do(func() {
			err := s.orch.Save(context.Background())
			if errors.Is(err, app.ErrNoLocation) {
				fyne.Do(s.saveAs)
				return
			}
			s.report("save", err, "Saved")
		})
	})
	saveAsItem := fyne.NewMenuItem("Save As…", s.saveAs)
	previewItem := fyne.NewMenuItem("Preview", func() {
		s.try("preview", func() error {
			if s.shown == nil {
				return nil
			}
			return s.orch.Preview(s.shown)
		})
	})
	recent := fyne.NewMenuItem("Recent", nil)
	for _, p := range loadRecentProjects(prefs) {
		path := p
		recent.ChildMenu = appendMenuItem(recent.ChildMenu, fyne.NewMenuItem(filepath.Base(path), func() {
			s.openProject(prefs, path)
		}))
	}
	file := fyne.NewMenu("File", openItem, recent, saveItem, saveAsItem, fyne.NewMenuItemSeparator(), previewItem)
	return fyne.NewMainMenu(file, newMenu)
}

func appendMenuItem(m *fyne.Menu, item *fyne.MenuItem) *fyne.Menu {
	if m == nil {
		return fyne.NewMenu("", item)
	}
	m.Items = append(m.Items, item)
	return m
}

func (s *shell) saveAs() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		root := uri.Path()
		s.do(func() { s.report("save-as", s.orch.SaveAs(context.Background(), root), "Saved to "+root) })
	}, s.win)
}

func (s *shell) report(op string, err error, ok string) {
	if err != nil {
		s.log.Error("action failed", slog.String("op", op), slog.Any("err", err))
		fyne.Do(func() { dialog.ShowError(err, s.win) })
		return
	}
	s.setStatus(ok)
}

func (s *shell) setStatus(text string) { fyne.Do(func() { s.status.SetText(text) }) }

// SwitchView implements app.View.
func (s *shell) SwitchView(id environment.ViewID, res domain.Resource) {
	s.shown = res
	title := fmt.Sprintf("%s: %s", res.Kind(), res.Name())
	text := PayloadText(res)
	fyne.Do(func() {
		s.title.SetText(title)
		s.editor.SetText(text)
	})
	s.log.Debug("view switched", slog.String("view", id.String()))
}

// CloseModal implements app.View.
func (s *shell) CloseModal() {
	fyne.Do(s.modal.clear)
}

// Activate implements environment.Editor.
func (s *shell) Activate(id environment.ControllerID, res domain.Resource) {
	s.setStatus(fmt.Sprintf("Editing %s %q in the %s editor", res.Kind(), res.Name(), id))
}

// Ready implements app.Navigator; callbacks fire once the window is up.
func (s *shell) Ready(fn func()) {
	if s.started {
		fn()
		return
	}
	s.ready = append(s.ready, fn)
}

// PromptForName implements resource.Prompter. It blocks the worker until the dialog closes.
func (s *shell) PromptForName(label, errText string) (string, bool) {
	type answer struct {
		name string
		ok   bool
	}
	ch := make(chan answer, 1)
	fyne.Do(func() {
		entry := widget.NewEntry()
		items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
		if errText != "" {
			items = append(items, widget.NewFormItem("", widget.NewLabel(errText)))
		}
		d := dialog.NewForm(label, "OK", "Cancel", items, func(ok bool) {
			ch <- answer{name: entry.Text, ok: ok}
		}, s.win)
		d.Show()
	})
	a := <-ch
	return a.name, a.ok
}

// ShowPopup implements popup.Presenter. Answers are applied on the worker only while p is
// still the active popup.
func (s *shell) ShowPopup(p popup.Popup) {
	msg := popupMessage(p)
	fyne.Do(func() {
		var d *dialog.ConfirmDialog
		d = dialog.NewConfirm(p.Mode().String(), msg, func(ok bool) {
			if !s.modal.release(d) {
				return
			}
			if ok {
				s.try("complete-popup", func() error {
					if cur, open := s.orch.Popups().Current(); !open || cur != p {
						return nil
					}
					return s.orch.CompletePopup()
				})
				return
			}
			s.do(func() { s.orch.Popups().Dismiss(p) })
		}, s.win)
		s.modal.replace(d)
	})
}

// HidePopup implements popup.Presenter.
func (s *shell) HidePopup(popup.Popup) { s.CloseModal() }

func popupMessage(p popup.Popup) string {
	switch v := p.(type) {
	case *popup.NewBlock:
		return fmt.Sprintf("Create a new block in %q?", v.Library)
	case *popup.NewLibrary:
		if v.Mandatory {
			return "A block needs a library. Create a block library first?"
		}
		return "Create a new block library?"
	case *popup.NewProject:
		return "Start a new project? Unsaved changes are lost."
	case *popup.NewConfig:
		return "Create a new workspace configuration?"
	case *popup.Preview:
		return strings.TrimSpace(PayloadText(v.Resource))
	default:
		return p.Mode().String()
	}
}
