/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package environment decides which view and controller present a resource and performs the
// switch between editing environments.
package environment

import (
	"fmt"
	"log/slog"
	"reflect"

	"blockfactory/internal/domain"
	applog "blockfactory/internal/log"
)

// EditorKind is the closed set of editors.
type EditorKind int

const (
	BlockEditor EditorKind = iota + 1
	ToolboxEditor
	WorkspaceContentsEditor
	WorkspaceConfigEditor
)

func (k EditorKind) String() string {
	switch k {
	case BlockEditor:
		return "BlockEditor"
	case ToolboxEditor:
		return "ToolboxEditor"
	case WorkspaceContentsEditor:
		return "WorkspaceContentsEditor"
	case WorkspaceConfigEditor:
		return "WorkspaceConfigEditor"
	default:
		return fmt.Sprintf("EditorKind(%d)", int(k))
	}
}

// ViewID names a view in the view layer.
type ViewID int

const (
	BlockView ViewID = iota + 1
	ToolboxView
	WorkspaceView
)

func (v ViewID) String() string {
	switch v {
	case BlockView:
		return "block"
	case ToolboxView:
		return "toolbox"
	case WorkspaceView:
		return "workspace"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// ControllerID names an editor controller.
type ControllerID int

const (
	BlockController ControllerID = iota + 1
	ToolboxController
	WorkspaceController
)

func (c ControllerID) String() string {
	switch c {
	case BlockController:
		return "block"
	case ToolboxController:
		return "toolbox"
	case WorkspaceController:
		return "workspace"
	default:
		return fmt.Sprintf("controller(%d)", int(c))
	}
}

// Route maps an editor kind to its view and controller. Both workspace editors share the
// workspace pair. An unmapped kind is a programming error and panics.
func Route(kind EditorKind) (ViewID, ControllerID) {
	switch kind {
	case BlockEditor:
		return BlockView, BlockController
	case ToolboxEditor:
		return ToolboxView, ToolboxController
	case WorkspaceContentsEditor, WorkspaceConfigEditor:
		return WorkspaceView, WorkspaceController
	}
	panic(fmt.Sprintf("environment: no route for %v", kind))
}

// EditorFor returns the editor that edits resources of kind.
func EditorFor(kind domain.Kind) EditorKind {
	switch kind {
	case domain.KindBlockLibrary:
		return BlockEditor
	case domain.KindToolbox:
		return ToolboxEditor
	case domain.KindWorkspaceContents:
		return WorkspaceContentsEditor
	case domain.KindWorkspaceConfiguration:
		return WorkspaceConfigEditor
	}
	panic(fmt.Sprintf("environment: no editor for %v", kind))
}

// resourceKind is the resource kind an editor accepts.
func resourceKind(kind EditorKind) domain.Kind {
	switch kind {
	case BlockEditor:
		return domain.KindBlockLibrary
	case ToolboxEditor:
		return domain.KindToolbox
	case WorkspaceContentsEditor:
		return domain.KindWorkspaceContents
	case WorkspaceConfigEditor:
		return domain.KindWorkspaceConfiguration
	}
	panic(fmt.Sprintf("environment: no resource kind for %v", kind))
}

// View displays a resource in one of the views.
type View interface {
	SwitchView(id ViewID, res domain.Resource)
}

// Editor activates a controller for a resource.
type Editor interface {
	Activate(id ControllerID, res domain.Resource)
}

// Modal is closed once the new environment is in place.
type Modal interface {
	Close()
}

// Resolver looks up live resources by name.
type Resolver interface {
	Get(kind domain.Kind, name string) (domain.Resource, bool)
}

// Selection is what is currently displayed.
type Selection struct {
	Editor   EditorKind
	Resource domain.Resource
}

// MissingResourceError reports a switch without a resolvable resource. It indicates a caller
// defect: the UI must never switch before it has a resource in hand.
type MissingResourceError struct {
	Editor EditorKind
	Name   string
}

func (e *MissingResourceError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("switch to %v: no resource given", e.Editor)
	}
	return fmt.Sprintf("switch to %v: resource %q no longer exists", e.Editor, e.Name)
}

// Switcher performs environment switches.
type Switcher struct {
	view     View
	editor   Editor
	modal    Modal
	resolver Resolver

	current Selection
	has     bool
	log     *slog.Logger
}

// NewSwitcher wires the collaborators. modal may be nil when no popups are in use.
func NewSwitcher(view View, editor Editor, modal Modal, resolver Resolver) *Switcher {
	return &Switcher{view: view, editor: editor, modal: modal, resolver: resolver, log: applog.WithComponent("environment")}
}

// SwitchTo shows res in the editor of kind. The view is switched first, then the controller is
// activated, and only then is an open modal closed, so the previous environment never flashes.
func (s *Switcher) SwitchTo(kind EditorKind, res domain.Resource) error {
	if isNil(res) {
		s.log.Error("switch without resource", slog.String("editor", kind.String()))
		return &MissingResourceError{Editor: kind}
	}
	viewID, ctrlID := Route(kind)
	if want := resourceKind(kind); res.Kind() != want {
		return fmt.Errorf("switch to %v: resource %q is a %v, want %v", kind, res.Name(), res.Kind(), want)
	}
	if kind == ToolboxEditor && s.resolver != nil {
		live, ok := s.resolver.Get(domain.KindToolbox, res.Name())
		if !ok {
			s.log.Error("stale toolbox reference", slog.String("name", res.Name()))
			return &MissingResourceError{Editor: kind, Name: res.Name()}
		}
		res = live
	}

	s.view.SwitchView(viewID, res)
	s.editor.Activate(ctrlID, res)
	if s.modal != nil {
		s.modal.Close()
	}
	s.current = Selection{Editor: kind, Resource: res}
	s.has = true
	s.log.Info("environment switched", slog.String("editor", kind.String()), slog.String("resource", res.Name()))
	return nil
}

// Current returns the active selection, if any switch has happened.
func (s *Switcher) Current() (Selection, bool) { return s.current, s.has }

func isNil(res domain.Resource) bool {
	if res == nil {
		return true
	}
	v := reflect.ValueOf(res)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
