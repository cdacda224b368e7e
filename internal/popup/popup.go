/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package popup manages the editor's modal popups. At most one popup is open at a time and
// opening another always tears the previous one down first.
package popup

import (
	"fmt"

	"blockfactory/internal/domain"
)

// Mode identifies a popup flow.
type Mode int

const (
	ModeNewBlock Mode = iota + 1
	ModeNewLibrary
	ModeNewProject
	ModeNewConfig
	ModePreview
)

var modeNames = map[Mode]string{
	ModeNewBlock:   "NEW_BLOCK",
	ModeNewLibrary: "NEW_LIBRARY",
	ModeNewProject: "NEW_PROJECT",
	ModeNewConfig:  "NEW_CONFIG",
	ModePreview:    "PREVIEW",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MODE(%d)", int(m))
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode maps a mode name such as "NEW_BLOCK" back to its Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, &UnknownPopupModeError{Mode: s}
}

// UnknownPopupModeError reports a request for a popup mode that does not exist. It indicates a
// wiring defect in the caller.
type UnknownPopupModeError struct {
	Mode string
}

func (e *UnknownPopupModeError) Error() string { return fmt.Sprintf("unknown popup mode %s", e.Mode) }

// Hooks are optional per-instance callbacks run by the Coordinator.
type Hooks struct {
	OnEnter func()
	OnExit  func()
}

// Popup is one of NewBlock, NewLibrary, NewProject, NewConfig or Preview.
type Popup interface {
	Mode() Mode
	hooks() Hooks
}

// NewBlock asks for a block name to add to Library.
type NewBlock struct {
	Hooks
	Library string
}

// NewLibrary asks for a library name. Mandatory marks the flow as a forced precursor to block
// creation: the user asked for a block but no library exists yet.
type NewLibrary struct {
	Hooks
	Mandatory bool
}

// NewProject asks for a project name.
type NewProject struct {
	Hooks
}

// NewConfig asks for a workspace configuration name.
type NewConfig struct {
	Hooks
}

// Preview shows a read-only rendering of Resource.
type Preview struct {
	Hooks
	Resource domain.Resource
}

func (*NewBlock) Mode() Mode   { return ModeNewBlock }
func (*NewLibrary) Mode() Mode { return ModeNewLibrary }
func (*NewProject) Mode() Mode { return ModeNewProject }
func (*NewConfig) Mode() Mode  { return ModeNewConfig }
func (*Preview) Mode() Mode    { return ModePreview }

func (p *NewBlock) hooks() Hooks   { return p.Hooks }
func (p *NewLibrary) hooks() Hooks { return p.Hooks }
func (p *NewProject) hooks() Hooks { return p.Hooks }
func (p *NewConfig) hooks() Hooks  { return p.Hooks }
func (p *Preview) hooks() Hooks    { return p.Hooks }

// LibraryIndex is the slice of the resource store the mode policy needs.
type LibraryIndex interface {
	IsEmpty(kind domain.Kind) bool
}

// Request carries the inputs some modes need.
type Request struct {
	Mode Mode
	// Library targets NEW_BLOCK.
	Library string
	// Resource is what PREVIEW shows.
	Resource domain.Resource
}

// Build turns a request into a popup. A NEW_BLOCK request against a project without libraries
// becomes a mandatory NEW_LIBRARY popup, since a block cannot exist outside a library.
func Build(req Request, libs LibraryIndex) (Popup, error) {
	switch req.Mode {
	case ModeNewBlock:
		if libs.IsEmpty(domain.KindBlockLibrary) {
			return &NewLibrary{Mandatory: true}, nil
		}
		return &NewBlock{Library: req.Library}, nil
	case ModeNewLibrary:
		return &NewLibrary{}, nil
	case ModeNewProject:
		return &NewProject{}, nil
	case ModeNewConfig:
		return &NewConfig{}, nil
	case ModePreview:
		if req.Resource == nil {
			return nil, fmt.Errorf("preview popup requires a resource")
		}
		return &Preview{Resource: req.Resource}, nil
	default:
		return nil, &UnknownPopupModeError{Mode: req.Mode.String()}
	}
}
