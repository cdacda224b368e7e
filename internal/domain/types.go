/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// This file defines the project data model for the block factory: a single project that owns
// four collections of named resources. Name uniqueness is enforced one level up, in the
// resource store; the types here only carry data.

// Kind is the closed category a resource belongs to. Name uniqueness is scoped per kind.
type Kind int

const (
	KindToolbox Kind = iota + 1
	KindWorkspaceContents
	KindWorkspaceConfiguration
	KindBlockLibrary
)

// Kinds lists every resource kind in display order.
var Kinds = []Kind{KindBlockLibrary, KindToolbox, KindWorkspaceContents, KindWorkspaceConfiguration}

func (k Kind) String() string {
	switch k {
	case KindToolbox:
		return "toolbox"
	case KindWorkspaceContents:
		return "workspace contents"
	case KindWorkspaceConfiguration:
		return "workspace configuration"
	case KindBlockLibrary:
		return "block library"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Slug is the stable, space-free identifier used in manifests, the index and the CLI.
func (k Kind) Slug() string {
	switch k {
	case KindToolbox:
		return "toolbox"
	case KindWorkspaceContents:
		return "workspace-contents"
	case KindWorkspaceConfiguration:
		return "workspace-config"
	case KindBlockLibrary:
		return "library"
	default:
		return ""
	}
}

// ParseKind is the inverse of Slug.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.Slug() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", s)
}

// Resource is a named, project-scoped artifact. The name is fixed at creation.
type Resource interface {
	ID() string
	Name() string
	Kind() Kind
}

// Meta carries the identity shared by every resource type.
type Meta struct {
	ResourceID   string `json:"id"`
	ResourceName string `json:"name"`
}

func newMeta(name string) Meta { return Meta{ResourceID: uuid.NewString(), ResourceName: name} }

func (m Meta) ID() string   { return m.ResourceID }
func (m Meta) Name() string { return m.ResourceName }

// Toolbox holds the serialized toolbox XML document.
type Toolbox struct {
	Meta
	XML string `json:"xml"`
}

func (*Toolbox) Kind() Kind { return KindToolbox }

// WorkspaceContents holds the serialized blocks pre-loaded into a workspace.
type WorkspaceContents struct {
	Meta
	XML string `json:"xml"`
}

func (*WorkspaceContents) Kind() Kind { return KindWorkspaceContents }

// WorkspaceConfiguration holds injection options (grid, zoom, readOnly, ...), kept as strings
// so unknown options survive a round trip.
type WorkspaceConfiguration struct {
	Meta
	Options map[string]string `json:"options"`
}

func (*WorkspaceConfiguration) Kind() Kind { return KindWorkspaceConfiguration }

// BlockDefinition is one block type inside a library. JSON is the block's definition as
// produced by the block editor and is opaque here.
type BlockDefinition struct {
	Type string `json:"type"`
	JSON string `json:"json"`
}

// BlockLibrary maps block type names to their definitions.
type BlockLibrary struct {
	Meta
	Blocks map[string]BlockDefinition `json:"blocks"`
}

func (*BlockLibrary) Kind() Kind { return KindBlockLibrary }

// BlockNames returns the library's block types sorted.
func (l *BlockLibrary) BlockNames() []string {
	names := make([]string, 0, len(l.Blocks))
	for n := range l.Blocks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewResource constructs an empty resource of the given kind with a fresh ID.
func NewResource(kind Kind, name string) (Resource, error) {
	m := newMeta(name)
	switch kind {
	case KindToolbox:
		return &Toolbox{Meta: m}, nil
	case KindWorkspaceContents:
		return &WorkspaceContents{Meta: m}, nil
	case KindWorkspaceConfiguration:
		return &WorkspaceConfiguration{Meta: m, Options: map[string]string{}}, nil
	case KindBlockLibrary:
		return &BlockLibrary{Meta: m, Blocks: map[string]BlockDefinition{}}, nil
	default:
		return nil, fmt.Errorf("unknown resource kind %d", int(kind))
	}
}

// Project is the root aggregate. It serializes to the human-readable JSON manifest.
type Project struct {
	Name                    string                             `json:"name"`
	Toolboxes               map[string]*Toolbox                `json:"toolboxes"`
	WorkspaceContents       map[string]*WorkspaceContents      `json:"workspaceContents"`
	WorkspaceConfigurations map[string]*WorkspaceConfiguration `json:"workspaceConfigurations"`
	Libraries               map[string]*BlockLibrary           `json:"libraries"`
}

// NewProject returns a project with all four collections allocated.
func NewProject(name string) *Project {
	p := &Project{Name: name}
	p.EnsureCollections()
	return p
}

// EnsureCollections allocates nil maps, e.g. after decoding a manifest that omitted a section.
func (p *Project) EnsureCollections() {
	if p.Toolboxes == nil {
		p.Toolboxes = map[string]*Toolbox{}
	}
	if p.WorkspaceContents == nil {
		p.WorkspaceContents = map[string]*WorkspaceContents{}
	}
	if p.WorkspaceConfigurations == nil {
		p.WorkspaceConfigurations = map[string]*WorkspaceConfiguration{}
	}
	if p.Libraries == nil {
		p.Libraries = map[string]*BlockLibrary{}
	}
}

// Count returns the number of resources of a kind.
func (p *Project) Count(kind Kind) int {
	switch kind {
	case KindToolbox:
		return len(p.Toolboxes)
	case KindWorkspaceContents:
		return len(p.WorkspaceContents)
	case KindWorkspaceConfiguration:
		return len(p.WorkspaceConfigurations)
	case KindBlockLibrary:
		return len(p.Libraries)
	default:
		return 0
	}
}

// Lookup finds a resource by kind and exact name.
func (p *Project) Lookup(kind Kind, name string) (Resource, bool) {
	switch kind {
	case KindToolbox:
		return lookup(p.Toolboxes, name)
	case KindWorkspaceContents:
		return lookup(p.WorkspaceContents, name)
	case KindWorkspaceConfiguration:
		return lookup(p.WorkspaceConfigurations, name)
	case KindBlockLibrary:
		return lookup(p.Libraries, name)
	default:
		return nil, false
	}
}

// lookup avoids handing out a typed nil wrapped in a non-nil interface.
func lookup[R Resource](m map[string]R, name string) (Resource, bool) {
	r, ok := m[name]
	if !ok {
		return nil, false
	}
	return r, true
}

// Put registers r in the collection for its kind, replacing any entry with the same name.
func (p *Project) Put(r Resource) {
	p.EnsureCollections()
	switch v := r.(type) {
	case *Toolbox:
		p.Toolboxes[v.Name()] = v
	case *WorkspaceContents:
		p.WorkspaceContents[v.Name()] = v
	case *WorkspaceConfiguration:
		p.WorkspaceConfigurations[v.Name()] = v
	case *BlockLibrary:
		p.Libraries[v.Name()] = v
	}
}

// Delete removes the named resource of a kind; it reports whether anything was removed.
func (p *Project) Delete(kind Kind, name string) bool {
	if _, ok := p.Lookup(kind, name); !ok {
		return false
	}
	switch kind {
	case KindToolbox:
		delete(p.Toolboxes, name)
	case KindWorkspaceContents:
		delete(p.WorkspaceContents, name)
	case KindWorkspaceConfiguration:
		delete(p.WorkspaceConfigurations, name)
	case KindBlockLibrary:
		delete(p.Libraries, name)
	}
	return true
}

// Names returns the sorted resource names of a kind.
func (p *Project) Names(kind Kind) []string {
	var names []string
	switch kind {
	case KindToolbox:
		names = keys(p.Toolboxes)
	case KindWorkspaceContents:
		names = keys(p.WorkspaceContents)
	case KindWorkspaceConfiguration:
		names = keys(p.WorkspaceConfigurations)
	case KindBlockLibrary:
		names = keys(p.Libraries)
	}
	sort.Strings(names)
	return names
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
