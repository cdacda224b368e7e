/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package resource owns the project's resource namespace. Every resource is created and
// destroyed through Store, which keeps names unique within each kind.
package resource

import (
	"log/slog"
	"strings"

	"blockfactory/internal/domain"
	applog "blockfactory/internal/log"
)

// Store mediates all mutations of a project's resource collections.
// It is not safe for concurrent use; the owning orchestrator serialises access.
type Store struct {
	project *domain.Project
	log     *slog.Logger
}

// NewStore wraps p. A nil project is replaced by an empty, unnamed one.
func NewStore(p *domain.Project) *Store {
	if p == nil {
		p = domain.NewProject("")
	}
	p.EnsureCollections()
	return &Store{project: p, log: applog.WithComponent("resource")}
}

// Project exposes the underlying aggregate for persistence. Callers must not add or remove
// resources through it directly.
func (s *Store) Project() *domain.Project { return s.project }

// Exists reports whether a resource of kind with exactly this name is registered.
func (s *Store) Exists(kind domain.Kind, name string) bool {
	_, ok := s.project.Lookup(kind, name)
	return ok
}

// Create registers a new, empty resource. The name is stored as given; only blankness is
// judged on the trimmed value.
func (s *Store) Create(kind domain.Kind, name string) (domain.Resource, error) {
	if err := ValidateName(kind, name); err != nil {
		return nil, err
	}
	if s.Exists(kind, name) {
		return nil, &DuplicateNameError{Kind: kind, Name: name}
	}
	r, err := domain.NewResource(kind, name)
	if err != nil {
		return nil, err
	}
	s.project.Put(r)
	s.log.Debug("resource created", slog.String("kind", kind.Slug()), slog.String("name", name), slog.String("id", r.ID()))
	return r, nil
}

// Remove destroys the named resource.
func (s *Store) Remove(kind domain.Kind, name string) error {
	if !s.project.Delete(kind, name) {
		return &NotFoundError{Kind: kind, Name: name}
	}
	s.log.Debug("resource removed", slog.String("kind", kind.Slug()), slog.String("name", name))
	return nil
}

// IsEmpty reports whether no resource of kind exists.
func (s *Store) IsEmpty(kind domain.Kind) bool { return s.project.Count(kind) == 0 }

// Len returns the number of resources of kind.
func (s *Store) Len(kind domain.Kind) int { return s.project.Count(kind) }

// Get returns the live resource registered under kind and name.
func (s *Store) Get(kind domain.Kind, name string) (domain.Resource, bool) {
	return s.project.Lookup(kind, name)
}

// Names lists resource names of kind in sorted order.
func (s *Store) Names(kind domain.Kind) []string { return s.project.Names(kind) }

// ValidateName rejects names that are empty after trimming.
func ValidateName(kind domain.Kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return &InvalidNameError{Kind: kind, Name: name}
	}
	return nil
}
