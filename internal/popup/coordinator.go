/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package popup

import (
	"log/slog"

	applog "blockfactory/internal/log"
)

// Presenter displays and dismisses popups. It is the view layer's half of the lifecycle.
type Presenter interface {
	ShowPopup(p Popup)
	HidePopup(p Popup)
}

// Session describes the coordinator state.
type Session struct {
	Mode   Mode
	Active bool
}

// Coordinator owns the single active popup.
//
// State machine: Closed -> Open(m) via Open; Open(m1) -> Open(m2) via Open, running m1's exit
// before m2's entry; Open(m) -> Closed via Close.
type Coordinator struct {
	presenter Presenter
	active    Popup
	log       *slog.Logger
}

// NewCoordinator returns a closed coordinator. presenter may be nil for headless use.
func NewCoordinator(presenter Presenter) *Coordinator {
	return &Coordinator{presenter: presenter, log: applog.WithComponent("popup")}
}

// Open makes p the active popup, exiting any popup that is already open.
func (c *Coordinator) Open(p Popup) {
	if p == nil {
		return
	}
	if c.active != nil {
		c.exitActive()
	}
	c.active = p
	c.log.Debug("popup open", slog.String("mode", p.Mode().String()))
	if c.presenter != nil {
		c.presenter.ShowPopup(p)
	}
	if h := p.hooks().OnEnter; h != nil {
		h()
	}
}

// Close exits the active popup. It is a no-op when nothing is open.
func (c *Coordinator) Close() {
	if c.active == nil {
		return
	}
	c.exitActive()
}

// Dismiss closes p when it is still the active popup and reports whether it did. A dismissal
// that arrives after p was replaced or closed leaves the coordinator untouched.
func (c *Coordinator) Dismiss(p Popup) bool {
	if p == nil || c.active != p {
		return false
	}
	c.exitActive()
	return true
}

// Current returns the active popup, if any.
func (c *Coordinator) Current() (Popup, bool) { return c.active, c.active != nil }

// Session snapshots the coordinator state.
func (c *Coordinator) Session() Session {
	if c.active == nil {
		return Session{}
	}
	return Session{Mode: c.active.Mode(), Active: true}
}

func (c *Coordinator) exitActive() {
	p := c.active
	// clear first so hooks that call back into the coordinator see the closed state
	c.active = nil
	c.log.Debug("popup exit", slog.String("mode", p.Mode().String()))
	if c.presenter != nil {
		c.presenter.HidePopup(p)
	}
	if h := p.hooks().OnExit; h != nil {
		h()
	}
}
