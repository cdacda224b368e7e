//go:build fyne

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

import "fyne.io/fyne/v2/dialog"

// modalSlot tracks the dialog shown for the active popup. Hiding a dialog makes fyne run its
// callback with false, so callbacks use release to tell a user dismissal from a replacement.
type modalSlot struct {
	d dialog.Dialog
}

// replace shows d in place of the current dialog. d may be nil.
func (m *modalSlot) replace(d dialog.Dialog) {
	old := m.d
	m.d = d
	if old != nil {
		old.Hide()
	}
	if d != nil {
		d.Show()
	}
}

func (m *modalSlot) clear() { m.replace(nil) }

// release empties the slot if d still holds it and reports whether it did. It returns false
// for a dialog that replace or clear already took down.
func (m *modalSlot) release(d dialog.Dialog) bool {
	if d == nil || m.d != d {
		return false
	}
	m.d = nil
	return true
}
