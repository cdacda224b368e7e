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

import (
	"reflect"
	"testing"

	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/test"
)

func TestModalSlot_ReplacedDialogDoesNotDismiss(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	w := a.NewWindow("blocks")
	defer w.Close()

	var slot modalSlot
	var dismissed []string
	confirm := func(name string) *dialog.ConfirmDialog {
		var d *dialog.ConfirmDialog
		d = dialog.NewConfirm(name, "", func(ok bool) {
			if !ok && slot.release(d) {
				dismissed = append(dismissed, name)
			}
		}, w)
		return d
	}

	library := confirm("NEW_LIBRARY")
	block := confirm("NEW_BLOCK")
	slot.replace(library)
	slot.replace(block)
	if len(dismissed) != 0 {
		t.Fatalf("replacing a dialog dismissed %v", dismissed)
	}
	if slot.d != block {
		t.Fatalf("slot holds %v, want the NEW_BLOCK dialog", slot.d)
	}

	// a Cancel click hides the dialog the same way
	block.Hide()
	if want := []string{"NEW_BLOCK"}; !reflect.DeepEqual(dismissed, want) {
		t.Fatalf("dismissed = %v, want %v", dismissed, want)
	}
	if slot.d != nil {
		t.Fatalf("slot not empty after dismissal")
	}
}

func TestModalSlot_ClearIsNotADismissal(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	w := a.NewWindow("blocks")
	defer w.Close()

	var slot modalSlot
	calls := 0
	released := 0
	var d *dialog.ConfirmDialog
	d = dialog.NewConfirm("NEW_CONFIG", "", func(bool) {
		calls++
		if slot.release(d) {
			released++
		}
	}, w)
	slot.replace(d)
	slot.clear()
	slot.clear()

	if calls != 1 || released != 0 {
		t.Fatalf("callback calls = %d, releases = %d; want 1 and 0", calls, released)
	}
	if slot.release(nil) {
		t.Fatalf("release(nil) reported true")
	}
}
