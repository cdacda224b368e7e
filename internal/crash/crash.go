/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the process boundary into a crash report, a snapshot of the
// in-memory project and a non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"blockfactory/internal/domain"
	applog "blockfactory/internal/log"
	"blockfactory/internal/storage"
	"blockfactory/internal/telemetry"
	"blockfactory/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Recover captures a panic, logs it with its stack, writes a crash report and
// snapshots the project (if provided) before exiting with code 2.
//
// Usage: defer crash.Recover(ph)
func Recover(ph *storage.ProjectHandle) {
	if r := recover(); r != nil {
		handle(r, ph)
	}
}

// RecoverFunc is Recover for callers whose open project changes over time;
// current is asked for the handle only once a panic happened.
//
// Usage: defer crash.RecoverFunc(app.Handle)
func RecoverFunc(current func() *storage.ProjectHandle) {
	if r := recover(); r != nil {
		var ph *storage.ProjectHandle
		if current != nil {
			ph = current()
		}
		handle(r, ph)
	}
}

func handle(r any, ph *storage.ProjectHandle) {
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(ph, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if ph != nil && ph.Project != nil {
		if path, err := storage.AutosaveCrashSnapshot(ph); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// renderReport formats the crash report. Resource names are left out; only counts per kind.
func renderReport(ph *storage.ProjectHandle, panicVal any, stack []byte) []byte {
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Block Factory Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if ph != nil {
		_, _ = fmt.Fprintf(&buf, "ProjectRoot: %s\n", ph.Root)
		_, _ = fmt.Fprintf(&buf, "Manifest: %s\n", ph.ManifestPath)
		if ph.Project != nil {
			_, _ = fmt.Fprintf(&buf, "Resources:")
			for _, k := range domain.Kinds {
				_, _ = fmt.Fprintf(&buf, " %s=%d", k.Slug(), ph.Project.Count(k))
			}
			buf.WriteByte('\n')
		}
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))
	return buf.Bytes()
}

// writeReport stores the report next to the project's backups, or in the temp dir without a project.
// Opted-in users also upload it.
func writeReport(ph *storage.ProjectHandle, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if ph != nil && ph.Root != "" {
		dir = filepath.Join(ph.Root, storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("ensure backups dir: %w", err)
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))
	report := renderReport(ph, panicVal, stack)
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return path, fmt.Errorf("write crash report: %w", err)
	}
	telemetry.UploadCrash(report)
	return path, nil
}
