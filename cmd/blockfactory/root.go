/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"blockfactory/internal/app"
	"blockfactory/internal/config"
	applog "blockfactory/internal/log"
	"blockfactory/internal/resource"
	"blockfactory/internal/storage"
	"blockfactory/internal/telemetry"
	"blockfactory/internal/tui"
	"blockfactory/internal/ui"
	"blockfactory/internal/version"
)

// env carries what the commands share: configuration, the terminal prompter and the open
// project for crash reports. Tests replace the hooks and turn process off.
type env struct {
	loadConfig func() (config.AppConfig, string, error)
	prompter   func(cmd *cobra.Command) resource.Prompter
	runUI      func(dir string) error
	// process enables process-wide setup from the config: logging and telemetry.
	process bool

	cfg    config.AppConfig
	secret string
	handle *storage.ProjectHandle
	log    *slog.Logger
}

func newEnv() *env {
	return &env{
		loadConfig: config.Load,
		prompter: func(cmd *cobra.Command) resource.Prompter {
			return tui.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		},
		runUI:   ui.Run,
		process: true,
		log:     applog.WithComponent("cli"),
	}
}

func (e *env) currentHandle() *storage.ProjectHandle { return e.handle }

func (e *env) setup(cmd *cobra.Command) error {
	cfg, secret, err := e.loadConfig()
	if err != nil {
		// Load still returns defaults merged with the environment.
		e.log.Warn("config", slog.Any("err", err))
	}
	e.cfg, e.secret = cfg, secret
	if e.process {
		applog.Init(applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
		})
		e.log = applog.WithComponent("cli")
		telemetry.NewDefault(telemetry.FromEnv().WithOptIn(cfg.General.TelemetryOptIn))
		telemetry.Event(telemetry.EventAppStarted, map[string]any{"surface": "cli", "command": cmd.Name()})
	}
	return nil
}

// openProject opens the project at dir and remembers it for crash reports.
func (e *env) openProject(dir string) (*storage.ProjectHandle, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	e.log.Info("open project", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		return nil, err
	}
	h.SkipIndex = !e.cfg.Storage.IndexEnabled
	e.handle = h
	return h, nil
}

// services builds metrics and the export service for h. A broken export configuration
// degrades to discarding exports so editing still works.
func (e *env) services(ctx context.Context, h *storage.ProjectHandle) *app.Services {
	svc, err := app.NewServices(ctx, e.cfg, e.secret, h.Root)
	if err != nil {
		e.log.Warn("export disabled", slog.Any("err", err))
		cfg := e.cfg
		cfg.Export.Sink = "none"
		svc, _ = app.NewServices(ctx, cfg, "", h.Root)
	}
	return svc
}

// newApp wires a headless orchestrator over h.
func (e *env) newApp(cmd *cobra.Command, h *storage.ProjectHandle, svc *app.Services, opts app.Options) *app.App {
	opts.Handle = h
	if opts.Prompter == nil {
		opts.Prompter = e.prompter(cmd)
	}
	if svc != nil {
		opts.Exporter = svc.Exports
		opts.Metrics = svc.Metrics
	}
	return app.New(opts)
}

func newRootCommand(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blockfactory",
		Short: "BlockFactory - block library, toolbox and workspace editor",
		Long: `BlockFactory manages projects of block libraries, toolboxes, workspace contents
and workspace configurations.

Projects live in a directory holding blockfactory.json plus backups/ and exports/.
Saving refreshes the local search index and hands a JSON document of the block
libraries to the configured export sink (file, s3 or none).`,
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
	}

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newInitCommand(e))
	rootCmd.AddCommand(newOpenCommand(e))
	rootCmd.AddCommand(newListCommand(e))
	rootCmd.AddCommand(newNewCommand(e))
	rootCmd.AddCommand(newSwitchCommand(e))
	rootCmd.AddCommand(newRemoveCommand(e))
	rootCmd.AddCommand(newSaveCommand(e))
	rootCmd.AddCommand(newExportCommand(e))
	rootCmd.AddCommand(newSearchCommand(e))
	rootCmd.AddCommand(newWhereUsedCommand(e))
	rootCmd.AddCommand(newReindexCommand(e))
	rootCmd.AddCommand(newRemoteCommand(e))
	rootCmd.AddCommand(newConfigCommand(e))
	rootCmd.AddCommand(newUICommand(e))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "BlockFactory")
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newUICommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ui [dir]",
		Short: "Launch the desktop UI (build with -tags fyne)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var dir string
			if len(args) == 1 {
				dir = args[0]
			}
			return e.runUI(dir)
		},
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
