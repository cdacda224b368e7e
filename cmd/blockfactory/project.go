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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"blockfactory/internal/app"
	"blockfactory/internal/domain"
	"blockfactory/internal/export"
	"blockfactory/internal/storage"
)

func newInitCommand(e *env) *cobra.Command {
	var empty bool
	cmd := &cobra.Command{
		Use:   "init <dir> <name>",
		Short: "Create a new project at <dir> with name <name>",
		Long: `Create a new project directory with the standard layout.

Unless --empty is given the project starts with the demo block library.`,
		Example: `  blockfactory init ./blocks "My Blocks"
  blockfactory init ./blank Blank --empty`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}
			if _, err := os.Stat(filepath.Join(abs, storage.ManifestFileName)); err == nil {
				return fmt.Errorf("project already exists at %s", abs)
			}
			a := app.New(app.Options{ProjectName: args[1]})
			if !empty {
				if err := a.PopulateDefaults(); err != nil {
					return err
				}
			}
			e.log.Info("init project", slog.String("root", abs), slog.String("name", args[1]))
			h, err := storage.InitProject(abs, a.Project())
			if err != nil {
				return err
			}
			e.handle = h
			printf(cmd.OutOrStdout(), "Created project at %s\n", abs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&empty, "empty", false, "start without the demo block library")
	return cmd
}

func newOpenCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "open <dir>",
		Short: "Open the project at <dir> and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printf(out, "Opened project: %s\n", h.Project.Name)
			for _, k := range domain.Kinds {
				printf(out, "%s: %d\n", k.Slug(), h.Project.Count(k))
			}
			printf(out, "Root: %s\n", h.Root)
			return nil
		},
	}
}

func newListCommand(e *env) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "list <dir>",
		Short: "List the resources of a project",
		Example: `  blockfactory list ./blocks
  blockfactory list ./blocks --kind toolbox`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := domain.Kinds
			if kind != "" {
				k, err := domain.ParseKind(kind)
				if err != nil {
					return err
				}
				kinds = []domain.Kind{k}
			}
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, k := range kinds {
				printf(out, "%s:\n", k.Slug())
				for _, name := range h.Project.Names(k) {
					printf(out, "  %s\n", name)
					if k != domain.KindBlockLibrary {
						continue
					}
					res, _ := h.Project.Lookup(k, name)
					for _, b := range res.(*domain.BlockLibrary).BlockNames() {
						printf(out, "    - %s\n", b)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list one kind (library, toolbox, workspace-contents, workspace-config)")
	return cmd
}

func newSaveCommand(e *env) *cobra.Command {
	var noMirror bool
	cmd := &cobra.Command{
		Use:   "save <dir>",
		Short: "Save the project at <dir> (creates a backup) and export it",
		Long: `Save rewrites the manifest, keeping the previous one in backups/, refreshes the
search index and hands the library document to the export sink. When a Postgres DSN is
configured the project is mirrored as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			svc := e.services(ctx, h)
			defer svc.Close()
			a := e.newApp(cmd, h, svc, app.Options{})
			if err := a.Save(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printf(out, "Saved project and created a backup of the previous manifest (if any).\n")
			if noMirror || e.cfg.Storage.PostgresDSN == "" {
				return nil
			}
			row, err := mirror(ctx, e.cfg.Storage.PostgresDSN, h.Project)
			if err != nil {
				return err
			}
			printf(out, "Mirrored %s as version %d\n", row.Name, row.Version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noMirror, "no-mirror", false, "skip the Postgres mirror even when configured")
	return cmd
}

func newExportCommand(e *env) *cobra.Command {
	var bundle bool
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Export the project through the configured sink",
		Long: `Export writes the block library document (JSON) to the export sink. With --bundle it
writes a zip archive holding the document and every resource payload instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			svc := e.services(ctx, h)
			defer svc.Close()

			var (
				data     []byte
				filename string
				mimeType string
			)
			if bundle {
				data, err = export.Bundle(h.Project)
				filename, mimeType = export.Filename(h.Project.Name, ".zip"), export.MimeZip
			} else {
				var doc string
				doc, err = export.Document(h.Project)
				data = []byte(doc)
				filename, mimeType = export.Filename(h.Project.Name, ".json"), export.MimeJSON
			}
			if err != nil {
				return err
			}
			if err := svc.Exports.ExportBytes(ctx, data, filename, mimeType); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Exported %s via %s sink\n", filename, svc.Exports.Sink().Name())
			return nil
		},
	}
	cmd.Flags().BoolVar(&bundle, "bundle", false, "write a zip bundle with all resource payloads")
	return cmd
}

// errNoDSN is returned by remote commands when neither --dsn nor the config names a database.
var errNoDSN = errors.New("no Postgres DSN: pass --dsn or set storage.postgres_dsn")
