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
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"blockfactory/internal/backend"
	"blockfactory/internal/domain"
	"blockfactory/internal/storage"
)

func mirror(ctx context.Context, dsn string, proj *domain.Project) (backend.ProjectRow, error) {
	db, err := backend.Open(ctx, dsn)
	if err != nil {
		return backend.ProjectRow{}, err
	}
	defer db.Close()
	return backend.Mirror(ctx, db, proj)
}

func newRemoteCommand(e *env) *cobra.Command {
	var dsn string
	remoteCmd := &cobra.Command{
		Use:   "remote",
		Short: "Work with the Postgres project mirror",
		Long: `The mirror keeps every saved version of a project in Postgres together with a
searchable copy of its documents.`,
	}
	remoteCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Postgres DSN (defaults to storage.postgres_dsn)")

	resolveDSN := func() (string, error) {
		if dsn != "" {
			return dsn, nil
		}
		if e.cfg.Storage.PostgresDSN != "" {
			return e.cfg.Storage.PostgresDSN, nil
		}
		return "", errNoDSN
	}

	remoteCmd.AddCommand(&cobra.Command{
		Use:   "push <dir>",
		Short: "Mirror the project at <dir>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := resolveDSN()
			if err != nil {
				return err
			}
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			row, err := mirror(cmd.Context(), d, h.Project)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Mirrored %s as version %d (id %d)\n", row.Name, row.Version, row.ID)
			return nil
		},
	})

	remoteCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List mirrored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := resolveDSN()
			if err != nil {
				return err
			}
			db, err := backend.Open(cmd.Context(), d)
			if err != nil {
				return err
			}
			defer db.Close()
			rows, err := backend.ListProjects(cmd.Context(), db)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printf(tw, "ID\tNAME\tVERSION\tUPDATED\n")
			for _, r := range rows {
				printf(tw, "%d\t%s\t%d\t%s\n", r.ID, r.Name, r.Version, r.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	})

	remoteCmd.AddCommand(&cobra.Command{
		Use:   "pull <id> <dir>",
		Short: "Create a project at <dir> from the latest mirrored version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			abs, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[1], err)
			}
			if _, err := os.Stat(filepath.Join(abs, storage.ManifestFileName)); err == nil {
				return fmt.Errorf("project already exists at %s", abs)
			}
			d, err := resolveDSN()
			if err != nil {
				return err
			}
			db, err := backend.Open(cmd.Context(), d)
			if err != nil {
				return err
			}
			defer db.Close()
			proj, version, err := backend.LatestSnapshot(cmd.Context(), db, id)
			if err != nil {
				return err
			}
			h, err := storage.InitProject(abs, proj)
			if err != nil {
				return err
			}
			e.handle = h
			printf(cmd.OutOrStdout(), "Pulled %s version %d into %s\n", proj.Name, version, abs)
			return nil
		},
	})

	var q storage.SearchQuery
	searchCmd := &cobra.Command{
		Use:   "search <id> <text>",
		Short: "Search the mirrored documents of a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			d, err := resolveDSN()
			if err != nil {
				return err
			}
			db, err := backend.Open(cmd.Context(), d)
			if err != nil {
				return err
			}
			defer db.Close()
			q.Text = args[1]
			res, err := backend.SearchPG(cmd.Context(), db, id, q)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), res)
		},
	}
	searchCmd.Flags().StringSliceVar(&q.Types, "type", nil, "restrict to document types")
	searchCmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum number of results")
	remoteCmd.AddCommand(searchCmd)

	return remoteCmd
}

func printResults(w io.Writer, res []storage.SearchResult) error {
	if len(res) == 0 {
		printf(w, "No matches\n")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printf(tw, "TYPE\tNAME\tPATH\tSNIPPET\n")
	for _, r := range res {
		printf(tw, "%s\t%s\t%s\t%s\n", r.Type, r.Name, r.Path, r.Snippet)
	}
	return tw.Flush()
}
