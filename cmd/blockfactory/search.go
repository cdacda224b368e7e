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

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"blockfactory/internal/config"
	"blockfactory/internal/storage"
)

var errIndexDisabled = errors.New("search index is disabled (storage.index_enabled)")

func newSearchCommand(e *env) *cobra.Command {
	var q storage.SearchQuery
	cmd := &cobra.Command{
		Use:   "search <dir> <text>",
		Short: "Full-text search over a project's resources",
		Long: `Search the local index. <text> uses SQLite FTS5 syntax: terms, prefix*, "phrases"
and AND/OR/NOT. The index is built on first use.`,
		Example: `  blockfactory search ./blocks 'colour'
  blockfactory search ./blocks 'logic*' --type block`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.cfg.Storage.IndexEnabled {
				return errIndexDisabled
			}
			ctx := cmd.Context()
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			if err := storage.BuildIndexIfEmpty(ctx, h.Root, h.Project); err != nil {
				return err
			}
			q.Text = args[1]
			res, err := storage.Search(ctx, h.Root, q)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringSliceVar(&q.Types, "type", nil, "restrict to document types (library, toolbox, workspace-contents, workspace-config, block, project)")
	cmd.Flags().StringVar(&q.Name, "name", "", "restrict to resources with this name")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum number of results")
	return cmd
}

func newWhereUsedCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "where-used <dir> <block-type>",
		Short: "List toolboxes and workspaces that reference a block type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.cfg.Storage.IndexEnabled {
				return errIndexDisabled
			}
			ctx := cmd.Context()
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			if err := storage.BuildIndexIfEmpty(ctx, h.Root, h.Project); err != nil {
				return err
			}
			res, err := storage.WhereUsed(ctx, h.Root, args[1])
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), res)
		},
	}
}

func newReindexCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex <dir>",
		Short: "Rebuild the search index from the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			if err := storage.RebuildIndex(cmd.Context(), h.Root, h.Project); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Rebuilt index at %s\n", storage.IndexPath(h.Root))
			return nil
		},
	}
}

func newConfigCommand(e *env) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the user configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.ConfigPath()
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", p)
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file, defaults and BF_* overrides)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(e.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printf(out, "%s", data)
			secret := "unset"
			if e.secret != "" {
				secret = "set"
			}
			printf(out, "# s3 secret key: %s\n", secret)
			return nil
		},
	})
	return configCmd
}
