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
	"io"
	"strings"

	"github.com/spf13/cobra"

	"blockfactory/internal/app"
	"blockfactory/internal/domain"
	"blockfactory/internal/environment"
	"blockfactory/internal/resource"
)

// kindBlock addresses a block definition inside a library on the command line.
const kindBlock = "block"

// fixedName answers the first name prompt with a name given as a flag. A refused name
// cancels the loop instead of asking again.
type fixedName struct {
	name     string
	asked    bool
	rejected string
}

func (p *fixedName) PromptForName(_, errText string) (string, bool) {
	if errText != "" {
		p.rejected = errText
		return "", false
	}
	if p.asked {
		return "", false
	}
	p.asked = true
	return p.name, true
}

func newNewCommand(e *env) *cobra.Command {
	var name, library string
	cmd := &cobra.Command{
		Use:   "new <kind> <dir>",
		Short: "Create a resource in the project at <dir>",
		Long: `Create a toolbox, workspace-contents, workspace-config, library or block.

Without --name the name is asked for interactively; a name already in use is
refused and asked for again, an empty answer cancels.`,
		Example: `  blockfactory new toolbox ./blocks
  blockfactory new library ./blocks --name Logic
  blockfactory new block ./blocks --library Logic --name logic_compare`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == kindBlock && library == "" {
				return errors.New("--library is required for blocks")
			}
			ctx := cmd.Context()
			h, err := e.openProject(args[1])
			if err != nil {
				return err
			}
			svc := e.services(ctx, h)
			defer svc.Close()

			var opts app.Options
			var flagName *fixedName
			if name != "" {
				flagName = &fixedName{name: name}
				opts.Prompter = flagName
			}
			a := e.newApp(cmd, h, svc, opts)
			created, err := createResource(a, args[0], library)
			if err != nil {
				return err
			}
			if created == "" {
				if flagName != nil && flagName.rejected != "" {
					return errors.New(flagName.rejected)
				}
				printf(cmd.OutOrStdout(), "Cancelled\n")
				return nil
			}
			if err := a.Save(ctx); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Created %s %q\n", args[0], created)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the new resource (skips the prompt)")
	cmd.Flags().StringVar(&library, "library", "", "library receiving a new block")
	return cmd
}

// createResource runs the matching create operation and returns the new name, or "" when
// naming was cancelled.
func createResource(a *app.App, kindArg, library string) (string, error) {
	if kindArg == kindBlock {
		def, err := a.CreateBlock(library)
		if def == nil {
			return "", err
		}
		return def.Type, err
	}
	k, err := domain.ParseKind(kindArg)
	if err != nil {
		return "", err
	}
	switch k {
	case domain.KindToolbox:
		r, err := a.CreateToolbox()
		if r == nil {
			return "", err
		}
		return r.Name(), err
	case domain.KindWorkspaceContents:
		r, err := a.CreateWorkspaceContents()
		if r == nil {
			return "", err
		}
		return r.Name(), err
	case domain.KindWorkspaceConfiguration:
		r, err := a.CreateWorkspaceConfiguration()
		if r == nil {
			return "", err
		}
		return r.Name(), err
	default:
		r, err := a.CreateLibrary()
		if r == nil {
			return "", err
		}
		return r.Name(), err
	}
}

// printView reports switches on the terminal.
type printView struct{ w io.Writer }

func (v printView) SwitchView(id environment.ViewID, res domain.Resource) {
	printf(v.w, "View: %s (%s)\n", id, res.Name())
}

func (printView) CloseModal() {}

type printEditor struct{ w io.Writer }

func (ed printEditor) Activate(id environment.ControllerID, _ domain.Resource) {
	printf(ed.w, "Editor: %s\n", id)
}

func noPrompt(string, string) (string, bool) { return "", false }

func newSwitchCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <dir> <kind> <name>",
		Short: "Show which view and editor open a resource",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := domain.ParseKind(args[1])
			if err != nil {
				return err
			}
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a := e.newApp(cmd, h, nil, app.Options{
				View:     printView{w: out},
				Editor:   printEditor{w: out},
				Prompter: resource.PrompterFunc(noPrompt),
			})
			return withSuggestions(a, k, args[2], a.SwitchTo(k, args[2]))
		},
	}
}

func newRemoveCommand(e *env) *cobra.Command {
	var library string
	cmd := &cobra.Command{
		Use:   "remove <dir> <kind> <name>",
		Short: "Remove a resource (or, with kind block, a block of --library)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := e.openProject(args[0])
			if err != nil {
				return err
			}
			svc := e.services(ctx, h)
			defer svc.Close()
			a := e.newApp(cmd, h, svc, app.Options{Prompter: resource.PrompterFunc(noPrompt)})

			if args[1] == kindBlock {
				if library == "" {
					return errors.New("--library is required for blocks")
				}
				err = a.RemoveBlock(library, args[2])
			} else {
				k, perr := domain.ParseKind(args[1])
				if perr != nil {
					return perr
				}
				err = withSuggestions(a, k, args[2], a.Remove(k, args[2]))
			}
			if err != nil {
				return err
			}
			if err := a.Save(ctx); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Removed %s %q\n", args[1], args[2])
			return nil
		},
	}
	cmd.Flags().StringVar(&library, "library", "", "library holding the block")
	return cmd
}

// withSuggestions extends a not-found error with the closest existing names.
func withSuggestions(a *app.App, kind domain.Kind, name string, err error) error {
	var nf *resource.NotFoundError
	if !errors.As(err, &nf) {
		return err
	}
	if s := resource.Suggest(a.Store(), kind, name, 3); len(s) > 0 {
		return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
	}
	return err
}
