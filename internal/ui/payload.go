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
	"bufio"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"blockfactory/internal/app"
	"blockfactory/internal/domain"
)

// PayloadText renders the editable payload of res: XML for toolboxes and workspace
// contents, key=value lines for configurations, and a JSON object of block definitions keyed
// by type for libraries.
func PayloadText(res domain.Resource) string {
	switch r := res.(type) {
	case *domain.Toolbox:
		return r.XML
	case *domain.WorkspaceContents:
		return r.XML
	case *domain.WorkspaceConfiguration:
		keys := make([]string, 0, len(r.Options))
		for k := range r.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s=%s\n", k, r.Options[k])
		}
		return b.String()
	case *domain.BlockLibrary:
		blocks := make(map[string]json.RawMessage, len(r.Blocks))
		for t, def := range r.Blocks {
			if json.Valid([]byte(def.JSON)) {
				blocks[t] = json.RawMessage(def.JSON)
			} else {
				q, _ := json.Marshal(def.JSON)
				blocks[t] = q
			}
		}
		out, err := json.MarshalIndent(blocks, "", "  ")
		if err != nil {
			return "{}"
		}
		return string(out)
	default:
		return ""
	}
}

// ApplyPayload parses text as produced by PayloadText and applies the differences through
// the orchestrator, so every change lands in the resource's undo history.
func ApplyPayload(a *app.App, res domain.Resource, text string) error {
	switch r := res.(type) {
	case *domain.Toolbox:
		if r.XML == text {
			return nil
		}
		return a.UpdateToolboxXML(r.Name(), text)
	case *domain.WorkspaceContents:
		if r.XML == text {
			return nil
		}
		return a.UpdateWorkspaceContentsXML(r.Name(), text)
	case *domain.WorkspaceConfiguration:
		opts, err := parseOptions(text)
		if err != nil {
			return err
		}
		for k := range r.Options {
			if _, keep := opts[k]; !keep {
				if err := a.SetConfigOption(r.Name(), k, ""); err != nil {
					return err
				}
			}
		}
		for k, v := range opts {
			if r.Options[k] == v {
				continue
			}
			if err := a.SetConfigOption(r.Name(), k, v); err != nil {
				return err
			}
		}
		return nil
	case *domain.BlockLibrary:
		var blocks map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text), &blocks); err != nil {
			return fmt.Errorf("library %q: %w", r.Name(), err)
		}
		for t := range r.Blocks {
			if _, keep := blocks[t]; !keep {
				if err := a.RemoveBlock(r.Name(), t); err != nil {
					return err
				}
			}
		}
		for t, raw := range blocks {
			def := domain.BlockDefinition{Type: t, JSON: string(raw)}
			if cur, ok := r.Blocks[t]; ok && sameJSON(cur.JSON, def.JSON) {
				continue
			}
			if err := a.PutBlock(r.Name(), def); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported resource %T", res)
	}
}

func parseOptions(text string) (map[string]string, error) {
	opts := map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		k, v, ok := strings.Cut(s, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("line %d: expected key=value", line)
		}
		opts[k] = strings.TrimSpace(v)
	}
	return opts, sc.Err()
}

func sameJSON(a, b string) bool {
	var x, y any
	if json.Unmarshal([]byte(a), &x) != nil || json.Unmarshal([]byte(b), &y) != nil {
		return a == b
	}
	xa, _ := json.Marshal(x)
	ya, _ := json.Marshal(y)
	return string(xa) == string(ya)
}
