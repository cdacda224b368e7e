/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package app

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"blockfactory/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// DemoBlock is the block placed into the first library of an empty project.
type DemoBlock struct {
	Type string `yaml:"type"`
	JSON string `yaml:"json"`
}

// Defaults is the seed content for new projects and resources.
type Defaults struct {
	DemoLibrary          string            `yaml:"demo_library"`
	DemoBlock            DemoBlock         `yaml:"demo_block"`
	NewBlockJSON         string            `yaml:"new_block_json"`
	ToolboxXML           string            `yaml:"toolbox_xml"`
	WorkspaceContentsXML string            `yaml:"workspace_contents_xml"`
	WorkspaceOptions     map[string]string `yaml:"workspace_options"`
}

// LoadDefaults parses seed content from YAML.
func LoadDefaults(data []byte) (*Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse defaults: %w", err)
	}
	if strings.TrimSpace(d.DemoLibrary) == "" {
		return nil, errors.New("defaults: demo_library is required")
	}
	if strings.TrimSpace(d.DemoBlock.Type) == "" {
		return nil, errors.New("defaults: demo_block.type is required")
	}
	if d.WorkspaceOptions == nil {
		d.WorkspaceOptions = map[string]string{}
	}
	return &d, nil
}

// BuiltinDefaults returns the embedded seed content.
func BuiltinDefaults() *Defaults {
	d, err := LoadDefaults(defaultsYAML)
	if err != nil {
		// the embedded file is part of the build
		panic(err)
	}
	return d
}

// demoBlock returns the definition seeded into the demo library.
func (d *Defaults) demoBlock() domain.BlockDefinition {
	return domain.BlockDefinition{Type: d.DemoBlock.Type, JSON: strings.TrimSpace(d.DemoBlock.JSON)}
}

// newBlock renders the template for a fresh block with its type set to blockType.
func (d *Defaults) newBlock(blockType string) domain.BlockDefinition {
	def := map[string]any{}
	if err := json.Unmarshal([]byte(d.NewBlockJSON), &def); err != nil {
		def = map[string]any{}
	}
	def["type"] = blockType
	b, _ := json.MarshalIndent(def, "", "  ")
	return domain.BlockDefinition{Type: blockType, JSON: string(b)}
}

// seed fills a freshly created resource with its default payload.
func (d *Defaults) seed(res domain.Resource) {
	switch r := res.(type) {
	case *domain.Toolbox:
		r.XML = d.ToolboxXML
	case *domain.WorkspaceContents:
		r.XML = d.WorkspaceContentsXML
	case *domain.WorkspaceConfiguration:
		for k, v := range d.WorkspaceOptions {
			r.Options[k] = v
		}
	}
}
