/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"blockfactory/internal/domain"
)

const (
	MimeJSON = "application/json"
	MimeZip  = "application/zip"
)

// LibraryDoc is one library in the exported document. Blocks holds each block's definition
// JSON verbatim, ordered by block type.
type LibraryDoc struct {
	Name   string            `json:"name"`
	Blocks []json.RawMessage `json:"blocks"`
}

// ProjectDoc is the document handed to the export service on save.
type ProjectDoc struct {
	Project   string       `json:"project"`
	Libraries []LibraryDoc `json:"libraries"`
}

// Document renders the project's block libraries as a JSON document. Block definitions that
// are not valid JSON are exported as {"type": <type>} so one bad block does not void the file.
func Document(proj *domain.Project) (string, error) {
	if proj == nil {
		return "", errors.New("nil project")
	}
	doc := ProjectDoc{Project: proj.Name, Libraries: []LibraryDoc{}}
	for _, name := range proj.Names(domain.KindBlockLibrary) {
		lib := proj.Libraries[name]
		ld := LibraryDoc{Name: name, Blocks: []json.RawMessage{}}
		for _, bt := range lib.BlockNames() {
			ld.Blocks = append(ld.Blocks, blockJSON(lib.Blocks[bt]))
		}
		doc.Libraries = append(doc.Libraries, ld)
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	return string(b) + "\n", nil
}

func blockJSON(b domain.BlockDefinition) json.RawMessage {
	if s := strings.TrimSpace(b.JSON); s != "" && json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	fallback, _ := json.Marshal(map[string]string{"type": b.Type})
	return fallback
}

// Filename turns a project or resource name into a portable file name with ext appended.
func Filename(name, ext string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	base := strings.Trim(b.String(), ".")
	if base == "" {
		base = "project"
	}
	return base + ext
}
