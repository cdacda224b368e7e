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
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blockfactory/internal/domain"
)

// Bundle packages every resource of the project into a ZIP archive:
//
//	manifest.json                     the full project
//	<project>.json                    the library document (see Document)
//	toolbox/<name>.xml
//	workspace-contents/<name>.xml
//	workspace-config/<name>.json      options map
//	library/<name>.json               block definitions
//
// Directory names are the kind slugs. Entries are written in a stable order.
func Bundle(proj *domain.Project) ([]byte, error) {
	if proj == nil {
		return nil, errors.New("nil project")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest, err := json.MarshalIndent(proj, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", manifest); err != nil {
		return nil, fmt.Errorf("add manifest: %w", err)
	}
	doc, err := Document(proj)
	if err != nil {
		return nil, err
	}
	if err := addZipFile(zw, Filename(proj.Name, ".json"), []byte(doc)); err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}

	for _, kind := range domain.Kinds {
		for _, name := range proj.Names(kind) {
			res, _ := proj.Lookup(kind, name)
			data, ext, err := payload(res)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", kind, name, err)
			}
			entry := kind.Slug() + "/" + Filename(name, ext)
			if err := addZipFile(zw, entry, data); err != nil {
				return nil, fmt.Errorf("add %s: %w", entry, err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

func payload(res domain.Resource) ([]byte, string, error) {
	switch r := res.(type) {
	case *domain.Toolbox:
		return []byte(r.XML), ".xml", nil
	case *domain.WorkspaceContents:
		return []byte(r.XML), ".xml", nil
	case *domain.WorkspaceConfiguration:
		b, err := json.MarshalIndent(r.Options, "", "  ")
		return b, ".json", err
	case *domain.BlockLibrary:
		blocks := make([]json.RawMessage, 0, len(r.Blocks))
		for _, bt := range r.BlockNames() {
			blocks = append(blocks, blockJSON(r.Blocks[bt]))
		}
		b, err := json.MarshalIndent(blocks, "", "  ")
		return b, ".json", err
	default:
		return nil, "", fmt.Errorf("unsupported resource %T", res)
	}
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.Modified = time.Now()
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
