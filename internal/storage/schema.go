/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema/manifest.schema.json
var manifestSchemaJSON []byte

var (
	schemaOnce     sync.Once
	manifestSchema *gojsonschema.Schema
	schemaErr      error
)

// SchemaError lists every violation found in a manifest.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "manifest does not conform to schema: " + strings.Join(e.Violations, "; ")
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		manifestSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(manifestSchemaJSON))
	})
	return manifestSchema, schemaErr
}

// ValidateManifest checks raw manifest bytes against the embedded schema.
// Malformed JSON is reported as an error as well.
func ValidateManifest(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load manifest schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate manifest: %w", err)
	}
	if res.Valid() {
		return nil
	}
	se := &SchemaError{}
	for _, e := range res.Errors() {
		se.Violations = append(se.Violations, e.String())
	}
	return se
}
