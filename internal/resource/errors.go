/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package resource

import (
	"fmt"

	"blockfactory/internal/domain"
)

// InvalidNameError reports a blank or whitespace-only name.
type InvalidNameError struct {
	Kind domain.Kind
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s name %q: name must not be blank", e.Kind, e.Name)
}

// DuplicateNameError reports a name already taken within its kind.
type DuplicateNameError struct {
	Kind domain.Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a %s named %q already exists", e.Kind, e.Name)
}

// NotFoundError reports a lookup or removal of an unknown resource.
type NotFoundError struct {
	Kind domain.Kind
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s named %q", e.Kind, e.Name)
}
