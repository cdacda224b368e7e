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
	"strings"

	"blockfactory/internal/domain"
)

// Prompter asks the user for a name. ok is false when the user cancelled the prompt.
// errText, when non-empty, annotates the prompt with the reason the previous answer was refused.
type Prompter interface {
	PromptForName(label, errText string) (name string, ok bool)
}

// PrompterFunc adapts a plain function to Prompter.
type PrompterFunc func(label, errText string) (string, bool)

func (f PrompterFunc) PromptForName(label, errText string) (string, bool) { return f(label, errText) }

// Resolve runs the naming loop: a taken name re-prompts with an annotation, while a cancelled
// or blank answer abandons the whole flow. The two outcomes are deliberately asymmetric.
func Resolve(p Prompter, label string, taken func(name string) bool) (string, bool) {
	errText := ""
	for {
		name, ok := p.PromptForName(label, errText)
		if !ok || strings.TrimSpace(name) == "" {
			return "", false
		}
		if !taken(name) {
			return name, true
		}
		errText = fmt.Sprintf("The name %q is already in use. Please choose another name.", name)
	}
}

// ResolveName resolves a fresh name for a resource of kind in s.
func ResolveName(s *Store, kind domain.Kind, p Prompter, label string) (string, bool) {
	return Resolve(p, label, func(name string) bool { return s.Exists(kind, name) })
}
