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
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"blockfactory/internal/domain"
)

// Suggest returns existing names of kind close to name, nearest first. It backs the
// "did you mean" hint when a lookup by name misses.
func Suggest(s *Store, kind domain.Kind, name string, limit int) []string {
	type cand struct {
		name string
		dist int
	}
	var cands []cand
	q := strings.ToLower(name)
	for _, n := range s.Names(kind) {
		d := levenshtein.ComputeDistance(q, strings.ToLower(n))
		maxDist := len(n) / 3
		if maxDist < 2 {
			maxDist = 2
		}
		if d <= maxDist {
			cands = append(cands, cand{n, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.name)
	}
	return out
}
