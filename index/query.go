// Copyright 2025 The wfindex authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"sort"
	"strings"

	"wfindex/record"
)

// Engine provides the read-only lookups over a Core. All methods return
// detached entry copies ordered by entry insertion sequence; an empty
// result is an empty slice, never an error.
type Engine struct {
	core *Core
}

func NewEngine(core *Core) *Engine {
	return &Engine{core: core}
}

func (e *Engine) collect(match func(entry record.WordformEntry) bool) []record.WordformEntry {
	ans := make([]record.WordformEntry, 0)
	e.core.forEach(func(entry record.WordformEntry) {
		if match(entry) {
			ans = append(ans, entry)
		}
	})
	sort.Slice(ans, func(i, j int) bool {
		return ans[i].Seq < ans[j].Seq
	})
	return ans
}

// ByLemma is a case-insensitive exact match on the lemma.
func (e *Engine) ByLemma(lemma string) []record.WordformEntry {
	lemma = strings.ToLower(strings.TrimSpace(lemma))
	return e.collect(func(entry record.WordformEntry) bool {
		return strings.ToLower(entry.Lemma) == lemma
	})
}

// ByLemmaPrefix is a case-insensitive prefix match on the lemma,
// supporting dictionary-style browsing of the index.
func (e *Engine) ByLemmaPrefix(prefix string) []record.WordformEntry {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	return e.collect(func(entry record.WordformEntry) bool {
		return strings.HasPrefix(strings.ToLower(entry.Lemma), prefix)
	})
}

// ByForm is a case-sensitive exact match on the surface form.
func (e *Engine) ByForm(form string) []record.WordformEntry {
	return e.collect(func(entry record.WordformEntry) bool {
		return entry.Form == form
	})
}

func (e *Engine) ByUPoS(tag string) []record.WordformEntry {
	return e.collect(func(entry record.WordformEntry) bool {
		return entry.UPoS == tag
	})
}

// ByFeatureSubstring matches pattern as a substring of the canonical
// feature string (e.g. "Tense=Past" finds all past-tense entries).
func (e *Engine) ByFeatureSubstring(pattern string) []record.WordformEntry {
	return e.collect(func(entry record.WordformEntry) bool {
		return strings.Contains(entry.Feats, pattern)
	})
}

// Examples returns the first limit examples of the entry for key in
// insertion order. A non-positive limit means all stored examples.
func (e *Engine) Examples(key record.Key, limit int) []string {
	entry, ok := e.core.Get(key)
	if !ok {
		return []string{}
	}
	if limit <= 0 || limit > len(entry.Examples) {
		limit = len(entry.Examples)
	}
	return entry.Examples[:limit]
}

// SortByFrequency reorders items by frequency descending with a stable
// sort, ties broken by lemma and then by surface form, so grouped
// corpus reports are reproducible.
func SortByFrequency(items []record.WordformEntry) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Frequency != items[j].Frequency {
			return items[i].Frequency > items[j].Frequency
		}
		if items[i].Lemma != items[j].Lemma {
			return items[i].Lemma < items[j].Lemma
		}
		return items[i].Form < items[j].Form
	})
}
