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

import "wfindex/record"

// DfltMaxExamplesPerEntry bounds the number of stored example sentences
// per wordform entry. The entry's Frequency keeps counting past the cap
// so corpus statistics stay exact on large inputs.
const DfltMaxExamplesPerEntry = 10

// ExampleStore enforces the per-entry example policy: insertion order
// preserved, no duplicate sentence text, at most Limit items.
type ExampleStore struct {
	Limit int
}

func NewExampleStore(limit int) ExampleStore {
	if limit <= 0 {
		limit = DfltMaxExamplesPerEntry
	}
	return ExampleStore{Limit: limit}
}

// TryAdd appends sentence to the entry's examples and reports whether
// it was stored. False means either a duplicate or a full store; in
// both cases the entry itself is left untouched. The entry cap is small
// so a linear duplicate scan is good enough here.
func (es ExampleStore) TryAdd(entry *record.WordformEntry, sentence string) bool {
	if len(entry.Examples) >= es.Limit {
		return false
	}
	for _, ex := range entry.Examples {
		if ex == sentence {
			return false
		}
	}
	entry.Examples = append(entry.Examples, sentence)
	return true
}
