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

// Aggregates are derived views over the index - recomputed by a full
// scan, never maintained as independent mutable state that could drift
// from the entries.
type Aggregates struct {
	TotalEntries     int            `json:"totalEntries"`
	TotalOccurrences int64          `json:"totalOccurrences"`
	UPoSCounts       map[string]int `json:"uposCounts"`
	DistinctFeats    int            `json:"distinctFeats"`
}

// RebuildAggregates recomputes the per-UPoS counts and the totals by a
// full scan. It is meant for post-ingestion or post-load use, not for
// the hot ingestion path.
func (c *Core) RebuildAggregates() Aggregates {
	ans := Aggregates{
		UPoSCounts: make(map[string]int),
	}
	feats := make(map[string]bool)
	c.forEach(func(entry record.WordformEntry) {
		ans.TotalEntries++
		ans.TotalOccurrences += entry.Frequency
		ans.UPoSCounts[entry.UPoS]++
		if entry.Feats != "" {
			feats[entry.Feats] = true
		}
	})
	ans.DistinctFeats = len(feats)
	return ans
}
