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

package pipeline

import "time"

// IndexSummary is the single report of what an ingestion run did - how
// much succeeded, what was skipped and whether any source was cut short.
type IndexSummary struct {
	Sentences          int            `json:"sentences"`
	ReplayedSentences  int            `json:"replayedSentences"`
	Tokens             int64          `json:"tokens"`
	MalformedTokens    int64          `json:"malformedTokens"`
	MalformedLines     int64          `json:"malformedLines"`
	DistinctEntries    int            `json:"distinctEntries"`
	TotalOccurrences   int64          `json:"totalOccurrences"`
	UPoSCounts         map[string]int `json:"uposCounts"`
	Incomplete         bool           `json:"incomplete"`
	InterruptedSources []string       `json:"interruptedSources,omitempty"`
	Created            time.Time      `json:"created"`
}
