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

package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"wfindex/pipeline"
	"wfindex/record"
	"wfindex/werror"
)

// exampleLengthThreshold is an exclusive bound: only sentences strictly
// longer than this many runes are exportable.
const exampleLengthThreshold = 10

// SelectExamples filters the stored examples down to sentences worth
// showing to a user: longer than exampleLengthThreshold runes, not a
// heading and without URLs. When the filter would drop everything, the
// first raw example is kept so an attested form never ends up without
// any example. Order is preserved, so repeated exports of the same
// index are identical.
func SelectExamples(examples []string) []string {
	ans := make([]string, 0, len(examples))
	for _, ex := range examples {
		ex = strings.TrimSpace(ex)
		if len([]rune(ex)) <= exampleLengthThreshold {
			continue
		}
		if strings.HasPrefix(ex, "=") || strings.Contains(ex, "http") {
			continue
		}
		ans = append(ans, ex)
	}
	if len(ans) == 0 && len(examples) > 0 {
		ans = append(ans, strings.TrimSpace(examples[0]))
	}
	return ans
}

// ExportJSONL writes one JSON record per entry, sorted by lemma, form,
// upos and feature string so the export is reproducible regardless of
// ingestion interleaving.
func ExportJSONL(path string, entries []record.WordformEntry) error {
	sorted := append([]record.WordformEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Lemma != sorted[j].Lemma {
			return sorted[i].Lemma < sorted[j].Lemma
		}
		if sorted[i].Form != sorted[j].Form {
			return sorted[i].Form < sorted[j].Form
		}
		if sorted[i].UPoS != sorted[j].UPoS {
			return sorted[i].UPoS < sorted[j].UPoS
		}
		return sorted[i].Feats < sorted[j].Feats
	})
	f, err := os.Create(path)
	if err != nil {
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to create export file: %s", err),
		}
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, entry := range sorted {
		entry.Examples = SelectExamples(entry.Examples)
		line, err := json.Marshal(entry)
		if err != nil {
			return werror.PersistenceError{
				Msg: fmt.Sprintf("failed to serialize entry %s: %s", entry.Form, err),
			}
		}
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to write export file: %s", err),
		}
	}
	log.Info().Str("path", path).Int("entries", len(sorted)).Msg("exported index")
	return nil
}

// StatsRecord is the statistics summary published next to the index.
type StatsRecord struct {
	TotalWordforms         int            `json:"totalWordforms"`
	TotalOccurrences       int64          `json:"totalOccurrences"`
	TotalSentences         int            `json:"totalSentences"`
	TotalTokens            int64          `json:"totalTokens"`
	MalformedTokens        int64          `json:"malformedTokens"`
	POSDistribution        map[string]int `json:"posDistribution"`
	TotalExamples          int            `json:"totalExamples"`
	AvgExamplesPerWordform float64        `json:"avgExamplesPerWordform"`
	UniqueFeatsCount       int            `json:"uniqueFeatsCount"`
	Incomplete             bool           `json:"incomplete"`
	Created                time.Time      `json:"created"`
}

// BuildStats derives the statistics record from an index snapshot and
// the summary of the ingestion run that produced it.
func BuildStats(entries []record.WordformEntry, summary *pipeline.IndexSummary) StatsRecord {
	ans := StatsRecord{
		TotalWordforms:  len(entries),
		POSDistribution: make(map[string]int),
		Created:         time.Now(),
	}
	feats := make(map[string]bool)
	for _, entry := range entries {
		ans.TotalOccurrences += entry.Frequency
		ans.POSDistribution[entry.UPoS]++
		ans.TotalExamples += len(entry.Examples)
		if entry.Feats != "" {
			feats[entry.Feats] = true
		}
	}
	ans.UniqueFeatsCount = len(feats)
	if len(entries) > 0 {
		ans.AvgExamplesPerWordform = float64(ans.TotalExamples) / float64(len(entries))
	}
	if summary != nil {
		ans.TotalSentences = summary.Sentences
		ans.TotalTokens = summary.Tokens
		ans.MalformedTokens = summary.MalformedTokens
		ans.Incomplete = summary.Incomplete
		ans.Created = summary.Created
	}
	return ans
}

func WriteStats(path string, stats StatsRecord) error {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to serialize stats: %s", err),
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to write stats file: %s", err),
		}
	}
	return nil
}
