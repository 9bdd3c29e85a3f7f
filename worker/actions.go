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

package worker

import (
	"strings"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"

	"wfindex/index"
	"wfindex/pipeline"
	"wfindex/rdb"
	"wfindex/rdb/results"
	"wfindex/record"
	"wfindex/storage"
)

func (w *Worker) ingestSources(args rdb.IngestSourcesArgs) results.Ingestion {
	var ans results.Ingestion
	sources, err := pipeline.ListSources(w.sourcesDir)
	if err != nil {
		ans.Error = err.Error()
		return ans
	}
	if len(args.Sources) > 0 {
		sources = collections.SliceFilter(sources, func(src pipeline.Source, i int) bool {
			return collections.SliceContains(args.Sources, src.Name())
		})
	}
	if len(sources) == 0 {
		ans.Error = "no matching corpus sources found"
		return ans
	}

	summary := w.pipe.Ingest(w.ctx, sources)
	w.sumMu.Lock()
	w.lastSummary = summary
	w.sumMu.Unlock()
	ans.Summary = *summary

	snapshot := w.core.Snapshot()
	if err := w.backend.Flush(snapshot, w.pipe.ProcessedIDs()); err != nil {
		ans.Error = err.Error()
		return ans
	}
	if w.dbConf.ExportPath != "" {
		if err := storage.ExportJSONL(w.dbConf.ExportPath, snapshot); err != nil {
			ans.Error = err.Error()
			return ans
		}
	}
	if w.dbConf.StatsPath != "" {
		stats := storage.BuildStats(snapshot, summary)
		if err := storage.WriteStats(w.dbConf.StatsPath, stats); err != nil {
			ans.Error = err.Error()
			return ans
		}
	}
	return ans
}

func (w *Worker) wordformSearch(args rdb.WordformSearchArgs) results.WordformSearch {
	ans := results.WordformSearch{Items: []record.WordformEntry{}}
	switch {
	case args.Lemma != "":
		ans.Items = w.engine.ByLemma(args.Lemma)
	case args.LemmaPrefix != "":
		ans.Items = w.engine.ByLemmaPrefix(args.LemmaPrefix)
	case args.Form != "":
		ans.Items = w.engine.ByForm(args.Form)
	case args.UPoS != "":
		ans.Items = w.engine.ByUPoS(args.UPoS)
	case args.FeaturePattern != "":
		ans.Items = w.engine.ByFeatureSubstring(args.FeaturePattern)
	default:
		ans.Error = "no search criterion provided"
		return ans
	}
	if args.SortByFreq {
		index.SortByFrequency(ans.Items)
	}
	if args.MaxItems > 0 && len(ans.Items) > args.MaxItems {
		ans.Items = ans.Items[:args.MaxItems]
	}
	return ans
}

func (w *Worker) wordformExamples(args rdb.WordformExamplesArgs) results.WordformExamples {
	key := record.Key{
		Lemma: strings.ToLower(strings.TrimSpace(args.Lemma)),
		Form:  strings.TrimSpace(args.Form),
		UPoS:  strings.TrimSpace(args.UPoS),
		Feats: record.NormalizeFeats(args.Feats),
	}
	return results.WordformExamples{
		Examples: w.engine.Examples(key, args.Limit),
	}
}

func (w *Worker) corpusStats() results.CorpusStats {
	w.sumMu.Lock()
	summary := w.lastSummary
	w.sumMu.Unlock()
	if summary == nil {
		log.Debug().Msg("no ingestion run on this worker yet, stats cover the loaded index only")
	}
	return results.CorpusStats{
		Stats: storage.BuildStats(w.core.Snapshot(), summary),
	}
}
