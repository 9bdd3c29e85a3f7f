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

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/rs/zerolog/log"

	"wfindex/index"
	"wfindex/record"
	"wfindex/werror"
)

// Pipeline drives annotated sentences from their sources into the index
// core, one goroutine per source document. Sources run independently;
// the only synchronization points are the core's shard locks and the
// processed-sentence-id set, which makes replays of already ingested
// sentences pure no-ops.
type Pipeline struct {
	core   *index.Core
	seenMu sync.Mutex
	seen   *collections.Set[string]
}

func New(core *index.Core) *Pipeline {
	return &Pipeline{
		core: core,
		seen: collections.NewSet[string](),
	}
}

type runCounters struct {
	sentences       atomic.Int64
	replays         atomic.Int64
	tokens          atomic.Int64
	malformedTokens atomic.Int64
	malformedLines  atomic.Int64
}

// Seed registers sentence ids absorbed by previous runs (reloaded from
// the durable store) so re-ingesting their documents after a restart
// stays a no-op.
func (p *Pipeline) Seed(ids []string) {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	for _, id := range ids {
		p.seen.Add(id)
	}
}

// ProcessedIDs returns all sentence ids absorbed so far, sorted so the
// persisted form is reproducible.
func (p *Pipeline) ProcessedIDs() []string {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	return p.seen.ToOrderedSlice()
}

// markSeen registers a sentence id and reports whether it was new.
func (p *Pipeline) markSeen(id string) bool {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	if p.seen.Contains(id) {
		return false
	}
	p.seen.Add(id)
	return true
}

func (p *Pipeline) ingestSentence(sent record.Sentence, counters *runCounters) {
	if !p.markSeen(sent.ID) {
		counters.replays.Add(1)
		return
	}
	counters.sentences.Add(1)
	for _, tok := range sent.Tokens {
		counters.tokens.Add(1)
		key, _, err := record.Normalize(tok)
		if err != nil {
			counters.malformedTokens.Add(1)
			log.Debug().
				Err(err).
				Str("sentenceId", sent.ID).
				Msg("skipping malformed token")
			continue
		}
		if _, err := p.core.Upsert(key, tok, sent.Text); err != nil {
			counters.malformedTokens.Add(1)
			var keyErr werror.MalformedKeyError
			if errors.As(err, &keyErr) {
				// the normalizer let a broken token through - this is
				// a defect worth investigating, not just noise
				log.Error().
					Err(err).
					Str("sentenceId", sent.ID).
					Msg("index core rejected a normalized key")
			}
		}
	}
}

// Ingest consumes all sources in parallel and reports the result. A
// cancelled context stops the affected sources mid-stream; everything
// already upserted stays in the index and the summary flags the
// interrupted sources instead of rolling anything back.
func (p *Pipeline) Ingest(ctx context.Context, sources []Source) *IndexSummary {
	var counters runCounters
	var intrMu sync.Mutex
	interrupted := make([]string, 0)

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			skipped, err := src.Each(ctx, func(sent record.Sentence) error {
				p.ingestSentence(sent, &counters)
				return nil
			})
			counters.malformedLines.Add(skipped)
			if err != nil {
				intrMu.Lock()
				interrupted = append(interrupted, src.Name())
				intrMu.Unlock()
				log.Warn().
					Err(werror.SourceInterruptedError{Source: src.Name()}).
					Msg("source ingestion did not finish")
			}
		}(src)
	}
	wg.Wait()
	sort.Strings(interrupted)

	aggr := p.core.RebuildAggregates()
	ans := &IndexSummary{
		Sentences:          int(counters.sentences.Load()),
		ReplayedSentences:  int(counters.replays.Load()),
		Tokens:             counters.tokens.Load(),
		MalformedTokens:    counters.malformedTokens.Load(),
		MalformedLines:     counters.malformedLines.Load(),
		DistinctEntries:    aggr.TotalEntries,
		TotalOccurrences:   aggr.TotalOccurrences,
		UPoSCounts:         aggr.UPoSCounts,
		Incomplete:         len(interrupted) > 0,
		InterruptedSources: interrupted,
		Created:            time.Now(),
	}
	log.Info().
		Int("sentences", ans.Sentences).
		Int64("tokens", ans.Tokens).
		Int64("malformedTokens", ans.MalformedTokens).
		Int("distinctEntries", ans.DistinctEntries).
		Bool("incomplete", ans.Incomplete).
		Msg("ingestion finished")
	return ans
}
