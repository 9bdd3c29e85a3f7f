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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wfindex/index"
	"wfindex/pipeline"
	"wfindex/rdb"
	"wfindex/rdb/results"
	"wfindex/storage"
	"wfindex/werror"
)

const (
	DefaultTickerInterval = 2 * time.Second
)

type recoveredError struct {
	error
}

// Worker owns the live index core. It consumes jobs from the shared
// Redis queue - ingestion runs, wordform lookups, statistics - and
// publishes the results back over pub/sub.
type Worker struct {
	ID         string
	messages   <-chan *redis.Message
	radapter   *rdb.Adapter
	core       *index.Core
	engine     *index.Engine
	pipe       *pipeline.Pipeline
	backend    *storage.Backend
	sourcesDir string
	dbConf     storage.Conf
	ticker     *time.Ticker

	// lastSummary keeps the report of the most recent ingestion run on
	// this worker; corpusStats includes it when available
	sumMu       sync.Mutex
	lastSummary *pipeline.IndexSummary

	ctx context.Context
}

func NewWorker(
	workerID string,
	radapter *rdb.Adapter,
	messages <-chan *redis.Message,
	core *index.Core,
	backend *storage.Backend,
	sourcesDir string,
	dbConf storage.Conf,
) *Worker {
	return &Worker{
		ID:         workerID,
		radapter:   radapter,
		messages:   messages,
		core:       core,
		engine:     index.NewEngine(core),
		pipe:       pipeline.New(core),
		backend:    backend,
		sourcesDir: sourcesDir,
		dbConf:     dbConf,
		ticker:     time.NewTicker(DefaultTickerInterval),
	}
}

// SeedProcessed marks sentence ids already absorbed into the loaded
// index so ingestion jobs replaying their documents stay no-ops.
func (w *Worker) SeedProcessed(ids []string) {
	w.pipe.Seed(ids)
}

func (w *Worker) publishResult(res results.SerializableResult, channel string) error {
	ans, err := rdb.CreateWorkerResult(res)
	if err != nil {
		return err
	}
	ans.ProcEnd = time.Now()
	return w.radapter.PublishResult(channel, ans)
}

func (w *Worker) sendPublishingErr(query rdb.Query, err error) {
	res := results.ErrorResult{Func: query.Func, Error: err.Error()}
	if err := w.publishResult(res, query.Channel); err != nil {
		log.Error().Err(err).Msg("failed to publish general publishing error")
	}
}

func (w *Worker) runQueryProtected(query rdb.Query) (ansErr error) {
	defer func() {
		if r := recover(); r != nil {
			ansErr = recoveredError{werror.PanicValueToErr(r)}
			return
		}
	}()
	switch query.Func {
	case "ingestSources":
		var args rdb.IngestSourcesArgs
		if err := json.Unmarshal(query.Args, &args); err != nil {
			return err
		}
		ans := w.ingestSources(args)
		if err := w.publishResult(ans, query.Channel); err != nil {
			w.sendPublishingErr(query, err)
			return err
		}
	case "wordformSearch":
		var args rdb.WordformSearchArgs
		if err := json.Unmarshal(query.Args, &args); err != nil {
			return err
		}
		ans := w.wordformSearch(args)
		if err := w.publishResult(ans, query.Channel); err != nil {
			w.sendPublishingErr(query, err)
			return err
		}
	case "wordformExamples":
		var args rdb.WordformExamplesArgs
		if err := json.Unmarshal(query.Args, &args); err != nil {
			return err
		}
		ans := w.wordformExamples(args)
		if err := w.publishResult(ans, query.Channel); err != nil {
			w.sendPublishingErr(query, err)
			return err
		}
	case "corpusStats":
		ans := w.corpusStats()
		if err := w.publishResult(ans, query.Channel); err != nil {
			w.sendPublishingErr(query, err)
			return err
		}
	default:
		ans := results.ErrorResult{Error: fmt.Sprintf("unknown query function: %s", query.Func)}
		if err := w.publishResult(ans, query.Channel); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) tryNextQuery() error {

	time.Sleep(time.Duration(rand.Intn(40)) * time.Millisecond)
	query, err := w.radapter.DequeueQuery()
	if err == rdb.ErrorEmptyQueue {
		return nil

	} else if err != nil {
		return err
	}
	log.Debug().
		Str("channel", query.Channel).
		Str("func", query.Func).
		Msg("received query")

	isActive, err := w.radapter.SomeoneListens(query)
	if err != nil {
		return err
	}
	if !isActive {
		log.Warn().
			Str("func", query.Func).
			Str("channel", query.Channel).
			Msg("worker found an inactive query")
		return nil
	}

	err = w.runQueryProtected(query)
	var rcvErr recoveredError
	if errors.As(err, &rcvErr) {
		ans := results.ErrorResult{
			Error: fmt.Sprintf("worker panicked: %s", rcvErr.Error()),
			Func:  query.Func,
		}
		if err := w.publishResult(ans, query.Channel); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) listen(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("worker exiting")
			return
		case <-w.ticker.C:
			w.tryNextQuery()
		case msg := <-w.messages:
			if msg.Payload == rdb.MsgNewQuery {
				w.tryNextQuery()
			}
		}
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.ctx = ctx
	go w.listen(ctx)
}

// Stop flushes the live index to the durable store before shutdown so
// a restarted worker resumes from the last known state.
func (w *Worker) Stop(ctx context.Context) error {
	w.ticker.Stop()
	if err := w.backend.Flush(w.core.Snapshot(), w.pipe.ProcessedIDs()); err != nil {
		log.Error().Err(err).Msg("failed to flush index on shutdown")
		return err
	}
	return w.backend.Close()
}
