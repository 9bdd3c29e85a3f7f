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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"wfindex/cnf"
	"wfindex/index"
	"wfindex/pipeline"
	"wfindex/storage"
)

// runIndexer performs a one-shot local ingestion: read all configured
// sources, build the index, persist it and print the summary. No Redis
// or workers involved - this is the batch path for (re)building the
// whole corpus index.
func runIndexer(conf *cnf.Conf) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources, err := pipeline.ListSources(conf.SourcesDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list corpus sources")
		return
	}
	if len(sources) == 0 {
		log.Fatal().Str("dir", conf.SourcesDir).Msg("no corpus sources found")
		return
	}
	log.Info().Int("sources", len(sources)).Msg("starting corpus indexing")

	core := index.NewCore(*conf.Index)
	pipe := pipeline.New(core)
	summary := pipe.Ingest(ctx, sources)

	backend, err := storage.OpenBackend(conf.DB.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open the index database")
		return
	}
	defer backend.Close()

	snapshot := core.Snapshot()
	if err := backend.Flush(snapshot, pipe.ProcessedIDs()); err != nil {
		log.Fatal().Err(err).Msg("failed to persist the index")
		return
	}
	if conf.DB.ExportPath != "" {
		if err := storage.ExportJSONL(conf.DB.ExportPath, snapshot); err != nil {
			log.Fatal().Err(err).Msg("failed to export the index")
			return
		}
	}
	if conf.DB.StatsPath != "" {
		stats := storage.BuildStats(snapshot, summary)
		if err := storage.WriteStats(conf.DB.StatsPath, stats); err != nil {
			log.Fatal().Err(err).Msg("failed to write index stats")
			return
		}
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to serialize the summary")
		return
	}
	fmt.Println(string(out))
}
