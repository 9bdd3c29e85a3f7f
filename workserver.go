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
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"wfindex/cnf"
	"wfindex/index"
	"wfindex/rdb"
	"wfindex/storage"
	"wfindex/worker"
)

func getWorkerID() (workerID string) {
	workerID = getEnv("WORKER_ID")
	if workerID == "" {
		workerID = strconv.Itoa(os.Getpid())
	}
	return
}

func runWorker(conf *cnf.Conf) {
	workerID := getWorkerID()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.Redis == nil {
		log.Fatal().Msg("cannot run a worker without the redis section")
	}
	radapter := rdb.NewAdapter(ctx, conf.Redis)
	if err := radapter.TestConnection(redisConnectionTestTimeout); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	backend, err := storage.OpenBackend(conf.DB.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open the index database")
	}

	core := index.NewCore(*conf.Index)
	stored, err := backend.LoadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load the stored index")
	}
	if err := core.Load(stored); err != nil {
		log.Fatal().Err(err).Msg("failed to seed the index core")
	}
	aggr := core.RebuildAggregates()
	log.Info().
		Int("entries", aggr.TotalEntries).
		Int64("occurrences", aggr.TotalOccurrences).
		Msg("loaded stored index")

	seenIDs, err := backend.LoadSentenceIDs()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load processed sentence ids")
	}

	ch := radapter.Subscribe()
	wrk := worker.NewWorker(
		workerID, radapter, ch, core, backend, conf.SourcesDir, *conf.DB)
	wrk.SeedProcessed(seenIDs)

	services := []service{wrk}
	for _, m := range services {
		m.Start(ctx)
	}
	<-ctx.Done()
	log.Warn().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for _, s := range services {
		wg.Add(1)
		go func(srv service) {
			defer wg.Done()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Type("service", srv).Msg("Error shutting down service")
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		log.Warn().Msg("Shutdown timed out")
	}
}
