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

package rdb

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// ClearCache drops all cached results. Must be called after any job
// that mutates the index (ingestion) - cached lookups describe the
// pre-ingestion index and would otherwise be served forever.
func (a *Adapter) ClearCache() error {
	if len(a.cachePath) == 0 {
		return nil
	}
	items, err := os.ReadDir(a.cachePath)
	if err != nil {
		return fmt.Errorf("failed to list cache directory: %w", err)
	}
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		if err := os.Remove(a.cachePath + "/" + item.Name()); err != nil {
			return fmt.Errorf("failed to remove cache file %s: %w", item.Name(), err)
		}
	}
	log.Info().Int("files", len(items)).Msg("cleared query result cache")
	return nil
}

// CacheResult wraps a query function with a simple file cache. Only
// read-only query functions should go through here - ingestion jobs
// must always reach a worker.
func (a *Adapter) CacheResult(fn func(Query) (<-chan *WorkerResult, error), query Query) (<-chan *WorkerResult, error) {
	if len(a.cachePath) == 0 {
		return fn(query)
	}

	hashKey := sha1.Sum(query.Args)
	path := a.cachePath + "/" + query.Func + hex.EncodeToString(hashKey[:])

	pe := fs.PathExists(path)
	isf, _ := fs.IsFile(path)
	ans := make(chan *WorkerResult)
	if pe && isf {
		go func() {
			result := new(WorkerResult)
			content, err := os.ReadFile(path)
			if err != nil {
				log.Err(err).Msgf("Error while reading cache file %s", path)
			}
			split := strings.SplitN(string(content), "\n", 2)
			if len(split) == 2 {
				result.ResultType = split[0]
				result.Value = json.RawMessage(split[1])
			}
			ans <- result
		}()
		return ans, nil
	}

	wr, err := fn(query)
	if err != nil {
		return nil, err
	}
	go func(wr <-chan *WorkerResult) {
		rawResult := <-wr
		f, err := os.Create(path)
		if err != nil {
			log.Err(err).Msgf("Error while creating cache file %s", path)
		}
		defer f.Close()
		_, err = f.WriteString(rawResult.ResultType + "\n")
		if err != nil {
			log.Err(err).Msgf("Error while writing cache file %s", path)
		}
		_, err = f.Write(rawResult.Value)
		if err != nil {
			log.Err(err).Msgf("Error while writing cache file %s", path)
		}
		ans <- rawResult
	}(wr)
	return ans, nil
}
