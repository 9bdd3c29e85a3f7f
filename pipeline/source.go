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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"wfindex/record"
)

// scanBufSize must accommodate a whole annotated sentence on one line.
const scanBufSize = 1024 * 1024

// Source is one document's worth of annotated sentences as produced by
// the external morphology annotator. Each streams the sentences in
// their original order and reports the number of unreadable records it
// skipped; a non-nil error from fn stops the stream.
type Source interface {
	Name() string
	Each(ctx context.Context, fn func(sent record.Sentence) error) (skipped int64, err error)
}

// FileSource reads newline-delimited JSON sentence records from a file
// (the annotator's output format, one sentence object per line).
type FileSource struct {
	name string
	path string
}

func NewFileSource(path string) FileSource {
	return FileSource{
		name: filepath.Base(path),
		path: path,
	}
}

func (fs FileSource) Name() string {
	return fs.name
}

func (fs FileSource) Each(ctx context.Context, fn func(sent record.Sentence) error) (int64, error) {
	f, err := os.Open(fs.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open source %s: %w", fs.name, err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, scanBufSize), scanBufSize)
	var lineNum int
	var skipped int64
	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return skipped, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var sent record.Sentence
		if err := json.Unmarshal([]byte(line), &sent); err != nil {
			log.Warn().
				Err(err).
				Str("source", fs.name).
				Int("line", lineNum).
				Msg("skipping malformed sentence record")
			skipped++
			continue
		}
		if sent.ID == "" {
			log.Warn().
				Str("source", fs.name).
				Int("line", lineNum).
				Msg("skipping sentence record without an id")
			skipped++
			continue
		}
		if sent.Source == "" {
			sent.Source = fs.name
		}
		if err := fn(sent); err != nil {
			return skipped, err
		}
	}
	if err := scanner.Err(); err != nil {
		return skipped, fmt.Errorf("failed to read source %s: %w", fs.name, err)
	}
	return skipped, nil
}

// ListSources collects all *.jsonl documents of a corpus directory,
// sorted by name so repeated runs enumerate them deterministically.
func ListSources(dir string) ([]Source, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus sources: %w", err)
	}
	ans := make([]Source, 0, len(items))
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".jsonl") {
			continue
		}
		ans = append(ans, NewFileSource(filepath.Join(dir, item.Name())))
	}
	sort.Slice(ans, func(i, j int) bool {
		return ans[i].Name() < ans[j].Name()
	})
	return ans, nil
}
