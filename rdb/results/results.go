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

package results

import (
	"errors"

	"wfindex/pipeline"
	"wfindex/record"
	"wfindex/storage"
)

const (
	ResultTypeWordformSearch   ResultType = "wordformSearch"
	ResultTypeWordformExamples ResultType = "wordformExamples"
	ResultTypeCorpusStats      ResultType = "corpusStats"
	ResultTypeIngestion        ResultType = "ingestion"
	ResultTypeError            ResultType = "error"
)

type ResultType string

func (rt ResultType) String() string {
	return string(rt)
}

// ----------------

// SerializableResult is anything a worker may publish as the outcome
// of a queued job.
type SerializableResult interface {
	Type() ResultType
	Err() error
}

// ----------------

type WordformSearch struct {
	Items []record.WordformEntry `json:"items"`
	Error string                 `json:"error,omitempty"`
}

func (res WordformSearch) Type() ResultType {
	return ResultTypeWordformSearch
}

func (res WordformSearch) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

// ----------------

type WordformExamples struct {
	Examples []string `json:"examples"`
	Error    string   `json:"error,omitempty"`
}

func (res WordformExamples) Type() ResultType {
	return ResultTypeWordformExamples
}

func (res WordformExamples) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

// ----------------

type CorpusStats struct {
	Stats storage.StatsRecord `json:"stats"`
	Error string              `json:"error,omitempty"`
}

func (res CorpusStats) Type() ResultType {
	return ResultTypeCorpusStats
}

func (res CorpusStats) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

// ----------------

type Ingestion struct {
	Summary pipeline.IndexSummary `json:"summary"`
	Error   string                `json:"error,omitempty"`
}

func (res Ingestion) Type() ResultType {
	return ResultTypeIngestion
}

func (res Ingestion) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}

// ----------------

type ErrorResult struct {
	Func  string `json:"func"`
	Error string `json:"error"`
}

func (res ErrorResult) Type() ResultType {
	return ResultTypeError
}

func (res ErrorResult) Err() error {
	if res.Error != "" {
		return errors.New(res.Error)
	}
	return nil
}
