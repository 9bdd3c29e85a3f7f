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

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"

	"wfindex/rdb"
	"wfindex/rdb/results"
	"wfindex/werror"
)

// Actions wraps the server-side handlers. All heavy work happens on a
// worker; handlers only translate HTTP requests into queued jobs and
// job results back into JSON responses.
type Actions struct {
	radapter     *rdb.Adapter
	queryTimeout time.Duration
}

func NewActions(radapter *rdb.Adapter, queryTimeout time.Duration) *Actions {
	return &Actions{
		radapter:     radapter,
		queryTimeout: queryTimeout,
	}
}

// waitForResult collects the worker's answer with a timeout so a dead
// worker cannot hang a client connection forever.
func (a *Actions) waitForResult(wait <-chan *rdb.WorkerResult) (*rdb.WorkerResult, error) {
	select {
	case ans := <-wait:
		return ans, nil
	case <-time.After(a.queryTimeout):
		return nil, werror.InternalError{
			Msg: fmt.Sprintf("worker result timeout after %s", a.queryTimeout),
		}
	}
}

// publishAndWait runs the full job round-trip and decodes the payload
// into T. Read-only jobs go through the adapter's file cache; anything
// mutating the index (ingestion) must always reach a worker. The second
// return value signals whether the caller should continue (an error
// response has already been written otherwise).
func publishAndWait[T results.SerializableResult](
	a *Actions, ctx *gin.Context, fn string, args any,
) (T, bool) {
	var ans T
	query, err := rdb.NewQuery(fn, args)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusInternalServerError)
		return ans, false
	}
	var wait <-chan *rdb.WorkerResult
	if fn == "wordformSearch" || fn == "wordformExamples" {
		wait, err = a.radapter.CacheResult(a.radapter.PublishQuery, query)

	} else {
		wait, err = a.radapter.PublishQuery(query)
	}
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusInternalServerError)
		return ans, false
	}
	rawResult, err := a.waitForResult(wait)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusServiceUnavailable)
		return ans, false
	}
	if rawResult.ResultType == results.ResultTypeError.String() {
		errResult, err := rdb.DecodeValue[results.ErrorResult](rawResult)
		if err != nil {
			uniresp.WriteJSONErrorResponse(
				ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusInternalServerError)
			return ans, false
		}
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("%s", errResult.Error), http.StatusInternalServerError)
		return ans, false
	}
	ans, err = rdb.DecodeValue[T](rawResult)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusInternalServerError)
		return ans, false
	}
	if resErr := ans.Err(); resErr != nil {
		status := http.StatusInternalServerError
		if rawResult.HasUserError {
			status = http.StatusUnprocessableEntity
		}
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionErrorFrom(resErr), status)
		return ans, false
	}
	return ans, true
}
