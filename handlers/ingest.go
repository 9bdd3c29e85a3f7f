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
	"net/http"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"

	"wfindex/rdb"
	"wfindex/rdb/results"
)

// StartIngestion godoc
// Run the ingestion pipeline over the configured corpus sources (or the
// subset named in the request body) and wait for its summary. The index
// is flushed to the durable store as part of the job.
func (a *Actions) StartIngestion(ctx *gin.Context) {
	var args rdb.IngestSourcesArgs
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&args); err != nil {
			uniresp.WriteJSONErrorResponse(
				ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusBadRequest)
			return
		}
	}
	ans, ok := publishAndWait[results.Ingestion](a, ctx, "ingestSources", args)
	if !ok {
		return
	}
	// the index changed, cached lookup results no longer describe it
	if err := a.radapter.ClearCache(); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// CorpusStats godoc
// Return the statistics summary of the current index state.
func (a *Actions) CorpusStats(ctx *gin.Context) {
	ans, ok := publishAndWait[results.CorpusStats](a, ctx, "corpusStats", rdb.CorpusStatsArgs{})
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}
