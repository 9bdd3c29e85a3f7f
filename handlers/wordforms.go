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
	"net/url"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"

	"wfindex/rdb"
	"wfindex/rdb/results"
	"wfindex/werror"
)

const (
	MaxWordformResultItems = 50
	DfltExamplesLimit      = 10
)

// parseSearchArgs maps URL query parameters to worker search args.
// Exactly one search criterion must be present - matching is exact per
// dimension, so combining them would mostly produce empty results and
// hide client mistakes.
func parseSearchArgs(vals url.Values) (rdb.WordformSearchArgs, error) {
	ans := rdb.WordformSearchArgs{
		Lemma:          vals.Get("lemma"),
		LemmaPrefix:    vals.Get("lemmaPrefix"),
		Form:           vals.Get("form"),
		UPoS:           vals.Get("upos"),
		FeaturePattern: vals.Get("feature"),
		SortByFreq:     vals.Get("sort") == "freq",
	}
	var numCrit int
	for _, v := range []string{ans.Lemma, ans.LemmaPrefix, ans.Form, ans.UPoS, ans.FeaturePattern} {
		if v != "" {
			numCrit++
		}
	}
	if numCrit != 1 {
		return ans, werror.InputError{
			Msg: "exactly one of the `lemma`, `lemmaPrefix`, `form`, `upos`, `feature` arguments must be used",
		}
	}
	return ans, nil
}

// Wordforms godoc
// Search the index by lemma (case-insensitive, exact or prefix),
// surface form (case-sensitive), part of speech tag or a feature
// substring.
func (a *Actions) Wordforms(ctx *gin.Context) {
	args, err := parseSearchArgs(ctx.Request.URL.Query())
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionErrorFrom(err), http.StatusUnprocessableEntity)
		return
	}
	maxItems, ok := unireq.GetURLIntArgOrFail(ctx, "maxItems", MaxWordformResultItems)
	if !ok {
		return
	}
	args.MaxItems = maxItems

	ans, ok := publishAndWait[results.WordformSearch](a, ctx, "wordformSearch", args)
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// WordformExamples godoc
// Return the stored example sentences of a single wordform entry
// addressed by its full key (lemma, form, upos, feats).
func (a *Actions) WordformExamples(ctx *gin.Context) {
	args := rdb.WordformExamplesArgs{
		Lemma: ctx.Query("lemma"),
		Form:  ctx.Query("form"),
		UPoS:  ctx.Query("upos"),
		Feats: ctx.Query("feats"),
	}
	if args.Lemma == "" || args.Form == "" || args.UPoS == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError("the `lemma`, `form` and `upos` arguments are required"),
			http.StatusUnprocessableEntity,
		)
		return
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", DfltExamplesLimit)
	if !ok {
		return
	}
	args.Limit = limit

	ans, ok := publishAndWait[results.WordformExamples](a, ctx, "wordformExamples", args)
	if !ok {
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}
