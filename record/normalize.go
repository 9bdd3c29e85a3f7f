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

package record

import (
	"fmt"
	"sort"
	"strings"

	"wfindex/werror"
)

// FeatsSep separates `key=value` attributes in both the raw and the
// canonical feature string (the CoNLL-U convention).
const FeatsSep = "|"

func lowercase(s string) string {
	return strings.ToLower(s)
}

// NormalizeFeats turns a raw feature string into its canonical form:
// attributes trimmed, empty items dropped, sorted lexicographically and
// rejoined with FeatsSep. The result is a pure function of the feature
// set, so attribute reordering upstream cannot produce distinct keys.
func NormalizeFeats(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	items := strings.Split(raw, FeatsSep)
	attrs := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		attrs = append(attrs, item)
	}
	sort.Strings(attrs)
	return strings.Join(attrs, FeatsSep)
}

// Normalize derives the dedup key and the canonical feature string from
// a raw token annotation. Tokens without a lemma or a surface form
// (typically punctuation artifacts) are rejected with MalformedToken;
// the caller is expected to count and skip them.
func Normalize(tok AnnotatedToken) (Key, string, error) {
	form := strings.TrimSpace(tok.Form)
	lemma := strings.TrimSpace(tok.Lemma)
	upos := strings.TrimSpace(tok.UPoS)
	if form == "" || lemma == "" || upos == "" {
		return Key{}, "", malformedToken(tok)
	}
	feats := NormalizeFeats(tok.Feats)
	key := Key{
		Lemma: lowercase(lemma),
		Form:  form,
		UPoS:  upos,
		Feats: feats,
	}
	return key, feats, nil
}

func malformedToken(tok AnnotatedToken) error {
	return werror.MalformedTokenError{
		Msg: fmt.Sprintf("token missing lemma, form or upos (form: %q, lemma: %q)", tok.Form, tok.Lemma),
	}
}
