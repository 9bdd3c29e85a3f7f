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

	"wfindex/werror"
)

// AnnotatedToken is a single observed occurrence of a word as produced
// by the upstream morphology annotator (UDPipe-style output). The Feats
// attribute keeps the raw, possibly unordered `key=value` pairs.
type AnnotatedToken struct {
	Form  string `json:"form"`
	Lemma string `json:"lemma"`
	UPoS  string `json:"upos"`
	Feats string `json:"feats"`
}

// Sentence is one annotated sentence record of a source document.
type Sentence struct {
	ID     string           `json:"sentence_id"`
	Text   string           `json:"text"`
	Source string           `json:"source"`
	Tokens []AnnotatedToken `json:"tokens"`
}

// Key identifies a wordform entry. Lemma is stored lower-cased so lemma
// lookups are case-insensitive; Form keeps its original casing because
// orthographic casing is a signal for the downstream proofreader.
// Feats must be the canonical feature string (see Normalize).
type Key struct {
	Lemma string
	Form  string
	UPoS  string
	Feats string
}

func (k Key) String() string {
	return k.Lemma + "\x00" + k.Form + "\x00" + k.UPoS + "\x00" + k.Feats
}

// Validate re-checks the key components the normalizer should have
// already filtered. A failure here means a normalizer defect.
func (k Key) Validate() error {
	if k.Lemma == "" || k.Form == "" || k.UPoS == "" {
		return werror.MalformedKeyError{
			Msg: fmt.Sprintf("incomplete wordform key %+v", k),
		}
	}
	return nil
}

// WordformEntry is the deduplicated unit of the index. Examples is an
// ordered bounded list of distinct attesting sentences; Frequency counts
// every observation of the key, including those no longer stored as
// examples. Seq is the entry insertion sequence number and defines the
// default ordering of multi-entry query results.
type WordformEntry struct {
	Lemma     string   `json:"lemma"`
	Form      string   `json:"wordform"`
	UPoS      string   `json:"upos"`
	Feats     string   `json:"feats"`
	Examples  []string `json:"sentences"`
	Frequency int64    `json:"frequency"`
	Seq       int64    `json:"-"`
}

// Key derives the identity key from the entry's stored attributes.
func (e *WordformEntry) Key() Key {
	return Key{
		Lemma: lowercase(e.Lemma),
		Form:  e.Form,
		UPoS:  e.UPoS,
		Feats: e.Feats,
	}
}
