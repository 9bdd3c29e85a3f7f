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

package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfindex/record"
)

func mkTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := OpenBackend(filepath.Join(t.TempDir(), "index.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func TestFlushAndLoadAllRoundtrip(t *testing.T) {
	backend := mkTestBackend(t)
	entries := []record.WordformEntry{
		{
			Lemma:     "byť",
			Form:      "Bola",
			UPoS:      "AUX",
			Feats:     "Gender=Fem|Number=Sing|Tense=Past",
			Examples:  []string{"Bola raz jedna žena."},
			Frequency: 1,
		},
		{
			Lemma:     "škola",
			Form:      "škola",
			UPoS:      "NOUN",
			Feats:     "Case=Nom|Gender=Fem|Number=Sing",
			Examples:  []string{"Dnes bola škola zatvorená."},
			Frequency: 3,
		},
	}
	require.NoError(t, backend.Flush(entries, []string{"s1", "s2"}))

	loaded, err := backend.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)

	ids, err := backend.LoadSentenceIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
}

func TestFlushReplacesPreviousSnapshot(t *testing.T) {
	backend := mkTestBackend(t)
	require.NoError(t, backend.Flush([]record.WordformEntry{
		{Lemma: "byť", Form: "bola", UPoS: "AUX", Examples: []string{"Dnes bola škola zatvorená."}, Frequency: 1},
		{Lemma: "žena", Form: "žena", UPoS: "NOUN", Examples: []string{"Bola raz jedna žena."}, Frequency: 1},
	}, []string{"s1"}))
	require.NoError(t, backend.Flush([]record.WordformEntry{
		{Lemma: "byť", Form: "bola", UPoS: "AUX", Examples: []string{"Dnes bola škola zatvorená."}, Frequency: 2},
	}, []string{"s1", "s2"}))

	loaded, err := backend.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(2), loaded[0].Frequency)

	ids, err := backend.LoadSentenceIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)
}

func TestFlushAppliesExampleFilter(t *testing.T) {
	backend := mkTestBackend(t)
	require.NoError(t, backend.Flush([]record.WordformEntry{
		{
			Lemma:     "byť",
			Form:      "bola",
			UPoS:      "AUX",
			Examples:  []string{"krátke", "Dnes bola škola zatvorená."},
			Frequency: 2,
		},
	}, nil))

	loaded, err := backend.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{"Dnes bola škola zatvorená."}, loaded[0].Examples)
}

func TestLoadAllEmptyDatabase(t *testing.T) {
	backend := mkTestBackend(t)
	loaded, err := backend.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	ids, err := backend.LoadSentenceIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLoadAllNullFeats(t *testing.T) {
	backend := mkTestBackend(t)
	_, err := backend.db.Exec(
		"INSERT INTO wordforms (wordform, lemma, upos, feats, frequency, sentences) "+
			"VALUES (?, ?, ?, NULL, 1, ?)",
		".", ".", "PUNCT", `["Bola raz jedna žena."]`)
	require.NoError(t, err)

	loaded, err := backend.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "", loaded[0].Feats)
}
