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

package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfindex/record"
	"wfindex/werror"
)

func mkToken(form, lemma, upos, feats string) record.AnnotatedToken {
	return record.AnnotatedToken{Form: form, Lemma: lemma, UPoS: upos, Feats: feats}
}

func mustUpsert(t *testing.T, core *Core, tok record.AnnotatedToken, sentence string) record.WordformEntry {
	key, _, err := record.Normalize(tok)
	require.NoError(t, err)
	entry, err := core.Upsert(key, tok, sentence)
	require.NoError(t, err)
	return entry
}

func TestUpsertCreatesEntry(t *testing.T) {
	core := NewCore(Conf{})
	entry := mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Tense=Past"), "Dnes bola škola.")
	assert.Equal(t, int64(1), entry.Frequency)
	assert.Equal(t, []string{"Dnes bola škola."}, entry.Examples)
	assert.Equal(t, 1, core.Len())
}

func TestUpsertMergesSameKey(t *testing.T) {
	core := NewCore(Conf{})
	mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Gender=Fem|Tense=Past"), "s1")
	entry := mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Tense=Past|Gender=Fem"), "s2")
	assert.Equal(t, 1, core.Len())
	assert.Equal(t, int64(2), entry.Frequency)
	assert.Equal(t, []string{"s1", "s2"}, entry.Examples)
}

func TestUpsertCaseSensitiveForms(t *testing.T) {
	core := NewCore(Conf{})
	mustUpsert(t, core, mkToken("Bola", "byť", "AUX", "Tense=Past"), "Bola raz jedna žena.")
	mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Tense=Past"), "Dnes bola škola.")
	assert.Equal(t, 2, core.Len())
}

func TestUpsertDuplicateExampleIgnored(t *testing.T) {
	core := NewCore(Conf{})
	tok := mkToken("bola", "byť", "AUX", "Tense=Past")
	mustUpsert(t, core, tok, "same sentence")
	entry := mustUpsert(t, core, tok, "same sentence")
	assert.Equal(t, int64(2), entry.Frequency)
	assert.Equal(t, []string{"same sentence"}, entry.Examples)
}

func TestUpsertExampleCap(t *testing.T) {
	core := NewCore(Conf{MaxExamplesPerEntry: 3})
	tok := mkToken("bola", "byť", "AUX", "Tense=Past")
	var entry record.WordformEntry
	for i := 0; i < 10; i++ {
		entry = mustUpsert(t, core, tok, fmt.Sprintf("sentence %d", i))
	}
	assert.Equal(t, int64(10), entry.Frequency)
	assert.Len(t, entry.Examples, 3)
	assert.Equal(t, []string{"sentence 0", "sentence 1", "sentence 2"}, entry.Examples)
}

func TestUpsertRejectsIncompleteKey(t *testing.T) {
	core := NewCore(Conf{})
	_, err := core.Upsert(
		record.Key{Form: "bola", UPoS: "AUX"}, mkToken("bola", "", "AUX", ""), "s")
	assert.ErrorAs(t, err, &werror.MalformedKeyError{})
	assert.Equal(t, 0, core.Len())
}

func TestUpsertFrequencyNeverBelowExamples(t *testing.T) {
	core := NewCore(Conf{MaxExamplesPerEntry: 5})
	tok := mkToken("ženy", "žena", "NOUN", "Case=Gen|Number=Sing")
	var entry record.WordformEntry
	for i := 0; i < 7; i++ {
		entry = mustUpsert(t, core, tok, fmt.Sprintf("sentence %d", i))
	}
	assert.GreaterOrEqual(t, entry.Frequency, int64(len(entry.Examples)))
}

func TestGetAndRemove(t *testing.T) {
	core := NewCore(Conf{})
	tok := mkToken("bola", "byť", "AUX", "Tense=Past")
	key, _, err := record.Normalize(tok)
	require.NoError(t, err)

	_, ok := core.Get(key)
	assert.False(t, ok)

	mustUpsert(t, core, tok, "s1")
	entry, ok := core.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "bola", entry.Form)

	assert.True(t, core.Remove(key))
	assert.False(t, core.Remove(key))
	_, ok = core.Get(key)
	assert.False(t, ok)
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	core := NewCore(Conf{})
	tok := mkToken("bola", "byť", "AUX", "Tense=Past")
	key, _, err := record.Normalize(tok)
	require.NoError(t, err)
	mustUpsert(t, core, tok, "s1")

	entry, _ := core.Get(key)
	entry.Examples[0] = "mutated"
	entry2, _ := core.Get(key)
	assert.Equal(t, []string{"s1"}, entry2.Examples)
}

func TestConcurrentUpsertsSameKey(t *testing.T) {
	core := NewCore(Conf{NumShards: 4})
	tok := mkToken("bola", "byť", "AUX", "Tense=Past")
	key, _, err := record.Normalize(tok)
	require.NoError(t, err)

	const numWriters = 8
	const numUpserts = 200
	var wg sync.WaitGroup
	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < numUpserts; j++ {
				core.Upsert(key, tok, fmt.Sprintf("sentence %d-%d", i, j))
			}
		}(i)
	}
	wg.Wait()

	entry, ok := core.Get(key)
	assert.True(t, ok)
	assert.Equal(t, int64(numWriters*numUpserts), entry.Frequency)
	assert.Len(t, entry.Examples, DfltMaxExamplesPerEntry)
	assert.Equal(t, 1, core.Len())
}

func TestSnapshotKeepsInsertionOrder(t *testing.T) {
	core := NewCore(Conf{})
	mustUpsert(t, core, mkToken("prvá", "prvý", "ADJ", ""), "s1")
	mustUpsert(t, core, mkToken("druhá", "druhý", "ADJ", ""), "s2")
	mustUpsert(t, core, mkToken("tretia", "tretí", "ADJ", ""), "s3")

	snapshot := core.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "prvá", snapshot[0].Form)
	assert.Equal(t, "druhá", snapshot[1].Form)
	assert.Equal(t, "tretia", snapshot[2].Form)
}

func TestLoadSeedsCore(t *testing.T) {
	core := NewCore(Conf{})
	err := core.Load([]record.WordformEntry{
		{Lemma: "byť", Form: "bola", UPoS: "AUX", Feats: "Tense=Past",
			Examples: []string{"s1"}, Frequency: 12},
		{Lemma: "žena", Form: "ženy", UPoS: "NOUN", Feats: "Case=Gen",
			Examples: []string{"s2"}, Frequency: 3},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, core.Len())

	entry, ok := core.Get(record.Key{Lemma: "byť", Form: "bola", UPoS: "AUX", Feats: "Tense=Past"})
	assert.True(t, ok)
	assert.Equal(t, int64(12), entry.Frequency)

	// subsequent upserts must merge into the loaded entry
	mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Tense=Past"), "s3")
	entry, _ = core.Get(record.Key{Lemma: "byť", Form: "bola", UPoS: "AUX", Feats: "Tense=Past"})
	assert.Equal(t, int64(13), entry.Frequency)
	assert.Equal(t, 2, core.Len())
}

func TestRebuildAggregates(t *testing.T) {
	core := NewCore(Conf{})
	mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Tense=Past"), "s1")
	mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Tense=Past"), "s2")
	mustUpsert(t, core, mkToken("žena", "žena", "NOUN", "Case=Nom"), "s3")
	mustUpsert(t, core, mkToken("školy", "škola", "NOUN", "Case=Gen"), "s4")

	aggr := core.RebuildAggregates()
	assert.Equal(t, 3, aggr.TotalEntries)
	assert.Equal(t, int64(4), aggr.TotalOccurrences)
	assert.Equal(t, map[string]int{"AUX": 1, "NOUN": 2}, aggr.UPoSCounts)
	assert.Equal(t, 3, aggr.DistinctFeats)
}
