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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfindex/record"
)

func mkTestEngine(t *testing.T) *Engine {
	core := NewCore(Conf{})
	mustUpsert(t, core, mkToken("Bola", "byť", "AUX", "Gender=Fem|Number=Sing|Tense=Past"), "Bola raz jedna žena.")
	mustUpsert(t, core, mkToken("bola", "byť", "AUX", "Tense=Past|Gender=Fem|Number=Sing"), "Dnes bola škola.")
	mustUpsert(t, core, mkToken("žena", "žena", "NOUN", "Case=Nom|Gender=Fem|Number=Sing"), "Bola raz jedna žena.")
	mustUpsert(t, core, mkToken("školy", "škola", "NOUN", "Case=Gen|Gender=Fem|Number=Sing"), "Do školy chodím rád.")
	return NewEngine(core)
}

func TestByLemmaIsCaseInsensitive(t *testing.T) {
	engine := mkTestEngine(t)
	ans := engine.ByLemma("BYŤ")
	require.Len(t, ans, 2)
	assert.Equal(t, "Bola", ans[0].Form)
	assert.Equal(t, "bola", ans[1].Form)
	for _, entry := range ans {
		assert.Equal(t, int64(1), entry.Frequency)
		assert.Len(t, entry.Examples, 1)
	}
}

func TestByLemmaPrefix(t *testing.T) {
	engine := mkTestEngine(t)
	ans := engine.ByLemmaPrefix("Š")
	require.Len(t, ans, 1)
	assert.Equal(t, "škola", ans[0].Lemma)

	assert.Len(t, engine.ByLemmaPrefix(""), 4)
	assert.Empty(t, engine.ByLemmaPrefix("xyz"))
}

func TestByFormIsCaseSensitive(t *testing.T) {
	engine := mkTestEngine(t)
	ans := engine.ByForm("bola")
	require.Len(t, ans, 1)
	assert.Equal(t, "Dnes bola škola.", ans[0].Examples[0])

	ans = engine.ByForm("Bola")
	require.Len(t, ans, 1)
	assert.Equal(t, "Bola raz jedna žena.", ans[0].Examples[0])
}

func TestByUPoS(t *testing.T) {
	engine := mkTestEngine(t)
	assert.Len(t, engine.ByUPoS("NOUN"), 2)
	assert.Len(t, engine.ByUPoS("AUX"), 2)
	assert.Len(t, engine.ByUPoS("VERB"), 0)
}

func TestByFeatureSubstring(t *testing.T) {
	engine := mkTestEngine(t)
	assert.Len(t, engine.ByFeatureSubstring("Tense=Past"), 2)
	assert.Len(t, engine.ByFeatureSubstring("Gender=Fem"), 4)
	assert.Len(t, engine.ByFeatureSubstring("Case=Gen"), 1)
	assert.Len(t, engine.ByFeatureSubstring("Aspect=Perf"), 0)
}

func TestQueriesReturnEmptySliceNotNil(t *testing.T) {
	engine := mkTestEngine(t)
	assert.NotNil(t, engine.ByLemma("chlieb"))
	assert.NotNil(t, engine.ByForm("chlieb"))
	assert.NotNil(t, engine.Examples(record.Key{Lemma: "x", Form: "x", UPoS: "X"}, 5))
}

func TestExamplesLimit(t *testing.T) {
	core := NewCore(Conf{})
	tok := mkToken("bola", "byť", "AUX", "Tense=Past")
	mustUpsert(t, core, tok, "s1")
	mustUpsert(t, core, tok, "s2")
	mustUpsert(t, core, tok, "s3")
	engine := NewEngine(core)

	key, _, err := record.Normalize(tok)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, engine.Examples(key, 2))
	assert.Equal(t, []string{"s1", "s2", "s3"}, engine.Examples(key, 0))
	assert.Equal(t, []string{"s1", "s2", "s3"}, engine.Examples(key, 100))
}

func TestSortByFrequency(t *testing.T) {
	items := []record.WordformEntry{
		{Lemma: "žena", Form: "žena", Frequency: 2},
		{Lemma: "byť", Form: "bola", Frequency: 5},
		{Lemma: "byť", Form: "Bola", Frequency: 2},
		{Lemma: "škola", Form: "školy", Frequency: 5},
	}
	SortByFrequency(items)
	assert.Equal(t, "bola", items[0].Form)
	assert.Equal(t, "školy", items[1].Form)
	assert.Equal(t, "Bola", items[2].Form)
	assert.Equal(t, "žena", items[3].Form)
}
