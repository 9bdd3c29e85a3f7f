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
	"testing"

	"github.com/stretchr/testify/assert"

	"wfindex/werror"
)

func TestNormalizeFeatsSortsAttrs(t *testing.T) {
	ans := NormalizeFeats("Tense=Past|Gender=Fem|Number=Sing")
	assert.Equal(t, "Gender=Fem|Number=Sing|Tense=Past", ans)
}

func TestNormalizeFeatsIsOrderIndependent(t *testing.T) {
	a := NormalizeFeats("Case=Nom|Gender=Masc")
	b := NormalizeFeats("Gender=Masc|Case=Nom")
	assert.Equal(t, a, b)
}

func TestNormalizeFeatsTrimsItems(t *testing.T) {
	ans := NormalizeFeats(" Case=Nom | Number=Sing ")
	assert.Equal(t, "Case=Nom|Number=Sing", ans)
}

func TestNormalizeFeatsDropsEmptyItems(t *testing.T) {
	ans := NormalizeFeats("Case=Nom||Number=Sing|")
	assert.Equal(t, "Case=Nom|Number=Sing", ans)
}

func TestNormalizeFeatsEmptyInput(t *testing.T) {
	assert.Equal(t, "", NormalizeFeats(""))
	assert.Equal(t, "", NormalizeFeats("   "))
}

func TestNormalizeLowercasesLemmaOnly(t *testing.T) {
	key, _, err := Normalize(AnnotatedToken{
		Form:  "Bola",
		Lemma: "Byť",
		UPoS:  "AUX",
		Feats: "Tense=Past",
	})
	assert.NoError(t, err)
	assert.Equal(t, "byť", key.Lemma)
	assert.Equal(t, "Bola", key.Form)
}

func TestNormalizeCanonicalFeatsInKey(t *testing.T) {
	key1, feats1, err := Normalize(AnnotatedToken{
		Form: "bola", Lemma: "byť", UPoS: "AUX",
		Feats: "Tense=Past|Gender=Fem|Number=Sing",
	})
	assert.NoError(t, err)
	key2, feats2, err := Normalize(AnnotatedToken{
		Form: "bola", Lemma: "byť", UPoS: "AUX",
		Feats: "Gender=Fem|Number=Sing|Tense=Past",
	})
	assert.NoError(t, err)
	assert.Equal(t, key1, key2)
	assert.Equal(t, feats1, feats2)
}

func TestNormalizeRejectsEmptyLemma(t *testing.T) {
	_, _, err := Normalize(AnnotatedToken{Form: ",", Lemma: "  ", UPoS: "PUNCT"})
	assert.ErrorAs(t, err, &werror.MalformedTokenError{})
}

func TestNormalizeRejectsEmptyForm(t *testing.T) {
	_, _, err := Normalize(AnnotatedToken{Form: "", Lemma: "byť", UPoS: "AUX"})
	assert.ErrorAs(t, err, &werror.MalformedTokenError{})
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	key, _, err := Normalize(AnnotatedToken{
		Form: " škola ", Lemma: " škola", UPoS: "NOUN ",
	})
	assert.NoError(t, err)
	assert.Equal(t, "škola", key.Form)
	assert.Equal(t, "škola", key.Lemma)
	assert.Equal(t, "NOUN", key.UPoS)
}

func TestKeyValidate(t *testing.T) {
	assert.NoError(t, Key{Lemma: "byť", Form: "bola", UPoS: "AUX"}.Validate())
	assert.Error(t, Key{Form: "bola", UPoS: "AUX"}.Validate())
	assert.Error(t, Key{Lemma: "byť", UPoS: "AUX"}.Validate())
	assert.Error(t, Key{Lemma: "byť", Form: "bola"}.Validate())
}
