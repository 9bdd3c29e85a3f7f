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
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"wfindex/record"
	"wfindex/werror"
)

type Conf struct {
	DBPath     string `json:"dbPath"`
	ExportPath string `json:"exportPath"`
	StatsPath  string `json:"statsPath"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS wordforms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	wordform TEXT NOT NULL,
	lemma TEXT NOT NULL,
	upos TEXT NOT NULL,
	feats TEXT,
	frequency INTEGER DEFAULT 1,
	sentences TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wordform ON wordforms(wordform);
CREATE INDEX IF NOT EXISTS idx_lemma ON wordforms(lemma);
CREATE INDEX IF NOT EXISTS idx_upos ON wordforms(upos);
CREATE INDEX IF NOT EXISTS idx_frequency ON wordforms(frequency DESC);
CREATE TABLE IF NOT EXISTS sentences (
	sentence_id TEXT PRIMARY KEY
);
`

// Backend is the durable store of the wordform index - a single SQLite
// file queried by the proofreading validator and reporting tools.
type Backend struct {
	db *sql.DB
}

func OpenBackend(path string) (*Backend, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, werror.PersistenceError{
			Msg: fmt.Sprintf("failed to open index database: %s", err),
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, werror.PersistenceError{
			Msg: fmt.Sprintf("failed to initialize index database: %s", err),
		}
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

// Flush replaces the stored index with the provided snapshot in a
// single transaction. The processed sentence ids are stored alongside
// the entries - a restarted worker reloads them so replaying an
// already indexed document stays a no-op. The snapshot is a detached
// copy so concurrent ingestion cannot produce torn records here; a
// failed flush leaves both the database and the in-memory index as
// they were.
func (b *Backend) Flush(entries []record.WordformEntry, sentenceIDs []string) error {
	tx, err := b.db.Begin()
	if err != nil {
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to start flush transaction: %s", err),
		}
	}
	if _, err := tx.Exec("DELETE FROM wordforms"); err != nil {
		tx.Rollback()
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to clear wordforms: %s", err),
		}
	}
	if _, err := tx.Exec("DELETE FROM sentences"); err != nil {
		tx.Rollback()
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to clear sentences: %s", err),
		}
	}
	stmt, err := tx.Prepare(
		"INSERT INTO wordforms (wordform, lemma, upos, feats, frequency, sentences) " +
			"VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to prepare flush statement: %s", err),
		}
	}
	defer stmt.Close()
	for _, entry := range entries {
		examples, err := json.Marshal(SelectExamples(entry.Examples))
		if err != nil {
			tx.Rollback()
			return werror.PersistenceError{
				Msg: fmt.Sprintf("failed to serialize examples: %s", err),
			}
		}
		_, err = stmt.Exec(
			entry.Form, entry.Lemma, entry.UPoS, entry.Feats, entry.Frequency, string(examples))
		if err != nil {
			tx.Rollback()
			return werror.PersistenceError{
				Msg: fmt.Sprintf("failed to store wordform %s: %s", entry.Form, err),
			}
		}
	}
	sentStmt, err := tx.Prepare("INSERT INTO sentences (sentence_id) VALUES (?)")
	if err != nil {
		tx.Rollback()
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to prepare sentence statement: %s", err),
		}
	}
	defer sentStmt.Close()
	for _, id := range sentenceIDs {
		if _, err := sentStmt.Exec(id); err != nil {
			tx.Rollback()
			return werror.PersistenceError{
				Msg: fmt.Sprintf("failed to store sentence id %s: %s", id, err),
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return werror.PersistenceError{
			Msg: fmt.Sprintf("failed to commit flush: %s", err),
		}
	}
	log.Info().
		Int("entries", len(entries)).
		Int("sentences", len(sentenceIDs)).
		Msg("flushed index to database")
	return nil
}

// LoadAll reads the stored index back in its original insertion order.
func (b *Backend) LoadAll() ([]record.WordformEntry, error) {
	rows, err := b.db.Query(
		"SELECT wordform, lemma, upos, feats, frequency, sentences FROM wordforms ORDER BY id")
	if err != nil {
		return nil, werror.PersistenceError{
			Msg: fmt.Sprintf("failed to load wordforms: %s", err),
		}
	}
	defer rows.Close()
	ans := make([]record.WordformEntry, 0)
	for rows.Next() {
		var entry record.WordformEntry
		var feats sql.NullString
		var examples string
		err := rows.Scan(
			&entry.Form, &entry.Lemma, &entry.UPoS, &feats, &entry.Frequency, &examples)
		if err != nil {
			return nil, werror.PersistenceError{
				Msg: fmt.Sprintf("failed to scan wordform row: %s", err),
			}
		}
		entry.Feats = feats.String
		if err := json.Unmarshal([]byte(examples), &entry.Examples); err != nil {
			return nil, werror.PersistenceError{
				Msg: fmt.Sprintf("failed to decode examples of %s: %s", entry.Form, err),
			}
		}
		ans = append(ans, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, werror.PersistenceError{
			Msg: fmt.Sprintf("failed to read wordforms: %s", err),
		}
	}
	return ans, nil
}

// LoadSentenceIDs reads back the ids of all sentences absorbed into the
// stored index.
func (b *Backend) LoadSentenceIDs() ([]string, error) {
	rows, err := b.db.Query("SELECT sentence_id FROM sentences")
	if err != nil {
		return nil, werror.PersistenceError{
			Msg: fmt.Sprintf("failed to load sentence ids: %s", err),
		}
	}
	defer rows.Close()
	ans := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, werror.PersistenceError{
				Msg: fmt.Sprintf("failed to scan sentence id row: %s", err),
			}
		}
		ans = append(ans, id)
	}
	if err := rows.Err(); err != nil {
		return nil, werror.PersistenceError{
			Msg: fmt.Sprintf("failed to read sentence ids: %s", err),
		}
	}
	return ans, nil
}
