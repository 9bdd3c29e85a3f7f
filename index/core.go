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
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"wfindex/record"
)

const DfltNumShards = 32

type Conf struct {
	MaxExamplesPerEntry int `json:"maxExamplesPerEntry"`
	NumShards           int `json:"numShards"`
}

type shard struct {
	mu      sync.RWMutex
	entries map[record.Key]*record.WordformEntry
}

// Core owns the mapping from dedup key to wordform entry. The map is
// sharded by a hash of the key so concurrent writers contend only when
// they hit the same shard; all upserts for one key serialize on its
// shard lock, which makes Upsert atomic per key.
type Core struct {
	shards  []*shard
	exStore ExampleStore
	seq     atomic.Int64
}

func NewCore(conf Conf) *Core {
	numShards := conf.NumShards
	if numShards <= 0 {
		numShards = DfltNumShards
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{entries: make(map[record.Key]*record.WordformEntry)}
	}
	return &Core{
		shards:  shards,
		exStore: NewExampleStore(conf.MaxExamplesPerEntry),
	}
}

func (c *Core) shardOf(key record.Key) *shard {
	h := fnv.New32a()
	h.Write([]byte(key.String()))
	return c.shards[h.Sum32()%uint32(len(c.shards))]
}

// Upsert records one observation of the given key. On first observation
// it creates an entry seeded with the token's attributes and the
// attesting sentence; on repeated observations it increments the
// frequency and offers the sentence to the example store. The returned
// entry is a detached copy safe to use without further locking.
// The key is re-validated here on purpose - invariant enforcement must
// not rely on callers running the normalizer.
func (c *Core) Upsert(key record.Key, tok record.AnnotatedToken, sentence string) (record.WordformEntry, error) {
	if err := key.Validate(); err != nil {
		return record.WordformEntry{}, err
	}
	sh := c.shardOf(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	entry, ok := sh.entries[key]
	if !ok {
		entry = &record.WordformEntry{
			Lemma: strings.TrimSpace(tok.Lemma),
			Form:  key.Form,
			UPoS:  key.UPoS,
			Feats: key.Feats,
			Seq:   c.seq.Add(1),
		}
		sh.entries[key] = entry
	}
	entry.Frequency++
	c.exStore.TryAdd(entry, sentence)
	return copyEntry(entry), nil
}

// Get returns a detached copy of the entry for key.
func (c *Core) Get(key record.Key) (record.WordformEntry, bool) {
	sh := c.shardOf(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	entry, ok := sh.entries[key]
	if !ok {
		return record.WordformEntry{}, false
	}
	return copyEntry(entry), true
}

// Remove drops the entry for key. This is an administrative operation
// supporting corpus corrections; normal ingestion never removes entries.
func (c *Core) Remove(key record.Key) bool {
	sh := c.shardOf(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.entries[key]; !ok {
		return false
	}
	delete(sh.entries, key)
	return true
}

func (c *Core) Len() int {
	var total int
	for _, sh := range c.shards {
		sh.mu.RLock()
		total += len(sh.entries)
		sh.mu.RUnlock()
	}
	return total
}

// forEach visits detached copies of all entries in unspecified order.
func (c *Core) forEach(fn func(entry record.WordformEntry)) {
	for _, sh := range c.shards {
		sh.mu.RLock()
		for _, entry := range sh.entries {
			fn(copyEntry(entry))
		}
		sh.mu.RUnlock()
	}
}

// Snapshot returns a read-consistent copy of all entries ordered by
// their insertion sequence. This is what the persistence adapter flushes
// so concurrent ingestion cannot produce torn records in the output.
func (c *Core) Snapshot() []record.WordformEntry {
	ans := make([]record.WordformEntry, 0, c.Len())
	c.forEach(func(entry record.WordformEntry) {
		ans = append(ans, entry)
	})
	sort.Slice(ans, func(i, j int) bool {
		return ans[i].Seq < ans[j].Seq
	})
	return ans
}

// Load seeds the core from a bulk source (typically the persistence
// adapter). Entries are inserted in slice order, replacing any previous
// entry with the same key. Callers should follow up with
// RebuildAggregates.
func (c *Core) Load(entries []record.WordformEntry) error {
	for _, entry := range entries {
		key := entry.Key()
		if err := key.Validate(); err != nil {
			return err
		}
		stored := entry
		stored.Seq = c.seq.Add(1)
		stored.Examples = append([]string(nil), entry.Examples...)
		sh := c.shardOf(key)
		sh.mu.Lock()
		sh.entries[key] = &stored
		sh.mu.Unlock()
	}
	return nil
}

func copyEntry(entry *record.WordformEntry) record.WordformEntry {
	ans := *entry
	ans.Examples = append([]string(nil), entry.Examples...)
	return ans
}
