// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package spookydb

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// recordKey identifies one cached record buffer by table and id.
type recordKey struct {
	table string
	id    string
}

// byteCache is a bounded, write-through cache of encoded record buffers.
// Every entry is a private copy the cache owns outright — callers that
// later mutate or reuse the slice they passed to put cannot corrupt a
// cached entry. Peek (used by GetRowRecord's cache-only read path)
// deliberately does not promote the entry's recency, so an inspection
// read can't keep an otherwise-cold entry artificially warm.
type byteCache struct {
	lru *lru.Cache[recordKey, []byte]
}

func newByteCache(size int) (*byteCache, error) {
	c, err := lru.New[recordKey, []byte](size)
	if err != nil {
		return nil, wrapError(KindStore, err, "creating record cache")
	}
	return &byteCache{lru: c}, nil
}

// peek returns the cached bytes for (table, id) without affecting LRU
// order. ok is false on a cache miss.
func (c *byteCache) peek(table, id string) ([]byte, bool) {
	return c.lru.Peek(recordKey{table: table, id: id})
}

// put copies buf and stores the copy in the cache under (table, id),
// evicting the least recently used entry if the cache is at capacity.
// Copying is required because callers such as BulkLoad routinely encode
// many records into one reused buffer; aliasing it would let a later
// reuse silently rewrite every earlier cache entry.
func (c *byteCache) put(table, id string, buf []byte) {
	owned := append([]byte(nil), buf...)
	c.lru.Add(recordKey{table: table, id: id}, owned)
}

// remove evicts (table, id) from the cache, if present.
func (c *byteCache) remove(table, id string) {
	c.lru.Remove(recordKey{table: table, id: id})
}
