// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package spookydb

import (
	"strings"

	"github.com/cockroachdb/swiss"
	"go.etcd.io/bbolt"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/timothybesel/spooky-db-module/record"
)

var (
	bucketRecords = []byte("records")
	bucketVersions = []byte("versions")
)

// DB is an opened SpookyDB store: a bbolt database file, an in-memory
// membership index rebuilt at open, and a write-through LRU byte cache.
// DB is not safe for concurrent use — callers needing multi-threaded
// access must externalize their own synchronization.
type DB struct {
	opts  Options
	bolt  *bbolt.DB
	mem   *membership
	cache *byteCache
}

// maxStackKeyBytes bounds the flat-key staging buffer that lives on the
// stack for ordinary-sized table/id pairs; keys larger than this fall back
// to a heap-allocated builder.
const maxStackKeyBytes = 512

// Open opens or creates a store at path, ensures both the records and
// versions buckets exist, and rebuilds the in-memory membership set from a
// full scan of the records bucket. The LRU cache starts cold; it is
// populated only by subsequent writes, never pre-warmed from disk.
func Open(path string, opts Options) (*DB, error) {
	opts = opts.EnsureDefaults()

	bdb, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, wrapError(KindStore, err, "opening store at %q", path)
	}

	if err := bdb.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRecords); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketVersions)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, wrapError(KindStore, err, "initializing buckets at %q", path)
	}

	cache, err := newByteCache(opts.CacheSize)
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	mem := newMembership()
	if err := bdb.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		return b.ForEach(func(k, _ []byte) error {
			table, id, ok := splitKey(string(k))
			if !ok {
				return nil
			}
			mem.add(table, id)
			return nil
		})
	}); err != nil {
		_ = bdb.Close()
		return nil, wrapError(KindStore, err, "rebuilding membership from %q", path)
	}

	opts.Logger.Info("opened store", zap.String("path", path))
	return &DB{opts: opts, bolt: bdb, mem: mem, cache: cache}, nil
}

// Close closes the underlying store. A second call returns nil, since
// bbolt's Close does nothing on an already-closed database.
func (db *DB) Close() error {
	db.opts.Logger.Info("closing store")
	var err error
	err = multierr.Append(err, db.bolt.Close())
	if err != nil {
		return wrapError(KindStore, err, "closing store")
	}
	return nil
}

func validateTableName(table string) error {
	if table == "" {
		return newError(KindInvalidKey, "table name must not be empty")
	}
	if strings.ContainsRune(table, ':') {
		return newError(KindInvalidKey, "table name %q must not contain ':'", table)
	}
	return nil
}

// buildKey constructs the flat "<table>:<id>" composite key, staging it in
// a stack-resident byte array for realistically-sized inputs instead of a
// growing builder. The returned string is still a heap copy, so each call
// makes one allocation. Reads call it only on a disk read, after the
// membership guard (and, for GetRecordBytes, the cache peek) has passed.
func buildKey(table, id string) string {
	n := len(table) + 1 + len(id)
	if n <= maxStackKeyBytes {
		var stage [maxStackKeyBytes]byte
		buf := stage[:0]
		buf = append(buf, table...)
		buf = append(buf, ':')
		buf = append(buf, id...)
		return string(buf)
	}
	var sb strings.Builder
	sb.Grow(n)
	sb.WriteString(table)
	sb.WriteByte(':')
	sb.WriteString(id)
	return sb.String()
}

// splitKey reverses buildKey, splitting on the first ':'.
func splitKey(key string) (table, id string, ok bool) {
	i := strings.IndexByte(key, ':')
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

// GetTableZSet returns the live membership set for table, or nil if the
// table has never been observed. The returned pointer aliases DB's
// internal state: it is valid only until the next mutating call on db —
// Go has no borrow checker to enforce this, so callers that need a stable
// snapshot should copy the entries they need before calling a mutating
// method.
func (db *DB) GetTableZSet(table string) (*swiss.Map[string, int8], bool) {
	z := db.mem.zset(table)
	return z, z != nil
}

// GetZSetWeight returns 1 if (table, id) is a known member, 0 otherwise.
// Zero I/O.
func (db *DB) GetZSetWeight(table, id string) int64 {
	if db.mem.contains(table, id) {
		return 1
	}
	return 0
}

// GetRecordBytes returns the stored bytes for (table, id). It consults
// membership first (zero I/O on a miss), then the cache via Peek (which
// does not promote recency), then falls back to a disk read. A disk hit
// does NOT populate the cache — only writes do.
func (db *DB) GetRecordBytes(table, id string) ([]byte, bool, error) {
	if !db.mem.contains(table, id) {
		return nil, false, nil
	}
	if buf, ok := db.cache.peek(table, id); ok {
		out := make([]byte, len(buf))
		copy(out, buf)
		return out, true, nil
	}

	var out []byte
	if err := db.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		v := b.Get([]byte(buildKey(table, id)))
		if v == nil {
			return nil
		}
		out = make([]byte, len(v))
		copy(out, v)
		return nil
	}); err != nil {
		return nil, false, wrapError(KindStore, err, "reading record %s:%s", table, id)
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

// GetRowRecord is the cache-only read path: a membership guard, then an
// LRU peek. On a cache miss it returns
// (nil, false, nil) even if the record exists on disk — callers that need
// the disk fallback must call GetRecordBytes instead. The returned view
// borrows the cache's copy of the bytes and must not be retained past the
// next mutating call.
func (db *DB) GetRowRecord(table, id string) (*record.ImmutableView, bool, error) {
	if !db.mem.contains(table, id) {
		return nil, false, nil
	}
	buf, ok := db.cache.peek(table, id)
	if !ok {
		return nil, false, nil
	}
	view, err := record.NewImmutableView(buf)
	if err != nil {
		return nil, false, wrapError(KindSerialization, err, "validating cached record %s:%s", table, id)
	}
	return view, true, nil
}

// GetRecordTyped fetches (table, id) via the cache-or-disk path, validates
// it, and assembles a map keyed by the caller-supplied field names,
// skipping any name not present in the record.
func (db *DB) GetRecordTyped(table, id string, fields []string) (map[string]record.Value, bool, error) {
	buf, ok, err := db.GetRecordBytes(table, id)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	view, err := record.NewImmutableView(buf)
	if err != nil {
		return nil, false, wrapError(KindSerialization, err, "validating record %s:%s", table, id)
	}
	out := make(map[string]record.Value, len(fields))
	for _, name := range fields {
		val, present, err := view.GetValue(view.Resolve(name))
		if err != nil {
			return nil, false, wrapError(KindSerialization, err, "decoding field %q of %s:%s", name, table, id)
		}
		if present {
			out[name] = val
		}
	}
	return out, true, nil
}

// GetVersion returns the stored version number for (table, id), if any.
func (db *DB) GetVersion(table, id string) (uint64, bool, error) {
	if !db.mem.contains(table, id) {
		return 0, false, nil
	}
	var (
		version uint64
		found   bool
	)
	if err := db.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVersions)
		v := b.Get([]byte(buildKey(table, id)))
		if v == nil {
			return nil
		}
		found = true
		version = decodeVersion(v)
		return nil
	}); err != nil {
		return 0, false, wrapError(KindStore, err, "reading version for %s:%s", table, id)
	}
	return version, found, nil
}

// TableExists reports whether table has a membership set. The set may be
// empty: EnsureTable creates one, and deleting a table's last record
// leaves it in place.
func (db *DB) TableExists(table string) bool {
	_, ok := db.GetTableZSet(table)
	return ok
}

// TableNames returns every table name with a tracked membership set.
func (db *DB) TableNames() []string {
	return db.mem.tableNames()
}

// TableLen returns the number of records tracked for table, or 0 if the
// table has never been observed.
func (db *DB) TableLen(table string) int {
	z, ok := db.GetTableZSet(table)
	if !ok {
		return 0
	}
	return z.Len()
}

// EnsureTable validates table's name and ensures it has a (possibly empty)
// membership entry.
func (db *DB) EnsureTable(table string) error {
	if err := validateTableName(table); err != nil {
		return err
	}
	db.mem.zsetFor(table)
	return nil
}
