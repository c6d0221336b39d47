// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package spookydb

import (
	"encoding/binary"

	"go.etcd.io/bbolt"
)

// MutationOp identifies the kind of change a DBMutation applies.
type MutationOp int

const (
	// OpCreate inserts a new record. Reported weight delta is +1.
	OpCreate MutationOp = iota
	// OpUpdate overwrites an existing record's bytes and/or version.
	// Reported weight delta is 0.
	OpUpdate
	// OpDelete removes a record's bytes and version. Reported weight
	// delta is -1, except where suppressed by ApplyBatch for a
	// delete-of-nonexistent id.
	OpDelete
)

func (op MutationOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// DBMutation is one entry in an ApplyBatch call. Data is assumed
// pre-serialized by the caller — ApplyBatch performs no record encoding,
// deliberately keeping all CPU work outside the write transaction so the
// transaction's hold time stays proportional to I/O, not CPU.
type DBMutation struct {
	Table   string
	ID      string
	Op      MutationOp
	Data    []byte
	Version *uint64
}

// BulkRecord is one entry in a BulkLoad call. Every entry is implicitly a
// Create.
type BulkRecord struct {
	Table   string
	ID      string
	Data    []byte
	Version *uint64
}

// BatchMutationResult accumulates the effects of one ApplyBatch call.
type BatchMutationResult struct {
	// MembershipDeltas[table][id] is +1 (created) or -1 (deleted).
	// Updates never appear here; a delete of an id that was already
	// absent is suppressed rather than reported as a spurious -1.
	MembershipDeltas map[string]map[string]int64
	// ContentUpdates[table] is the set of ids that were created or
	// updated (not deleted) in this batch.
	ContentUpdates map[string]map[string]struct{}
	// ChangedTables lists every table touched by the batch, in
	// first-appearance order, deduplicated with a linear scan rather
	// than a set — the per-batch table count is small enough that this
	// is simpler than it is slow.
	ChangedTables []string
}

func newBatchMutationResult() *BatchMutationResult {
	return &BatchMutationResult{
		MembershipDeltas: make(map[string]map[string]int64),
		ContentUpdates:   make(map[string]map[string]struct{}),
	}
}

func (r *BatchMutationResult) noteChangedTable(table string) {
	for _, t := range r.ChangedTables {
		if t == table {
			return
		}
	}
	r.ChangedTables = append(r.ChangedTables, table)
}

func (r *BatchMutationResult) noteDelta(table, id string, delta int64) {
	if delta == 0 {
		return
	}
	m, ok := r.MembershipDeltas[table]
	if !ok {
		m = make(map[string]int64)
		r.MembershipDeltas[table] = m
	}
	m[id] += delta
}

func (r *BatchMutationResult) noteContentUpdate(table, id string) {
	m, ok := r.ContentUpdates[table]
	if !ok {
		m = make(map[string]struct{})
		r.ContentUpdates[table] = m
	}
	m[id] = struct{}{}
}

func encodeVersion(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeVersion(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func (db *DB) requireWritable() error {
	if db.opts.ReadOnly {
		return newError(KindStore, "store was opened read-only")
	}
	return nil
}

// applyDiskMutation writes one mutation's effect into an already-open
// write transaction. It performs no membership or cache updates — those
// only happen after the whole transaction commits.
func applyDiskMutation(tx *bbolt.Tx, table, id string, op MutationOp, data []byte, version *uint64) error {
	key := []byte(buildKey(table, id))
	records := tx.Bucket(bucketRecords)
	versions := tx.Bucket(bucketVersions)

	if op == OpDelete {
		if err := records.Delete(key); err != nil {
			return err
		}
		return versions.Delete(key)
	}
	if data != nil {
		if err := records.Put(key, data); err != nil {
			return err
		}
	}
	if version != nil {
		if err := versions.Put(key, encodeVersion(*version)); err != nil {
			return err
		}
	}
	return nil
}

// weightDelta returns the nominal membership delta a single-mutation call
// reports for op (Create = +1, Update = 0, Delete = -1). ApplyBatch applies
// its own suppression rule on top of this for deletes of ids that were
// never present.
func weightDelta(op MutationOp) int64 {
	switch op {
	case OpCreate:
		return 1
	case OpDelete:
		return -1
	default:
		return 0
	}
}

// applyMemoryMutation updates membership and the LRU cache for one
// mutation, after its disk effect has already committed successfully.
func (db *DB) applyMemoryMutation(table, id string, op MutationOp, data []byte) {
	if op == OpDelete {
		db.mem.remove(table, id)
		db.cache.remove(table, id)
		return
	}
	db.mem.add(table, id)
	if data != nil {
		db.cache.put(table, id, data)
	}
}

// ApplyMutation performs a single record mutation with commit-before-
// mutate-in-memory atomicity: the disk transaction commits first;
// membership and the cache are only updated after a successful commit. A
// commit failure leaves membership and the cache untouched.
func (db *DB) ApplyMutation(table, id string, op MutationOp, data []byte, version *uint64) (string, int64, error) {
	if err := db.requireWritable(); err != nil {
		return "", 0, err
	}
	if err := validateTableName(table); err != nil {
		return "", 0, err
	}

	err := db.bolt.Update(func(tx *bbolt.Tx) error {
		return applyDiskMutation(tx, table, id, op, data, version)
	})
	if err != nil {
		return "", 0, wrapError(KindStore, err, "applying mutation to %s:%s", table, id)
	}

	db.applyMemoryMutation(table, id, op, data)
	return id, weightDelta(op), nil
}

// ApplyBatch applies every mutation in mutations within a single write
// transaction: one commit regardless of how many entries are supplied, so
// the batch either lands entirely or not at all. Table names are validated
// up front so a bad name fails the whole batch before any disk I/O.
func (db *DB) ApplyBatch(mutations []DBMutation) (*BatchMutationResult, error) {
	if err := db.requireWritable(); err != nil {
		return nil, err
	}
	for _, m := range mutations {
		if err := validateTableName(m.Table); err != nil {
			return nil, err
		}
	}

	err := db.bolt.Update(func(tx *bbolt.Tx) error {
		for _, m := range mutations {
			if err := applyDiskMutation(tx, m.Table, m.ID, m.Op, m.Data, m.Version); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(KindStore, err, "applying batch of %d mutations", len(mutations))
	}

	result := newBatchMutationResult()
	for _, m := range mutations {
		result.noteChangedTable(m.Table)
		// Observe presence just before this mutation's in-memory effect,
		// so a delete of an id absent at that point in the batch is told
		// apart from a real delete.
		wasPresent := db.mem.contains(m.Table, m.ID)
		db.applyMemoryMutation(m.Table, m.ID, m.Op, m.Data)

		switch m.Op {
		case OpCreate:
			result.noteDelta(m.Table, m.ID, 1)
			result.noteContentUpdate(m.Table, m.ID)
		case OpUpdate:
			result.noteContentUpdate(m.Table, m.ID)
		case OpDelete:
			if wasPresent {
				result.noteDelta(m.Table, m.ID, -1)
			}
		}
	}
	return result, nil
}

// BulkLoad is like ApplyBatch but every entry is an implicit Create, used
// for initial hydration. The LRU cache may not hold every loaded record if
// its capacity is smaller than len(records); that's correct behavior, not
// an error — evicted records remain retrievable from disk.
func (db *DB) BulkLoad(records []BulkRecord) error {
	mutations := make([]DBMutation, len(records))
	for i, r := range records {
		mutations[i] = DBMutation{Table: r.Table, ID: r.ID, Op: OpCreate, Data: r.Data, Version: r.Version}
	}
	_, err := db.ApplyBatch(mutations)
	return err
}
