// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package spookydb

import (
	"github.com/cockroachdb/swiss"
)

// present is the sentinel value stored for every member of a table's
// membership set; only key presence matters; the value is never read.
const present int8 = 1

// membership tracks, per table, the set of record ids known to exist — a
// purely in-memory index rebuilt once at Open by scanning the store (see
// store.go), so that GetTableZSet and record-existence checks never touch
// disk. It is not safe for concurrent use, matching the single-owner model
// the rest of DB assumes.
type membership struct {
	tables map[string]*swiss.Map[string, int8]
}

func newMembership() *membership {
	return &membership{tables: make(map[string]*swiss.Map[string, int8])}
}

// zsetFor returns the membership set for table, creating an empty one if
// this is the first time table has been seen.
func (m *membership) zsetFor(table string) *swiss.Map[string, int8] {
	z, ok := m.tables[table]
	if !ok {
		z = swiss.New[string, int8](8)
		m.tables[table] = z
	}
	return z
}

// add records id as present in table.
func (m *membership) add(table, id string) {
	m.zsetFor(table).Put(id, present)
}

// remove records id as absent from table. A no-op if id was never present.
func (m *membership) remove(table, id string) {
	if z, ok := m.tables[table]; ok {
		z.Delete(id)
	}
}

// contains reports whether id is a known member of table.
func (m *membership) contains(table, id string) bool {
	z, ok := m.tables[table]
	if !ok {
		return false
	}
	_, ok = z.Get(id)
	return ok
}

// zset returns the live membership set for table, or nil if the table has
// never been seen. The returned pointer aliases membership's own state:
// callers must not retain it across a mutating DB call (AddField-style
// mutation of the map itself isn't exposed, but the set's contents change
// on every ApplyMutation/ApplyBatch/BulkLoad that touches table), matching
// the "zero I/O, caller-owned borrow lifetime" contract.
func (m *membership) zset(table string) *swiss.Map[string, int8] {
	return m.tables[table]
}

// tableNames returns every table name that has a membership set, including
// sets that are empty.
func (m *membership) tableNames() []string {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	return names
}
