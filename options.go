// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package spookydb implements the persistence layer over the record
// package: a bbolt-backed embedded store with per-table membership sets
// and a bounded write-through byte cache.
package spookydb

import (
	"go.uber.org/zap"
)

// Options configures a DB. The zero value is not ready to use; call
// EnsureDefaults (or pass Options{} to Open, which calls it for you) to
// fill in defaults for every unset field.
type Options struct {
	// Logger receives lifecycle events: store open and close. It never
	// logs per-record or per-field activity — that
	// would put logging on the hot path. Defaults to zap.NewNop().
	Logger *zap.Logger

	// CacheSize is the maximum number of record byte-slices the LRU
	// cache holds across all tables combined. Defaults to 10000.
	CacheSize int

	// ReadOnly makes ApplyMutation, ApplyBatch, and BulkLoad all fail
	// with a KindStore error. It does not change how the bbolt file is
	// opened: Open still opens it read-write and creates any missing
	// buckets.
	ReadOnly bool
}

// EnsureDefaults returns a copy of o with every zero-valued field replaced
// by its default.
func (o Options) EnsureDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 10000
	}
	return o
}
