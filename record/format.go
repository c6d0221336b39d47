// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package record implements SpookyDB's binary record format: a compact,
// self-describing byte buffer in which any field can be located in O(log N)
// by name, or in O(1) after caching its position with a FieldSlot.
//
// A record buffer has three regions: a fixed 20-byte header, a
// field_count*20-byte index sorted by field-name hash, and a variable-length
// data region holding the concatenated field payloads. The constants and
// IndexEntry below define the exact byte layout.
package record

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/timothybesel/spooky-db-module/internal/invariants"
)

// Tag identifies the wire type of a field's payload.
type Tag uint8

// The seven wire types a field payload can hold. Values and byte widths are
// part of the wire format and must never change.
const (
	TagNull    Tag = 0
	TagBool    Tag = 1
	TagInt64   Tag = 2
	TagFloat64 Tag = 3
	TagString  Tag = 4
	TagNested  Tag = 5
	TagUint64  Tag = 6
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt64:
		return "int64"
	case TagFloat64:
		return "float64"
	case TagString:
		return "string"
	case TagNested:
		return "nested"
	case TagUint64:
		return "uint64"
	default:
		return "unknown"
	}
}

const (
	// HeaderSize is the fixed size, in bytes, of the record header: a
	// 4-byte field_count plus 16 reserved zero bytes.
	HeaderSize = 20

	// IndexEntrySize is the fixed size, in bytes, of one index row:
	// 8-byte name_hash, 4-byte data_offset, 4-byte data_length, 1-byte
	// type_tag, 3 bytes of zero padding.
	IndexEntrySize = 20

	// MaxFields is the maximum number of fields a single record may
	// hold (I3). The encoder rejects inputs exceeding this.
	MaxFields = 32
)

// IndexEntry is a decoded row from a record's index. It is produced lazily
// from unaligned little-endian reads and is never persisted in this form —
// only the 20-byte layout above is written to the buffer.
type IndexEntry struct {
	NameHash   uint64
	DataOffset uint32
	DataLength uint32
	Tag        Tag
}

// FieldRef is a borrowed, zero-copy reference into a record buffer: a field's
// name hash, its type tag, and the raw bytes of its payload. Its lifetime is
// bounded by the buffer it was produced from.
type FieldRef struct {
	NameHash uint64
	Tag      Tag
	Data     []byte
}

// indexEntryOffset returns the absolute byte offset of index entry i.
func indexEntryOffset(i int) int {
	return HeaderSize + i*IndexEntrySize
}

// readFieldCount reads the 4-byte field_count at offset 0. The caller must
// have already checked len(buf) >= HeaderSize.
func readFieldCount(buf []byte) int {
	return int(binary.LittleEndian.Uint32(buf[0:4]))
}

// putHeader writes field_count and zeroes the 16 reserved bytes.
func putHeader(buf []byte, fieldCount int) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(fieldCount))
	clearBytes(buf[4:HeaderSize])
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// readIndexEntry decodes the index entry at position i. The caller must
// ensure the buffer is at least indexEntryOffset(i)+IndexEntrySize bytes
// long; in release builds this function does not re-check that bound (the
// deserialization entry point in validate.go is responsible for validating
// the buffer once, up front).
func readIndexEntry(buf []byte, i int) IndexEntry {
	off := indexEntryOffset(i)
	if invariants.Enabled {
		if off+IndexEntrySize > len(buf) {
			panic(errors.AssertionFailedf("record: index entry %d out of bounds (buf len %d)", i, len(buf)))
		}
	}
	row := buf[off : off+IndexEntrySize]
	return IndexEntry{
		NameHash:   binary.LittleEndian.Uint64(row[0:8]),
		DataOffset: binary.LittleEndian.Uint32(row[8:12]),
		DataLength: binary.LittleEndian.Uint32(row[12:16]),
		Tag:        Tag(row[16]),
	}
}

// putIndexEntry writes e into the index slot at position i.
func putIndexEntry(buf []byte, i int, e IndexEntry) {
	off := indexEntryOffset(i)
	row := buf[off : off+IndexEntrySize]
	binary.LittleEndian.PutUint64(row[0:8], e.NameHash)
	binary.LittleEndian.PutUint32(row[8:12], e.DataOffset)
	binary.LittleEndian.PutUint32(row[12:16], e.DataLength)
	row[16] = byte(e.Tag)
	row[17], row[18], row[19] = 0, 0, 0
}

// fieldRef builds a FieldRef from a decoded index entry and the buffer it
// came from.
func fieldRef(buf []byte, e IndexEntry) FieldRef {
	return FieldRef{
		NameHash: e.NameHash,
		Tag:      e.Tag,
		Data:     buf[e.DataOffset : e.DataOffset+e.DataLength],
	}
}

// indexIterator walks a record's index in order, yielding FieldRef values in
// ascending name_hash order (I1 guarantees the order).
type indexIterator struct {
	buf   []byte
	n     int
	pos   int
}

func newIndexIterator(buf []byte, fieldCount int) indexIterator {
	return indexIterator{buf: buf, n: fieldCount}
}

// Next returns the next field and advances the cursor. ok is false once
// iteration is exhausted.
func (it *indexIterator) Next() (FieldRef, bool) {
	if it.pos >= it.n {
		return FieldRef{}, false
	}
	e := readIndexEntry(it.buf, it.pos)
	it.pos++
	return fieldRef(it.buf, e), true
}
