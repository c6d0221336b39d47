// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"slices"

	"github.com/timothybesel/spooky-db-module/internal/xhash"
)

// Field is one (name, value) pair supplied to Encode. Name is hashed with
// internal/xhash to produce the index's name_hash; the original string is
// not retained anywhere in the wire format.
type Field struct {
	Name  string
	Value Encodable
}

// F is a convenience constructor for a Field.
func F(name string, value Encodable) Field {
	return Field{Name: name, Value: value}
}

type stagedField struct {
	nameHash uint64
	tag      Tag
	data     []byte
}

// Encode builds a new record buffer from fields and returns it. It is
// equivalent to EncodeInto(nil, fields).
func Encode(fields []Field) ([]byte, error) {
	return EncodeInto(nil, fields)
}

// EncodeInto builds a record buffer from fields, reusing dst's backing
// array if it has enough spare capacity (dst's existing contents are
// discarded — this is the bulk-ingest shape for amortizing one allocation
// over many records, each call clearing and refilling the same buffer).
// Fields are written to the index in ascending name_hash order regardless
// of the order they're passed in, per I1. Two fields whose names hash to
// the same value is a caller bug; EncodeInto reports it as ErrFieldExists
// rather than silently dropping one.
func EncodeInto(dst []byte, fields []Field) ([]byte, error) {
	dst = dst[:0]
	if len(fields) > MaxFields {
		return nil, newFieldError(ErrTooManyFields, "got %d fields, max is %d", len(fields), MaxFields)
	}

	// Stage each field's encoded payload before committing anything to
	// dst, so a mid-encode failure leaves dst untouched.
	var stageArr [MaxFields]stagedField
	staged := stageArr[:0]
	var dataBuf []byte
	for _, f := range fields {
		nameHash := xhash.Name(f.Name)
		start := len(dataBuf)
		var tag Tag
		var err error
		dataBuf, tag, err = f.Value.EncodeField(dataBuf)
		if err != nil {
			return nil, newWrappedError(ErrCBOR, err, "encoding field %q", f.Name)
		}
		staged = append(staged, stagedField{
			nameHash: nameHash,
			tag:      tag,
			data:     dataBuf[start:len(dataBuf):len(dataBuf)],
		})
	}

	if err := sortStaged(staged); err != nil {
		return nil, err
	}

	return buildFromStaged(dst, staged), nil
}

// buildFromStaged writes an already-sorted, already-deduplicated slice of
// staged fields into a fresh record buffer appended to dst. Shared by
// EncodeInto and mutable.go's rebuild-on-structural-change path, so both
// produce byte-identical output for the same logical field set.
func buildFromStaged(dst []byte, staged []stagedField) []byte {
	fieldCount := len(staged)
	indexEnd := HeaderSize + fieldCount*IndexEntrySize
	dataLen := 0
	for _, sf := range staged {
		dataLen += len(sf.data)
	}
	total := indexEnd + dataLen

	base := len(dst)
	dst = append(dst, make([]byte, total)...)
	out := dst[base:]

	putHeader(out, fieldCount)
	dataOffset := uint32(indexEnd)
	dataCursor := 0
	for i, sf := range staged {
		copy(out[int(dataOffset)+dataCursor:], sf.data)
		putIndexEntry(out, i, IndexEntry{
			NameHash:   sf.nameHash,
			DataOffset: dataOffset + uint32(dataCursor),
			DataLength: uint32(len(sf.data)),
			Tag:        sf.tag,
		})
		dataCursor += len(sf.data)
	}
	return out[:total]
}

// sortStaged sorts fields by name_hash and reports an error if two fields
// share a hash.
func sortStaged(staged []stagedField) error {
	slices.SortFunc(staged, func(a, b stagedField) int {
		switch {
		case a.nameHash < b.nameHash:
			return -1
		case a.nameHash > b.nameHash:
			return 1
		default:
			return 0
		}
	})
	for i := 1; i < len(staged); i++ {
		if staged[i].nameHash == staged[i-1].nameHash {
			return newFieldError(ErrFieldExists, "duplicate field name hash %d", staged[i].nameHash)
		}
	}
	return nil
}
