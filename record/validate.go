// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"github.com/timothybesel/spooky-db-module/internal/invariants"
)

// validate checks that buf is a well-formed record buffer: long enough for
// its declared header and index, every index entry's data region inside
// bounds, and (invariants builds only) the index sorted by name_hash per
// I1. It is the single gate every deserialization entry point calls before
// trusting offsets read out of buf.
func validate(buf []byte) error {
	if len(buf) < HeaderSize {
		return newFieldError(ErrInvalidBuffer, "buffer too short for header: %d bytes", len(buf))
	}
	fieldCount := readFieldCount(buf)
	if fieldCount > MaxFields {
		return newFieldError(ErrInvalidBuffer, "field_count %d exceeds max %d", fieldCount, MaxFields)
	}
	indexEnd := HeaderSize + fieldCount*IndexEntrySize
	if len(buf) < indexEnd {
		return newFieldError(ErrInvalidBuffer, "buffer too short for index: need %d bytes, have %d", indexEnd, len(buf))
	}

	dataLen := uint32(len(buf))
	var prevHash uint64
	for i := 0; i < fieldCount; i++ {
		e := readIndexEntry(buf, i)
		if e.Tag > TagUint64 {
			return newFieldError(ErrUnknownTypeTag, "field %d has unknown type tag %d", i, e.Tag)
		}
		end := uint64(e.DataOffset) + uint64(e.DataLength)
		if e.DataOffset < uint32(indexEnd) || end > uint64(dataLen) {
			return newFieldError(ErrInvalidBuffer, "field %d data region [%d,%d) out of bounds (buf len %d)", i, e.DataOffset, end, dataLen)
		}
		if invariants.Enabled {
			if i > 0 && e.NameHash < prevHash {
				return newFieldError(ErrInvalidBuffer, "index not sorted: entry %d hash %d < entry %d hash %d", i, e.NameHash, i-1, prevHash)
			}
			if i > 0 && e.NameHash == prevHash {
				return newFieldError(ErrInvalidBuffer, "duplicate name_hash %d at entries %d and %d", e.NameHash, i-1, i)
			}
		}
		prevHash = e.NameHash
	}
	return nil
}
