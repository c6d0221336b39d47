// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

// FieldSlot is an opaque, cacheable reference to a field's position within a
// specific buffer generation. Callers that repeatedly read or write the same
// named field can resolve it once and reuse the slot, turning the O(log N)
// index search into an O(1) offset read, as long as the buffer hasn't been
// mutated since the slot was resolved.
//
// A zero-value FieldSlot is never valid; Resolve always produces one tied to
// the generation it was resolved against.
type FieldSlot struct {
	index      int
	generation uint64
	nameHash   uint64
	valid      bool
}

// Valid reports whether the slot was successfully resolved to a field. A
// slot for a field name that doesn't exist in the record is !Valid and
// carries no position.
func (s FieldSlot) Valid() bool {
	return s.valid
}

// NameHash returns the field-name hash this slot was resolved for.
func (s FieldSlot) NameHash() uint64 {
	return s.nameHash
}

// stale reports whether s was resolved against a generation other than gen,
// meaning the underlying buffer was mutated since resolution and the cached
// index position can no longer be trusted.
func (s FieldSlot) stale(gen uint64) bool {
	return s.generation != gen
}

// newFieldSlot builds a resolved slot for the field at index idx in the
// given generation.
func newFieldSlot(idx int, gen uint64, nameHash uint64) FieldSlot {
	return FieldSlot{index: idx, generation: gen, nameHash: nameHash, valid: true}
}

// missingFieldSlot builds a slot recording that nameHash was looked up and
// not found in the given generation. It is still considered resolved
// (lookup completed) but !Valid.
func missingFieldSlot(gen uint64, nameHash uint64) FieldSlot {
	return FieldSlot{generation: gen, nameHash: nameHash, valid: false}
}
