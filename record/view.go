// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"sort"

	"github.com/timothybesel/spooky-db-module/internal/xhash"
)

// ImmutableView is a read-only wrapper around a validated record buffer.
// Field lookups binary-search the index in place, and the raw accessors
// (Get, GetByName, GetRaw) return payloads as slices into the original
// buffer without copying. GetValue copies string and nested payloads, and
// Fields allocates the slice it returns.
//
// An ImmutableView has a fixed generation (1) for its whole lifetime, since
// the buffer it wraps is never mutated through this type — FieldSlots
// resolved against it never go stale.
type ImmutableView struct {
	buf        []byte
	fieldCount int
}

const immutableGeneration uint64 = 1

// NewImmutableView validates buf and wraps it for reading. The returned
// view retains buf; callers must not mutate it out from under the view.
func NewImmutableView(buf []byte) (*ImmutableView, error) {
	if err := validate(buf); err != nil {
		return nil, err
	}
	return &ImmutableView{buf: buf, fieldCount: readFieldCount(buf)}, nil
}

// FieldCount returns the number of fields in the record.
func (v *ImmutableView) FieldCount() int {
	return v.fieldCount
}

// Bytes returns the underlying buffer. The returned slice must not be
// mutated.
func (v *ImmutableView) Bytes() []byte {
	return v.buf
}

// findField locates the index entry whose name_hash equals nameHash,
// returning its position and true, or (0, false) if absent. The index is
// I1-sorted, so this is a binary search regardless of fieldCount; there is
// no separate linear-scan path because MaxFields (32) is small enough that
// the two strategies cost about the same, and a single code path is easier
// to keep correct.
func (v *ImmutableView) findField(nameHash uint64) (int, bool) {
	n := v.fieldCount
	i := sort.Search(n, func(i int) bool {
		return readIndexEntry(v.buf, i).NameHash >= nameHash
	})
	if i < n {
		if e := readIndexEntry(v.buf, i); e.NameHash == nameHash {
			return i, true
		}
	}
	return 0, false
}

// Resolve looks up name and returns a FieldSlot that can be reused to
// re-fetch the field in O(1), as long as the view isn't mutated (immutable
// views never are, so a resolved slot is valid for the view's entire
// lifetime).
func (v *ImmutableView) Resolve(name string) FieldSlot {
	nameHash := xhash.Name(name)
	idx, ok := v.findField(nameHash)
	if !ok {
		return missingFieldSlot(immutableGeneration, nameHash)
	}
	return newFieldSlot(idx, immutableGeneration, nameHash)
}

// Get returns the raw field reference for a resolved slot. ok is false if
// the slot doesn't refer to a present field. An ImmutableView is never
// mutated through this type, so a slot it resolved is valid for the
// view's entire lifetime — there is no staleness case to handle here.
func (v *ImmutableView) Get(slot FieldSlot) (FieldRef, bool) {
	if !slot.Valid() {
		return FieldRef{}, false
	}
	return fieldRef(v.buf, readIndexEntry(v.buf, slot.index)), true
}

// GetByName resolves name and fetches it in one call. Prefer Resolve+Get
// when the same field will be read more than once.
func (v *ImmutableView) GetByName(name string) (FieldRef, bool) {
	return v.Get(v.Resolve(name))
}

// GetRaw is an alias for GetByName: a zero-copy, untyped reference to a
// field's tag and bytes, with no type check against a requested accessor.
func (v *ImmutableView) GetRaw(name string) (FieldRef, bool) {
	return v.GetByName(name)
}

// HasField reports whether name is present in the record.
func (v *ImmutableView) HasField(name string) bool {
	_, ok := v.findField(xhash.Name(name))
	return ok
}

// FieldType returns the wire tag of name, if present.
func (v *ImmutableView) FieldType(name string) (Tag, bool) {
	ref, ok := v.GetByName(name)
	if !ok {
		return 0, false
	}
	return ref.Tag, true
}

// GetNumberAsF64 returns name's value as a float64, succeeding for any of
// the three numeric tags (int64, uint64, float64) and promoting integers
// rather than requiring an exact float64 field.
func (v *ImmutableView) GetNumberAsF64(name string) (float64, bool, error) {
	ref, ok := v.GetByName(name)
	if !ok {
		return 0, false, nil
	}
	switch ref.Tag {
	case TagInt64:
		val, ok, err := DecodeFieldOrAbsent[Value](Value{}, ref.Tag, ref.Data)
		if err != nil || !ok {
			return 0, false, err
		}
		return float64(val.Int64()), true, nil
	case TagUint64:
		val, ok, err := DecodeFieldOrAbsent[Value](Value{}, ref.Tag, ref.Data)
		if err != nil || !ok {
			return 0, false, err
		}
		return float64(val.Uint64()), true, nil
	case TagFloat64:
		val, ok, err := DecodeFieldOrAbsent[Value](Value{}, ref.Tag, ref.Data)
		if err != nil || !ok {
			return 0, false, err
		}
		return val.Float64(), true, nil
	default:
		return 0, false, nil
	}
}

// GetValue decodes the field at slot into a Value. It returns
// (Value{}, false, nil) if the field is absent.
func (v *ImmutableView) GetValue(slot FieldSlot) (Value, bool, error) {
	ref, ok := v.Get(slot)
	if !ok {
		return Value{}, false, nil
	}
	return DecodeFieldOrAbsent[Value](Value{}, ref.Tag, ref.Data)
}

// GetAs decodes the field at slot using the supplied Decoder[T]. It returns
// the zero value of T, false, nil if the field is absent or if its stored
// length doesn't match T's expected width.
func GetAs[T any](v *ImmutableView, slot FieldSlot, dec Decoder[T]) (T, bool, error) {
	ref, ok := v.Get(slot)
	if !ok {
		var zero T
		return zero, false, nil
	}
	return DecodeFieldOrAbsent[T](dec, ref.Tag, ref.Data)
}

// Fields returns every field in the record, in ascending name_hash order.
func (v *ImmutableView) Fields() []FieldRef {
	out := make([]FieldRef, 0, v.fieldCount)
	it := newIndexIterator(v.buf, v.fieldCount)
	for {
		f, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, f)
	}
	return out
}
