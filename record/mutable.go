// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"github.com/timothybesel/spooky-db-module/internal/xhash"
)

// MutableView is a read-write wrapper around a record buffer. Unlike
// ImmutableView, every structural mutation (AddField, RemoveField, or a
// SetAt whose new payload differs from the field's current tag or byte
// length)
// rebuilds the buffer and bumps the view's generation counter, which
// invalidates every FieldSlot resolved before the mutation — Get on a
// stale slot returns ok=false rather than silently reading the wrong
// field.
type MutableView struct {
	buf        []byte
	fieldCount int
	generation uint64
}

// NewMutableView validates buf and wraps it for reading and writing. The
// view takes ownership of buf; the caller must not retain or mutate it
// directly afterward.
func NewMutableView(buf []byte) (*MutableView, error) {
	if err := validate(buf); err != nil {
		return nil, err
	}
	return &MutableView{buf: buf, fieldCount: readFieldCount(buf), generation: 1}, nil
}

// FieldCount returns the number of fields currently in the record.
func (v *MutableView) FieldCount() int {
	return v.fieldCount
}

// Bytes returns the current underlying buffer. The returned slice is only
// valid until the next mutating call; callers that need a stable copy
// should clone it.
func (v *MutableView) Bytes() []byte {
	return v.buf
}

// Generation returns the view's current generation counter. It increments
// on every structural mutation (AddField, RemoveField, and any SetAt that
// changes a field's tag or byte length).
func (v *MutableView) Generation() uint64 {
	return v.generation
}

func (v *MutableView) findField(nameHash uint64) (int, bool) {
	n := v.fieldCount
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if readIndexEntry(v.buf, mid).NameHash < nameHash {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < n {
		if e := readIndexEntry(v.buf, lo); e.NameHash == nameHash {
			return lo, true
		}
	}
	return 0, false
}

// Resolve looks up name and returns a FieldSlot tagged with the view's
// current generation.
func (v *MutableView) Resolve(name string) FieldSlot {
	nameHash := xhash.Name(name)
	idx, ok := v.findField(nameHash)
	if !ok {
		return missingFieldSlot(v.generation, nameHash)
	}
	return newFieldSlot(idx, v.generation, nameHash)
}

// Get returns the raw field reference for slot. ok is false both when the
// field is absent and when slot was resolved against an earlier
// generation — callers that see ok == false and need the field should call
// Resolve again.
func (v *MutableView) Get(slot FieldSlot) (FieldRef, bool) {
	if !slot.Valid() || slot.stale(v.generation) {
		return FieldRef{}, false
	}
	return fieldRef(v.buf, readIndexEntry(v.buf, slot.index)), true
}

// GetValue decodes the field at slot into a Value.
func (v *MutableView) GetValue(slot FieldSlot) (Value, bool, error) {
	ref, ok := v.Get(slot)
	if !ok {
		return Value{}, false, nil
	}
	return DecodeFieldOrAbsent[Value](Value{}, ref.Tag, ref.Data)
}

// GetByName resolves name fresh and fetches it in one call.
func (v *MutableView) GetByName(name string) (FieldRef, bool) {
	return v.Get(v.Resolve(name))
}

// HasField reports whether name is present in the record.
func (v *MutableView) HasField(name string) bool {
	_, ok := v.findField(xhash.Name(name))
	return ok
}

// FieldType returns the wire tag of name, if present.
func (v *MutableView) FieldType(name string) (Tag, bool) {
	ref, ok := v.GetByName(name)
	if !ok {
		return 0, false
	}
	return ref.Tag, true
}

// GetNumberAsF64 returns name's value as a float64, succeeding for any of
// the three numeric tags and promoting integers.
func (v *MutableView) GetNumberAsF64(name string) (float64, bool, error) {
	ref, ok := v.GetByName(name)
	if !ok {
		return 0, false, nil
	}
	switch ref.Tag {
	case TagInt64, TagUint64, TagFloat64:
		val, ok, err := DecodeFieldOrAbsent[Value](Value{}, ref.Tag, ref.Data)
		if err != nil || !ok {
			return 0, false, err
		}
		switch ref.Tag {
		case TagInt64:
			return float64(val.Int64()), true, nil
		case TagUint64:
			return float64(val.Uint64()), true, nil
		default:
			return val.Float64(), true, nil
		}
	default:
		return 0, false, nil
	}
}

// extractStaged decodes every field in the current buffer into a
// rebuildable staged slice, copying payload bytes so the result is
// independent of v.buf.
func (v *MutableView) extractStaged() []stagedField {
	staged := make([]stagedField, 0, v.fieldCount)
	it := newIndexIterator(v.buf, v.fieldCount)
	for {
		f, ok := it.Next()
		if !ok {
			break
		}
		staged = append(staged, stagedField{
			nameHash: f.NameHash,
			tag:      f.Tag,
			data:     append([]byte(nil), f.Data...),
		})
	}
	return staged
}

// rebuild replaces v.buf with a fresh buffer built from staged, bumps the
// generation counter, and updates the cached field count.
func (v *MutableView) rebuild(staged []stagedField) {
	v.buf = buildFromStaged(nil, staged)
	v.fieldCount = len(staged)
	v.generation++
}

// SetAt overwrites the value at slot with value. If the new payload has the
// same byte length and tag as the field's current payload, the update
// happens in place and the view's generation is unchanged, so slot and any
// other previously-resolved slots remain valid. Otherwise the buffer is
// rebuilt and slot becomes stale along with everything else. The returned
// FieldSlot is always valid for the field's new state.
func (v *MutableView) SetAt(slot FieldSlot, value Encodable) (FieldSlot, error) {
	if !slot.Valid() || slot.stale(v.generation) {
		return FieldSlot{}, newFieldError(ErrFieldNotFound, "stale or invalid slot for field hash %d", slot.NameHash())
	}
	cur := readIndexEntry(v.buf, slot.index)

	var payload []byte
	payload, tag, err := value.EncodeField(payload)
	if err != nil {
		return FieldSlot{}, newWrappedError(ErrCBOR, err, "encoding field value")
	}

	if tag == cur.Tag && uint32(len(payload)) == cur.DataLength {
		copy(v.buf[cur.DataOffset:cur.DataOffset+cur.DataLength], payload)
		return newFieldSlot(slot.index, v.generation, slot.NameHash()), nil
	}

	staged := v.extractStaged()
	staged[slot.index] = stagedField{nameHash: cur.NameHash, tag: tag, data: payload}
	v.rebuild(staged)
	idx, _ := v.findField(cur.NameHash)
	return newFieldSlot(idx, v.generation, cur.NameHash), nil
}

// Set resolves name fresh and overwrites its value, as SetAt. It returns
// ErrFieldNotFound if name doesn't exist; use AddField to introduce a new
// field.
func (v *MutableView) Set(name string, value Encodable) (FieldSlot, error) {
	slot := v.Resolve(name)
	if !slot.Valid() {
		return FieldSlot{}, newFieldError(ErrFieldNotFound, "field %q not found", name)
	}
	return v.SetAt(slot, value)
}

// AddField inserts a new field. It is always a structural mutation: the
// buffer is rebuilt and the generation bumped, even though only one field's
// worth of bytes actually changed, because inserting it may shift every
// later index entry's position (I1 requires the index stay sorted by
// name_hash).
func (v *MutableView) AddField(name string, value Encodable) (FieldSlot, error) {
	if v.fieldCount >= MaxFields {
		return FieldSlot{}, newFieldError(ErrTooManyFields, "record already has max %d fields", MaxFields)
	}
	nameHash := xhash.Name(name)
	if _, ok := v.findField(nameHash); ok {
		return FieldSlot{}, newFieldError(ErrFieldExists, "field %q already exists", name)
	}

	var payload []byte
	payload, tag, err := value.EncodeField(payload)
	if err != nil {
		return FieldSlot{}, newWrappedError(ErrCBOR, err, "encoding field value")
	}

	staged := v.extractStaged()
	staged = append(staged, stagedField{nameHash: nameHash, tag: tag, data: payload})
	if err := sortStaged(staged); err != nil {
		return FieldSlot{}, err
	}
	v.rebuild(staged)
	idx, _ := v.findField(nameHash)
	return newFieldSlot(idx, v.generation, nameHash), nil
}

// RemoveField deletes name from the record. It is a structural mutation.
func (v *MutableView) RemoveField(name string) error {
	nameHash := xhash.Name(name)
	idx, ok := v.findField(nameHash)
	if !ok {
		return newFieldError(ErrFieldNotFound, "field %q not found", name)
	}
	staged := v.extractStaged()
	staged = append(staged[:idx], staged[idx+1:]...)
	v.rebuild(staged)
	return nil
}
