// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newEmptyMutable(t *testing.T) *MutableView {
	t.Helper()
	buf, err := Encode(nil)
	require.NoError(t, err)
	view, err := NewMutableView(buf)
	require.NoError(t, err)
	return view
}

func TestEmptyRecordBoundary(t *testing.T) {
	view := newEmptyMutable(t)
	require.Equal(t, HeaderSize, len(view.Bytes()))
	require.Equal(t, 0, view.FieldCount())

	_, err := view.AddField("x", Int64Value(5))
	require.NoError(t, err)
	require.Equal(t, 1, view.FieldCount())
	require.Equal(t, HeaderSize+IndexEntrySize+8, len(view.Bytes()))

	val, ok, err := view.GetValue(view.Resolve("x"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(5), val.Int64())
}

func Test32FieldLimitViaAddField(t *testing.T) {
	view := newEmptyMutable(t)
	for i := 0; i < MaxFields; i++ {
		_, err := view.AddField(fieldName(i), Int64Value(int64(i)))
		require.NoError(t, err)
	}
	require.Equal(t, MaxFields, view.FieldCount())

	_, err := view.AddField("one_too_many", Int64Value(0))
	require.Error(t, err)
	require.True(t, IsKind(err, ErrTooManyFields))
}

func TestInPlaceNumericSetKeepsGeneration(t *testing.T) {
	buf, err := Encode([]Field{F("age", Int64Value(28))})
	require.NoError(t, err)
	view, err := NewMutableView(buf)
	require.NoError(t, err)

	genBefore := view.Generation()
	slot := view.Resolve("age")
	require.True(t, slot.Valid())

	_, err = view.SetAt(slot, Int64Value(99))
	require.NoError(t, err)
	require.Equal(t, genBefore, view.Generation())

	val, ok, err := view.GetValue(slot)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(99), val.Int64())
}

func TestVariableLengthStringSpliceBumpsGeneration(t *testing.T) {
	buf, err := Encode([]Field{F("name", StringValue("Al"))})
	require.NoError(t, err)
	view, err := NewMutableView(buf)
	require.NoError(t, err)

	staleSlot := view.Resolve("name")
	genBefore := view.Generation()

	_, err = view.Set("name", StringValue("Alexander"))
	require.NoError(t, err)
	require.Equal(t, genBefore+1, view.Generation())

	val, ok, err := view.GetValue(view.Resolve("name"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Alexander", val.Str())

	// The slot resolved before the splice is now stale.
	_, ok = view.Get(staleSlot)
	require.False(t, ok)
}

func TestRemoveFieldBumpsGenerationAndDeletes(t *testing.T) {
	buf, err := Encode([]Field{
		F("a", Int64Value(1)),
		F("b", Int64Value(2)),
	})
	require.NoError(t, err)
	view, err := NewMutableView(buf)
	require.NoError(t, err)

	genBefore := view.Generation()
	require.NoError(t, view.RemoveField("a"))
	require.Equal(t, genBefore+1, view.Generation())
	require.Equal(t, 1, view.FieldCount())

	slot := view.Resolve("a")
	require.False(t, slot.Valid())

	err = view.RemoveField("nonexistent")
	require.Error(t, err)
	require.True(t, IsKind(err, ErrFieldNotFound))
}

func TestAddFieldDuplicateNameRejected(t *testing.T) {
	view := newEmptyMutable(t)
	_, err := view.AddField("x", Int64Value(1))
	require.NoError(t, err)

	_, err = view.AddField("x", Int64Value(2))
	require.Error(t, err)
	require.True(t, IsKind(err, ErrFieldExists))
}

func TestSetOnMissingFieldFails(t *testing.T) {
	view := newEmptyMutable(t)
	_, err := view.Set("missing", Int64Value(1))
	require.Error(t, err)
	require.True(t, IsKind(err, ErrFieldNotFound))
}
