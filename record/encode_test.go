// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timothybesel/spooky-db-module/internal/xhash"
)

func TestEmptyRecord(t *testing.T) {
	buf, err := Encode(nil)
	require.NoError(t, err)
	require.Equal(t, HeaderSize, len(buf))
	require.Equal(t, 0, readFieldCount(buf))
}

func TestEncodeSortsByNameHash(t *testing.T) {
	buf, err := Encode([]Field{
		F("zebra", Int64Value(1)),
		F("apple", Int64Value(2)),
		F("mango", Int64Value(3)),
	})
	require.NoError(t, err)

	view, err := NewImmutableView(buf)
	require.NoError(t, err)
	require.Equal(t, 3, view.FieldCount())

	var prev uint64
	for i, f := range view.Fields() {
		if i > 0 {
			require.GreaterOrEqual(t, f.NameHash, prev)
		}
		prev = f.NameHash
	}
}

func TestRoundTripScalars(t *testing.T) {
	buf, err := Encode([]Field{
		F("n", NullValue()),
		F("b", BoolValue(true)),
		F("i", Int64Value(-42)),
		F("u", Uint64Value(42)),
		F("f", Float64Value(3.5)),
		F("s", StringValue("hello")),
	})
	require.NoError(t, err)

	view, err := NewImmutableView(buf)
	require.NoError(t, err)

	n, ok, err := view.GetValue(view.Resolve("n"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, TagNull, n.Tag())

	b, ok, err := view.GetValue(view.Resolve("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, b.Bool())

	i, ok, err := view.GetValue(view.Resolve("i"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(-42), i.Int64())

	u, ok, err := view.GetValue(view.Resolve("u"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), u.Uint64())

	f, ok, err := view.GetValue(view.Resolve("f"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3.5, f.Float64())

	s, ok, err := view.GetValue(view.Resolve("s"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", s.Str())
}

func TestRoundTripNested(t *testing.T) {
	type payload struct {
		A int
		B string
	}
	val, err := NestedValue(payload{A: 1, B: "x"})
	require.NoError(t, err)

	buf, err := Encode([]Field{F("nested", val)})
	require.NoError(t, err)

	view, err := NewImmutableView(buf)
	require.NoError(t, err)

	decoded, ok, err := view.GetValue(view.Resolve("nested"))
	require.NoError(t, err)
	require.True(t, ok)

	var out payload
	require.NoError(t, decoded.Nested(&out))
	require.Equal(t, payload{A: 1, B: "x"}, out)
}

func TestMaxFieldsLimit(t *testing.T) {
	fields := make([]Field, MaxFields)
	for i := range fields {
		fields[i] = F(fieldName(i), Int64Value(int64(i)))
	}
	buf, err := Encode(fields)
	require.NoError(t, err)

	view, err := NewImmutableView(buf)
	require.NoError(t, err)
	require.Equal(t, MaxFields, view.FieldCount())

	fields = append(fields, F("one_too_many", Int64Value(0)))
	_, err = Encode(fields)
	require.Error(t, err)
	require.True(t, IsKind(err, ErrTooManyFields))
}

func TestDuplicateFieldNameRejected(t *testing.T) {
	_, err := Encode([]Field{
		F("same", Int64Value(1)),
		F("same", Int64Value(2)),
	})
	require.Error(t, err)
	require.True(t, IsKind(err, ErrFieldExists))
}

func TestEncodeIsDeterministic(t *testing.T) {
	fields := []Field{
		F("z", Int64Value(1)),
		F("a", StringValue("value")),
		F("m", Float64Value(1.5)),
	}
	buf1, err := Encode(fields)
	require.NoError(t, err)
	buf2, err := Encode(fields)
	require.NoError(t, err)
	require.Equal(t, buf1, buf2)
}

func TestLengthMismatchReturnsAbsentField(t *testing.T) {
	// Hand-craft a buffer whose int64 field claims the wrong length: a
	// width mismatch decodes as absent, not an error.
	buf, err := Encode([]Field{F("age", Int64Value(5))})
	require.NoError(t, err)

	e := readIndexEntry(buf, 0)
	e.DataLength = 3
	putIndexEntry(buf, 0, e)
	// Truncate the buffer so offsets stay in bounds for validate.
	buf = buf[:HeaderSize+IndexEntrySize+3]

	view, err := NewImmutableView(buf)
	require.NoError(t, err)
	_, ok, decodeErr := view.GetValue(view.Resolve("age"))
	require.NoError(t, decodeErr)
	require.False(t, ok)
}

func fieldName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return "f" + string(letters[i%26]) + string(rune('0'+i/26))
}

func TestXHashIsStableAcrossCalls(t *testing.T) {
	require.Equal(t, xhash.Name("field"), xhash.Name("field"))
}
