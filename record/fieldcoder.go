// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
)

// Encodable is implemented by any Go value that can be written into a
// record field. EncodeField appends the value's wire payload to dst and returns
// the extended slice along with the tag the payload was written under.
type Encodable interface {
	EncodeField(dst []byte) ([]byte, Tag, error)
}

// Decoder is implemented by a type that knows how to reconstruct itself (or
// a zero value of itself) from a field's raw tag and payload bytes. T is
// typically the same concrete type that produced the payload via Encodable,
// but built-in decoders (see DecodeField) accept any tag whose Go
// representation matches T.
type Decoder[T any] interface {
	DecodeField(tag Tag, data []byte) (T, error)
}

// Value is SpookyDB's built-in dynamically-typed field value: the in-memory
// form every decoded field takes when the caller doesn't supply its own
// Decoder[T]. It implements both Encodable and Decoder[Value], so it can
// round-trip any field this package knows how to serialize.
type Value struct {
	tag Tag
	b   bool
	i64 int64
	u64 uint64
	f64 float64
	str string
	// raw holds the undecoded CBOR bytes for TagNested values; decoding
	// into a concrete Go type is left to the caller via cbor.Unmarshal.
	raw []byte
}

// NullValue returns the field value representing an explicit SQL-NULL-like
// absence of data.
func NullValue() Value { return Value{tag: TagNull} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{tag: TagBool, b: b} }

// Int64Value wraps a signed 64-bit integer.
func Int64Value(i int64) Value { return Value{tag: TagInt64, i64: i} }

// Uint64Value wraps an unsigned 64-bit integer.
func Uint64Value(u uint64) Value { return Value{tag: TagUint64, u64: u} }

// Float64Value wraps a 64-bit float.
func Float64Value(f float64) Value { return Value{tag: TagFloat64, f64: f} }

// StringValue wraps a UTF-8 string.
func StringValue(s string) Value { return Value{tag: TagString, str: s} }

// NestedValue wraps an arbitrary Go value that will be CBOR-encoded when
// the field is written.
func NestedValue(v any) (Value, error) {
	raw, err := cbor.Marshal(v)
	if err != nil {
		return Value{}, errors.Wrap(err, "record: cbor marshal nested value")
	}
	return Value{tag: TagNested, raw: raw}, nil
}

// Tag reports the wire type this value was constructed with, or decoded as.
func (v Value) Tag() Tag { return v.tag }

// Bool returns the bool payload. Panics if Tag() != TagBool.
func (v Value) Bool() bool {
	if v.tag != TagBool {
		panic(errors.AssertionFailedf("record: Value.Bool called on %s value", v.tag))
	}
	return v.b
}

// Int64 returns the int64 payload. Panics if Tag() != TagInt64.
func (v Value) Int64() int64 {
	if v.tag != TagInt64 {
		panic(errors.AssertionFailedf("record: Value.Int64 called on %s value", v.tag))
	}
	return v.i64
}

// Uint64 returns the uint64 payload. Panics if Tag() != TagUint64.
func (v Value) Uint64() uint64 {
	if v.tag != TagUint64 {
		panic(errors.AssertionFailedf("record: Value.Uint64 called on %s value", v.tag))
	}
	return v.u64
}

// Float64 returns the float64 payload. Panics if Tag() != TagFloat64.
func (v Value) Float64() float64 {
	if v.tag != TagFloat64 {
		panic(errors.AssertionFailedf("record: Value.Float64 called on %s value", v.tag))
	}
	return v.f64
}

// Str returns the string payload. Panics if Tag() != TagString.
func (v Value) Str() string {
	if v.tag != TagString {
		panic(errors.AssertionFailedf("record: Value.Str called on %s value", v.tag))
	}
	return v.str
}

// String renders v for debugging and CLI output. Unlike the typed
// accessors it never panics — every tag has a representation, including
// null and nested (shown as its tag name and byte length).
func (v Value) String() string {
	switch v.tag {
	case TagNull:
		return "null"
	case TagBool:
		return fmt.Sprintf("%t", v.b)
	case TagInt64:
		return fmt.Sprintf("%d", v.i64)
	case TagUint64:
		return fmt.Sprintf("%d", v.u64)
	case TagFloat64:
		return fmt.Sprintf("%g", v.f64)
	case TagString:
		return v.str
	case TagNested:
		return fmt.Sprintf("<nested %d bytes>", len(v.raw))
	default:
		return "<invalid>"
	}
}

// Nested unmarshals the CBOR payload of a TagNested value into out. Panics
// if Tag() != TagNested.
func (v Value) Nested(out any) error {
	if v.tag != TagNested {
		panic(errors.AssertionFailedf("record: Value.Nested called on %s value", v.tag))
	}
	return cbor.Unmarshal(v.raw, out)
}

// EncodeField implements Encodable.
func (v Value) EncodeField(dst []byte) ([]byte, Tag, error) {
	switch v.tag {
	case TagNull:
		return dst, TagNull, nil
	case TagBool:
		if v.b {
			return append(dst, 1), TagBool, nil
		}
		return append(dst, 0), TagBool, nil
	case TagInt64:
		return appendUint64LE(dst, uint64(v.i64)), TagInt64, nil
	case TagUint64:
		return appendUint64LE(dst, v.u64), TagUint64, nil
	case TagFloat64:
		return appendUint64LE(dst, math.Float64bits(v.f64)), TagFloat64, nil
	case TagString:
		return append(dst, v.str...), TagString, nil
	case TagNested:
		return append(dst, v.raw...), TagNested, nil
	default:
		return nil, 0, errors.Newf("record: Value has unknown tag %d", v.tag)
	}
}

// DecodeField implements Decoder[Value]: it accepts any tag this package
// defines and reconstructs the matching Value.
func (Value) DecodeField(tag Tag, data []byte) (Value, error) {
	switch tag {
	case TagNull:
		return NullValue(), nil
	case TagBool:
		if len(data) != 1 {
			return Value{}, newFieldError(ErrLengthMismatch, "bool field must be 1 byte, got %d", len(data))
		}
		return BoolValue(data[0] != 0), nil
	case TagInt64:
		if len(data) != 8 {
			return Value{}, newFieldError(ErrLengthMismatch, "int64 field must be 8 bytes, got %d", len(data))
		}
		return Int64Value(int64(readUint64LE(data))), nil
	case TagUint64:
		if len(data) != 8 {
			return Value{}, newFieldError(ErrLengthMismatch, "uint64 field must be 8 bytes, got %d", len(data))
		}
		return Uint64Value(readUint64LE(data)), nil
	case TagFloat64:
		if len(data) != 8 {
			return Value{}, newFieldError(ErrLengthMismatch, "float64 field must be 8 bytes, got %d", len(data))
		}
		return Float64Value(math.Float64frombits(readUint64LE(data))), nil
	case TagString:
		return StringValue(string(data)), nil
	case TagNested:
		return Value{tag: TagNested, raw: append([]byte(nil), data...)}, nil
	default:
		return Value{}, newFieldError(ErrUnknownTypeTag, "unknown field type tag %d", tag)
	}
}

// DecodeField dispatches a raw (tag, data) pair to d, the caller-supplied
// Decoder[T]. It only delegates: the tag and length checks are made by d
// itself (Value.DecodeField for the built-in type). The read paths in
// view.go and mutable.go go through DecodeFieldOrAbsent instead.
func DecodeField[T any](d Decoder[T], tag Tag, data []byte) (T, error) {
	return d.DecodeField(tag, data)
}

// DecodeFieldOrAbsent wraps DecodeField with a "returns absent" contract: a
// field whose payload length doesn't match its tag's expected width comes
// back as (zero value, false, nil) rather than an error, the same way the
// typed accessors treat a tag mismatch as absent. Any other decode failure
// (e.g. malformed CBOR) is still a real error.
func DecodeFieldOrAbsent[T any](d Decoder[T], tag Tag, data []byte) (T, bool, error) {
	val, err := d.DecodeField(tag, data)
	if err != nil {
		if IsKind(err, ErrLengthMismatch) {
			var zero T
			return zero, false, nil
		}
		return val, false, err
	}
	return val, true, nil
}

func appendUint64LE(dst []byte, v uint64) []byte {
	return append(dst,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56),
	)
}

func readUint64LE(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
