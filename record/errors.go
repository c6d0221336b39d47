// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorKind classifies a record-package failure so callers can switch on it
// without string-matching error text.
type ErrorKind int

const (
	// ErrInvalidBuffer means a buffer failed whole-record validation:
	// too short, truncated index, truncated data region, or (in
	// invariants builds) an unsorted index.
	ErrInvalidBuffer ErrorKind = iota
	// ErrTooManyFields means an encode call was given more than
	// MaxFields field values.
	ErrTooManyFields
	// ErrFieldNotFound means a named field does not exist in the record.
	ErrFieldNotFound
	// ErrTypeMismatch means a field exists but its tag doesn't match
	// what the caller's Decoder expected.
	ErrTypeMismatch
	// ErrLengthMismatch means a field's payload length is inconsistent
	// with its declared tag (e.g. a 3-byte int64 payload).
	ErrLengthMismatch
	// ErrFieldExists means AddField was called with a name already
	// present in the record, or Encode/EncodeInto was given two fields
	// whose names hash to the same value.
	ErrFieldExists
	// ErrCBOR means a nested (TagNested) field failed to marshal or
	// unmarshal as CBOR.
	ErrCBOR
	// ErrUnknownTypeTag means a field's tag byte doesn't match any of
	// the seven defined wire types.
	ErrUnknownTypeTag
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidBuffer:
		return "invalid_buffer"
	case ErrTooManyFields:
		return "too_many_fields"
	case ErrFieldNotFound:
		return "field_not_found"
	case ErrTypeMismatch:
		return "type_mismatch"
	case ErrLengthMismatch:
		return "length_mismatch"
	case ErrFieldExists:
		return "field_exists"
	case ErrCBOR:
		return "cbor_error"
	case ErrUnknownTypeTag:
		return "unknown_type_tag"
	default:
		return "unknown"
	}
}

// Error is the error type returned by this package's validation, encode,
// decode and mutation functions. NestedValue and Value.EncodeField return
// plain wrapped errors instead; Encode, EncodeInto, AddField and SetAt
// report those as ErrCBOR. Kind lets callers branch on the failure
// category; the wrapped cause (if any) is reachable via errors.Cause / errors.Is from
// github.com/cockroachdb/errors.
type Error struct {
	Kind ErrorKind
	msg  string
	// cause is optional underlying error context (e.g. a cbor error).
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("record: %s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("record: %s: %s", e.Kind, e.msg)
}

// Unwrap allows errors.Is/errors.As (and github.com/cockroachdb/errors,
// which builds on the same interfaces) to see through to the cause.
func (e *Error) Unwrap() error {
	return e.cause
}

func newFieldError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func newWrappedError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// IsKind reports whether err is a *record.Error of the given kind. It walks
// the error chain with errors.As so wrapped errors (e.g. from
// github.com/cockroachdb/errors.Wrap) still match.
func IsKind(err error, kind ErrorKind) bool {
	var re *Error
	if !errors.As(err, &re) {
		return false
	}
	return re.Kind == kind
}
