// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package spookydb

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies a spookydb failure.
type Kind int

const (
	// KindStore covers failures from the underlying bbolt database:
	// open failures, transaction failures, I/O errors.
	KindStore Kind = iota
	// KindSerialization covers failures decoding or encoding a record
	// buffer; it wraps a *record.Error.
	KindSerialization
	// KindInvalidKey covers malformed table names (empty, or containing
	// the ':' table/id separator) rejected before ever touching the
	// store.
	KindInvalidKey
)

func (k Kind) String() string {
	switch k {
	case KindStore:
		return "store"
	case KindSerialization:
		return "serialization"
	case KindInvalidKey:
		return "invalid_key"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every exported DB method.
type Error struct {
	Kind Kind
	msg  string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("spookydb: %s: %s: %v", e.Kind, e.msg, e.cause)
	}
	return fmt.Sprintf("spookydb: %s: %s", e.Kind, e.msg)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// IsKind reports whether err is a *spookydb.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == kind
}
