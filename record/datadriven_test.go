// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

// parseFieldLine parses one "name tag value" line into a Field, matching
// the tag vocabulary: i64, u64, f64, bool, str, null.
func parseFieldLine(t *testing.T, line string) Field {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		t.Fatalf("malformed field line %q", line)
	}
	name, tag := parts[0], parts[1]
	var value string
	if len(parts) > 2 {
		value = strings.Join(parts[2:], " ")
	}
	switch tag {
	case "null":
		return F(name, NullValue())
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			t.Fatalf("bad bool %q: %v", value, err)
		}
		return F(name, BoolValue(b))
	case "i64":
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			t.Fatalf("bad i64 %q: %v", value, err)
		}
		return F(name, Int64Value(i))
	case "u64":
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			t.Fatalf("bad u64 %q: %v", value, err)
		}
		return F(name, Uint64Value(u))
	case "f64":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			t.Fatalf("bad f64 %q: %v", value, err)
		}
		return F(name, Float64Value(f))
	case "str":
		return F(name, StringValue(value))
	default:
		t.Fatalf("unknown tag %q", tag)
		return Field{}
	}
}

// isSorted reports whether buf's index is sorted by name_hash, independent
// of the invariants build tag (the datadriven suite wants to assert I1
// regardless of build mode).
func isSorted(buf []byte) bool {
	n := readFieldCount(buf)
	var prev uint64
	for i := 0; i < n; i++ {
		e := readIndexEntry(buf, i)
		if i > 0 && e.NameHash < prev {
			return false
		}
		prev = e.NameHash
	}
	return true
}

func TestDataDrivenEncode(t *testing.T) {
	datadriven.Walk(t, "testdata/encode", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "encode":
				var fields []Field
				for _, line := range strings.Split(strings.TrimRight(d.Input, "\n"), "\n") {
					if strings.TrimSpace(line) == "" {
						continue
					}
					fields = append(fields, parseFieldLine(t, line))
				}
				buf, err := Encode(fields)
				if err != nil {
					return fmt.Sprintf("error: %s\n", errorKindOf(err))
				}
				return fmt.Sprintf("field_count: %d\nbuffer_length: %d\nsorted: %t\n",
					readFieldCount(buf), len(buf), isSorted(buf))

			case "encode_count":
				var n int
				d.ScanArgs(t, "n", &n)
				fields := make([]Field, n)
				for i := range fields {
					fields[i] = F(fieldName(i), Int64Value(int64(i)))
				}
				buf, err := Encode(fields)
				if err != nil {
					return fmt.Sprintf("error: %s\n", errorKindOf(err))
				}
				return fmt.Sprintf("field_count: %d\nbuffer_length: %d\nsorted: %t\n",
					readFieldCount(buf), len(buf), isSorted(buf))

			default:
				t.Fatalf("unknown command %q", d.Cmd)
				return ""
			}
		})
	})
}

func errorKindOf(err error) string {
	var re *Error
	if ok := errorAs(err, &re); ok {
		return re.Kind.String()
	}
	return "unknown"
}

func errorAs(err error, target **Error) bool {
	if e, ok := err.(*Error); ok {
		*target = e
		return true
	}
	return false
}
