// Package xhash provides the single, fixed 64-bit non-cryptographic hash
// used to turn field names into the values stored in a record's index.
// Every writer and reader of a record buffer must agree on this function,
// so it lives in one place rather than being pluggable.
package xhash

import "github.com/cespare/xxhash/v2"

// Name hashes a field name to the 64-bit value stored in a record's index
// entry. It is xxh64 with the library's default (zero) seed.
func Name(name string) uint64 {
	return xxhash.Sum64String(name)
}
