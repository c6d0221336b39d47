// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package spookydb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteCachePeekDoesNotPromote(t *testing.T) {
	c, err := newByteCache(2)
	require.NoError(t, err)

	c.put("t", "a", []byte("A"))
	c.put("t", "b", []byte("B"))

	// Peeking "a" repeatedly must not keep it warm enough to survive
	// eviction — only writes promote.
	for i := 0; i < 5; i++ {
		_, ok := c.peek("t", "a")
		require.True(t, ok)
	}

	c.put("t", "c", []byte("C"))

	_, aStillThere := c.peek("t", "a")
	require.False(t, aStillThere, "peek must not have promoted 'a', so it should have been evicted")

	_, bThere := c.peek("t", "b")
	_, cThere := c.peek("t", "c")
	require.True(t, bThere)
	require.True(t, cThere)
}

func TestByteCachePutCopiesBuffer(t *testing.T) {
	c, err := newByteCache(4)
	require.NoError(t, err)

	buf := []byte("original")
	c.put("t", "a", buf)

	// Mutating the caller's buffer after put must not affect the cached
	// entry — put must have stored a private copy.
	copy(buf, "mutated!")

	got, ok := c.peek("t", "a")
	require.True(t, ok)
	require.Equal(t, "original", string(got))
}

func TestByteCacheRemove(t *testing.T) {
	c, err := newByteCache(4)
	require.NoError(t, err)
	c.put("t", "a", []byte("A"))
	c.remove("t", "a")
	_, ok := c.peek("t", "a")
	require.False(t, ok)
}

func TestMembershipAddRemoveContains(t *testing.T) {
	m := newMembership()
	require.False(t, m.contains("t", "a"))
	m.add("t", "a")
	require.True(t, m.contains("t", "a"))
	m.remove("t", "a")
	require.False(t, m.contains("t", "a"))
}
