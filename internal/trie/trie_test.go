package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralSharingAcrossVersions(t *testing.T) {
	t0 := New()
	t1 := Put(t0, "a", 1)
	t2 := Put(t1, "ab", 2)
	t3 := Put(t2, "ac", 3)

	v, ok := Get[int](t1, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = Get[int](t3, "ab")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = Get[int](t2, "ac")
	assert.False(t, ok, "ac was not yet inserted into t2")

	v, ok = Get[int](t3, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// None of the earlier versions were mutated by later Puts.
	_, ok = Get[int](t0, "a")
	assert.False(t, ok)
	_, ok = Get[int](t1, "ab")
	assert.False(t, ok)
}

func TestRemoveCollapsesEmptyPrefixChain(t *testing.T) {
	tr := Put(New(), "hello", 42)

	removed := Remove(tr, "hello")
	assert.Nil(t, removed.root, "removing the only key must null out the root, not leave a dangling chain")

	_, ok := Get[int](removed, "hello")
	assert.False(t, ok)

	// The original trie is untouched.
	v, ok := Get[int](tr, "hello")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestRemoveAbsentKeyReturnsSameTrie(t *testing.T) {
	tr := Put(New(), "a", 1)
	removed := Remove(tr, "nope")
	assert.Same(t, tr.root, removed.root)
}

func TestRemoveCollapsesToSharedAncestor(t *testing.T) {
	tr := Put(New(), "a", 1)
	tr = Put(tr, "ab", 2)

	removed := Remove(tr, "ab")
	v, ok := Get[int](removed, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = Get[int](removed, "ab")
	assert.False(t, ok)
}

func TestRemoveValuedNonLeafKeepsChildren(t *testing.T) {
	tr := Put(New(), "a", 1)
	tr = Put(tr, "ab", 2)

	removed := Remove(tr, "a")
	_, ok := Get[int](removed, "a")
	assert.False(t, ok)

	v, ok := Get[int](removed, "ab")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestGetTypeMismatchReturnsFalse(t *testing.T) {
	tr := Put(New(), "k", "a string")
	_, ok := Get[int](tr, "k")
	assert.False(t, ok, "type mismatch must miss, not panic")
}

func TestPutIsObservationallyIdempotent(t *testing.T) {
	tr := Put(New(), "k", 7)
	again := Put(tr, "k", 7)

	v1, _ := Get[int](tr, "k")
	v2, _ := Get[int](again, "k")
	assert.Equal(t, v1, v2)
}

func TestPutEmptyKeyBindsRoot(t *testing.T) {
	tr := Put(New(), "a", 1)
	tr = Put(tr, "", 99)

	v, ok := Get[int](tr, "")
	require.True(t, ok)
	assert.Equal(t, 99, v)

	v, ok = Get[int](tr, "a")
	require.True(t, ok)
	assert.Equal(t, 1, v, "children of the prior root must survive binding the empty key")
}

func TestGetOnEmptyTrieMisses(t *testing.T) {
	_, ok := Get[int](New(), "anything")
	assert.False(t, ok)
}
