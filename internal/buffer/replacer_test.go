package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUKReplacerColdOverWarm(t *testing.T) {
	r := NewLRUKReplacer(8, 2)

	for _, seq := range []FrameID{1, 2, 3, 4, 1, 2, 3, 4} {
		r.RecordAccess(seq)
	}
	for _, id := range []FrameID{1, 2, 3, 4} {
		r.SetEvictable(id, true)
	}

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(1), victim, "frame 1 has the largest backward K-distance")

	r.RecordAccess(5)
	r.SetEvictable(5, true)

	victim, ok = r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(5), victim, "cold frame 5 beats all warm frames")
}

func TestLRUKReplacerEarliestFirstAccessBreaksColdTies(t *testing.T) {
	r := NewLRUKReplacer(4, 3)

	r.RecordAccess(10)
	r.RecordAccess(20)
	r.SetEvictable(10, true)
	r.SetEvictable(20, true)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, FrameID(10), victim, "both cold; frame 10 was accessed first")
}

func TestLRUKReplacerSizeTracksEvictableCount(t *testing.T) {
	r := NewLRUKReplacer(4, 2)
	assert.Equal(t, 0, r.Size())

	r.RecordAccess(1)
	assert.Equal(t, 1, r.Size())

	r.SetEvictable(1, false)
	assert.Equal(t, 0, r.Size())

	r.SetEvictable(1, false) // idempotent
	assert.Equal(t, 0, r.Size())

	r.SetEvictable(1, true)
	assert.Equal(t, 1, r.Size())
}

func TestLRUKReplacerRemoveAndUnknownFrames(t *testing.T) {
	r := NewLRUKReplacer(4, 2)

	r.SetEvictable(99, true) // unknown frame, silently ignored
	r.Remove(99)             // unknown frame, silently ignored

	r.RecordAccess(1)
	r.Remove(1) // evictable by default, fine

	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestLRUKReplacerEvictRemovesTrackedFrame(t *testing.T) {
	r := NewLRUKReplacer(4, 2)
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)

	victim, ok := r.Evict()
	require.True(t, ok)

	// The evicted frame is no longer tracked: setting it evictable again
	// has no effect because it is unknown.
	r.SetEvictable(victim, false)
	assert.Equal(t, 1, r.Size())
}
