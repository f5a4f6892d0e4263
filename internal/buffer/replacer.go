// Package buffer implements the LRU-K replacer and the buffer pool
// manager built on top of it. The replacer tracks, for each tracked
// frame, a bounded history of its most recent accesses, and picks an
// eviction victim by backward K-distance rather than plain recency.
package buffer

import (
	"sync"

	"github.com/pagekit-db/pagekit/internal/common"
	"github.com/pagekit-db/pagekit/internal/dbglog"
)

// FrameID identifies a frame slot in [0, poolSize).
type FrameID int

type lruKNode struct {
	// history holds up to k most recent access timestamps, oldest first.
	history   []int64
	evictable bool
}

// LRUKReplacer tracks per-frame access history and selects, on demand,
// the evictable frame with the largest backward K-distance.
type LRUKReplacer struct {
	mu sync.Mutex

	k         int
	capacity  int
	nodes     map[FrameID]*lruKNode
	evictable int
	clock     int64
}

// NewLRUKReplacer returns a replacer tracking up to capacity frames, each
// remembering up to k access timestamps.
func NewLRUKReplacer(capacity, k int) *LRUKReplacer {
	if capacity <= 0 || k <= 0 {
		panic(common.ErrInvalidReplacerSize)
	}
	return &LRUKReplacer{
		k:        k,
		capacity: capacity,
		nodes:    make(map[FrameID]*lruKNode, capacity),
	}
}

// RecordAccess advances the logical clock and appends an access for
// frameID, creating its node if unknown. It is fatal to record an access
// for a frame that is not yet tracked once the tracker is already at
// capacity: the BPM is expected never to let that happen.
func (r *LRUKReplacer) RecordAccess(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameID]
	if !ok {
		if len(r.nodes) >= r.capacity {
			dbglog.Fatalf("buffer: LRU-K replacer at capacity %d, cannot track new frame %d", r.capacity, frameID)
		}
		node = &lruKNode{history: make([]int64, 0, r.k), evictable: true}
		r.nodes[frameID] = node
		r.evictable++
	}

	if len(node.history) >= r.k {
		copy(node.history, node.history[1:])
		node.history = node.history[:len(node.history)-1]
	}
	node.history = append(node.history, r.clock)
	r.clock++
}

// SetEvictable flips whether frameID is a candidate for eviction.
// Idempotent; unknown frames are silently ignored.
func (r *LRUKReplacer) SetEvictable(frameID FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameID]
	if !ok || node.evictable == evictable {
		return
	}

	node.evictable = evictable
	if evictable {
		r.evictable++
	} else {
		r.evictable--
	}
}

// Remove drops frameID from the tracker. Ignored for unknown frames. It
// is a fatal misuse to remove a non-evictable frame.
func (r *LRUKReplacer) Remove(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameID]
	if !ok {
		return
	}
	if !node.evictable {
		dbglog.Fatalf("buffer: Remove called on non-evictable frame %d", frameID)
	}

	delete(r.nodes, frameID)
	r.evictable--
}

// Evict selects and removes the evictable frame with the largest
// backward K-distance, preferring cold frames (history shorter than k)
// over warm ones, breaking ties among cold frames by earliest
// first-access and among warm frames by largest K-distance. Returns
// false if no frame is evictable.
func (r *LRUKReplacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.evictable == 0 {
		return 0, false
	}

	var (
		victim    FrameID
		found     bool
		bestCold  bool
		bestKDist int64
		bestFirst int64
	)

	for id, node := range r.nodes {
		if !node.evictable {
			continue
		}

		cold := len(node.history) < r.k
		first := node.history[0]
		kDist := r.clock - first

		if !found {
			victim, found = id, true
			bestCold, bestKDist, bestFirst = cold, kDist, first
			continue
		}

		switch {
		case cold && !bestCold:
			victim, bestCold, bestKDist, bestFirst = id, cold, kDist, first
		case cold == bestCold && cold:
			if first < bestFirst {
				victim, bestFirst = id, first
			}
		case cold == bestCold && !cold:
			if kDist > bestKDist {
				victim, bestKDist = id, kDist
			}
		}
	}

	delete(r.nodes, victim)
	r.evictable--
	return victim, true
}

// Size returns the number of currently evictable tracked frames.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictable
}
