package buffer

import (
	"sync"

	"github.com/pagekit-db/pagekit/internal/common"
	"github.com/pagekit-db/pagekit/internal/dbglog"
	"github.com/pagekit-db/pagekit/internal/disk"
	"github.com/pagekit-db/pagekit/internal/page"
	"github.com/pagekit-db/pagekit/internal/pageid"
)

// frame is the BPM's per-slot bookkeeping: the page currently resident
// (nil if free), its pin count, and its dirty flag.
type frame struct {
	page     *page.Page
	pinCount int32
	dirty    bool
	mu       sync.RWMutex
}

// BufferPoolManager owns a fixed array of frames, maps page identifiers
// to frames, and drives the disk scheduler for page I/O.
type BufferPoolManager struct {
	mu sync.Mutex

	poolSize  int
	frames    []frame
	pageTable map[pageid.PageID]FrameID

	// The free list is an intrusive singly-linked FIFO over frame indices:
	// removal at freeHead and insertion at freeTail are O(1), unlike the
	// slice-splice a plain []FrameID queue would need.
	nextFree []FrameID
	freeHead FrameID
	freeTail FrameID

	replacer  *LRUKReplacer
	scheduler *disk.Scheduler
	allocator *pageid.Allocator
}

const noFrame FrameID = -1

// New returns a BufferPoolManager with poolSize frames, an LRU-K replacer
// configured for k historical accesses, backed by scheduler for disk I/O.
func New(poolSize int, k int, scheduler *disk.Scheduler) *BufferPoolManager {
	if poolSize <= 0 {
		panic(common.ErrInvalidPoolSize)
	}

	next := make([]FrameID, poolSize)
	for i := range next {
		next[i] = FrameID(i + 1)
	}
	next[poolSize-1] = noFrame

	return &BufferPoolManager{
		poolSize:  poolSize,
		frames:    make([]frame, poolSize),
		pageTable: make(map[pageid.PageID]FrameID, poolSize),
		nextFree:  next,
		freeHead:  0,
		freeTail:  FrameID(poolSize - 1),
		replacer:  NewLRUKReplacer(poolSize, k),
		scheduler: scheduler,
		allocator: pageid.NewAllocator(),
	}
}

// popFree removes and returns the head of the free list: frames are handed
// out FIFO, in ascending index order on first use.
func (bp *BufferPoolManager) popFree() (FrameID, bool) {
	if bp.freeHead == noFrame {
		return noFrame, false
	}
	id := bp.freeHead
	bp.freeHead = bp.nextFree[id]
	bp.nextFree[id] = noFrame
	if bp.freeHead == noFrame {
		bp.freeTail = noFrame
	}
	return id, true
}

// pushFree appends id to the tail of the free list.
func (bp *BufferPoolManager) pushFree(id FrameID) {
	bp.nextFree[id] = noFrame
	if bp.freeTail == noFrame {
		bp.freeHead, bp.freeTail = id, id
		return
	}
	bp.nextFree[bp.freeTail] = id
	bp.freeTail = id
}

// selectFrame returns a frame ready for reuse: the head of the free
// list, or an eviction victim with its prior dirty occupant written back
// first. Caller must hold mu. ok is false only when the pool is full of
// pinned frames.
func (bp *BufferPoolManager) selectFrame() (FrameID, bool) {
	if id, ok := bp.popFree(); ok {
		return id, true
	}

	victim, ok := bp.replacer.Evict()
	if !ok {
		return 0, false
	}

	f := &bp.frames[victim]
	if f.dirty {
		bp.writeBack(f)
	}
	if f.page != nil {
		delete(bp.pageTable, f.page.Header.PageID)
	}
	return victim, true
}

// writeBack synchronously flushes f's current occupant to disk. A
// failed write is a fatal assertion: the BPM cannot preserve its
// invariants if a dirty page cannot be evicted.
func (bp *BufferPoolManager) writeBack(f *frame) {
	req := disk.NewRequest(f.page.Header.PageID, true, f.page)
	bp.scheduler.Schedule(req)
	if ok := <-req.Done; !ok {
		dbglog.Fatalf("buffer: dirty writeback for page %d failed", f.page.Header.PageID)
	}
	f.dirty = false
	f.page.Header.ClearDirtyFlag()
}

// NewPage allocates a fresh page identifier, reserves a frame, pins it,
// and returns the identifier and a handle to the frame's page. Returns
// ok=false only when every frame is pinned and the free list is empty;
// in that case no identifier is allocated and no state changes.
func (bp *BufferPoolManager) NewPage() (pageid.PageID, *page.Page, bool) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.selectFrame()
	if !ok {
		return pageid.Invalid, nil, false
	}

	id := bp.allocator.Next()
	f := &bp.frames[frameID]
	f.page = page.New(id)
	f.pinCount = 1
	f.dirty = false

	bp.pageTable[id] = frameID
	bp.replacer.RecordAccess(frameID)
	bp.replacer.SetEvictable(frameID, false)

	return id, f.page, true
}

// FetchPage returns the page identified by id, pinning it. On a miss it
// selects a frame, issues a synchronous disk read, and installs the
// mapping. Returns ok=false under the same exhaustion condition as
// NewPage.
func (bp *BufferPoolManager) FetchPage(id pageid.PageID, _ common.AccessType) (*page.Page, bool) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameID, resident := bp.pageTable[id]; resident {
		f := &bp.frames[frameID]
		f.pinCount++
		bp.replacer.RecordAccess(frameID)
		bp.replacer.SetEvictable(frameID, false)
		return f.page, true
	}

	frameID, ok := bp.selectFrame()
	if !ok {
		return nil, false
	}

	p := page.New(id)
	req := disk.NewRequest(id, false, p)
	bp.scheduler.Schedule(req)
	if ok := <-req.Done; !ok {
		dbglog.Fatalf("buffer: read of page %d failed", id)
	}

	f := &bp.frames[frameID]
	f.page = p
	f.pinCount = 1
	f.dirty = false

	bp.pageTable[id] = frameID
	bp.replacer.RecordAccess(frameID)
	bp.replacer.SetEvictable(frameID, false)

	return f.page, true
}

// UnpinPage decrements the pin count of a resident page, optionally
// marking it dirty. Returns false if the page is not resident or is
// already unpinned. When the pin count reaches zero the frame becomes
// evictable.
func (bp *BufferPoolManager) UnpinPage(id pageid.PageID, isDirty bool, _ common.AccessType) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, resident := bp.pageTable[id]
	if !resident {
		return false
	}

	f := &bp.frames[frameID]
	if isDirty {
		f.dirty = true
		f.page.Header.SetDirtyFlag()
	}

	if f.pinCount <= 0 {
		return false
	}

	f.pinCount--
	if f.pinCount == 0 {
		bp.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes the resident page id's current bytes to disk
// unconditionally, regardless of its dirty flag, then clears it. Returns
// false if the page is not resident.
func (bp *BufferPoolManager) FlushPage(id pageid.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, resident := bp.pageTable[id]
	if !resident {
		return false
	}

	f := &bp.frames[frameID]
	req := disk.NewRequest(id, true, f.page)
	bp.scheduler.Schedule(req)
	if ok := <-req.Done; !ok {
		dbglog.Fatalf("buffer: flush of page %d failed", id)
	}

	f.dirty = false
	f.page.Header.ClearDirtyFlag()
	return true
}

// FlushAllPages flushes every frame index, including ones holding
// INVALID, unconditionally. disk.Scheduler treats an INVALID request as
// a harmless no-op, so this sweep cannot corrupt state even though it
// addresses unoccupied frames.
func (bp *BufferPoolManager) FlushAllPages() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for i := range bp.frames {
		f := &bp.frames[i]
		id := pageid.Invalid
		p := f.page
		if p != nil {
			id = p.Header.PageID
		} else {
			p = page.New(pageid.Invalid)
		}

		req := disk.NewRequest(id, true, p)
		bp.scheduler.Schedule(req)
		if ok := <-req.Done; !ok {
			dbglog.Fatalf("buffer: flush-all failed on frame %d (page %d)", i, id)
		}

		if f.page != nil {
			f.dirty = false
			f.page.Header.ClearDirtyFlag()
		}
	}
}

// DeletePage removes page id from the pool, returning it to the free
// list. Returns true vacuously if the page is not resident. Returns
// false without changing state if the page is resident but pinned.
func (bp *BufferPoolManager) DeletePage(id pageid.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, resident := bp.pageTable[id]
	if !resident {
		return true
	}

	f := &bp.frames[frameID]
	if f.pinCount > 0 {
		return false
	}

	bp.pushFree(frameID)
	bp.replacer.Remove(frameID)

	f.page = nil
	f.dirty = false
	delete(bp.pageTable, id)
	bp.allocator.Deallocate(id)

	return true
}

// PoolSize returns the number of frames managed by the pool.
func (bp *BufferPoolManager) PoolSize() int { return bp.poolSize }

// frameMutex returns the per-frame lock backing id's resident frame. id
// must already be pinned by the caller, so its frame cannot be reused out
// from under this lookup.
func (bp *BufferPoolManager) frameMutex(id pageid.PageID) *sync.RWMutex {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	frameID := bp.pageTable[id]
	return &bp.frames[frameID].mu
}

// FetchPageBasic fetches id and wraps it in a BasicPageGuard, so the
// caller can rely on Drop to unpin exactly once instead of calling
// UnpinPage directly.
func (bp *BufferPoolManager) FetchPageBasic(id pageid.PageID, accessType common.AccessType) (*BasicPageGuard, bool) {
	p, ok := bp.FetchPage(id, accessType)
	if !ok {
		return nil, false
	}
	return NewBasicPageGuard(bp, id, p), true
}

// FetchPageRead fetches id and wraps it in a ReadPageGuard holding the
// frame's read lock until Drop.
func (bp *BufferPoolManager) FetchPageRead(id pageid.PageID, accessType common.AccessType) (*ReadPageGuard, bool) {
	p, ok := bp.FetchPage(id, accessType)
	if !ok {
		return nil, false
	}
	return NewReadPageGuard(bp, id, p, bp.frameMutex(id)), true
}

// FetchPageWrite fetches id and wraps it in a WritePageGuard holding the
// frame's write lock until Drop. The guard always unpins dirty, since a
// write-locked page is assumed mutated.
func (bp *BufferPoolManager) FetchPageWrite(id pageid.PageID, accessType common.AccessType) (*WritePageGuard, bool) {
	p, ok := bp.FetchPage(id, accessType)
	if !ok {
		return nil, false
	}
	return NewWritePageGuard(bp, id, p, bp.frameMutex(id)), true
}

// NewPageGuarded allocates a page the way NewPage does, returning it
// already wrapped in a BasicPageGuard.
func (bp *BufferPoolManager) NewPageGuarded() (pageid.PageID, *BasicPageGuard, bool) {
	id, p, ok := bp.NewPage()
	if !ok {
		return pageid.Invalid, nil, false
	}
	return id, NewBasicPageGuard(bp, id, p), true
}
