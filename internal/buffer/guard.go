package buffer

import (
	"sync"

	"github.com/pagekit-db/pagekit/internal/common"
	"github.com/pagekit-db/pagekit/internal/page"
	"github.com/pagekit-db/pagekit/internal/pageid"
)

// BasicPageGuard is a scoped handle that guarantees exactly one UnpinPage
// call regardless of how many times Drop is invoked.
type BasicPageGuard struct {
	bp      *BufferPoolManager
	id      pageid.PageID
	page    *page.Page
	dirty   bool
	dropped bool
}

// NewBasicPageGuard wraps an already-pinned page returned by FetchPage or
// NewPage.
func NewBasicPageGuard(bp *BufferPoolManager, id pageid.PageID, p *page.Page) *BasicPageGuard {
	return &BasicPageGuard{bp: bp, id: id, page: p}
}

// Page returns the guarded page's buffer.
func (g *BasicPageGuard) Page() *page.Page { return g.page }

// MarkDirty records that the guard's writer mutated the page; Drop will
// unpin with isDirty=true.
func (g *BasicPageGuard) MarkDirty() { g.dirty = true }

// Drop unpins the page exactly once. Safe to call more than once.
func (g *BasicPageGuard) Drop() {
	if g.dropped {
		return
	}
	g.dropped = true
	g.bp.UnpinPage(g.id, g.dirty, common.AccessUnknown)
}

// ReadPageGuard additionally holds a read lock on the page's frame for
// the guard's lifetime.
type ReadPageGuard struct {
	BasicPageGuard
	mu *sync.RWMutex
}

// NewReadPageGuard wraps p, taking mu for reading until Drop.
func NewReadPageGuard(bp *BufferPoolManager, id pageid.PageID, p *page.Page, mu *sync.RWMutex) *ReadPageGuard {
	mu.RLock()
	return &ReadPageGuard{BasicPageGuard: BasicPageGuard{bp: bp, id: id, page: p}, mu: mu}
}

// Drop releases the read lock and then unpins.
func (g *ReadPageGuard) Drop() {
	if g.dropped {
		return
	}
	g.mu.RUnlock()
	g.BasicPageGuard.Drop()
}

// WritePageGuard additionally holds a write lock on the page's frame for
// the guard's lifetime.
type WritePageGuard struct {
	BasicPageGuard
	mu *sync.RWMutex
}

// NewWritePageGuard wraps p, taking mu for writing until Drop.
func NewWritePageGuard(bp *BufferPoolManager, id pageid.PageID, p *page.Page, mu *sync.RWMutex) *WritePageGuard {
	mu.Lock()
	return &WritePageGuard{BasicPageGuard: BasicPageGuard{bp: bp, id: id, page: p, dirty: true}, mu: mu}
}

// Drop releases the write lock and then unpins, always marking dirty.
func (g *WritePageGuard) Drop() {
	if g.dropped {
		return
	}
	g.mu.Unlock()
	g.BasicPageGuard.Drop()
}
