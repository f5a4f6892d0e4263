package disk

import (
	"github.com/pagekit-db/pagekit/internal/dbglog"
	"github.com/pagekit-db/pagekit/internal/page"
	"github.com/pagekit-db/pagekit/internal/pageid"
)

// Request bundles one disk operation: a direction (read or write), the
// page identifier it addresses, the page whose Data is read into or
// written from, and a completion channel the issuer awaits as a future.
type Request struct {
	PageID pageid.PageID
	Write  bool
	Page   *page.Page
	Done   chan bool
}

// NewRequest returns a Request with a fresh, single-shot Done channel.
func NewRequest(id pageid.PageID, write bool, p *page.Page) Request {
	return Request{PageID: id, Write: write, Page: p, Done: make(chan bool, 1)}
}

// Scheduler serializes all page I/O for one FileManager through a single
// worker goroutine, so two disk operations never overlap.
type Scheduler struct {
	fm      *FileManager
	reqs    chan Request
	closeCh chan struct{}
}

// NewScheduler starts a Scheduler backed by fm with the given request
// queue depth.
func NewScheduler(fm *FileManager, queueDepth int) *Scheduler {
	s := &Scheduler{
		fm:      fm,
		reqs:    make(chan Request, queueDepth),
		closeCh: make(chan struct{}),
	}
	go s.run()
	return s
}

// Schedule enqueues req and returns without waiting for it to run; it
// blocks only while the request queue is full. The caller reads req.Done
// for the completion signal.
func (s *Scheduler) Schedule(req Request) {
	s.reqs <- req
}

// Close stops the worker goroutine. Pending requests already enqueued
// are still drained before the worker exits.
func (s *Scheduler) Close() {
	close(s.reqs)
	<-s.closeCh
}

func (s *Scheduler) run() {
	defer close(s.closeCh)
	for req := range s.reqs {
		req.Done <- s.apply(req)
	}
}

// apply executes req against fm. A request naming the INVALID page id is
// treated as a harmless no-op rather than a fault, so a caller sweeping
// every frame index unconditionally (occupied or not) never trips an
// assertion here.
func (s *Scheduler) apply(req Request) bool {
	if req.PageID == pageid.Invalid {
		dbglog.Debugf("disk: skipping request for INVALID page id")
		return true
	}

	if req.Write {
		req.Page.Header.PageID = req.PageID
		if err := s.fm.WritePage(req.Page); err != nil {
			dbglog.Errorf("disk: write page %d failed: %v", req.PageID, err)
			return false
		}
		return true
	}

	p, err := s.fm.ReadPage(req.PageID)
	if err != nil {
		dbglog.Errorf("disk: read page %d failed: %v", req.PageID, err)
		return false
	}
	*req.Page = *p
	return true
}
