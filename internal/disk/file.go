// Package disk provides the asynchronous I/O layer the buffer pool
// manager drives: a mmap-backed page file (FileManager) plus a Scheduler
// that exposes a Schedule(request) -> future<bool> style contract via a
// per-request completion channel.
package disk

import (
	"errors"
	"fmt"
	"os"

	"github.com/pagekit-db/pagekit/internal/common"
	"github.com/pagekit-db/pagekit/internal/page"
	"github.com/pagekit-db/pagekit/internal/pageid"
)

// FileManager memory-maps a single page file and serves page-granularity
// reads and writes against the mapping, growing it on demand.
type FileManager struct {
	File *os.File
	Data []byte
	Size int64

	// mapHandle is only meaningful on Windows, where munmap needs the
	// mapping object handle alongside the view pointer; it is unused (and
	// harmless) on Unix.
	mapHandle uintptr
}

// NewFileManager opens (creating if necessary) path, sets its length to
// exactly initialPages pages (truncating a longer file), and maps it.
func NewFileManager(path string, initialPages int) (*FileManager, error) {
	if initialPages <= 0 {
		return nil, common.ErrInvalidInitialPages
	}

	initialSize := int64(initialPages) * int64(common.PageSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	fm := &FileManager{File: f}
	if err := mmap(fm, initialSize); err != nil {
		f.Close()
		return nil, fmt.Errorf("map file: %w", err)
	}

	return fm, nil
}

// ReadPage deserializes the page at pageId from the mapping.
func (fm *FileManager) ReadPage(id pageid.PageID) (*page.Page, error) {
	offset := int64(id) * int64(common.PageSize)
	if offset < 0 || offset+common.PageSize > fm.Size {
		return nil, common.ErrPageOutOfBounds
	}

	p, err := page.Deserialize(fm.Data[offset : offset+common.PageSize])
	if err != nil {
		return nil, fmt.Errorf("deserialize page %d: %w", id, err)
	}
	return p, nil
}

// WritePage serializes p and writes it at its page id's offset, growing
// the mapping first if necessary.
func (fm *FileManager) WritePage(p *page.Page) error {
	offset := int64(p.Header.PageID) * int64(common.PageSize)
	if offset < 0 {
		return common.ErrPageOutOfBounds
	}

	if offset+common.PageSize > fm.Size {
		newSize := fm.Size * 2
		if min := offset + common.PageSize; newSize < min {
			newSize = min
		}
		if newSize > common.MaxMapSize {
			return common.ErrMaxMapSizeExceeded
		}

		if err := munmap(fm); err != nil {
			return fmt.Errorf("unmap file: %w", err)
		}
		if err := mmap(fm, newSize); err != nil {
			return fmt.Errorf("map file: %w", err)
		}
	}

	copy(fm.Data[offset:], p.Serialize())
	return nil
}

// Close unmaps and closes the backing file. Idempotent.
func (fm *FileManager) Close() error {
	if fm == nil || fm.File == nil {
		return nil
	}

	var err error
	if e := munmap(fm); e != nil {
		err = errors.Join(err, fmt.Errorf("unmap file: %w", e))
	}
	if e := fm.File.Sync(); e != nil {
		err = errors.Join(err, fmt.Errorf("sync file: %w", e))
	}
	if e := fm.File.Close(); e != nil {
		err = errors.Join(err, fmt.Errorf("close file: %w", e))
	}
	fm.File = nil
	return err
}
