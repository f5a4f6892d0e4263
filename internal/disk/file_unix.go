//go:build unix

package disk

import (
	"fmt"

	"github.com/pagekit-db/pagekit/internal/common"
	"golang.org/x/sys/unix"
)

// mmap sets the backing file's length to size (growing or truncating it)
// and maps it read/write via
// golang.org/x/sys/unix.
func mmap(fm *FileManager, size int64) error {
	if fm.File == nil {
		return common.ErrFileManagerNil
	}
	if size <= 0 {
		return common.ErrInvalidInitialPages
	}
	if size > common.MaxMapSize {
		return common.ErrMaxMapSizeExceeded
	}

	if err := fm.File.Truncate(size); err != nil {
		return fmt.Errorf("truncate to %d: %w", size, err)
	}

	data, err := unix.Mmap(int(fm.File.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}

	fm.Data = data
	fm.Size = size
	return nil
}

// munmap unmaps the current mapping, if any.
func munmap(fm *FileManager) error {
	if fm.File == nil {
		return common.ErrFileManagerNil
	}
	if fm.Data == nil {
		return nil
	}

	if err := unix.Munmap(fm.Data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}

	fm.Data = nil
	fm.Size = 0
	return nil
}
