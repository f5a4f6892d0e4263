//go:build windows

package disk

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/pagekit-db/pagekit/internal/common"
)

// mmap sets the backing file's length to size (growing or truncating it)
// and maps it read/write via
// CreateFileMapping + MapViewOfFile, the approach
// https://github.com/etcd-io/bbolt/blob/main/bolt_windows.go uses.
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

	sizehi := uint32(size >> 32)
	sizelo := uint32(size)
	h, err := syscall.CreateFileMapping(syscall.Handle(fm.File.Fd()), nil, syscall.PAGE_READWRITE, sizehi, sizelo, nil)
	if err != nil {
		return fmt.Errorf("create mapping: %w", err)
	}

	ptr, err := syscall.MapViewOfFile(h, syscall.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		if closeErr := syscall.CloseHandle(h); closeErr != nil {
			return os.NewSyscallError("CloseHandle", closeErr)
		}
		return fmt.Errorf("map view: %w", err)
	}

	fm.Data = (*[common.MaxMapSize]byte)(unsafe.Pointer(ptr))[:size:size]
	fm.Size = size
	fm.mapHandle = uintptr(h)
	return nil
}

func munmap(fm *FileManager) error {
	if fm.File == nil {
		return common.ErrFileManagerNil
	}
	if fm.Data == nil {
		return nil
	}

	addr := uintptr(unsafe.Pointer(&fm.Data[0]))
	var err error
	if e := syscall.UnmapViewOfFile(addr); e != nil {
		err = fmt.Errorf("unmap view: %w", e)
	}
	if fm.mapHandle != 0 {
		if e := syscall.CloseHandle(syscall.Handle(fm.mapHandle)); e != nil {
			err = fmt.Errorf("close handle: %w", e)
		}
		fm.mapHandle = 0
	}

	fm.Data = nil
	fm.Size = 0
	return err
}
