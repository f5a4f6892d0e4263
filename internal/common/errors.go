// Package common holds sentinel errors and constants shared across the
// page, disk, and buffer packages.
package common

import "errors"

var (
	ErrInvalidPageSize     = errors.New("invalid page size")
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrInvalidInitialPages = errors.New("initial pages must be positive")
	ErrMaxMapSizeExceeded  = errors.New("initial size exceeds maximum mapping size")
	ErrPageOutOfBounds     = errors.New("page offset out of bounds")
	ErrFileManagerNil      = errors.New("file manager is nil")
	ErrInvalidPoolSize     = errors.New("invalid pool size")
	ErrInvalidReplacerSize = errors.New("invalid replacer size")
)

// PageSize is the fixed size, in bytes, of every page payload.
const PageSize = 4096

// MaxMapSize bounds how large the backing mmap is ever allowed to grow.
const MaxMapSize = 1 << 34

// AccessType classifies why a page was touched. The BPM's FetchPage and
// UnpinPage accept it and ignore it; the replacer's RecordAccess takes no
// access type, so every access is weighted the same. It exists so callers
// above the BPM can distinguish index scans, sequential scans, and lookups.
type AccessType int

const (
	AccessUnknown AccessType = iota
	AccessLookup
	AccessScan
	AccessIndex
)
