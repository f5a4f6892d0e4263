// Package page defines the fixed-size on-disk/in-memory page payload and
// its header: a PageID, a checksum, and dirty/pinned status bits, packed
// ahead of a raw data buffer.
package page

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pagekit-db/pagekit/internal/common"
	"github.com/pagekit-db/pagekit/internal/pageid"
)

// HeaderSize is the byte size of PageHeader once serialized: PageID(8) +
// Checksum(4) + Flags(2) + padding(2).
const HeaderSize = 16

const (
	flagDirty  uint16 = 1 << 0
	flagPinned uint16 = 1 << 1
)

// PageHeader is the fixed-layout metadata prefix of a serialized page.
type PageHeader struct {
	PageID   pageid.PageID
	Checksum uint32
	Flags    uint16
	_        uint16
}

// SetDirtyFlag marks the header dirty.
func (h *PageHeader) SetDirtyFlag() { h.Flags |= flagDirty }

// ClearDirtyFlag clears the dirty bit.
func (h *PageHeader) ClearDirtyFlag() { h.Flags &^= flagDirty }

// IsDirty reports whether the dirty bit is set.
func (h *PageHeader) IsDirty() bool { return h.Flags&flagDirty != 0 }

// SetPinnedFlag marks the header pinned.
func (h *PageHeader) SetPinnedFlag() { h.Flags |= flagPinned }

// ClearPinnedFlag clears the pinned bit.
func (h *PageHeader) ClearPinnedFlag() { h.Flags &^= flagPinned }

// IsPinned reports whether the pinned bit is set.
func (h *PageHeader) IsPinned() bool { return h.Flags&flagPinned != 0 }

// Page is the unit of storage moved between disk and the buffer pool.
type Page struct {
	Header PageHeader
	Data   [common.PageSize - HeaderSize]byte
}

// New returns a zeroed page stamped with id.
func New(id pageid.PageID) *Page {
	return &Page{Header: PageHeader{PageID: id}}
}

// Serialize packs the page into a PageSize byte slice, computing the
// checksum over the data payload only (the header bytes are not covered).
func (p *Page) Serialize() []byte {
	buf := make([]byte, common.PageSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.Header.PageID))
	binary.LittleEndian.PutUint16(buf[12:14], p.Header.Flags)
	copy(buf[HeaderSize:], p.Data[:])

	p.Header.Checksum = crc32.ChecksumIEEE(buf[HeaderSize:])
	binary.LittleEndian.PutUint32(buf[8:12], p.Header.Checksum)

	return buf
}

// Deserialize unpacks a PageSize byte slice into a Page, validating the
// stored checksum against the recomputed one over the data payload.
func Deserialize(data []byte) (*Page, error) {
	if len(data) != common.PageSize {
		return nil, common.ErrInvalidPageSize
	}

	p := &Page{}
	p.Header.PageID = pageid.PageID(binary.LittleEndian.Uint64(data[0:8]))
	p.Header.Checksum = binary.LittleEndian.Uint32(data[8:12])
	p.Header.Flags = binary.LittleEndian.Uint16(data[12:14])
	copy(p.Data[:], data[HeaderSize:])

	if got := crc32.ChecksumIEEE(data[HeaderSize:]); got != p.Header.Checksum {
		return nil, common.ErrChecksumMismatch
	}

	return p, nil
}
