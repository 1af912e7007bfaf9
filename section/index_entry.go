package section

import (
	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
)

// IndexEntry is one fixed-size record of an index file. It locates a
// single encoded blob inside a numbered data archive.
type IndexEntry struct {
	// Key is the truncated encoding key of the blob.
	//
	// Offset: 0, Size: 9 bytes
	Key IndexKey

	// Packed combines the archive number (high bits) and the byte offset
	// within that archive (low SegmentBits bits). The split is governed by
	// the header's SegmentBits and is not known at record level, so the
	// packed form is kept and unpacked on demand.
	//
	// Offset: 9, Size: 5 bytes, big-endian
	Packed uint64

	// Span is the encoded byte length of the blob.
	//
	// Offset: 14, Size: 4 bytes, big-endian
	Span uint32
}

// Parse decodes one index entry from the first 18 bytes of data.
func (e *IndexEntry) Parse(data []byte) error {
	if len(data) < IndexEntrySize {
		return errs.ErrInvalidHeaderSize
	}

	copy(e.Key[:], data[0:IndexKeySize])
	e.Packed = endian.Uint40BE(data[9:14])
	e.Span = endian.GetBigEndianEngine().Uint32(data[14:18])

	return nil
}

// Bytes serializes the entry.
func (e *IndexEntry) Bytes() []byte {
	b := make([]byte, 0, IndexEntrySize)
	b = append(b, e.Key[:]...)
	b = endian.AppendUint40BE(b, e.Packed)
	b = endian.GetBigEndianEngine().AppendUint32(b, e.Span)

	return b
}

// Archive returns the archive number encoded in the high bits of the
// packed field under the given segment-bit split.
func (e *IndexEntry) Archive(segmentBits uint8) uint32 {
	return uint32(e.Packed >> segmentBits)
}

// Offset returns the byte offset within the archive encoded in the low
// SegmentBits bits of the packed field.
func (e *IndexEntry) Offset(segmentBits uint8) uint64 {
	return e.Packed & ((uint64(1) << segmentBits) - 1)
}

// PackLocator combines an archive number and an offset into the on-disk
// packed form.
func PackLocator(archive uint32, offset uint64, segmentBits uint8) uint64 {
	return uint64(archive)<<segmentBits | offset
}
