package section

import (
	"bytes"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
)

var encodingMagic = []byte{'E', 'N'}

// EncodingHeader is the fixed header of the encoding file. The counts and
// offsets are big-endian; the unnamed gaps between the known fields are
// preserved but not interpreted.
type EncodingHeader struct {
	// NumSegments is the number of 4096-byte segments (and directory
	// records) in the file.
	//
	// Offset: 9, Size: 4 bytes, big-endian
	NumSegments uint32

	// SegmentsPos is the byte offset, counted from the end of this header,
	// at which the segment directory begins.
	//
	// Offset: 18, Size: 4 bytes, big-endian
	SegmentsPos uint32

	// Raw preserves the verbatim header bytes, including the undocumented
	// fields, so the header can be written back unchanged.
	Raw [EncodingHeaderSize]byte
}

// Parse decodes the encoding header from the first 0x16 bytes of data.
func (h *EncodingHeader) Parse(data []byte) error {
	if len(data) < EncodingHeaderSize {
		return errs.ErrInvalidHeaderSize
	}
	if !bytes.Equal(data[0:2], encodingMagic) {
		return errs.ErrInvalidMagicNumber
	}

	engine := endian.GetBigEndianEngine()
	h.NumSegments = engine.Uint32(data[9:13])
	h.SegmentsPos = engine.Uint32(data[18:22])
	copy(h.Raw[:], data[:EncodingHeaderSize])

	return nil
}

// Bytes serializes the header from the preserved raw bytes, refreshed
// with the current NumSegments and SegmentsPos values.
func (h *EncodingHeader) Bytes() []byte {
	b := make([]byte, EncodingHeaderSize)
	copy(b, h.Raw[:])
	b[0], b[1] = 'E', 'N'

	engine := endian.GetBigEndianEngine()
	engine.PutUint32(b[9:13], h.NumSegments)
	engine.PutUint32(b[18:22], h.SegmentsPos)

	return b
}

// TotalFileSize returns the number of bytes the loader must read for the
// whole usable encoding file: header, directory gap, directory and the
// segment run.
func (h *EncodingHeader) TotalFileSize() int {
	return EncodingHeaderSize + int(h.SegmentsPos) +
		int(h.NumSegments)*(EncodingSegmentDirSize+EncodingSegmentSize)
}

// EncodingSegmentDir is one record of the segment directory.
type EncodingSegmentDir struct {
	// FirstKey must equal the first encoding key of the first entry inside
	// the referenced segment.
	//
	// Offset: 0, Size: 16 bytes
	FirstKey EncodingHash

	// SegmentHash is the MD5 of the entire 4096-byte segment payload.
	//
	// Offset: 16, Size: 16 bytes
	SegmentHash [HashSize]byte
}

// Parse decodes one directory record.
func (d *EncodingSegmentDir) Parse(data []byte) error {
	if len(data) < EncodingSegmentDirSize {
		return errs.ErrInvalidHeaderSize
	}

	copy(d.FirstKey[:], data[0:HashSize])
	copy(d.SegmentHash[:], data[HashSize:EncodingSegmentDirSize])

	return nil
}

// Bytes serializes the record.
func (d *EncodingSegmentDir) Bytes() []byte {
	b := make([]byte, 0, EncodingSegmentDirSize)
	b = append(b, d.FirstKey[:]...)
	b = append(b, d.SegmentHash[:]...)

	return b
}

// EncodingEntry is one variable-length record inside an encoding segment,
// mapping a content hash to one or more encoding keys.
type EncodingEntry struct {
	// KeyCount is the number of encoding keys that follow the fixed part.
	// A zero key count terminates the segment walk.
	//
	// Offset: 0, Size: 1 byte
	KeyCount uint8

	// FileSize is the plaintext size of the file.
	//
	// Offset: 1, Size: 5 bytes, big-endian
	FileSize uint64

	// ContentKey is the MD5 of the file's plaintext bytes; it keys the
	// encoding map.
	//
	// Offset: 6, Size: 16 bytes
	ContentKey ContentHash

	// Keys holds the KeyCount encoding keys. Keys[0] is authoritative;
	// the rest are alternate encodings of the same content.
	//
	// Offset: 22, Size: KeyCount * 16 bytes
	Keys []EncodingHash
}

// Size returns the on-disk length of the entry.
func (e *EncodingEntry) Size() int {
	return EncodingEntryFixedSize + int(e.KeyCount)*HashSize
}

// Parse decodes one encoding entry from the start of data. The Keys slice
// is freshly allocated; the input is not retained.
func (e *EncodingEntry) Parse(data []byte) error {
	if len(data) < EncodingEntryFixedSize {
		return errs.ErrInvalidHeaderSize
	}

	e.KeyCount = data[0]
	e.FileSize = endian.Uint40BE(data[1:6])
	copy(e.ContentKey[:], data[6:22])

	need := e.Size()
	if len(data) < need {
		return errs.ErrInvalidHeaderSize
	}

	e.Keys = make([]EncodingHash, e.KeyCount)
	for i := range e.Keys {
		copy(e.Keys[i][:], data[EncodingEntryFixedSize+i*HashSize:])
	}

	return nil
}

// Bytes serializes the entry. KeyCount is taken from the length of Keys.
func (e *EncodingEntry) Bytes() []byte {
	b := make([]byte, 0, EncodingEntryFixedSize+len(e.Keys)*HashSize)
	b = append(b, uint8(len(e.Keys)))
	b = endian.AppendUint40BE(b, e.FileSize)
	b = append(b, e.ContentKey[:]...)
	for i := range e.Keys {
		b = append(b, e.Keys[i][:]...)
	}

	return b
}
