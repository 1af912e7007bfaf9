package section

import (
	"bytes"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
)

var blteMagic = []byte{'B', 'L', 'T', 'E'}

// SpanHeader is the 30-byte header preceding every encoded blob inside a
// data archive. The encoding key is stored byte-reversed.
type SpanHeader struct {
	// KeyReversed is the blob's encoding key with the byte order flipped.
	//
	// Offset: 0, Size: 16 bytes
	KeyReversed [HashSize]byte

	// EncodedSize is the total span length, this header included.
	//
	// Offset: 16, Size: 4 bytes, little-endian
	EncodedSize uint32

	// Flags is unused by the reader and preserved verbatim.
	//
	// Offset: 20, Size: 2 bytes, little-endian
	Flags uint16

	// ChecksumA and ChecksumB are writer-side integrity words; the reader
	// preserves but does not recompute them.
	//
	// Offset: 22 and 26, Size: 4 bytes each, little-endian
	ChecksumA uint32
	ChecksumB uint32
}

// Parse decodes the span header from the first 30 bytes of data.
func (s *SpanHeader) Parse(data []byte) error {
	if len(data) < SpanHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()
	copy(s.KeyReversed[:], data[0:HashSize])
	s.EncodedSize = engine.Uint32(data[16:20])
	s.Flags = engine.Uint16(data[20:22])
	s.ChecksumA = engine.Uint32(data[22:26])
	s.ChecksumB = engine.Uint32(data[26:30])

	return nil
}

// Bytes serializes the span header.
func (s *SpanHeader) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, SpanHeaderSize)
	b = append(b, s.KeyReversed[:]...)
	b = engine.AppendUint32(b, s.EncodedSize)
	b = engine.AppendUint16(b, s.Flags)
	b = engine.AppendUint32(b, s.ChecksumA)
	b = engine.AppendUint32(b, s.ChecksumB)

	return b
}

// Key returns the encoding key in its natural byte order.
func (s *SpanHeader) Key() EncodingHash {
	var h EncodingHash
	for i := range h {
		h[i] = s.KeyReversed[HashSize-1-i]
	}

	return h
}

// SetKey stores the encoding key in the reversed on-disk order.
func (s *SpanHeader) SetKey(h EncodingHash) {
	for i := range h {
		s.KeyReversed[i] = h[HashSize-1-i]
	}
}

// BLTEHeader is the container header of an encoded blob: the magic, the
// chunk-table length and, when the table is present, the per-chunk sizes
// and checksums.
type BLTEHeader struct {
	// HeaderSize is the byte length of the container header counted from
	// the magic. Zero means a single chunk with no table; its frame data
	// starts right after these 8 bytes.
	//
	// Offset: 4, Size: 4 bytes, big-endian
	HeaderSize uint32

	// Chunks is the decoded chunk table; empty when HeaderSize is zero.
	Chunks []BLTEChunk
}

// BLTEChunk is one record of the chunk table.
type BLTEChunk struct {
	// CompressedSize is the frame length including the type byte.
	//
	// Offset: 0, Size: 4 bytes, big-endian
	CompressedSize uint32

	// DecompressedSize is the plaintext length of the chunk.
	//
	// Offset: 4, Size: 4 bytes, big-endian
	DecompressedSize uint32

	// Checksum is the MD5 of the frame bytes (type byte included).
	//
	// Offset: 8, Size: 16 bytes
	Checksum [HashSize]byte
}

// Parse decodes the container header from the start of data and returns
// the number of bytes consumed.
func (h *BLTEHeader) Parse(data []byte) (int, error) {
	if len(data) < BLTEHeaderSize {
		return 0, errs.ErrInvalidHeaderSize
	}
	if !bytes.Equal(data[0:4], blteMagic) {
		return 0, errs.ErrInvalidMagicNumber
	}

	engine := endian.GetBigEndianEngine()
	h.HeaderSize = engine.Uint32(data[4:8])
	h.Chunks = nil

	if h.HeaderSize == 0 {
		return BLTEHeaderSize, nil
	}
	if int(h.HeaderSize) > len(data) || h.HeaderSize < BLTEHeaderSize+4 {
		return 0, errs.ErrBadFormat
	}

	// Flag byte, then a 24-bit big-endian chunk count.
	count := uint32(data[9])<<16 | uint32(data[10])<<8 | uint32(data[11])
	if count == 0 {
		return 0, errs.ErrBadFormat
	}

	tableEnd := BLTEHeaderSize + 4 + int(count)*BLTEChunkInfoSize
	if tableEnd != int(h.HeaderSize) || tableEnd > len(data) {
		return 0, errs.ErrBadFormat
	}

	h.Chunks = make([]BLTEChunk, count)
	pos := BLTEHeaderSize + 4
	for i := range h.Chunks {
		h.Chunks[i].CompressedSize = engine.Uint32(data[pos : pos+4])
		h.Chunks[i].DecompressedSize = engine.Uint32(data[pos+4 : pos+8])
		copy(h.Chunks[i].Checksum[:], data[pos+8:pos+24])
		pos += BLTEChunkInfoSize
	}

	return tableEnd, nil
}

// Bytes serializes the container header. A header with no chunks encodes
// the single-chunk form with HeaderSize zero.
func (h *BLTEHeader) Bytes() []byte {
	engine := endian.GetBigEndianEngine()

	if len(h.Chunks) == 0 {
		b := make([]byte, 0, BLTEHeaderSize)
		b = append(b, blteMagic...)
		b = engine.AppendUint32(b, 0)

		return b
	}

	size := BLTEHeaderSize + 4 + len(h.Chunks)*BLTEChunkInfoSize
	b := make([]byte, 0, size)
	b = append(b, blteMagic...)
	b = engine.AppendUint32(b, uint32(size))
	b = append(b, 0x0F,
		byte(len(h.Chunks)>>16), byte(len(h.Chunks)>>8), byte(len(h.Chunks)))
	for i := range h.Chunks {
		b = engine.AppendUint32(b, h.Chunks[i].CompressedSize)
		b = engine.AppendUint32(b, h.Chunks[i].DecompressedSize)
		b = append(b, h.Chunks[i].Checksum[:]...)
	}

	return b
}
