package section

import (
	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/internal/jenkins"
)

// BlockPrefix is the {size, hash} pair preceding each block of a V2 index
// file. The hash is the high word of a lookup3 digest over the BlockSize
// bytes that follow the prefix.
type BlockPrefix struct {
	// BlockSize is the byte length of the block that follows.
	//
	// Offset: 0, Size: 4 bytes, little-endian
	BlockSize uint32

	// BlockHash is the expected lookup3 high word for the block.
	//
	// Offset: 4, Size: 4 bytes, little-endian
	BlockHash uint32
}

// Parse decodes a block prefix from the first 8 bytes of data.
func (p *BlockPrefix) Parse(data []byte) error {
	if len(data) < BlockPrefixSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()
	p.BlockSize = engine.Uint32(data[0:4])
	p.BlockHash = engine.Uint32(data[4:8])

	return nil
}

// Bytes serializes the prefix.
func (p *BlockPrefix) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, BlockPrefixSize)
	b = engine.AppendUint32(b, p.BlockSize)
	b = engine.AppendUint32(b, p.BlockHash)

	return b
}

// IndexHeaderV1 is the self-hashed header of a generation-1 index file
// ("data.iXY"). All fields are little-endian.
//
// The Field* members carry values whose semantics were never published;
// they are preserved verbatim and only range-checked where known builds
// require it.
type IndexHeaderV1 struct {
	// Field0 must equal IndexFormatV1 (0x0005).
	//
	// Offset: 0, Size: 2 bytes
	Field0 uint16

	// KeyIndex is the bucket this index file covers; it must match the
	// bucket digit of the file name.
	//
	// Offset: 2, Size: 1 byte
	KeyIndex uint8

	// Align3 pads the key index to a 4-byte boundary.
	//
	// Offset: 3, Size: 1 byte
	Align3 uint8

	// Field4 is unused by the parser.
	//
	// Offset: 4, Size: 4 bytes
	Field4 uint32

	// Field8 must be nonzero; its meaning is unknown.
	//
	// Offset: 8, Size: 8 bytes
	Field8 uint64

	// MaxFileOffset bounds the packed archive+offset value of every entry
	// in this bucket.
	//
	// Offset: 16, Size: 8 bytes
	MaxFileOffset uint64

	// SpanSizeBytes is the on-disk width of the span size field (always 4).
	//
	// Offset: 24, Size: 1 byte
	SpanSizeBytes uint8

	// SpanOffsBytes is the on-disk width of the packed offset field
	// (always 5).
	//
	// Offset: 25, Size: 1 byte
	SpanOffsBytes uint8

	// KeyBytes is the truncated key width (always 9).
	//
	// Offset: 26, Size: 1 byte
	KeyBytes uint8

	// SegmentBits is the number of low bits of the packed field that hold
	// the file offset; the remaining high bits hold the archive number.
	//
	// Offset: 27, Size: 1 byte
	SegmentBits uint8

	// KeyCount1 and KeyCount2 are the lengths of the two entry groups that
	// follow the header contiguously.
	//
	// Offset: 28 and 32, Size: 4 bytes each
	KeyCount1 uint32
	KeyCount2 uint32

	// KeysHash1 and KeysHash2 are lookup3 digests of the two entry groups.
	//
	// Offset: 36 and 40, Size: 4 bytes each
	KeysHash1 uint32
	KeysHash2 uint32

	// HeaderHash is the lookup3 digest of this header with the hash field
	// itself zeroed.
	//
	// Offset: 44, Size: 4 bytes
	HeaderHash uint32
}

// Parse decodes a V1 header from the first 48 bytes of data. It performs
// no hash or range validation; see VerifyIndexHeaderV1.
func (h *IndexHeaderV1) Parse(data []byte) error {
	if len(data) < IndexHeaderV1Size {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()
	h.Field0 = engine.Uint16(data[0:2])
	h.KeyIndex = data[2]
	h.Align3 = data[3]
	h.Field4 = engine.Uint32(data[4:8])
	h.Field8 = engine.Uint64(data[8:16])
	h.MaxFileOffset = engine.Uint64(data[16:24])
	h.SpanSizeBytes = data[24]
	h.SpanOffsBytes = data[25]
	h.KeyBytes = data[26]
	h.SegmentBits = data[27]
	h.KeyCount1 = engine.Uint32(data[28:32])
	h.KeyCount2 = engine.Uint32(data[32:36])
	h.KeysHash1 = engine.Uint32(data[36:40])
	h.KeysHash2 = engine.Uint32(data[40:44])
	h.HeaderHash = engine.Uint32(data[44:48])

	return nil
}

// Bytes serializes the header, including the stored HeaderHash.
func (h *IndexHeaderV1) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, IndexHeaderV1Size)
	b = engine.AppendUint16(b, h.Field0)
	b = append(b, h.KeyIndex, h.Align3)
	b = engine.AppendUint32(b, h.Field4)
	b = engine.AppendUint64(b, h.Field8)
	b = engine.AppendUint64(b, h.MaxFileOffset)
	b = append(b, h.SpanSizeBytes, h.SpanOffsBytes, h.KeyBytes, h.SegmentBits)
	b = engine.AppendUint32(b, h.KeyCount1)
	b = engine.AppendUint32(b, h.KeyCount2)
	b = engine.AppendUint32(b, h.KeysHash1)
	b = engine.AppendUint32(b, h.KeysHash2)
	b = engine.AppendUint32(b, h.HeaderHash)

	return b
}

// ComputeHeaderHash returns the self-hash of the serialized header: the
// lookup3 digest with the HeaderHash field zeroed.
func (h *IndexHeaderV1) ComputeHeaderHash() uint32 {
	saved := h.HeaderHash
	h.HeaderHash = 0
	digest := jenkins.HashLittle(h.Bytes(), 0)
	h.HeaderHash = saved

	return digest
}

// VerifyIndexHeaderV1 reports whether the first 48 bytes of data
// self-verify as a V1 index header: the lookup3 digest of the header with
// its trailing hash field zeroed must equal the stored hash.
func VerifyIndexHeaderV1(data []byte) bool {
	if len(data) < IndexHeaderV1Size {
		return false
	}

	engine := endian.GetLittleEndianEngine()
	stored := engine.Uint32(data[44:48])

	local := make([]byte, IndexHeaderV1Size)
	copy(local, data[:IndexHeaderV1Size])
	local[44], local[45], local[46], local[47] = 0, 0, 0, 0

	return jenkins.HashLittle(local, 0) == stored
}

// VerifyIndexBlockV2 reports whether data carries a V2 block prefix whose
// hash matches the block contents. This is the cheap 8-byte probe that
// runs before the V1 whole-header check.
func VerifyIndexBlockV2(data []byte) bool {
	var prefix BlockPrefix
	if prefix.Parse(data) != nil {
		return false
	}
	if prefix.BlockSize < 0x10 {
		return false
	}
	if uint64(len(data)) < uint64(prefix.BlockSize)+BlockPrefixSize {
		return false
	}

	block := data[BlockPrefixSize : BlockPrefixSize+int(prefix.BlockSize)]
	high, _ := jenkins.HashLittle2(block, 0, 0)

	return high == prefix.BlockHash
}

// IndexHeaderV2 is the header of a generation-2 index file
// ("XXYYYYYYYY.idx"), located immediately after the first block prefix.
// All fields are little-endian.
type IndexHeaderV2 struct {
	// IndexVersion must equal IndexVersionV2 (0x07).
	//
	// Offset: 0, Size: 2 bytes
	IndexVersion uint16

	// KeyIndex is the bucket this index file covers.
	//
	// Offset: 2, Size: 1 byte
	KeyIndex uint8

	// ExtraBytes must be zero in supported builds.
	//
	// Offset: 3, Size: 1 byte
	ExtraBytes uint8

	// SpanSizeBytes, SpanOffsBytes, KeyBytes and SegmentBits mirror the V1
	// fields of the same names.
	//
	// Offset: 4..7, Size: 1 byte each
	SpanSizeBytes uint8
	SpanOffsBytes uint8
	KeyBytes      uint8
	SegmentBits   uint8

	// MaxFileOffset bounds the packed archive+offset value of every entry.
	//
	// Offset: 8, Size: 8 bytes
	MaxFileOffset uint64
}

// Parse decodes a V2 header from the first 16 bytes of data.
func (h *IndexHeaderV2) Parse(data []byte) error {
	if len(data) < IndexHeaderV2Size {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()
	h.IndexVersion = engine.Uint16(data[0:2])
	h.KeyIndex = data[2]
	h.ExtraBytes = data[3]
	h.SpanSizeBytes = data[4]
	h.SpanOffsBytes = data[5]
	h.KeyBytes = data[6]
	h.SegmentBits = data[7]
	h.MaxFileOffset = engine.Uint64(data[8:16])

	return nil
}

// Bytes serializes the header.
func (h *IndexHeaderV2) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()
	b := make([]byte, 0, IndexHeaderV2Size)
	b = engine.AppendUint16(b, h.IndexVersion)
	b = append(b, h.KeyIndex, h.ExtraBytes)
	b = append(b, h.SpanSizeBytes, h.SpanOffsBytes, h.KeyBytes, h.SegmentBits)
	b = engine.AppendUint64(b, h.MaxFileOffset)

	return b
}
