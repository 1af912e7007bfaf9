package section

const (
	// BlockPrefixSize is the size of the {cbBlockSize, dwBlockHash} pair
	// that precedes V2 index blocks.
	BlockPrefixSize = 8

	// IndexHeaderV1Size is the fixed size of a generation-1 index header.
	IndexHeaderV1Size = 48

	// IndexHeaderV2Size is the fixed size of a generation-2 index header
	// (the block prefix not included).
	IndexHeaderV2Size = 16

	// IndexEntrySize is the fixed size of one index record: a 9-byte
	// truncated encoding key, a 5-byte packed archive+offset field and a
	// 4-byte span size.
	IndexEntrySize = 18

	// IndexFileMaxSize caps the whole index file; larger files are
	// rejected before parsing.
	IndexFileMaxSize = 0xA0000

	// IndexKeySize is the truncated encoding key width used by index
	// records.
	IndexKeySize = 9

	// HashSize is the width of content and encoding keys (raw MD5).
	HashSize = 16

	// IndexVersionV2 is the required IndexVersion field of a V2 header.
	IndexVersionV2 = 0x07

	// IndexFormatV1 is the required leading field of a V1 header.
	IndexFormatV1 = 0x0005

	// SpanSizeBytes, SpanOffsBytes and KeyBytes are the only record widths
	// the parser supports; all known game builds use them.
	SpanSizeBytes = 4
	SpanOffsBytes = 5
	KeyBytes      = IndexKeySize
)

const (
	// TailPageSize is the size of one page in the verified tail of a V2
	// index file.
	TailPageSize = 0x200

	// TailSlotSize is the size of one tail slot; 21 slots fit in a page.
	TailSlotSize = 0x18

	// TailSlotsBytes is the byte span of the 21 slots within a page
	// (21 * 24 = 0x1F8).
	TailSlotsBytes = 0x1F8

	// TailMinSize is the minimum tail length of a V2 index file.
	TailMinSize = 0x7800

	// TailHashedBytes is the number of slot bytes covered by the per-slot
	// hash.
	TailHashedBytes = 0x13
)

const (
	// EncodingHeaderSize is the fixed size of the encoding file header.
	EncodingHeaderSize = 0x16

	// EncodingSegmentDirSize is the size of one segment directory record:
	// first key plus segment MD5.
	EncodingSegmentDirSize = 2 * HashSize

	// EncodingSegmentSize is the fixed size of one encoding segment page.
	EncodingSegmentSize = 0x1000

	// EncodingEntryFixedSize is the fixed prefix of an encoding entry:
	// key count, 5-byte file size and the content hash. KeyCount encoding
	// keys follow.
	EncodingEntryFixedSize = 1 + 5 + HashSize
)

const (
	// SpanHeaderSize is the fixed header preceding every encoded blob
	// inside a data archive.
	SpanHeaderSize = 30

	// BLTEHeaderSize covers the frame container magic and header length.
	BLTEHeaderSize = 8

	// BLTEChunkInfoSize is the size of one chunk table record.
	BLTEChunkInfoSize = 24
)

// Root file signatures, compared against the first little-endian dword of
// the root file.
const (
	RootSignatureMNDX    = 0x58444E4D // "MNDX"
	RootSignatureDiablo3 = 0x8007D0C4
)
