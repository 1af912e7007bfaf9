package storage

import (
	"fmt"
	"os"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/internal/jenkins"
	"github.com/miztooks/casc/section"
)

// KeyMappingTable is the parsed state of one bucket's index file: the raw
// file bytes, the decoded entry array and the layout parameters the
// entries are interpreted under.
type KeyMappingTable struct {
	// FileName is the path the table was loaded from.
	FileName string

	// Data holds the raw file bytes for the lifetime of the storage.
	Data []byte

	// Entries is the decoded entry array.
	Entries []section.IndexEntry

	// Layout parameters, copied from whichever header generation the file
	// carried.
	SpanSizeBytes uint8
	SpanOffsBytes uint8
	KeyBytes      uint8
	ExtraBytes    uint8
	SegmentBits   uint8
	MaxFileOffset uint64
}

// loadKeyMapping reads and parses the index file for one bucket. The
// returned table owns its buffer.
func loadKeyMapping(path string, bucket int) (*KeyMappingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index file %s: %w", path, errs.ErrFileNotFound)
		}

		return nil, fmt.Errorf("index file %s: %w", path, err)
	}

	if len(data) == 0 || len(data) > section.IndexFileMaxSize {
		return nil, fmt.Errorf("index file %s: size %d: %w", path, len(data), errs.ErrBadFormat)
	}

	table := &KeyMappingTable{FileName: path, Data: data}

	// The cheap 8-byte V2 probe runs before the whole-header V1 hash.
	switch {
	case section.VerifyIndexBlockV2(data):
		err = table.parseV2(bucket)
	case section.VerifyIndexHeaderV1(data):
		err = table.parseV1(bucket)
	default:
		err = fmt.Errorf("index format not recognized: %w", errs.ErrBadFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("index file %s: %w", path, err)
	}

	return table, nil
}

// parseV1 validates a generation-1 index file and decodes its two entry
// groups.
func (t *KeyMappingTable) parseV1(bucket int) error {
	var header section.IndexHeaderV1
	if err := header.Parse(t.Data); err != nil {
		return err
	}

	if header.Field0 != section.IndexFormatV1 {
		return fmt.Errorf("leading field 0x%04x: %w", header.Field0, errs.ErrNotSupported)
	}
	if int(header.KeyIndex) != bucket {
		return fmt.Errorf("key index %d for bucket %d: %w", header.KeyIndex, bucket, errs.ErrNotSupported)
	}
	if header.Field8 == 0 {
		return fmt.Errorf("zero reserved field: %w", errs.ErrNotSupported)
	}
	if header.SpanSizeBytes != section.SpanSizeBytes ||
		header.SpanOffsBytes != section.SpanOffsBytes ||
		header.KeyBytes != section.KeyBytes {
		return fmt.Errorf("record layout %d/%d/%d: %w",
			header.SpanSizeBytes, header.SpanOffsBytes, header.KeyBytes, errs.ErrNotSupported)
	}

	t.ExtraBytes = 0
	t.SpanSizeBytes = header.SpanSizeBytes
	t.SpanOffsBytes = header.SpanOffsBytes
	t.KeyBytes = header.KeyBytes
	t.SegmentBits = header.SegmentBits
	t.MaxFileOffset = header.MaxFileOffset

	count1 := int(header.KeyCount1)
	count2 := int(header.KeyCount2)
	total := count1 + count2
	entryBytes := total * section.IndexEntrySize
	if section.IndexHeaderV1Size+entryBytes > len(t.Data) {
		return fmt.Errorf("entry groups exceed file size: %w", errs.ErrBadFormat)
	}

	group1 := t.Data[section.IndexHeaderV1Size : section.IndexHeaderV1Size+count1*section.IndexEntrySize]
	group2 := t.Data[section.IndexHeaderV1Size+count1*section.IndexEntrySize : section.IndexHeaderV1Size+entryBytes]

	if jenkins.HashLittle(group1, 0) != header.KeysHash1 ||
		jenkins.HashLittle(group2, 0) != header.KeysHash2 {
		return fmt.Errorf("entry group hash mismatch: %w", errs.ErrFileCorrupt)
	}

	return t.decodeEntries(t.Data[section.IndexHeaderV1Size:section.IndexHeaderV1Size+entryBytes], total)
}

// parseV2 validates a generation-2 index file: header block, entry block
// with an accumulated per-record hash, and the hashed tail pages.
func (t *KeyMappingTable) parseV2(bucket int) error {
	var prefix section.BlockPrefix
	if err := prefix.Parse(t.Data); err != nil {
		return err
	}

	var header section.IndexHeaderV2
	if err := header.Parse(t.Data[section.BlockPrefixSize:]); err != nil {
		return err
	}

	if header.IndexVersion != section.IndexVersionV2 {
		return fmt.Errorf("index version 0x%02x: %w", header.IndexVersion, errs.ErrBadFormat)
	}
	if int(header.KeyIndex) != bucket {
		return fmt.Errorf("key index %d for bucket %d: %w", header.KeyIndex, bucket, errs.ErrBadFormat)
	}
	if header.ExtraBytes != 0 ||
		header.SpanSizeBytes != section.SpanSizeBytes ||
		header.SpanOffsBytes != section.SpanOffsBytes ||
		header.KeyBytes != section.KeyBytes {
		return fmt.Errorf("record layout %d/%d/%d/%d: %w",
			header.ExtraBytes, header.SpanSizeBytes, header.SpanOffsBytes, header.KeyBytes, errs.ErrNotSupported)
	}

	t.ExtraBytes = header.ExtraBytes
	t.SpanSizeBytes = header.SpanSizeBytes
	t.SpanOffsBytes = header.SpanOffsBytes
	t.KeyBytes = header.KeyBytes
	t.SegmentBits = header.SegmentBits
	t.MaxFileOffset = header.MaxFileOffset

	// The entry block begins at the next 16-byte boundary after the header
	// block, with its own {size, hash} prefix.
	pos := (section.BlockPrefixSize + int(prefix.BlockSize) + 0x0F) &^ 0x0F
	if pos+section.BlockPrefixSize > len(t.Data) {
		return fmt.Errorf("entry block prefix out of bounds: %w", errs.ErrBadFormat)
	}

	var entryPrefix section.BlockPrefix
	if err := entryPrefix.Parse(t.Data[pos:]); err != nil {
		return err
	}
	pos += section.BlockPrefixSize

	if pos+int(entryPrefix.BlockSize) > len(t.Data) {
		return fmt.Errorf("entry block out of bounds: %w", errs.ErrBadFormat)
	}
	if entryPrefix.BlockSize < section.IndexEntrySize {
		return fmt.Errorf("entry block smaller than one record: %w", errs.ErrBadFormat)
	}

	entryBytes := t.Data[pos : pos+int(entryPrefix.BlockSize)]
	count := int(entryPrefix.BlockSize) / section.IndexEntrySize
	pos += int(entryPrefix.BlockSize)

	// The block hash accumulates record by record; the order of records is
	// part of the digest.
	var hashHigh, hashLow uint32
	for i := 0; i < count; i++ {
		record := entryBytes[i*section.IndexEntrySize : (i+1)*section.IndexEntrySize]
		hashHigh, hashLow = jenkins.HashLittle2(record, hashHigh, hashLow)
	}
	if hashHigh != entryPrefix.BlockHash {
		return fmt.Errorf("entry block hash mismatch: %w", errs.ErrFileCorrupt)
	}

	if err := t.verifyTail(pos); err != nil {
		return err
	}

	return t.decodeEntries(entryBytes, count)
}

// verifyTail checks the hashed tail pages that follow the entry block of a
// V2 index file. pos is the file position just past the entry block.
//
// A slot whose leading dword is zero ends the whole scan successfully,
// even if later pages still hold data; this mirrors the behavior of the
// game client.
func (t *KeyMappingTable) verifyTail(pos int) error {
	const tailAlign = 0x1000

	pos = (pos + tailAlign - 1) &^ (tailAlign - 1)
	if pos > len(t.Data) {
		return fmt.Errorf("tail start beyond file end: %w", errs.ErrBadFormat)
	}

	tail := t.Data[pos:]
	if len(tail) < section.TailMinSize {
		return fmt.Errorf("tail length 0x%x: %w", len(tail), errs.ErrBadFormat)
	}

	engine := endian.GetLittleEndianEngine()
	pageCount := len(tail) / section.TailPageSize

	for p := 0; p < pageCount; p++ {
		page := tail[p*section.TailPageSize : (p+1)*section.TailPageSize]

		for off := 0; off < section.TailSlotsBytes; off += section.TailSlotSize {
			slot := page[off : off+section.TailSlotSize]
			stored := engine.Uint32(slot[0:4])
			if stored == 0 {
				return nil
			}

			computed := jenkins.HashLittle(slot[4:4+section.TailHashedBytes], 0) | 0x80000000
			if computed != stored {
				return fmt.Errorf("tail slot hash mismatch at page %d slot %d: %w",
					p, off/section.TailSlotSize, errs.ErrFileCorrupt)
			}
		}
	}

	return nil
}

// decodeEntries parses count fixed-size records and enforces the packed
// locator bound from the header.
func (t *KeyMappingTable) decodeEntries(entryBytes []byte, count int) error {
	t.Entries = make([]section.IndexEntry, count)
	for i := range t.Entries {
		record := entryBytes[i*section.IndexEntrySize : (i+1)*section.IndexEntrySize]
		if err := t.Entries[i].Parse(record); err != nil {
			return err
		}
		if t.Entries[i].Packed > t.MaxFileOffset {
			return fmt.Errorf("entry %d locator 0x%x exceeds limit 0x%x: %w",
				i, t.Entries[i].Packed, t.MaxFileOffset, errs.ErrFileCorrupt)
		}
	}

	return nil
}
