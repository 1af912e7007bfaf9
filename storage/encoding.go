package storage

import (
	"bytes"
	"crypto/md5" //nolint:gosec // the on-disk format mandates MD5
	"fmt"

	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/section"
	"go.uber.org/zap"
)

// loadEncodingFile opens the encoding file through the data-file pipeline
// using the encoding key from the build configuration, verifies its
// segments and builds the content-hash keyed map.
func (s *Storage) loadEncodingFile() error {
	data, err := s.openByIndexKey(s.config.EncodingEKey.IndexKey())
	if err != nil {
		return fmt.Errorf("encoding file: %w", err)
	}

	var header section.EncodingHeader
	if err := header.Parse(data); err != nil {
		return fmt.Errorf("encoding file: %w", err)
	}
	if header.NumSegments == 0 || header.SegmentsPos == 0 {
		return fmt.Errorf("encoding file: empty directory: %w", errs.ErrBadFormat)
	}

	total := header.TotalFileSize()
	if len(data) < total {
		return fmt.Errorf("encoding file: %d bytes, need %d: %w", len(data), total, errs.ErrFileCorrupt)
	}

	dirPos := section.EncodingHeaderSize + int(header.SegmentsPos)
	segPos := dirPos + int(header.NumSegments)*section.EncodingSegmentDirSize

	numSegments := int(header.NumSegments)
	dirs := make([]section.EncodingSegmentDir, numSegments)
	for i := range dirs {
		if err := dirs[i].Parse(data[dirPos+i*section.EncodingSegmentDirSize:]); err != nil {
			return fmt.Errorf("encoding segment directory %d: %w", i, err)
		}
	}

	// Size the map for the worst case of minimal single-key entries.
	maxEntries := numSegments * section.EncodingSegmentSize /
		(section.EncodingEntryFixedSize + section.HashSize)
	m := make(map[section.ContentHash]*section.EncodingEntry, maxEntries)

	for i := 0; i < numSegments; i++ {
		segment := data[segPos+i*section.EncodingSegmentSize : segPos+(i+1)*section.EncodingSegmentSize]

		if s.verifySegments {
			sum := md5.Sum(segment) //nolint:gosec // format-mandated digest
			if !bytes.Equal(sum[:], dirs[i].SegmentHash[:]) {
				return fmt.Errorf("encoding segment %d: payload hash mismatch: %w", i, errs.ErrFileCorrupt)
			}
		}

		if err := s.walkEncodingSegment(segment, i, &dirs[i], m); err != nil {
			return err
		}
	}

	s.encodingMap = m
	s.log.Debug("encoding file loaded",
		zap.Int("segments", numSegments),
		zap.Int("entries", len(m)))

	return nil
}

// walkEncodingSegment parses the entries of one 4096-byte segment into the
// map. The first entry's first encoding key must match the directory
// record for the segment.
func (s *Storage) walkEncodingSegment(segment []byte, index int, dir *section.EncodingSegmentDir, m map[section.ContentHash]*section.EncodingEntry) error {
	first := true
	cursor := 0
	limit := section.EncodingSegmentSize - (section.EncodingEntryFixedSize + section.HashSize)

	for cursor <= limit {
		if segment[cursor] == 0 {
			// A zero key count terminates the segment.
			break
		}

		entry := &section.EncodingEntry{}
		if err := entry.Parse(segment[cursor:]); err != nil {
			return fmt.Errorf("encoding segment %d entry at 0x%x: %w", index, cursor, err)
		}

		if first {
			if entry.Keys[0] != dir.FirstKey {
				return fmt.Errorf("encoding segment %d: first key %s, directory says %s: %w",
					index, entry.Keys[0], dir.FirstKey, errs.ErrFileCorrupt)
			}
			first = false
		}

		if _, exists := m[entry.ContentKey]; !exists {
			m[entry.ContentKey] = entry
		}

		cursor += entry.Size()
	}

	if first {
		return fmt.Errorf("encoding segment %d is empty: %w", index, errs.ErrFileCorrupt)
	}

	return nil
}
