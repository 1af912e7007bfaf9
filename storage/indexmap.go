package storage

import (
	"github.com/miztooks/casc/section"
)

// indexRef is one value of the unified index map: the entry itself plus
// the bucket whose index file contributed it, which fixes the segment-bit
// split the packed locator is interpreted under.
type indexRef struct {
	entry  *section.IndexEntry
	bucket uint8
}

// buildIndexMap concatenates the per-bucket entry arrays into one map
// keyed by the truncated encoding key. Duplicate keys keep the first
// insertion; duplicates across buckets exist in shipped game builds and
// are expected.
func buildIndexMap(tables *[section.BucketCount]*KeyMappingTable) map[section.IndexKey]indexRef {
	total := 0
	for _, t := range tables {
		if t != nil {
			total += len(t.Entries)
		}
	}

	m := make(map[section.IndexKey]indexRef, total)
	for bucket, t := range tables {
		if t == nil {
			continue
		}
		for i := range t.Entries {
			entry := &t.Entries[i]
			if _, exists := m[entry.Key]; exists {
				continue
			}
			m[entry.Key] = indexRef{entry: entry, bucket: uint8(bucket)}
		}
	}

	return m
}
