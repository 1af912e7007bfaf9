package storage

import (
	"fmt"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/internal/hash"
	"github.com/miztooks/casc/internal/jenkins"
	"github.com/miztooks/casc/section"
)

// wow6RootEntry is one name-hash record with its locale variant.
type wow6RootEntry struct {
	content section.ContentHash
	locale  uint32
}

// wow6RootHandler indexes the block-structured root file used by World of
// Warcraft 6.0+. The file stores 64-bit lookup3 hashes of upper-cased,
// backslash-separated names; no plaintext names are present.
type wow6RootHandler struct {
	entries    map[uint64][]wow6RootEntry
	order      []uint64
	localeMask uint32
}

var _ RootHandler = (*wow6RootHandler)(nil)

// newWoW6RootHandler parses the root blocks. Each block is a record
// count, a content flags dword, a locale flags dword, count file-data-id
// deltas and count {content hash, name hash} pairs.
func newWoW6RootHandler(data []byte, localeMask uint32) (*wow6RootHandler, error) {
	h := &wow6RootHandler{
		entries:    make(map[uint64][]wow6RootEntry),
		localeMask: localeMask,
	}

	engine := endian.GetLittleEndianEngine()
	pos := 0
	for pos < len(data) {
		if pos+12 > len(data) {
			return nil, fmt.Errorf("root block header at 0x%x: %w", pos, errs.ErrBadFormat)
		}
		count := int(engine.Uint32(data[pos : pos+4]))
		locale := engine.Uint32(data[pos+8 : pos+12])
		pos += 12

		// File data id deltas are skipped; lookups go through name hashes.
		need := count*4 + count*(section.HashSize+8)
		if pos+need > len(data) {
			return nil, fmt.Errorf("root block of %d records at 0x%x: %w", count, pos, errs.ErrBadFormat)
		}
		pos += count * 4

		for i := 0; i < count; i++ {
			var entry wow6RootEntry
			copy(entry.content[:], data[pos:pos+section.HashSize])
			nameHash := engine.Uint64(data[pos+section.HashSize : pos+section.HashSize+8])
			entry.locale = locale
			pos += section.HashSize + 8

			if _, seen := h.entries[nameHash]; !seen {
				h.order = append(h.order, nameHash)
			}
			h.entries[nameHash] = append(h.entries[nameHash], entry)
		}
	}

	return h, nil
}

// nameHash64 computes the 64-bit lookup3 digest of a normalized name, the
// form stored by the root file.
func nameHash64(name string) uint64 {
	high, low := jenkins.HashLittle2([]byte(hash.Normalize(name)), 0, 0)

	return uint64(high)<<32 | uint64(low)
}

func (h *wow6RootHandler) Lookup(name string, locale uint32) (section.ContentHash, bool) {
	if locale == 0 {
		locale = h.localeMask
	}

	variants, ok := h.entries[nameHash64(name)]
	if !ok {
		return section.ContentHash{}, false
	}
	for _, v := range variants {
		if v.locale&locale != 0 {
			return v.content, true
		}
	}

	return section.ContentHash{}, false
}

func (h *wow6RootHandler) Enumerate(fn func(name string, hash section.ContentHash) bool) {
	for _, nameHash := range h.order {
		for _, v := range h.entries[nameHash] {
			if !fn(fmt.Sprintf("%016x", nameHash), v.content) {
				return
			}
		}
	}
}

func (h *wow6RootHandler) Features() uint32 { return RootFlagNameHashesOnly }

func (h *wow6RootHandler) Close() {
	h.entries = nil
	h.order = nil
}
