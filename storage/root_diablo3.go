package storage

import (
	"bytes"
	"fmt"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/internal/hash"
	"github.com/miztooks/casc/section"
)

// diablo3RootHandler indexes the Diablo III root: a signed list of
// {content hash, ASCIIZ name} directory entries. Names are resolved
// through a 64-bit ID map; a collision between two distinct names aborts
// the parse rather than silently shadowing an entry.
type diablo3RootHandler struct {
	names    []string
	hashes   []section.ContentHash
	byNameID map[uint64]int
}

var _ RootHandler = (*diablo3RootHandler)(nil)

func newDiablo3RootHandler(data []byte) (*diablo3RootHandler, error) {
	engine := endian.GetLittleEndianEngine()
	if len(data) < 8 {
		return nil, fmt.Errorf("diablo3 root of %d bytes: %w", len(data), errs.ErrBadFormat)
	}

	count := int(engine.Uint32(data[4:8]))
	h := &diablo3RootHandler{
		names:    make([]string, 0, count),
		hashes:   make([]section.ContentHash, 0, count),
		byNameID: make(map[uint64]int, count),
	}

	pos := 8
	for i := 0; i < count; i++ {
		if pos+section.HashSize >= len(data) {
			return nil, fmt.Errorf("diablo3 root entry %d at 0x%x: %w", i, pos, errs.ErrBadFormat)
		}

		var content section.ContentHash
		copy(content[:], data[pos:pos+section.HashSize])
		pos += section.HashSize

		nul := bytes.IndexByte(data[pos:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("diablo3 root entry %d: unterminated name: %w", i, errs.ErrBadFormat)
		}
		name := string(data[pos : pos+nul])
		pos += nul + 1

		id := hash.NameID(name)
		if prev, exists := h.byNameID[id]; exists {
			if hash.Normalize(h.names[prev]) != hash.Normalize(name) {
				return nil, fmt.Errorf("names %q and %q: %w", h.names[prev], name, errs.ErrHashCollision)
			}
			continue
		}

		h.byNameID[id] = len(h.names)
		h.names = append(h.names, name)
		h.hashes = append(h.hashes, content)
	}

	return h, nil
}

func (h *diablo3RootHandler) Lookup(name string, _ uint32) (section.ContentHash, bool) {
	idx, ok := h.byNameID[hash.NameID(name)]
	if !ok {
		return section.ContentHash{}, false
	}

	return h.hashes[idx], true
}

func (h *diablo3RootHandler) Enumerate(fn func(name string, hash section.ContentHash) bool) {
	for i, name := range h.names {
		if !fn(name, h.hashes[i]) {
			return
		}
	}
}

func (h *diablo3RootHandler) Features() uint32 { return RootFlagHasNames }

func (h *diablo3RootHandler) Close() {
	h.names = nil
	h.hashes = nil
	h.byNameID = nil
}
