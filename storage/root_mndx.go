package storage

import (
	"fmt"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/section"
)

// mndxRootHandler fronts the MNDX compressed name trie used by Heroes of
// the Storm. Only the container header is validated here; trie decoding
// lives with the MNDX package of the full client, so lookups against this
// handler report not-found.
type mndxRootHandler struct {
	headerVersion uint32
	formatVersion uint32
}

var _ RootHandler = (*mndxRootHandler)(nil)

func newMNDXRootHandler(data []byte) (*mndxRootHandler, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("mndx root of %d bytes: %w", len(data), errs.ErrBadFormat)
	}

	engine := endian.GetLittleEndianEngine()
	h := &mndxRootHandler{
		headerVersion: engine.Uint32(data[4:8]),
		formatVersion: engine.Uint32(data[8:12]),
	}
	if h.headerVersion != 1 && h.headerVersion != 2 {
		return nil, fmt.Errorf("mndx header version %d: %w", h.headerVersion, errs.ErrNotSupported)
	}

	return h, nil
}

func (h *mndxRootHandler) Lookup(string, uint32) (section.ContentHash, bool) {
	return section.ContentHash{}, false
}

func (h *mndxRootHandler) Enumerate(func(name string, hash section.ContentHash) bool) {}

func (h *mndxRootHandler) Features() uint32 {
	return RootFlagHasNames | RootFlagCompressedNames
}

func (h *mndxRootHandler) Close() {}
