package storage

import (
	"fmt"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/section"
)

// Root handler flags.
const (
	// RootFlagHasNames marks handlers whose root file embeds plaintext
	// file names.
	RootFlagHasNames uint32 = 0x0001

	// RootFlagNameHashesOnly marks handlers that store only 64-bit name
	// hashes; enumeration yields synthetic names.
	RootFlagNameHashesOnly uint32 = 0x0002

	// RootFlagCompressedNames marks handlers backed by a compressed name
	// trie.
	RootFlagCompressedNames uint32 = 0x0004
)

// RootHandler resolves file names to content hashes for one game family.
// The three implementations share no state, only this capability set.
type RootHandler interface {
	// Lookup resolves a file name under the given locale mask.
	Lookup(name string, locale uint32) (section.ContentHash, bool)

	// Enumerate calls fn for every known entry until fn returns false.
	// Handlers without plaintext names yield the hex form of the name
	// hash.
	Enumerate(fn func(name string, hash section.ContentHash) bool)

	// Features returns the RootFlag bits of this handler.
	Features() uint32

	// Close releases handler state.
	Close()
}

// newRootHandler inspects the leading signature of the root file and
// constructs the matching handler.
func newRootHandler(data []byte, localeMask uint32) (RootHandler, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("root file of %d bytes: %w", len(data), errs.ErrBadFormat)
	}

	switch endian.GetLittleEndianEngine().Uint32(data[0:4]) {
	case section.RootSignatureMNDX:
		return newMNDXRootHandler(data)
	case section.RootSignatureDiablo3:
		return newDiablo3RootHandler(data)
	default:
		return newWoW6RootHandler(data, localeMask)
	}
}
