package compress

import (
	"fmt"

	"github.com/miztooks/casc/errs"
	"github.com/pierrec/lz4/v4"
)

// LZ4Decompressor decodes '4' frames, which hold a single LZ4 block.
type LZ4Decompressor struct{}

var _ Decompressor = LZ4Decompressor{}

// Decompress decodes an LZ4 block. The block format does not carry its own
// plaintext length, so a nonzero sizeHint from the chunk table is required.
func (LZ4Decompressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	if sizeHint <= 0 {
		return nil, fmt.Errorf("lz4 frame without chunk table: %w", errs.ErrBadFormat)
	}

	out := make([]byte, sizeHint)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("lz4 frame: %w", err)
	}

	return out[:n], nil
}
