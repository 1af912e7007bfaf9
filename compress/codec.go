// Package compress provides the frame decompressors used by the data-file
// read pipeline.
//
// Every frame inside an encoded blob starts with a one-byte type tag that
// selects the codec: 'N' for plain stored bytes, 'Z' for zlib, '4' for an
// LZ4 block. The decompressors operate on the frame payload with the tag
// already stripped.
package compress

import (
	"fmt"

	"github.com/miztooks/casc/errs"
)

// Frame type tags as stored on disk.
const (
	FrameTypePlain = 'N'
	FrameTypeZLib  = 'Z'
	FrameTypeLZ4   = '4'
)

// Decompressor decompresses one frame payload.
//
// Memory management:
//   - The returned slice is newly allocated and owned by the caller, except
//     for the plain codec which returns the input unchanged.
//   - The input slice is not modified.
type Decompressor interface {
	// Decompress decompresses data. sizeHint is the expected plaintext
	// length from the chunk table, or 0 when the blob has no chunk table;
	// codecs that cannot size their output without it return an error.
	Decompress(data []byte, sizeHint int) ([]byte, error)
}

// ForFrameType returns the decompressor for a frame type tag.
func ForFrameType(frameType byte) (Decompressor, error) {
	switch frameType {
	case FrameTypePlain:
		return PlainDecompressor{}, nil
	case FrameTypeZLib:
		return ZLibDecompressor{}, nil
	case FrameTypeLZ4:
		return LZ4Decompressor{}, nil
	default:
		return nil, fmt.Errorf("frame type 0x%02x: %w", frameType, errs.ErrUnknownFrameType)
	}
}
