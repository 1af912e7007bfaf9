package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZLibDecompressor inflates 'Z' frames.
type ZLibDecompressor struct{}

var _ Decompressor = ZLibDecompressor{}

// Decompress inflates a zlib stream. sizeHint, when nonzero, presizes the
// output buffer.
func (ZLibDecompressor) Decompress(data []byte, sizeHint int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib frame: %w", err)
	}
	defer r.Close()

	var out bytes.Buffer
	if sizeHint > 0 {
		out.Grow(sizeHint)
	}
	if _, err := io.Copy(&out, r); err != nil { //nolint:gosec // bounded by span size upstream
		return nil, fmt.Errorf("zlib frame: %w", err)
	}

	return out.Bytes(), nil
}
