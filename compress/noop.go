package compress

// PlainDecompressor passes stored frames through unchanged.
type PlainDecompressor struct{}

var _ Decompressor = PlainDecompressor{}

// Decompress returns data as-is. The input slice is returned without
// copying; callers that need ownership must copy.
func (PlainDecompressor) Decompress(data []byte, _ int) ([]byte, error) {
	return data, nil
}
