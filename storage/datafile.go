package storage

import (
	"bytes"
	"crypto/md5" //nolint:gosec // the on-disk format mandates MD5
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/miztooks/casc/compress"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/section"
)

// dataFileSet manages the numbered archive files of a storage. Handles
// are opened lazily on first access and kept until the storage closes;
// reads are positional, so one handle serves concurrent readers.
type dataFileSet struct {
	dir string

	mu    sync.Mutex
	files map[uint32]*os.File
}

func newDataFileSet(dir string) *dataFileSet {
	return &dataFileSet{dir: dir, files: make(map[uint32]*os.File)}
}

// archive returns the open handle for archive number n, opening it on
// first use.
func (d *dataFileSet) archive(n uint32) (*os.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f, ok := d.files[n]; ok {
		return f, nil
	}

	path := filepath.Join(d.dir, fmt.Sprintf("data.%03d", n))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archive %s: %w", path, errs.ErrFileNotFound)
		}

		return nil, fmt.Errorf("archive %s: %w", path, err)
	}
	d.files[n] = f

	return f, nil
}

// close releases every open archive handle.
func (d *dataFileSet) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for n, f := range d.files {
		f.Close()
		delete(d.files, n)
	}
}

// readSpan reads one encoded blob: the raw span bytes at (archive,
// offset), verified against the expected truncated key and span length.
// The returned slice excludes the span header.
func (d *dataFileSet) readSpan(archive uint32, offset uint64, span uint32, key section.IndexKey) ([]byte, error) {
	if span < section.SpanHeaderSize {
		return nil, fmt.Errorf("span of %d bytes: %w", span, errs.ErrBadFormat)
	}

	f, err := d.archive(archive)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, span)
	if _, err := f.ReadAt(buf, int64(offset)); err != nil {
		return nil, fmt.Errorf("archive %d offset 0x%x: %w", archive, offset, err)
	}

	var header section.SpanHeader
	if err := header.Parse(buf); err != nil {
		return nil, err
	}
	if header.EncodedSize != span {
		return nil, fmt.Errorf("span header says %d bytes, index says %d: %w",
			header.EncodedSize, span, errs.ErrFileCorrupt)
	}
	if header.Key().IndexKey() != key {
		return nil, fmt.Errorf("span key %s does not match index key %s: %w",
			header.Key(), key, errs.ErrFileCorrupt)
	}

	return buf[section.SpanHeaderSize:], nil
}

// decodeBlob decompresses the frame container of an encoded blob into the
// plaintext file bytes.
func decodeBlob(data []byte) ([]byte, error) {
	var header section.BLTEHeader
	consumed, err := header.Parse(data)
	if err != nil {
		return nil, err
	}
	data = data[consumed:]

	// Without a chunk table the remainder is a single unchecked frame.
	if len(header.Chunks) == 0 {
		if len(data) == 0 {
			return nil, fmt.Errorf("empty frame: %w", errs.ErrBadFormat)
		}

		return decodeFrame(data, 0)
	}

	var out []byte
	for i := range header.Chunks {
		chunk := &header.Chunks[i]
		if uint32(len(data)) < chunk.CompressedSize || chunk.CompressedSize == 0 {
			return nil, fmt.Errorf("chunk %d truncated: %w", i, errs.ErrFileCorrupt)
		}
		frame := data[:chunk.CompressedSize]
		data = data[chunk.CompressedSize:]

		sum := md5.Sum(frame) //nolint:gosec // format-mandated digest
		if !bytes.Equal(sum[:], chunk.Checksum[:]) {
			return nil, fmt.Errorf("chunk %d: %w", i, errs.ErrFrameChecksum)
		}

		plain, err := decodeFrame(frame, int(chunk.DecompressedSize))
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if len(plain) != int(chunk.DecompressedSize) {
			return nil, fmt.Errorf("chunk %d: %d plaintext bytes, expected %d: %w",
				i, len(plain), chunk.DecompressedSize, errs.ErrFileCorrupt)
		}
		out = append(out, plain...)
	}

	return out, nil
}

// decodeFrame strips the frame type byte and runs the matching codec.
func decodeFrame(frame []byte, sizeHint int) ([]byte, error) {
	codec, err := compress.ForFrameType(frame[0])
	if err != nil {
		return nil, err
	}

	return codec.Decompress(frame[1:], sizeHint)
}
