// Package errs defines the sentinel errors shared across the casc module.
//
// All errors are created with errors.New and are intended to be wrapped with
// fmt.Errorf("...: %w", err) at the point of failure, so callers can test
// categories with errors.Is while still seeing file names and offsets in the
// message.
package errs

import "errors"

// Storage bootstrap and format errors.
var (
	// ErrBadFormat indicates a structural impossibility in an on-disk file:
	// wrong magic, unexpected version, or sizes that cannot describe a valid
	// layout.
	ErrBadFormat = errors.New("bad file format")

	// ErrFileCorrupt indicates a well-formed structure whose hash
	// verification failed.
	ErrFileCorrupt = errors.New("file is corrupt")

	// ErrNotSupported indicates a recognized format variant outside the
	// supported parameter ranges (e.g. a key width other than 9 bytes).
	ErrNotSupported = errors.New("format variant not supported")

	// ErrFileNotFound indicates a missing index, encoding, root or archive
	// file.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidHeaderSize indicates a header buffer shorter than the fixed
	// header layout.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidMagicNumber indicates a header whose magic field does not
	// match the expected value.
	ErrInvalidMagicNumber = errors.New("invalid magic number")
)

// API misuse errors.
var (
	// ErrInvalidHandle indicates an operation on a closed or never-opened
	// storage handle.
	ErrInvalidHandle = errors.New("invalid storage handle")

	// ErrInvalidParameter indicates an argument outside the accepted range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientBuffer indicates a destination buffer too small for the
	// requested value.
	ErrInsufficientBuffer = errors.New("insufficient buffer")
)

// Lookup and read-pipeline errors.
var (
	// ErrKeyNotFound indicates a content or encoding key with no entry in
	// the respective map.
	ErrKeyNotFound = errors.New("key not found")

	// ErrFrameChecksum indicates a data-file frame whose checksum does not
	// match its payload.
	ErrFrameChecksum = errors.New("frame checksum mismatch")

	// ErrUnknownFrameType indicates a data-file frame with an unrecognized
	// type byte.
	ErrUnknownFrameType = errors.New("unknown frame type")

	// ErrHashCollision indicates two distinct file names mapping to the same
	// 64-bit name ID in a root handler cache.
	ErrHashCollision = errors.New("name hash collision detected")
)
