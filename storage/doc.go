// Package storage implements the read-only CASC storage core: index
// discovery and parsing, the unified index map, the encoding map, root
// handler dispatch and the data-file read pipeline.
//
// A Storage is produced by Open and torn down by Close. The bootstrap is
// fail-fast: the first error at any step releases all partial state and is
// surfaced to the caller. After a successful Open the two lookup maps are
// read-only and may be consulted from multiple goroutines; data-archive
// reads use positional I/O and are likewise safe to issue concurrently.
package storage
