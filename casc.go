// Package casc provides a read-only client for CASC storages, the
// content-addressable container format used to distribute large game data
// archives.
//
// A storage on disk consists of per-bucket index files, an encoding file
// and numbered data archives. Opening a storage discovers the newest index
// generation of each of the 16 buckets, verifies and parses the index
// files, loads the encoding file and the game-specific root file, and
// builds two O(1) lookup maps:
//
//	content hash  → encoding entry   (full 16-byte MD5 of the plaintext)
//	index key     → index entry      (truncated 9-byte encoding key)
//
// # Basic Usage
//
// Opening a storage and reading a file by name:
//
//	import "github.com/miztooks/casc"
//
//	st, err := casc.Open("/games/wow/Data", casc.LocaleEnUS)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
//	data, err := st.OpenFile("Interface\\Glue.xml", 0)
//
// Querying storage properties:
//
//	count, _ := st.Info(casc.InfoFileCount)
//	build, _ := st.Info(casc.InfoGameBuild)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the storage
// package. For fine-grained control — per-bucket key mapping tables,
// direct index and encoding lookups — use the storage package directly.
package casc

import (
	"github.com/miztooks/casc/section"
	"github.com/miztooks/casc/storage"
)

// Storage is an open read-only CASC storage handle.
type Storage = storage.Storage

// Option configures Open.
type Option = storage.Option

// Key types shared with the storage and section packages.
type (
	ContentHash  = section.ContentHash
	EncodingHash = section.EncodingHash
	IndexKey     = section.IndexKey
)

// Info classes accepted by Storage.Info.
const (
	InfoFileCount = storage.InfoFileCount
	InfoFeatures  = storage.InfoFeatures
	InfoGameInfo  = storage.InfoGameInfo
	InfoGameBuild = storage.InfoGameBuild
)

// Common locale masks. The storage package defines the full set.
const (
	LocaleAll  = storage.LocaleAll
	LocaleEnUS = storage.LocaleEnUS
	LocaleEnGB = storage.LocaleEnGB
)

// Open opens the storage rooted at dataPath. A zero localeMask selects
// storage.DefaultLocale.
func Open(dataPath string, localeMask uint32, opts ...Option) (*Storage, error) {
	return storage.Open(dataPath, localeMask, opts...)
}

// WithLogger installs a structured logger for bootstrap diagnostics.
var WithLogger = storage.WithLogger

// WithVerifySegmentHashes enables the per-segment MD5 check of the
// encoding file during open.
var WithVerifySegmentHashes = storage.WithVerifySegmentHashes
