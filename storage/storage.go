package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/section"
	"go.uber.org/zap"
)

// InfoClass selects the value reported by Info.
type InfoClass int

const (
	// InfoFileCount is the number of entries in the unified index map.
	InfoFileCount InfoClass = iota

	// InfoFeatures is the feature word derived from the root handler.
	InfoFeatures

	// InfoGameInfo is the game identifier from the build configuration.
	InfoGameInfo

	// InfoGameBuild is the build number from the build configuration.
	InfoGameBuild
)

// FeatureListfile is set in InfoFeatures when the root handler carries
// plaintext names.
const FeatureListfile uint32 = 0x0001

// Storage is an open read-only CASC storage. It owns the per-bucket key
// mapping tables, the two lookup maps, the root handler and the lazily
// opened archive handles.
type Storage struct {
	log *zap.Logger

	dataPath  string
	rootPath  string
	indexPath string

	config *BuildConfig

	nameFormat  indexNameFormat
	generations *generationSet

	tables      [section.BucketCount]*KeyMappingTable
	indexMap    map[section.IndexKey]indexRef
	encodingMap map[section.ContentHash]*section.EncodingEntry

	root RootHandler
	data *dataFileSet

	localeMask     uint32
	verifySegments bool

	refCount atomic.Int32
}

// Option configures Open.
type Option func(*Storage)

// WithLogger installs a structured logger for bootstrap diagnostics. The
// default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Storage) {
		if log != nil {
			s.log = log
		}
	}
}

// WithVerifySegmentHashes enables the MD5 check of every encoding
// segment against its directory record. Off by default: it dominates
// bootstrap time on real storages.
func WithVerifySegmentHashes() Option {
	return func(s *Storage) { s.verifySegments = true }
}

// Open opens the storage rooted at dataPath (the game's Data directory).
// A zero localeMask selects the default locale. Any failure during the
// bootstrap releases all partial state and is returned.
func Open(dataPath string, localeMask uint32, opts ...Option) (*Storage, error) {
	s := &Storage{
		log:        zap.NewNop(),
		localeMask: localeMask,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.refCount.Store(1)

	if err := s.bootstrap(dataPath); err != nil {
		s.release()

		return nil, err
	}

	return s, nil
}

// bootstrap runs the open sequence: directories, build configuration,
// index files, encoding file, root file.
func (s *Storage) bootstrap(dataPath string) error {
	if err := s.initDirectories(dataPath); err != nil {
		return err
	}
	if err := s.loadBuildInfo(); err != nil {
		return err
	}
	if s.localeMask == 0 {
		s.localeMask = DefaultLocale
	}
	if err := s.loadIndexFiles(); err != nil {
		return err
	}
	if err := s.loadEncodingFile(); err != nil {
		return err
	}
	if err := s.loadRootFile(); err != nil {
		return err
	}

	s.log.Debug("storage open",
		zap.String("path", s.dataPath),
		zap.Int("files", len(s.indexMap)))

	return nil
}

// initDirectories derives the root, index and archive directories from
// the data path.
func (s *Storage) initDirectories(dataPath string) error {
	if dataPath == "" {
		return errs.ErrInvalidParameter
	}

	s.dataPath = strings.TrimRight(dataPath, `/\`)
	s.rootPath = filepath.Dir(s.dataPath)

	// Older storages keep indices in their own directory; newer ones mix
	// them into the archive directory.
	indices := filepath.Join(s.dataPath, "indices")
	if st, err := os.Stat(indices); err == nil && st.IsDir() {
		s.indexPath = indices
	} else {
		s.indexPath = filepath.Join(s.dataPath, "data")
	}

	s.data = newDataFileSet(filepath.Join(s.dataPath, "data"))

	return nil
}

// loadIndexFiles scans the index directory, parses the newest index file
// of every bucket and builds the unified index map.
func (s *Storage) loadIndexFiles() error {
	format, gens, err := scanIndexDirectory(s.indexPath)
	if err != nil {
		return err
	}
	s.nameFormat = format
	s.generations = gens

	for bucket := 0; bucket < section.BucketCount; bucket++ {
		path := indexFilePath(s.indexPath, format, bucket, gens.current[bucket])
		table, err := loadKeyMapping(path, bucket)
		if err != nil {
			return err
		}
		s.tables[bucket] = table
	}

	s.indexMap = buildIndexMap(&s.tables)
	s.log.Debug("index files loaded", zap.Int("entries", len(s.indexMap)))

	return nil
}

// loadRootFile opens the root file by its content hash and dispatches to
// the matching handler.
func (s *Storage) loadRootFile() error {
	data, err := s.OpenFileByContentHash(s.config.RootKey)
	if err != nil {
		return fmt.Errorf("root file: %w", err)
	}

	root, err := newRootHandler(data, s.localeMask)
	if err != nil {
		return err
	}
	s.root = root

	return nil
}

// valid reports whether the handle is open.
func (s *Storage) valid() bool {
	return s != nil && s.refCount.Load() > 0
}

// AddRef increments the reference count of an open storage, so that a
// matching Close does not tear it down.
func (s *Storage) AddRef() error {
	if !s.valid() {
		return errs.ErrInvalidHandle
	}
	s.refCount.Add(1)

	return nil
}

// Close decrements the reference count and releases all owned state when
// it reaches zero. Closing an already-closed storage returns
// ErrInvalidHandle.
func (s *Storage) Close() error {
	if s == nil {
		return errs.ErrInvalidHandle
	}

	for {
		current := s.refCount.Load()
		if current <= 0 {
			return errs.ErrInvalidHandle
		}
		if !s.refCount.CompareAndSwap(current, current-1) {
			continue
		}
		if current == 1 {
			s.release()
		}

		return nil
	}
}

// release frees every owned resource. Safe to call on partially
// bootstrapped storages.
func (s *Storage) release() {
	if s.root != nil {
		s.root.Close()
		s.root = nil
	}
	s.encodingMap = nil
	s.indexMap = nil
	for i := range s.tables {
		if s.tables[i] != nil {
			s.tables[i].Data = nil
			s.tables[i].Entries = nil
			s.tables[i] = nil
		}
	}
	if s.data != nil {
		s.data.close()
	}
	s.refCount.Store(0)
}

// Info returns one scalar value about the storage.
func (s *Storage) Info(class InfoClass) (uint32, error) {
	if !s.valid() {
		return 0, errs.ErrInvalidHandle
	}

	switch class {
	case InfoFileCount:
		return uint32(len(s.indexMap)), nil
	case InfoFeatures:
		if s.root.Features()&RootFlagHasNames != 0 {
			return FeatureListfile, nil
		}

		return 0, nil
	case InfoGameInfo:
		return s.config.GameID, nil
	case InfoGameBuild:
		return s.config.BuildNumber, nil
	default:
		return 0, errs.ErrInvalidParameter
	}
}

// InfoInto writes the requested value into buf as a little-endian dword
// and returns the number of bytes written. A buffer shorter than four
// bytes is left unwritten and yields ErrInsufficientBuffer together with
// the required size, 4.
func (s *Storage) InfoInto(class InfoClass, buf []byte) (int, error) {
	value, err := s.Info(class)
	if err != nil {
		return 0, err
	}
	if len(buf) < 4 {
		return 4, errs.ErrInsufficientBuffer
	}

	endian.GetLittleEndianEngine().PutUint32(buf, value)

	return 4, nil
}

// LookupEncoding resolves a content hash to its encoding entry.
func (s *Storage) LookupEncoding(contentHash section.ContentHash) (*section.EncodingEntry, bool) {
	if !s.valid() {
		return nil, false
	}
	entry, ok := s.encodingMap[contentHash]

	return entry, ok
}

// LookupIndex resolves a truncated encoding key to its index entry.
func (s *Storage) LookupIndex(key section.IndexKey) (*section.IndexEntry, bool) {
	if !s.valid() {
		return nil, false
	}
	ref, ok := s.indexMap[key]
	if !ok {
		return nil, false
	}

	return ref.entry, true
}

// Root exposes the active root handler.
func (s *Storage) Root() RootHandler { return s.root }

// OpenFile resolves a file name through the root handler, the encoding
// map and the index map, then reads and decodes the file bytes.
func (s *Storage) OpenFile(name string, locale uint32) ([]byte, error) {
	if !s.valid() {
		return nil, errs.ErrInvalidHandle
	}
	if name == "" {
		return nil, errs.ErrInvalidParameter
	}

	contentHash, ok := s.root.Lookup(name, locale)
	if !ok {
		return nil, fmt.Errorf("file %q: %w", name, errs.ErrKeyNotFound)
	}

	data, err := s.OpenFileByContentHash(contentHash)
	if err != nil {
		return nil, fmt.Errorf("file %q: %w", name, err)
	}

	return data, nil
}

// OpenFileByContentHash reads and decodes the file with the given content
// hash. Every encoding key the root handler references must resolve
// through the index map; a missing resolution is a diagnosed failure,
// never a silent miss.
func (s *Storage) OpenFileByContentHash(contentHash section.ContentHash) ([]byte, error) {
	if !s.valid() {
		return nil, errs.ErrInvalidHandle
	}

	entry, ok := s.encodingMap[contentHash]
	if !ok {
		return nil, fmt.Errorf("content hash %s has no encoding entry: %w", contentHash, errs.ErrKeyNotFound)
	}

	return s.openByEncodingHash(entry.Keys[0])
}

// openByEncodingHash resolves a full encoding key through the index map,
// enforcing the bucket consistency between the key and the index file
// that located it.
func (s *Storage) openByEncodingHash(key section.EncodingHash) ([]byte, error) {
	ref, ok := s.indexMap[key.IndexKey()]
	if !ok {
		return nil, fmt.Errorf("encoding key %s has no index entry: %w", key, errs.ErrKeyNotFound)
	}
	if key.Bucket() != int(ref.bucket) {
		return nil, fmt.Errorf("encoding key %s found in bucket %d, expected %d: %w",
			key, ref.bucket, key.Bucket(), errs.ErrFileCorrupt)
	}

	return s.readIndexEntry(ref)
}

// openByIndexKey resolves a truncated encoding key; the encoding file
// itself is opened this way during bootstrap, before the encoding map
// exists.
func (s *Storage) openByIndexKey(key section.IndexKey) ([]byte, error) {
	ref, ok := s.indexMap[key]
	if !ok {
		return nil, fmt.Errorf("index key %s: %w", key, errs.ErrKeyNotFound)
	}

	return s.readIndexEntry(ref)
}

// readIndexEntry reads the span an index entry points at and decodes the
// frame container into plaintext.
func (s *Storage) readIndexEntry(ref indexRef) ([]byte, error) {
	table := s.tables[ref.bucket]
	entry := ref.entry

	raw, err := s.data.readSpan(
		entry.Archive(table.SegmentBits),
		entry.Offset(table.SegmentBits),
		entry.Span,
		entry.Key,
	)
	if err != nil {
		return nil, err
	}

	return decodeBlob(raw)
}
