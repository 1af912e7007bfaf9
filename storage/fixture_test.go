package storage

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/miztooks/casc/endian"
	"github.com/miztooks/casc/internal/jenkins"
	"github.com/miztooks/casc/section"
	"github.com/stretchr/testify/require"
)

const (
	fixtureSegmentBits   = 30
	fixtureMaxFileOffset = (uint64(1) << 40) - 1
	fixtureBuildKey      = "1a2b3c4d5e6f708192a3b4c5d6e7f809"
)

// fixture assembles a synthetic on-disk storage: 16 V2 index files, one
// data archive, an encoding file, a root file and the build
// configuration.
type fixture struct {
	t *testing.T

	gameDir  string
	dataPath string

	archive []byte
	buckets [section.BucketCount][]section.IndexEntry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gameDir := t.TempDir()
	fx := &fixture{
		t:        t,
		gameDir:  gameDir,
		dataPath: filepath.Join(gameDir, "Data"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(fx.dataPath, "data"), 0o755))

	// Every bucket needs at least one entry for its index file to be
	// well-formed; give each a filler whose key nibble matches the bucket.
	for bucket := 0; bucket < section.BucketCount; bucket++ {
		key := section.IndexKey{byte(bucket << 4), 0xEE}
		fx.buckets[bucket] = append(fx.buckets[bucket], section.IndexEntry{
			Key:    key,
			Packed: section.PackLocator(0, 0, fixtureSegmentBits),
			Span:   section.SpanHeaderSize,
		})
	}

	return fx
}

// entryCount is the number of index entries across all buckets.
func (fx *fixture) entryCount() int {
	total := 0
	for _, entries := range fx.buckets {
		total += len(entries)
	}

	return total
}

// addBlob stores plaintext as a single stored frame in the archive and
// indexes it. Returns the content and encoding hashes.
func (fx *fixture) addBlob(plain []byte) (section.ContentHash, section.EncodingHash) {
	fx.t.Helper()

	frame := append([]byte{'N'}, plain...)
	blte := section.BLTEHeader{
		Chunks: []section.BLTEChunk{{
			CompressedSize:   uint32(len(frame)),
			DecompressedSize: uint32(len(plain)),
			Checksum:         md5.Sum(frame),
		}},
	}
	encoded := append(blte.Bytes(), frame...)

	ckey := section.ContentHash(md5.Sum(plain))
	ekey := section.EncodingHash(md5.Sum(encoded))

	span := section.SpanHeader{EncodedSize: uint32(section.SpanHeaderSize + len(encoded))}
	span.SetKey(ekey)

	offset := uint64(len(fx.archive))
	fx.archive = append(fx.archive, span.Bytes()...)
	fx.archive = append(fx.archive, encoded...)

	fx.buckets[ekey.Bucket()] = append(fx.buckets[ekey.Bucket()], section.IndexEntry{
		Key:    ekey.IndexKey(),
		Packed: section.PackLocator(0, offset, fixtureSegmentBits),
		Span:   span.EncodedSize,
	})

	return ckey, ekey
}

// buildEncodingFile renders a single-segment encoding file plaintext.
func buildEncodingFile(entries []section.EncodingEntry) []byte {
	header := section.EncodingHeader{NumSegments: 1, SegmentsPos: 0x10}

	segment := make([]byte, 0, section.EncodingSegmentSize)
	for i := range entries {
		segment = append(segment, entries[i].Bytes()...)
	}
	segment = append(segment, make([]byte, section.EncodingSegmentSize-len(segment))...)

	dir := section.EncodingSegmentDir{
		FirstKey:    entries[0].Keys[0],
		SegmentHash: md5.Sum(segment),
	}

	out := header.Bytes()
	out = append(out, make([]byte, header.SegmentsPos)...)
	out = append(out, dir.Bytes()...)
	out = append(out, segment...)

	return out
}

// wow6FixtureEntry is one named file of a synthetic WoW6 root.
type wow6FixtureEntry struct {
	name    string
	content section.ContentHash
	locale  uint32
}

// buildWoW6Root renders one root block holding the given entries.
func buildWoW6Root(locale uint32, entries []wow6FixtureEntry) []byte {
	engine := endian.GetLittleEndianEngine()

	out := engine.AppendUint32(nil, uint32(len(entries)))
	out = engine.AppendUint32(out, 0) // content flags
	out = engine.AppendUint32(out, locale)
	for range entries {
		out = engine.AppendUint32(out, 0) // file data id deltas
	}
	for _, e := range entries {
		out = append(out, e.content[:]...)
		out = engine.AppendUint64(out, nameHash64(e.name))
	}

	return out
}

// buildMNDXRoot renders a minimal MNDX root container header.
func buildMNDXRoot() []byte {
	engine := endian.GetLittleEndianEngine()
	out := engine.AppendUint32(nil, section.RootSignatureMNDX)
	out = engine.AppendUint32(out, 1) // header version
	out = engine.AppendUint32(out, 2) // format version

	return append(out, make([]byte, 0x20)...)
}

// buildIndexFileV2 renders a complete V2 index file for one bucket.
func buildIndexFileV2(bucket int, entries []section.IndexEntry) []byte {
	header := section.IndexHeaderV2{
		IndexVersion:  section.IndexVersionV2,
		KeyIndex:      uint8(bucket),
		SpanSizeBytes: section.SpanSizeBytes,
		SpanOffsBytes: section.SpanOffsBytes,
		KeyBytes:      section.KeyBytes,
		SegmentBits:   fixtureSegmentBits,
		MaxFileOffset: fixtureMaxFileOffset,
	}
	headerBytes := header.Bytes()

	high, _ := jenkins.HashLittle2(headerBytes, 0, 0)
	prefix := section.BlockPrefix{BlockSize: uint32(len(headerBytes)), BlockHash: high}

	out := append(prefix.Bytes(), headerBytes...)
	for len(out)%16 != 0 {
		out = append(out, 0)
	}

	var entryBytes []byte
	var accHigh, accLow uint32
	for i := range entries {
		record := entries[i].Bytes()
		accHigh, accLow = jenkins.HashLittle2(record, accHigh, accLow)
		entryBytes = append(entryBytes, record...)
	}

	entryPrefix := section.BlockPrefix{BlockSize: uint32(len(entryBytes)), BlockHash: accHigh}
	out = append(out, entryPrefix.Bytes()...)
	out = append(out, entryBytes...)

	// Zero-filled tail: the first slot's zero lead ends the tail scan.
	for len(out)%0x1000 != 0 {
		out = append(out, 0)
	}
	out = append(out, make([]byte, section.TailMinSize)...)

	return out
}

// write materializes the fixture on disk. rootCKey names the root file in
// the build config; encoding names both hashes of the encoding file.
func (fx *fixture) write(rootCKey, encodingCKey section.ContentHash, encodingEKey section.EncodingHash) {
	fx.t.Helper()

	dataDir := filepath.Join(fx.dataPath, "data")
	for bucket := 0; bucket < section.BucketCount; bucket++ {
		path := filepath.Join(dataDir, fmt.Sprintf("%02x%08x.idx", bucket, 1))
		require.NoError(fx.t, os.WriteFile(path, buildIndexFileV2(bucket, fx.buckets[bucket]), 0o644))
	}

	require.NoError(fx.t, os.WriteFile(filepath.Join(dataDir, "data.000"), fx.archive, 0o644))

	info := "Active!DEC:1|Build Key!HEX:16|Version!STRING:0\n" +
		"1|" + fixtureBuildKey + "|6.0.1.18125\n"
	require.NoError(fx.t, os.WriteFile(filepath.Join(fx.gameDir, ".build.info"), []byte(info), 0o644))

	configDir := filepath.Join(fx.dataPath, "config", fixtureBuildKey[0:2], fixtureBuildKey[2:4])
	require.NoError(fx.t, os.MkdirAll(configDir, 0o755))
	config := "# Build configuration\n" +
		"root = " + rootCKey.String() + "\n" +
		"encoding = " + encodingCKey.String() + " " + encodingEKey.String() + "\n" +
		"build-name = WOW-18125patch6.0.1\n"
	require.NoError(fx.t, os.WriteFile(filepath.Join(configDir, fixtureBuildKey), []byte(config), 0o644))
}

// standardFixture builds a complete storage with one named file and
// returns the fixture alongside the file's name and plaintext.
func standardFixture(t *testing.T) (*fixture, string, []byte) {
	t.Helper()

	fx := newFixture(t)

	filePlain := []byte("the quick brown fox jumps over the lazy dog")
	fileCKey, fileEKey := fx.addBlob(filePlain)

	rootPlain := buildWoW6Root(LocaleEnUS, []wow6FixtureEntry{
		{name: "Foo.txt", content: fileCKey, locale: LocaleEnUS},
	})
	rootCKey, rootEKey := fx.addBlob(rootPlain)

	encodingPlain := buildEncodingFile([]section.EncodingEntry{
		{FileSize: uint64(len(filePlain)), ContentKey: fileCKey, Keys: []section.EncodingHash{fileEKey}},
		{FileSize: uint64(len(rootPlain)), ContentKey: rootCKey, Keys: []section.EncodingHash{rootEKey}},
	})
	encodingCKey, encodingEKey := fx.addBlob(encodingPlain)

	fx.write(rootCKey, encodingCKey, encodingEKey)

	return fx, "Foo.txt", filePlain
}
