package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/section"
)

// indexNameFormat identifies the generation of index file names present in
// the index directory. The first matching file locks the format for the
// rest of the scan.
type indexNameFormat int

const (
	indexNameUnknown indexNameFormat = iota

	// indexNameV1 is "data.iXY": bucket digit X, generation digit Y.
	indexNameV1

	// indexNameV2 is "XXYYYYYYYY.idx": bucket XX, generation YYYYYYYY.
	indexNameV2
)

// generationSet records, per bucket, the newest and second-newest index
// generation seen during a scan.
type generationSet struct {
	current  [section.BucketCount]uint32
	previous [section.BucketCount]uint32
}

// observe folds one (bucket, generation) pair into the set.
func (g *generationSet) observe(bucket int, generation uint32) {
	switch {
	case generation > g.current[bucket]:
		g.previous[bucket] = g.current[bucket]
		g.current[bucket] = generation
	case generation > g.previous[bucket]:
		g.previous[bucket] = generation
	}
}

// isIndexFileNameV1 reports whether name is a V1 index file name:
// 8 characters, "data.i" prefix, two hex digits.
func isIndexFileNameV1(name string) bool {
	if len(name) != 8 || !strings.EqualFold(name[:6], "data.i") {
		return false
	}

	return isHexDigit(name[6]) && isHexDigit(name[7])
}

// isIndexFileNameV2 reports whether name is a V2 index file name:
// 10 hex digits followed by ".idx".
func isIndexFileNameV2(name string) bool {
	if len(name) != 14 || !strings.EqualFold(name[10:], ".idx") {
		return false
	}
	for i := 0; i < 10; i++ {
		if !isHexDigit(name[i]) {
			return false
		}
	}

	return true
}

func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		return true
	default:
		return false
	}
}

func hexDigit(c byte) uint32 {
	switch {
	case c >= '0' && c <= '9':
		return uint32(c - '0')
	case c >= 'a' && c <= 'f':
		return uint32(c-'a') + 10
	default:
		return uint32(c-'A') + 10
	}
}

func hexValue(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		v = v<<4 | hexDigit(s[i])
	}

	return v
}

// parseIndexFileName extracts bucket and generation from name under the
// given format. It reports false for names that do not match the format
// or whose bucket is out of range.
func parseIndexFileName(name string, format indexNameFormat) (bucket int, generation uint32, ok bool) {
	switch format {
	case indexNameV1:
		if !isIndexFileNameV1(name) {
			return 0, 0, false
		}
		bucket = int(hexDigit(name[6]))
		generation = hexDigit(name[7])
	case indexNameV2:
		if !isIndexFileNameV2(name) {
			return 0, 0, false
		}
		bucket = int(hexValue(name[0:2]))
		generation = hexValue(name[2:10])
	default:
		return 0, 0, false
	}

	if bucket >= section.BucketCount {
		return 0, 0, false
	}

	return bucket, generation, true
}

// scanIndexDirectory enumerates regular files in dir, auto-detects the
// index name format from the first matching file, and selects the newest
// and previous generation per bucket. Non-matching files are ignored.
func scanIndexDirectory(dir string) (indexNameFormat, *generationSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return indexNameUnknown, nil, fmt.Errorf("index directory %s: %w", dir, errs.ErrFileNotFound)
		}

		return indexNameUnknown, nil, fmt.Errorf("index directory %s: %w", dir, err)
	}

	format := indexNameUnknown
	gens := &generationSet{}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()

		if format == indexNameUnknown {
			switch {
			case isIndexFileNameV1(name):
				format = indexNameV1
			case isIndexFileNameV2(name):
				format = indexNameV2
			default:
				continue
			}
		}

		if bucket, generation, ok := parseIndexFileName(name, format); ok {
			gens.observe(bucket, generation)
		}
	}

	if format == indexNameUnknown {
		return indexNameUnknown, nil, fmt.Errorf("no index files in %s: %w", dir, errs.ErrFileNotFound)
	}

	return format, gens, nil
}

// indexFileName renders the on-disk name for a bucket and generation under
// the detected format.
func indexFileName(format indexNameFormat, bucket int, generation uint32) string {
	if format == indexNameV1 {
		return fmt.Sprintf("data.i%x%x", bucket, generation)
	}

	return fmt.Sprintf("%02x%08x.idx", bucket, generation)
}

// indexFilePath joins the index directory with the rendered file name.
func indexFilePath(dir string, format indexNameFormat, bucket int, generation uint32) string {
	return filepath.Join(dir, indexFileName(format, bucket, generation))
}
