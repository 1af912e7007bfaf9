package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// NameID computes the 64-bit identifier of a storage file name.
//
// Names are case-insensitive and use backslash separators on disk; the ID
// is computed over the normalized form so "interface\\glue.xml" and
// "Interface/Glue.XML" collide on purpose.
func NameID(name string) uint64 {
	return xxhash.Sum64String(Normalize(name))
}

// Normalize upper-cases a file name and folds forward slashes to
// backslashes, the canonical separator inside root files.
func Normalize(name string) string {
	name = strings.ToUpper(name)
	return strings.ReplaceAll(name, "/", "\\")
}
