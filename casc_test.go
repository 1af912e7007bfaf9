package casc

import (
	"path/filepath"
	"testing"

	"github.com/miztooks/casc/errs"
	"github.com/stretchr/testify/require"
)

// TestOpen_InvalidArguments verifies the facade surfaces storage errors.
func TestOpen_InvalidArguments(t *testing.T) {
	_, err := Open("", 0)
	require.ErrorIs(t, err, errs.ErrInvalidParameter)
}

// TestOpen_MissingStorage verifies a nonexistent data path fails cleanly.
func TestOpen_MissingStorage(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "Data"), LocaleEnUS)
	require.ErrorIs(t, err, errs.ErrFileNotFound)
}

// TestKeyTypeAliases verifies the re-exported key types interoperate with
// the section package.
func TestKeyTypeAliases(t *testing.T) {
	var e EncodingHash
	e[0] = 0x9E

	var k IndexKey = e.IndexKey()
	require.Equal(t, 9, k.Bucket())

	var c ContentHash
	require.True(t, c.IsZero())
}
