package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/miztooks/casc/errs"
	"github.com/stretchr/testify/require"
)

func TestParseBuildInfoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".build.info")

	t.Run("Active row wins", func(t *testing.T) {
		content := "Branch!STRING:0|Active!DEC:1|Build Key!HEX:16\n" +
			"eu|0|aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n" +
			"us|1|bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		key, err := parseBuildInfoFile(path)
		require.NoError(t, err)
		require.Equal(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", key)
	})

	t.Run("Falls back to first row", func(t *testing.T) {
		content := "Build Key!HEX:16|Version!STRING:0\n" +
			"cccccccccccccccccccccccccccccccc|6.0.1\n" +
			"dddddddddddddddddddddddddddddddd|6.0.2\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		key, err := parseBuildInfoFile(path)
		require.NoError(t, err)
		require.Equal(t, "cccccccccccccccccccccccccccccccc", key)
	})

	t.Run("BOM tolerated", func(t *testing.T) {
		content := "\xEF\xBB\xBFBuild Key!HEX:16\naaaabbbbccccddddaaaabbbbccccdddd\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		key, err := parseBuildInfoFile(path)
		require.NoError(t, err)
		require.Equal(t, "aaaabbbbccccddddaaaabbbbccccdddd", key)
	})

	t.Run("Missing column", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("Version!STRING:0\n6.0.1\n"), 0o644))
		_, err := parseBuildInfoFile(path)
		require.ErrorIs(t, err, errs.ErrBadFormat)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := parseBuildInfoFile(filepath.Join(dir, "nope"))
		require.ErrorIs(t, err, errs.ErrFileNotFound)
	})
}

func TestParseBuildConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildconfig")

	content := "# Build configuration\n" +
		"\n" +
		"root = 11111111111111111111111111111111\n" +
		"install = 22222222222222222222222222222222\n" +
		"download = 33333333333333333333333333333333\n" +
		"encoding = 44444444444444444444444444444444 55555555555555555555555555555555\n" +
		"build-name = WOW-18125patch6.0.1_Beta\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := parseBuildConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, "11111111111111111111111111111111", config.RootKey.String())
	require.Equal(t, "44444444444444444444444444444444", config.EncodingCKey.String())
	require.Equal(t, "55555555555555555555555555555555", config.EncodingEKey.String())
	require.Equal(t, "22222222222222222222222222222222", config.InstallKey.String())
	require.Equal(t, "WOW-18125patch6.0.1_Beta", config.BuildName)
	require.Equal(t, uint32(18125), config.BuildNumber)
	require.Equal(t, GameWoW, config.GameID)
}

func TestParseBuildConfigFile_MissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildconfig")
	require.NoError(t, os.WriteFile(path, []byte("build-name = WOW-1\n"), 0o644))

	_, err := parseBuildConfigFile(path)
	require.ErrorIs(t, err, errs.ErrBadFormat)
}

func TestBuildNumberFromName(t *testing.T) {
	require.Equal(t, uint32(18125), buildNumberFromName("WOW-18125patch6.0.1"))
	require.Equal(t, uint32(30508), buildNumberFromName("30508_Win_32_enUS"))
	require.Equal(t, uint32(0), buildNumberFromName("nodigits"))
	require.Equal(t, uint32(0), buildNumberFromName(""))
}

func TestGameIDFromBuildName(t *testing.T) {
	require.Equal(t, GameWoW, gameIDFromBuildName("WOW-18125patch6.0.1"))
	require.Equal(t, GameDiablo3, gameIDFromBuildName("D3-12345"))
	require.Equal(t, GameHotS, gameIDFromBuildName("HERO-30508"))
	require.Equal(t, GameUnknown, gameIDFromBuildName("SC2-1"))
}
