package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/miztooks/casc/errs"
	"github.com/miztooks/casc/section"
	"go.uber.org/zap"
)

// BuildConfig carries the keys and identity the bootstrap extracts from
// the build configuration files.
type BuildConfig struct {
	// BuildKey is the hash naming the build config file under
	// data/config/xx/yy/.
	BuildKey string

	// RootKey is the content hash of the root file.
	RootKey section.ContentHash

	// EncodingCKey and EncodingEKey are the content and encoding hashes of
	// the encoding file; the encoding key is the one the loader resolves
	// through the index map.
	EncodingCKey section.ContentHash
	EncodingEKey section.EncodingHash

	// InstallKey and DownloadKey are retained for callers; the bootstrap
	// does not open them.
	InstallKey  section.ContentHash
	DownloadKey section.ContentHash

	// BuildName is the verbatim build-name value, e.g.
	// "WOW-18125patch6.0.1_Beta".
	BuildName string

	// BuildNumber is the first run of digits in BuildName.
	BuildNumber uint32

	// GameID is inferred from the build name prefix.
	GameID uint32
}

// loadBuildInfo locates the active build in <rootPath>/.build.info and
// parses the referenced build config under <dataPath>/config/.
func (s *Storage) loadBuildInfo() error {
	infoPath := filepath.Join(s.rootPath, ".build.info")
	buildKey, err := parseBuildInfoFile(infoPath)
	if err != nil {
		return err
	}

	if len(buildKey) < 4 {
		return fmt.Errorf("build key %q: %w", buildKey, errs.ErrBadFormat)
	}
	configPath := filepath.Join(s.dataPath, "config", buildKey[0:2], buildKey[2:4], buildKey)

	config, err := parseBuildConfigFile(configPath)
	if err != nil {
		return err
	}
	config.BuildKey = buildKey

	s.config = config
	s.log.Debug("build configuration loaded",
		zap.String("build", config.BuildName),
		zap.Uint32("number", config.BuildNumber))

	return nil
}

// parseBuildInfoFile reads the pipe-delimited .build.info table and
// returns the build key of the active row (or the first row when no row
// is marked active).
func parseBuildInfoFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, errs.ErrFileNotFound)
		}

		return "", fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	if !scanner.Scan() {
		return "", fmt.Errorf("%s: empty file: %w", path, errs.ErrBadFormat)
	}
	headerLine := strings.TrimPrefix(scanner.Text(), "\xEF\xBB\xBF")

	buildKeyCol := -1
	activeCol := -1
	for i, col := range strings.Split(headerLine, "|") {
		// Column headers are "Name!TYPE:length".
		name, _, _ := strings.Cut(col, "!")
		switch name {
		case "Build Key":
			buildKeyCol = i
		case "Active":
			activeCol = i
		}
	}
	if buildKeyCol < 0 {
		return "", fmt.Errorf("%s: no Build Key column: %w", path, errs.ErrBadFormat)
	}

	firstKey := ""
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if buildKeyCol >= len(fields) {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(fields[buildKeyCol]))
		if key == "" {
			continue
		}
		if firstKey == "" {
			firstKey = key
		}
		if activeCol >= 0 && activeCol < len(fields) && strings.TrimSpace(fields[activeCol]) == "1" {
			return key, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	if firstKey == "" {
		return "", fmt.Errorf("%s: no build rows: %w", path, errs.ErrBadFormat)
	}

	return firstKey, nil
}

// parseBuildConfigFile reads the "key = value" build config blob.
func parseBuildConfigFile(path string) (*BuildConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, errs.ErrFileNotFound)
		}

		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()

	config := &BuildConfig{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		values := strings.Fields(value)
		if len(values) == 0 {
			continue
		}

		switch key {
		case "root":
			config.RootKey, err = section.ContentHashFromString(values[0])
		case "encoding":
			config.EncodingCKey, err = section.ContentHashFromString(values[0])
			if err == nil && len(values) > 1 {
				config.EncodingEKey, err = section.EncodingHashFromString(values[1])
			}
		case "install":
			config.InstallKey, err = section.ContentHashFromString(values[0])
		case "download":
			config.DownloadKey, err = section.ContentHashFromString(values[0])
		case "build-name":
			config.BuildName = values[0]
		}
		if err != nil {
			return nil, fmt.Errorf("%s: field %q: %w", path, key, errs.ErrBadFormat)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if config.RootKey.IsZero() || config.EncodingEKey.IsZero() {
		return nil, fmt.Errorf("%s: missing root or encoding keys: %w", path, errs.ErrBadFormat)
	}

	config.BuildNumber = buildNumberFromName(config.BuildName)
	config.GameID = gameIDFromBuildName(config.BuildName)

	return config, nil
}

// buildNumberFromName extracts the first run of digits from a build name
// like "WOW-18125patch6.0.1_Beta".
func buildNumberFromName(name string) uint32 {
	start := -1
	for i := 0; i < len(name); i++ {
		if name[i] >= '0' && name[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return 0
	}
	end := start
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}

	n, err := strconv.ParseUint(name[start:end], 10, 32)
	if err != nil {
		return 0
	}

	return uint32(n)
}

// gameIDFromBuildName maps the product prefix of a build name to a game
// identifier.
func gameIDFromBuildName(name string) uint32 {
	upper := strings.ToUpper(name)
	switch {
	case strings.HasPrefix(upper, "WOW"):
		return GameWoW
	case strings.HasPrefix(upper, "D3"), strings.HasPrefix(upper, "DIABLO"):
		return GameDiablo3
	case strings.HasPrefix(upper, "HERO"), strings.HasPrefix(upper, "STORM"):
		return GameHotS
	default:
		return GameUnknown
	}
}
