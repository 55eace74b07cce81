// Package acquire locates source exports on disk and watches the data
// directory for new ones.
package acquire

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/trialrecon/internal/config"
)

// ErrNoMatch is returned when no file matches a source pattern.
var ErrNoMatch = errors.New("no matching file")

// LatestFile returns the most recently modified regular file in dir whose
// name matches pattern. Ties go to the lexically greater name so the result
// is stable.
func LatestFile(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var best string
	var bestInfo os.FileInfo
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if bestInfo == nil ||
			info.ModTime().After(bestInfo.ModTime()) ||
			(info.ModTime().Equal(bestInfo.ModTime()) && m > best) {
			best, bestInfo = m, info
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w for %q in %s", ErrNoMatch, pattern, dir)
	}
	return best, nil
}

// Resolve returns the file to read for a source. An explicit file wins and
// is taken relative to dataDir; otherwise the newest match of the source
// pattern is used.
func Resolve(dataDir string, src config.Source) (string, error) {
	if src.File != "" {
		path := src.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataDir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%s export: %w", src.Name, err)
		}
		return path, nil
	}
	if src.Pattern == "" {
		return "", fmt.Errorf("%s export: no file or pattern configured", src.Name)
	}
	path, err := LatestFile(dataDir, src.Pattern)
	if err != nil {
		return "", fmt.Errorf("%s export: %w", src.Name, err)
	}
	return path, nil
}
