package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FileResult is one matched file of a directory scan.
type FileResult struct {
	Path         string
	Size         int64
	HashHex      string
	Deduplicated bool // same content as an earlier file of this scan
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// ScanDirectory walks root, filters by includeExts (or the defaults), skips
// hidden entries if requested and hashes each match. Results are sorted by
// path so batch runs are reproducible.
func ScanDirectory(root string, includeExts []string, skipHidden bool) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	exts := extSet(includeExts)

	var paths []string
	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !matches(path, exts) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Strings(paths)
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		sum, size, err := hashFile(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			continue
		}
		_, dup := seen[sum]
		if !dup {
			seen[sum] = path
		}
		results = append(results, FileResult{Path: path, Size: size, HashHex: sum, Deduplicated: dup})
		stats.Succeeded++
		if dup {
			stats.Deduplicated++
		}
	}
	return results, stats, nil
}
