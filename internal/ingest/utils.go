package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
)

// AllowedExt checks if a file extension is in the default set (json/xlsx).
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
// Office lock files ("~$report.xlsx") count as hidden too.
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return (strings.HasPrefix(base, ".") && base != "." && base != "..") || strings.HasPrefix(base, "~$")
}

// extSet builds the lowercased extension set; empty input means the defaults.
func extSet(include []string) map[string]struct{} {
	if len(include) == 0 {
		return constants.AllowedExtensions
	}
	exts := map[string]struct{}{}
	for _, e := range include {
		e = constants.NormalizeExt(strings.TrimSpace(e))
		if e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}

func matches(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

// hashFile returns the hex sha256 of the file at path.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
