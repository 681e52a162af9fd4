package constants

import "strings"

// DocumentFormats holds the loader formats the engine can open directly.
var DocumentFormats = []string{"JSON", "XLSX"}

// AllowedExtensions holds the default allowed file extensions for batch ingestion.
var AllowedExtensions = map[string]struct{}{
	"json": {},
	"xlsx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
