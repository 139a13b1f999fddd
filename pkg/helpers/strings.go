package helpers

import (
	"path/filepath"
	"strings"
)

// JSONOutputPath derives the JSON output location from a BEJ input
// location: the final path component's last extension is replaced by
// ".json", or ".json" is appended when there is none.
func JSONOutputPath(location string) string {
	ext := filepath.Ext(location)
	if ext == "" {
		return location + ".json"
	}
	return strings.TrimSuffix(location, ext) + ".json"
}
