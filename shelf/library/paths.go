package library

import (
	"fmt"
	"strings"
)

// NormalizePath canonicalizes separators to forward slashes and trims
// leading and trailing slashes. Paths stay relative; no cleaning of "."
// or ".." happens here (archive entries are sanitized at the ingestion
// boundary before they ever reach the library).
func NormalizePath(rawPath string) string {
	normalized := strings.ReplaceAll(rawPath, "\\", "/")
	return strings.Trim(normalized, "/")
}

// UniquePath returns path unchanged when unused, otherwise probes
// "stem (2).ext", "stem (3).ext", ... until a free candidate is found.
// The extension is preserved; a leading dot does not count as one.
// The caller owns usedPaths and decides its scope: empty for a full
// rebuild, seeded with the current index for incremental adds.
func UniquePath(path string, usedPaths map[string]struct{}) string {
	if _, taken := usedPaths[path]; !taken {
		return path
	}

	directory := ""
	filename := path
	if slash := strings.LastIndex(path, "/"); slash >= 0 {
		directory = path[:slash+1]
		filename = path[slash+1:]
	}

	stem := filename
	ext := ""
	if dot := strings.LastIndex(filename, "."); dot > 0 {
		stem = filename[:dot]
		ext = filename[dot:]
	}

	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s%s (%d)%s", directory, stem, n, ext)
		if _, taken := usedPaths[candidate]; !taken {
			return candidate
		}
	}
}
