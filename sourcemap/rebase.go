package sourcemap

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Synthetic sources like "<no source>" or "<input css 1>" and URLs with
// an explicit scheme never refer to the local filesystem and must not
// be rebased.
var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

func isPassThrough(p string) bool {
	return strings.HasPrefix(p, "<") || schemeRe.MatchString(p)
}

// toSlash rewrites platform separators to the forward slashes source
// maps use regardless of platform.
func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), "\\", "/")
}

func joinSlash(elem ...string) string {
	return path.Join(elem...)
}

// ToRelative converts a map entry path to a form relative to baseDir.
// Pass-through entries are returned unchanged.
func ToRelative(entryPath, baseDir string) string {
	if isPassThrough(entryPath) {
		return entryPath
	}
	rel, err := filepath.Rel(baseDir, entryPath)
	if err != nil {
		return toSlash(entryPath)
	}
	return toSlash(rel)
}

// ToAbsolute resolves a map entry path against the directory of
// targetFile. Without a target file the entry is returned unchanged,
// as are pass-through entries and already-absolute paths.
func ToAbsolute(entryPath, targetFile string) string {
	if targetFile == "" || isPassThrough(entryPath) {
		return entryPath
	}
	if filepath.IsAbs(entryPath) {
		return toSlash(entryPath)
	}
	return toSlash(filepath.Join(filepath.Dir(targetFile), entryPath))
}
