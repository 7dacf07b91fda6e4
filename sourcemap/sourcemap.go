// Package sourcemap implements the source map model used by the loader:
// a JSON-serializable v3 map, path rebasing between map-relative and
// absolute forms, and the base64-VLQ mappings encoding.
package sourcemap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Map is a standard v3 source map.
type Map struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// New returns an empty v3 map.
func New() *Map {
	return &Map{Version: 3, Names: []string{}}
}

// Parse decodes a JSON-encoded source map.
func Parse(data []byte) (*Map, error) {
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid source map: %w", err)
	}
	return &m, nil
}

// JSON serializes the map.
func (m *Map) JSON() ([]byte, error) {
	if m.Names == nil {
		m.Names = []string{}
	}
	if m.Sources == nil {
		m.Sources = []string{}
	}
	return json.Marshal(m)
}

// DataURI serializes the map into an inline annotation payload.
func (m *Map) DataURI() (string, error) {
	data, err := m.JSON()
	if err != nil {
		return "", err
	}
	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Normalize prepares an incoming map for processing: the file and
// sourceRoot keys are stripped, and every source entry is
// forward-slash-normalized and, if a sourceRoot existed, resolved
// against it before the root is discarded. The receiver is modified
// in place and returned for convenience.
func (m *Map) Normalize() *Map {
	root := m.SourceRoot
	for i, src := range m.Sources {
		if root != "" && !isPassThrough(src) {
			src = joinSlash(root, src)
		}
		m.Sources[i] = toSlash(src)
	}
	m.File = ""
	m.SourceRoot = ""
	return m
}

// RebaseRelative rewrites every source entry relative to baseDir.
func (m *Map) RebaseRelative(baseDir string) {
	for i, src := range m.Sources {
		m.Sources[i] = ToRelative(src, baseDir)
	}
}

// RebaseAbsolute resolves every source entry against the directory of
// targetFile. Entries already absolute or matching a pass-through rule
// are kept as is.
func (m *Map) RebaseAbsolute(targetFile string) {
	for i, src := range m.Sources {
		m.Sources[i] = ToAbsolute(src, targetFile)
	}
}
