package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultFileNames are the config file names recognized by the default
// searcher, in lookup order.
var DefaultFileNames = []string{
	".postcssrc.yaml",
	".postcssrc.yml",
	"postcss.config.yaml",
	"postcss.config.yml",
}

// Searcher is the pluggable config discovery and parsing strategy.
type Searcher interface {
	// Search walks upward from dir and returns the path of the first
	// recognized config source, or "" when none exists.
	Search(dir string) (string, error)
	// Load parses the config source at path.
	Load(path string) (*FileConfig, error)
}

// YAMLSearcher is the default Searcher: it recognizes the YAML config
// file names above and decodes them strictly.
type YAMLSearcher struct {
	Names []string // defaults to DefaultFileNames when empty
	log   *zap.Logger
}

// NewYAMLSearcher creates the default searcher.
func NewYAMLSearcher(log *zap.Logger) *YAMLSearcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &YAMLSearcher{log: log.Named("config-search")}
}

func (s *YAMLSearcher) names() []string {
	if len(s.Names) > 0 {
		return s.Names
	}
	return DefaultFileNames
}

// Search implements Searcher. The first recognized file wins; sources
// from different directories are never aggregated.
func (s *YAMLSearcher) Search(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range s.names() {
			candidate := filepath.Join(dir, name)
			fi, err := os.Stat(candidate)
			switch {
			case err == nil && fi.Mode().IsRegular():
				s.log.Debug("Found config file", zap.String("path", candidate))
				return candidate, nil
			case err != nil && !errors.Is(err, fs.ErrNotExist):
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load implements Searcher.
func (s *YAMLSearcher) Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	return decodeFileConfig(data, path)
}
