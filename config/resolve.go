package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/postcss/postcss-loader/common"
)

// Dependencies is the build-tool capability the resolver needs: a
// resolved config file must be registered as a build dependency so the
// compilation re-runs when the file changes.
type Dependencies interface {
	AddBuildDependency(file string)
}

// Resolver locates, loads and merges one config source per request.
type Resolver struct {
	searcher Searcher
	stat     func(string) (os.FileInfo, error)
	log      *zap.Logger
}

// NewResolver creates a Resolver over the given searcher. A nil
// searcher gets the default YAML strategy.
func NewResolver(searcher Searcher, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if searcher == nil {
		searcher = NewYAMLSearcher(log)
	}
	return &Resolver{searcher: searcher, stat: os.Stat, log: log.Named("config-resolver")}
}

// Resolve determines the search anchor from option and startPath, loads
// the first recognized config source and merges it with the runtime
// context. A nil rc gets a context built from computed defaults.
// Absence of any config is valid and yields an empty config.
//
// option may be:
//   - nil or true: search upward from startPath (or the context cwd)
//   - false: config lookup disabled, empty config
//   - string: explicit config path (file or directory anchor)
//   - ConfigFunc: programmatic source, invoked with the context; its
//     result is used as is, without context merging
func (r *Resolver) Resolve(ctx context.Context, option any, rc *common.RuntimeContext, startPath string, deps Dependencies) (*ResolvedConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rc == nil {
		rc = common.NewRuntimeContext(r.defaultAnchor(nil, startPath), "", nil)
	}

	var anchor string
	switch opt := option.(type) {
	case nil:
		anchor = r.defaultAnchor(rc, startPath)
	case bool:
		if !opt {
			return &ResolvedConfig{}, nil
		}
		anchor = r.defaultAnchor(rc, startPath)
	case string:
		anchor = opt
	case ConfigFunc:
		return r.invoke(opt, rc, deps)
	case func(*common.RuntimeContext) (*ResolvedConfig, error):
		return r.invoke(opt, rc, deps)
	default:
		return nil, &LoadError{Err: fmt.Errorf("unsupported config option type %T", option)}
	}

	fi, err := r.stat(anchor)
	if err != nil {
		return nil, &NotFoundError{Path: anchor}
	}

	var path string
	if fi.Mode().IsRegular() {
		path = anchor
	} else {
		if path, err = r.searcher.Search(anchor); err != nil {
			return nil, &LoadError{File: anchor, Err: err}
		}
		if path == "" {
			// No config anywhere up the tree, which is fine.
			r.log.Debug("No config file found", zap.String("anchor", anchor))
			return &ResolvedConfig{}, nil
		}
	}

	fc, err := r.searcher.Load(path)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedConfig{
		Plugins: fc.Plugins.Spec,
		Options: rc.Merge(fc.options()),
		File:    path,
		Exec:    fc.Exec,
	}
	if deps != nil {
		deps.AddBuildDependency(path)
	}
	r.log.Debug("Resolved config", zap.String("file", path))
	return resolved, nil
}

func (r *Resolver) defaultAnchor(rc *common.RuntimeContext, startPath string) string {
	if startPath != "" {
		return startPath
	}
	if rc != nil && rc.Cwd != "" {
		return rc.Cwd
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

func (r *Resolver) invoke(fn ConfigFunc, rc *common.RuntimeContext, deps Dependencies) (*ResolvedConfig, error) {
	resolved, err := fn(rc)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if resolved == nil {
		return &ResolvedConfig{}, nil
	}
	if resolved.File != "" {
		if abs, err := filepath.Abs(resolved.File); err == nil {
			resolved.File = abs
		}
		if deps != nil {
			deps.AddBuildDependency(resolved.File)
		}
	}
	return resolved, nil
}
