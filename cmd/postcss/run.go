package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/postcss/postcss-loader/engine"
	"github.com/postcss/postcss-loader/loader"
	"github.com/postcss/postcss-loader/plugin"
	"github.com/postcss/postcss-loader/sourcemap"
	"github.com/postcss/postcss-loader/state"
)

// processFiles transforms every file given on the command line.
func processFiles(ctx context.Context, cmd *cli.Command) (err error) {
	if cmd.NArg() == 0 {
		return cli.ShowAppHelp(cmd)
	}

	env := state.EnvFromContext(ctx)

	if e := os.MkdirAll(env.OutDir, 0755); e != nil {
		return fmt.Errorf("unable to create output directory: %w", e)
	}

	for _, name := range cmd.Args().Slice() {
		if e := processFile(ctx, env, cmd, name); e != nil {
			err = multierr.Append(err, e)
		}
	}
	return err
}

func processFile(ctx context.Context, env *state.LocalEnv, cmd *cli.Command, name string) error {
	source, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", name, err)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	opts := loader.Options{SourceMap: env.SourceMap}
	if cfg := cmd.String("config"); cfg != "" {
		opts.PostcssOptions.Config = cfg
	}
	if env.Env != "" {
		opts.PostcssOptions.Context = map[string]any{"env": env.Env}
	}

	host := &cliHost{file: abs, dir: filepath.Dir(abs), outDir: env.OutDir, log: env.Log}

	res, err := env.Loader.Process(ctx, source, nil, opts, host)
	if err != nil {
		return fmt.Errorf("processing %s failed: %w", name, err)
	}

	outName := filepath.Join(env.OutDir, filepath.Base(name))
	if err := os.WriteFile(outName, res.CSS, 0644); err != nil {
		return fmt.Errorf("unable to write %s: %w", outName, err)
	}
	if res.Map != nil {
		data, err := res.Map.JSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(outName+".map", data, 0644); err != nil {
			return fmt.Errorf("unable to write %s: %w", outName+".map", err)
		}
	}

	env.Log.Info("Processed", zap.String("in", name), zap.String("out", outName))
	return nil
}

// cliHost is the build-tool capability surface for one-shot command
// line use: warnings go to the log, emitted assets land next to the
// transformed output and dependency registrations are only logged.
type cliHost struct {
	file   string
	dir    string
	outDir string
	log    *zap.Logger
}

func (h *cliHost) Path() string    { return h.file }
func (h *cliHost) Context() string { return h.dir }

func (h *cliHost) AddDependency(file string) {
	h.log.Debug("Dependency", zap.String("file", file))
}

func (h *cliHost) AddBuildDependency(file string) {
	h.log.Debug("Build dependency", zap.String("file", file))
}

func (h *cliHost) AddMissingDependency(file string) {
	h.log.Debug("Missing dependency", zap.String("file", file))
}

func (h *cliHost) AddContextDependency(dir string) {
	h.log.Debug("Context dependency", zap.String("dir", dir))
}

func (h *cliHost) EmitWarning(err error) {
	h.log.Warn(err.Error())
}

func (h *cliHost) EmitFile(name string, content []byte, m *sourcemap.Map, info map[string]any) {
	target := filepath.Join(h.outDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		h.log.Error("Unable to emit file", zap.String("file", target), zap.Error(err))
		return
	}
	if err := os.WriteFile(target, content, 0644); err != nil {
		h.log.Error("Unable to emit file", zap.String("file", target), zap.Error(err))
		return
	}
	if m != nil {
		if data, err := m.JSON(); err == nil {
			_ = os.WriteFile(target+".map", data, 0644)
		}
	}
	h.log.Debug("Emitted file", zap.String("file", target))
}

// registerBuiltins installs the transforms shipped with the command
// line tool so config files can reference them by name.
func registerBuiltins(r *plugin.Registry) {
	r.Register("discard-comments", namedTransform{name: "discard-comments", fn: discardComments})

	r.Register("prefix-selectors", plugin.Constructor(func(opts plugin.Options) (any, error) {
		prefix, _ := opts["prefix"].(string)
		if prefix == "" {
			return nil, fmt.Errorf("prefix option is required")
		}
		return prefixSelectors(prefix), nil
	}))
}

// discardComments drops every comment node.
func discardComments(root *engine.Root, _ *engine.Result) error {
	root.Items = dropComments(root.Items)
	return nil
}

func dropComments(items []engine.Item) []engine.Item {
	out := items[:0]
	for _, it := range items {
		if it.Comment != nil {
			continue
		}
		if it.AtRule != nil && it.AtRule.Items != nil {
			it.AtRule.Items = dropComments(it.AtRule.Items)
		}
		out = append(out, it)
	}
	return out
}

// prefixSelectors prepends a namespace to every selector.
func prefixSelectors(prefix string) engine.Plugin {
	return namedTransform{
		name: "prefix-selectors",
		fn: func(root *engine.Root, _ *engine.Result) error {
			root.WalkRules(func(r *engine.Rule) bool {
				r.Selector = prefix + " " + r.Selector
				return true
			})
			return nil
		},
	}
}

type namedTransform struct {
	name string
	fn   func(*engine.Root, *engine.Result) error
}

func (t namedTransform) Name() string { return t.name }

func (t namedTransform) Transform(root *engine.Root, res *engine.Result) error {
	return t.fn(root, res)
}
