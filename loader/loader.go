package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/postcss/postcss-loader/common"
	"github.com/postcss/postcss-loader/config"
	"github.com/postcss/postcss-loader/engine"
	"github.com/postcss/postcss-loader/plugin"
	"github.com/postcss/postcss-loader/sourcemap"
)

// Executor turns an executable input module into CSS text. It backs
// the execute option; without a registered Executor that option is a
// config error.
type Executor func(ctx context.Context, source []byte, rc *common.RuntimeContext) ([]byte, error)

// Loader is the pipeline facade. One Loader may serve many requests;
// all per-request state lives on the stack of Process.
type Loader struct {
	registry *plugin.Registry
	engine   engine.Processor
	resolver *config.Resolver
	executor Executor
	log      *zap.Logger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithLogger sets the logger. Defaults to a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithEngine sets the default engine for requests that do not carry an
// implementation of their own.
func WithEngine(p engine.Processor) Option {
	return func(l *Loader) { l.engine = p }
}

// WithRegistry sets the plugin registry names are resolved against.
func WithRegistry(r *plugin.Registry) Option {
	return func(l *Loader) { l.registry = r }
}

// WithSearcher sets the config discovery strategy.
func WithSearcher(s config.Searcher) Option {
	return func(l *Loader) {
		l.resolver = config.NewResolver(s, l.log)
	}
}

// WithExecutor registers the executable-input hook.
func WithExecutor(e Executor) Option {
	return func(l *Loader) { l.executor = e }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = plugin.NewRegistry()
	}
	if l.engine == nil {
		l.engine = engine.Default(l.log)
	}
	if l.resolver == nil {
		l.resolver = config.NewResolver(nil, l.log)
	}
	return l
}

// Registry exposes the loader's plugin registry so the embedding tool
// can register plugins and syntaxes.
func (l *Loader) Registry() *plugin.Registry { return l.registry }

// Process runs the whole pipeline for one request: resolve config,
// normalize plugins, invoke the engine and translate the result. A nil
// host gets NopHost behavior. prevMap, when non-nil, is the source map
// produced by an earlier pipeline stage.
func (l *Loader) Process(ctx context.Context, source []byte, prevMap *sourcemap.Map, opts Options, host Host) (*Result, error) {
	if host == nil {
		host = NopHost{}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	file := host.Path()
	rc := common.NewRuntimeContext(host.Context(), file, opts.PostcssOptions.Context)

	startPath := ""
	if file != "" {
		startPath = filepath.Dir(file)
	}
	cfg, err := l.resolver.Resolve(ctx, opts.PostcssOptions.Config, rc, startPath, host)
	if err != nil {
		return nil, err
	}

	plugins, err := l.resolvePlugins(cfg, &opts, rc)
	if err != nil {
		return nil, err
	}

	engOpts, err := l.engineOptions(cfg, &opts, plugins, file, prevMap)
	if err != nil {
		return nil, err
	}

	if opts.Execute || cfg.Exec {
		if l.executor == nil {
			return nil, errors.New("execute requested but no executor is registered")
		}
		if source, err = l.executor(ctx, source, rc); err != nil {
			return nil, fmt.Errorf("executing input module failed: %w", err)
		}
	}

	proc := l.engine
	if opts.Implementation != nil {
		proc = opts.Implementation
	}

	res, err := proc.Process(ctx, source, engOpts)
	if err != nil {
		serr := surfaceError(err, source)
		var ferr FileError
		if errors.As(serr, &ferr) && ferr.ErrorFile() != "" {
			// Fixing the offending file must re-trigger the build.
			host.AddDependency(ferr.ErrorFile())
		}
		return nil, serr
	}

	l.log.Debug("Transformed stylesheet",
		zap.String("file", file),
		zap.Int("plugins", len(plugins)),
		zap.String("config", cfg.File))

	return translate(res, host, translateOpts{
		sourceMap: opts.SourceMap,
		to:        engOpts.To,
		from:      engOpts.From,
	})
}

// resolvePlugins concatenates the config-file plugin spec with the
// inline one and normalizes the whole into a flat sequence. Inline
// plugins run after config plugins.
func (l *Loader) resolvePlugins(cfg *config.ResolvedConfig, opts *Options, rc *common.RuntimeContext) ([]engine.Plugin, error) {
	normalizer := plugin.NewNormalizer(plugin.NewLoader(l.registry, l.log), rc, l.log)

	disabled := plugin.DisabledSet{}
	var out []engine.Plugin
	if cfg.Plugins != nil {
		got, err := normalizer.NormalizeWith(cfg.Plugins, cfg.File, disabled)
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	if inline := opts.PostcssOptions.Plugins.Spec; inline != nil {
		got, err := normalizer.NormalizeWith(inline, "", disabled)
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	return out, nil
}

// engineOptions merges config-file options with inline overrides into
// the engine option set. Inline options win.
func (l *Loader) engineOptions(cfg *config.ResolvedConfig, opts *Options, plugins []engine.Plugin, file string, prevMap *sourcemap.Map) (engine.Options, error) {
	eo := engine.Options{Plugins: plugins, Extra: opts.PostcssOptions.Extra}

	str := func(key string) string {
		if v, ok := cfg.Options[key].(string); ok {
			return v
		}
		return ""
	}
	eo.From = str("from")
	eo.To = str("to")
	parserName := str("parser")
	syntaxName := str("syntax")
	stringifierName := str("stringifier")

	po := &opts.PostcssOptions
	if po.From != "" {
		eo.From = po.From
	}
	if po.To != "" {
		eo.To = po.To
	}
	if po.Parser != "" {
		parserName = po.Parser
	}
	if po.Syntax != "" {
		syntaxName = po.Syntax
	}
	if po.Stringifier != "" {
		stringifierName = po.Stringifier
	}
	if eo.From == "" {
		eo.From = file
	}

	if syntaxName != "" {
		syn, err := resolveAs[engine.Syntax](l.registry, syntaxName, "syntax")
		if err != nil {
			return eo, err
		}
		eo.Parser = syn
		eo.Stringifier = syn
	}
	if parserName != "" {
		p, err := resolveAs[engine.Parser](l.registry, parserName, "parser")
		if err != nil {
			return eo, err
		}
		eo.Parser = p
	}
	if stringifierName != "" {
		s, err := resolveAs[engine.Stringifier](l.registry, stringifierName, "stringifier")
		if err != nil {
			return eo, err
		}
		eo.Stringifier = s
	}

	if opts.SourceMap.Enabled {
		eo.Map = &engine.MapOptions{Inline: opts.SourceMap.Inline}
		if prevMap != nil {
			eo.Map.Prev = prevMap.Normalize()
		}
	}
	return eo, nil
}

// resolveAs looks a named syntax component up in the registry and
// type-checks it.
func resolveAs[T any](r *plugin.Registry, name, kind string) (T, error) {
	var zero T
	v, err := r.Resolve(name)
	if err != nil {
		return zero, fmt.Errorf("unknown %s %q: %w", kind, name, err)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s %q has unexpected type %T", kind, name, v)
	}
	return t, nil
}
