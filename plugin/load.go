package plugin

import (
	"fmt"

	"go.uber.org/zap"
)

// Loader obtains concrete plugin values by name through a Resolver and
// applies option payloads.
type Loader struct {
	resolver Resolver
	log      *zap.Logger
}

// NewLoader creates a Loader over the given Resolver.
func NewLoader(resolver Resolver, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{resolver: resolver, log: log.Named("plugin-loader")}
}

// Load resolves name and produces the plugin value: a resolved
// constructor is invoked with the option payload (nil when the spec
// carries none), anything else is returned unmodified when no options
// are present. Failures come back as a LoadError naming the plugin and
// the originating config file.
func (l *Loader) Load(name string, opts Options, sourceFile string) (any, error) {
	v, err := l.resolver.Resolve(name)
	if err != nil {
		return nil, &LoadError{Plugin: name, File: sourceFile, Err: err}
	}

	ctor, isCtor := asConstructor(v)

	if len(opts) == 0 {
		if isCtor {
			// A constructor named with no options still has to be
			// invoked to yield the plugin value.
			out, err := ctor(nil)
			if err != nil {
				return nil, &LoadError{Plugin: name, File: sourceFile, Err: err}
			}
			l.log.Debug("Constructed plugin", zap.String("plugin", name))
			return out, nil
		}
		l.log.Debug("Resolved plugin", zap.String("plugin", name))
		return v, nil
	}

	if !isCtor {
		return nil, &LoadError{
			Plugin: name,
			File:   sourceFile,
			Err:    fmt.Errorf("plugin does not accept options (registered as %T)", v),
		}
	}
	out, err := ctor(opts)
	if err != nil {
		return nil, &LoadError{Plugin: name, File: sourceFile, Err: err}
	}
	l.log.Debug("Constructed plugin", zap.String("plugin", name), zap.Int("options", len(opts)))
	return out, nil
}

func asConstructor(v any) (Constructor, bool) {
	switch c := v.(type) {
	case Constructor:
		return c, true
	case func(opts Options) (any, error):
		return c, true
	}
	return nil, false
}
