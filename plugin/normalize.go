package plugin

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/postcss/postcss-loader/common"
	"github.com/postcss/postcss-loader/engine"
)

// maxDepth bounds spec expansion. Factories and tables are always
// replaced by their expansion, never re-inserted as themselves, so the
// reference behavior terminates; the guard turns a misbehaving factory
// into an error instead of a hang.
const maxDepth = 64

// DisabledSet tracks plugin names explicitly set to false. It persists
// across one normalization call: a name present here is skipped at
// every nesting level reached during that call.
type DisabledSet map[string]struct{}

func (d DisabledSet) Add(name string)      { d[name] = struct{}{} }
func (d DisabledSet) Has(name string) bool { _, ok := d[name]; return ok }

// Normalizer reduces heterogeneous plugin specs to flat ordered
// sequences of engine plugins.
type Normalizer struct {
	loader *Loader
	rc     *common.RuntimeContext
	log    *zap.Logger
}

// NewNormalizer creates a Normalizer. The runtime context is handed to
// factories encountered during normalization.
func NewNormalizer(loader *Loader, rc *common.RuntimeContext, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{loader: loader, rc: rc, log: log.Named("plugin-normalizer")}
}

// Normalize flattens spec into the ordered plugin sequence it
// describes. sourceFile names the config file the spec came from and
// appears in error messages; pass "" for inline specs. Any load
// failure aborts the whole normalization.
func (n *Normalizer) Normalize(spec Spec, sourceFile string) ([]engine.Plugin, error) {
	st := &normState{disabled: DisabledSet{}, file: sourceFile}
	out, err := n.normalize(spec, st, 0)
	if err != nil {
		return nil, err
	}
	n.log.Debug("Normalized plugin spec",
		zap.Int("plugins", len(out)),
		zap.Int("disabled", len(st.disabled)),
		zap.String("source", sourceFile))
	return out, nil
}

// NormalizeWith is Normalize with a caller-provided disabled set, so
// several spec fragments can share one round of disable bookkeeping.
func (n *Normalizer) NormalizeWith(spec Spec, sourceFile string, disabled DisabledSet) ([]engine.Plugin, error) {
	st := &normState{disabled: disabled, file: sourceFile}
	return n.normalize(spec, st, 0)
}

// normState is the per-call bookkeeping: the inherited disabled set and
// the running output index used by shape errors.
type normState struct {
	disabled DisabledSet
	file     string
	index    int
}

func (n *Normalizer) normalize(spec Spec, st *normState, depth int) ([]engine.Plugin, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("plugin spec expansion exceeds %d levels (%s)", maxDepth, origin(st.file))
	}

	switch s := spec.(type) {
	case nil:
		return nil, nil

	case List:
		var out []engine.Plugin
		for _, el := range s {
			got, err := n.normalize(el, st, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, got...)
		}
		return out, nil

	case Table:
		// Explicitly disabled names are recorded first so later
		// entries and nested expansions of this same call skip them.
		for _, entry := range s {
			if entry.Disabled {
				st.disabled.Add(entry.Name)
			}
		}
		var out []engine.Plugin
		for _, entry := range s {
			if entry.Disabled || st.disabled.Has(entry.Name) {
				continue
			}
			got, err := n.loadAndRecurse(entry.Name, entry.Options, st, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, got...)
		}
		return out, nil

	case Name:
		if st.disabled.Has(string(s)) {
			return nil, nil
		}
		return n.loadAndRecurse(string(s), nil, st, depth)

	case Named:
		if s.Disabled {
			st.disabled.Add(s.Name)
			return nil, nil
		}
		if st.disabled.Has(s.Name) {
			return nil, nil
		}
		return n.loadAndRecurse(s.Name, s.Options, st, depth)

	case Factory:
		produced, err := s(n.rc)
		if err != nil {
			return nil, &LoadError{Plugin: "factory", File: st.file, Err: err}
		}
		return n.normalize(produced, st, depth+1)

	case Ready:
		return n.ready(s.Value, st, depth)

	default:
		return nil, fmt.Errorf("unsupported plugin spec %T (%s)", spec, origin(st.file))
	}
}

// loadAndRecurse loads one named plugin and feeds the result back into
// normalization, so a loaded pack's own sub-plugins surface identically
// to direct specs.
func (n *Normalizer) loadAndRecurse(name string, opts Options, st *normState, depth int) ([]engine.Plugin, error) {
	v, err := n.loader.Load(name, opts, st.file)
	if err != nil {
		return nil, err
	}
	return n.normalize(Wrap(v), st, depth+1)
}

// ready shape-checks a resolved value: it must expose the engine
// plugin contract, either directly as a transform or plugins sequence,
// or through a factory or constructor producing one.
func (n *Normalizer) ready(v any, st *normState, depth int) ([]engine.Plugin, error) {
	if f, ok := v.(Factory); ok {
		produced, err := f(n.rc)
		if err != nil {
			return nil, &LoadError{Plugin: "factory", File: st.file, Err: err}
		}
		return n.normalize(produced, st, depth+1)
	}
	if ctor, ok := asConstructor(v); ok {
		built, err := ctor(nil)
		if err != nil {
			return nil, &LoadError{Plugin: "constructor", File: st.file, Err: err}
		}
		return n.normalize(Wrap(built), st, depth+1)
	}
	plugins, ok := engine.AsPlugins(v)
	if !ok {
		return nil, &ShapeError{Index: st.index, File: st.file, Value: v}
	}
	st.index += len(plugins)
	return plugins, nil
}

func origin(file string) string {
	if file == "" {
		return "inline options"
	}
	return file
}
