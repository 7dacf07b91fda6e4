package loader

import (
	"github.com/Masterminds/semver/v3"

	"github.com/postcss/postcss-loader/engine"
	"github.com/postcss/postcss-loader/sourcemap"
)

// Result is what the build tool receives for one request.
type Result struct {
	CSS []byte
	// Map is the normalized source map, nil when maps are disabled or
	// the map was inlined into CSS.
	Map  *sourcemap.Map
	Meta *Metadata
}

// Metadata carries the reusable engine AST so a downstream transform
// stage running a compatible engine can skip re-parsing.
type Metadata struct {
	Type     string // engine family tag, always "postcss"
	Version  string // version of the engine that produced Root
	Root     *engine.Root
	Messages []engine.Message
}

// Compatible reports whether the stamped engine version satisfies the
// given semantic-version range, e.g. "^8.0.0".
func (m *Metadata) Compatible(rangeSpec string) bool {
	c, err := semver.NewConstraint(rangeSpec)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return false
	}
	return c.Check(v)
}

// Warning adapts an engine warning to the error value handed to the
// host's warning capability.
type Warning struct {
	engine.Warning
}

func (w Warning) Error() string { return w.String() }

type translateOpts struct {
	sourceMap SourceMapOption
	from      string
	to        string
}

// translate walks the engine result: warnings are forwarded in order,
// typed messages dispatch to the matching host capability, and the
// map, when present and wanted, is normalized and rebased. Unrecognized
// message types are ignored for forward compatibility.
func translate(res *engine.Result, host Host, opts translateOpts) (*Result, error) {
	for _, w := range res.Warnings() {
		host.EmitWarning(Warning{w})
	}

	for _, msg := range res.Messages {
		switch msg.Type {
		case engine.MessageDependency:
			if msg.File != "" {
				host.AddDependency(msg.File)
			}
		case engine.MessageBuildDependency:
			if msg.File != "" {
				host.AddBuildDependency(msg.File)
			}
		case engine.MessageMissingDependency:
			if msg.File != "" {
				host.AddMissingDependency(msg.File)
			}
		case engine.MessageContextDependency:
			if msg.File != "" {
				host.AddContextDependency(msg.File)
			}
		case engine.MessageAsset:
			if msg.File != "" {
				host.EmitFile(msg.File, msg.Content, msg.SourceMap, msg.Info)
			}
		}
	}

	out := &Result{
		CSS: res.CSS,
		Meta: &Metadata{
			Type:     "postcss",
			Version:  res.ProcessorVersion(),
			Root:     res.Root,
			Messages: res.Messages,
		},
	}

	if res.Map != nil && opts.sourceMap.Enabled {
		m := res.Map.Normalize()
		target := opts.to
		if target == "" {
			target = opts.from
		}
		m.RebaseAbsolute(target)

		if opts.sourceMap.Inline {
			uri, err := m.DataURI()
			if err != nil {
				return nil, err
			}
			annotation := "\n/*# sourceMappingURL=" + uri + " */"
			css := make([]byte, 0, len(res.CSS)+len(annotation))
			out.CSS = append(append(css, res.CSS...), annotation...)
		} else {
			out.Map = m
		}
	}
	return out, nil
}
