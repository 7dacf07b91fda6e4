// Package plugin resolves declarative plugin specifications into flat
// ordered sequences of instantiated engine plugins. A specification can
// mix names, name/option pairs, nested lists, ordered name tables,
// factories and ready plugin values; normalization always terminates in
// a flat []engine.Plugin.
package plugin

import (
	"fmt"

	yaml "gopkg.in/yaml.v3"

	"github.com/postcss/postcss-loader/common"
)

// Options is the option payload handed to a plugin constructor.
type Options map[string]any

// Spec is a plugin specification. Concrete types: Name, Named, List,
// Table, Factory and Ready.
type Spec interface {
	isSpec()
}

// Name selects a registered plugin by name, with no options.
type Name string

func (Name) isSpec() {}

// Named selects a registered plugin by name with an option payload.
// Disabled records an explicit "name: false" declaration.
type Named struct {
	Name     string
	Options  Options
	Disabled bool
}

func (Named) isSpec() {}

// List is an ordered sequence of specs. Order is significant: plugins
// run in the given sequence.
type List []Spec

func (List) isSpec() {}

// Table is an ordered name→options mapping. Entry order follows the
// declaration order of the source document.
type Table []Named

func (Table) isSpec() {}

// Factory produces a spec at normalization time, given the active
// runtime context. Its result, single or sequence, is fed back into
// normalization.
type Factory func(rc *common.RuntimeContext) (Spec, error)

func (Factory) isSpec() {}

// Ready wraps an already-instantiated plugin value. The value must
// satisfy the engine plugin contract when normalization reaches it.
type Ready struct {
	Value any
}

func (Ready) isSpec() {}

// Wrap converts an arbitrary value into a Spec. Strings become Names,
// slices become Lists, specs pass through, anything else is treated as
// a ready plugin value.
func Wrap(v any) Spec {
	switch x := v.(type) {
	case nil:
		return List(nil)
	case Spec:
		return x
	case string:
		return Name(x)
	case []any:
		out := make(List, 0, len(x))
		for _, el := range x {
			out = append(out, Wrap(el))
		}
		return out
	case func(rc *common.RuntimeContext) (Spec, error):
		return Factory(x)
	default:
		return Ready{Value: x}
	}
}

// UnmarshalYAML decodes a YAML plugins declaration:
//
//	plugins:
//	  - autoprefixer
//	  - cssnano: {preset: default}
//	  - other-plugin: false
//
// or the mapping form with one entry per plugin name. Scalars become
// Names, sequences become Lists and mappings become ordered Tables
// with false values recorded as disabled entries.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	spec, err := decodeSpecNode(value)
	if err != nil {
		return err
	}
	n.Spec = spec
	return nil
}

// Node is a yaml-decodable wrapper around a Spec.
type Node struct {
	Spec Spec
}

func decodeSpecNode(node *yaml.Node) (Spec, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return decodeSpecNode(node.Alias)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return List(nil), nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, fmt.Errorf("line %d: plugin name must be a string: %w", node.Line, err)
		}
		return Name(s), nil
	case yaml.SequenceNode:
		out := make(List, 0, len(node.Content))
		for _, el := range node.Content {
			spec, err := decodeSpecNode(el)
			if err != nil {
				return nil, err
			}
			out = append(out, spec)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(Table, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			var name string
			if err := key.Decode(&name); err != nil {
				return nil, fmt.Errorf("line %d: plugin name must be a string: %w", key.Line, err)
			}
			entry, err := decodeTableEntry(name, val)
			if err != nil {
				return nil, err
			}
			out = append(out, entry)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported plugins declaration", node.Line)
	}
}

func decodeTableEntry(name string, val *yaml.Node) (Named, error) {
	entry := Named{Name: name}
	switch {
	case val.Kind == yaml.ScalarNode && val.Tag == "!!bool":
		var enabled bool
		if err := val.Decode(&enabled); err != nil {
			return entry, err
		}
		entry.Disabled = !enabled
	case val.Kind == yaml.ScalarNode && val.Tag == "!!null":
		// name with no options
	case val.Kind == yaml.MappingNode:
		var opts Options
		if err := val.Decode(&opts); err != nil {
			return entry, fmt.Errorf("line %d: invalid options for plugin %q: %w", val.Line, name, err)
		}
		entry.Options = opts
	default:
		return entry, fmt.Errorf("line %d: options for plugin %q must be a mapping or false", val.Line, name)
	}
	return entry, nil
}
