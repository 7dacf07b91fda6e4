// Package loader wires config resolution, plugin normalization and the
// transformation engine into one pipeline and translates engine results
// into the shape the surrounding build tool expects.
package loader

import (
	"fmt"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	"github.com/postcss/postcss-loader/common"
	"github.com/postcss/postcss-loader/config"
	"github.com/postcss/postcss-loader/engine"
	"github.com/postcss/postcss-loader/plugin"
)

// Options is the declared option object for one transformation request.
// Its fields are the fixed schema of recognized keys; yaml decoding
// rejects anything else.
type Options struct {
	PostcssOptions ProcessOptions  `yaml:"postcssOptions"`
	SourceMap      SourceMapOption `yaml:"sourceMap"`
	Execute        bool            `yaml:"execute"`

	// Implementation substitutes an alternate engine for this request.
	Implementation engine.Processor `yaml:"-"`
}

// ProcessOptions is the nested engine-facing option set.
type ProcessOptions struct {
	// Config controls config-file discovery: nil/true searches upward,
	// false disables lookup, a string is an explicit path and a
	// config.ConfigFunc is a programmatic source.
	Config any `yaml:"-"`

	Plugins     plugin.Node `yaml:"plugins"`
	Parser      string      `yaml:"parser"`
	Syntax      string      `yaml:"syntax"`
	Stringifier string      `yaml:"stringifier"`
	From        string      `yaml:"from"`
	To          string      `yaml:"to"`

	// Context carries caller-supplied RuntimeContext overrides.
	Context map[string]any `yaml:"context"`

	// Extra is passed through to the engine unchanged.
	Extra map[string]any `yaml:"options"`
}

// optionsDoc mirrors the yaml-visible shape of Options so the config
// key in a declared option document still decodes (bool or path).
type optionsDoc struct {
	PostcssOptions struct {
		Config      any            `yaml:"config"`
		Plugins     plugin.Node    `yaml:"plugins"`
		Parser      string         `yaml:"parser"`
		Syntax      string         `yaml:"syntax"`
		Stringifier string         `yaml:"stringifier"`
		From        string         `yaml:"from"`
		To          string         `yaml:"to"`
		Context     map[string]any `yaml:"context"`
		Extra       map[string]any `yaml:"options"`
	} `yaml:"postcssOptions"`
	SourceMap SourceMapOption `yaml:"sourceMap"`
	Execute   bool            `yaml:"execute"`
}

// ParseOptions strictly decodes a declared option document.
func ParseOptions(data []byte) (*Options, error) {
	var doc optionsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid loader options: %w", err)
	}
	opts := &Options{
		SourceMap: doc.SourceMap,
		Execute:   doc.Execute,
	}
	opts.PostcssOptions = ProcessOptions{
		Plugins:     doc.PostcssOptions.Plugins,
		Parser:      doc.PostcssOptions.Parser,
		Syntax:      doc.PostcssOptions.Syntax,
		Stringifier: doc.PostcssOptions.Stringifier,
		From:        doc.PostcssOptions.From,
		To:          doc.PostcssOptions.To,
		Context:     doc.PostcssOptions.Context,
		Extra:       doc.PostcssOptions.Extra,
	}
	switch v := doc.PostcssOptions.Config.(type) {
	case nil:
	case bool:
		opts.PostcssOptions.Config = v
	case string:
		opts.PostcssOptions.Config = v
	default:
		return nil, fmt.Errorf("invalid loader options: config must be a boolean or a path, got %T", v)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks the option object against the recognized schema.
func (o *Options) Validate() error {
	switch o.PostcssOptions.Config.(type) {
	case nil, bool, string, config.ConfigFunc, func(*common.RuntimeContext) (*config.ResolvedConfig, error):
	default:
		return fmt.Errorf("postcssOptions.config must be a boolean, a path or a config function, got %T",
			o.PostcssOptions.Config)
	}
	return gencfg.Validate(o)
}

// SourceMapOption is the sourceMap setting: false, true or "inline".
type SourceMapOption struct {
	Enabled bool
	Inline  bool
}

// UnmarshalYAML accepts a boolean or the string "inline".
func (o *SourceMapOption) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!bool":
		return node.Decode(&o.Enabled)
	case "!!str":
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s != "inline" {
			return fmt.Errorf("sourceMap must be a boolean or \"inline\", got %q", s)
		}
		o.Enabled = true
		o.Inline = true
		return nil
	case "!!null":
		return nil
	default:
		return fmt.Errorf("sourceMap must be a boolean or \"inline\"")
	}
}
