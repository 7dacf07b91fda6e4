// Package config discovers, loads and merges loader configuration: an
// explicit path or an upward directory search locates a config source,
// the source is strictly decoded, validated and merged with the runtime
// context, and the resolved file is registered as a build dependency.
package config

import (
	"bytes"
	"fmt"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	"github.com/postcss/postcss-loader/common"
	"github.com/postcss/postcss-loader/plugin"
)

// FileConfig is the decoded shape of one config source. Unknown keys
// are rejected during decode.
type FileConfig struct {
	Plugins     plugin.Node    `yaml:"plugins"`
	Parser      string         `yaml:"parser" validate:"omitempty"`
	Syntax      string         `yaml:"syntax" validate:"omitempty"`
	Stringifier string         `yaml:"stringifier" validate:"omitempty"`
	From        string         `yaml:"from,omitempty"`
	To          string         `yaml:"to,omitempty"`
	Exec        bool           `yaml:"exec,omitempty"`
	Options     map[string]any `yaml:"options,omitempty"`
}

// ConfigFunc is a programmatic config source: it is invoked with the
// runtime context and its return value is used as the option set
// without any context merging.
//
// It is the Go counterpart of a config file exporting a function.
type ConfigFunc func(rc *common.RuntimeContext) (*ResolvedConfig, error)

// ResolvedConfig is the result of loading exactly one config source.
type ResolvedConfig struct {
	Plugins plugin.Spec
	Options map[string]any
	File    string // path of the config file, "" for inline/absent config
	Exec    bool
}

// Empty reports whether the config carries nothing.
func (c *ResolvedConfig) Empty() bool {
	return c.Plugins == nil && len(c.Options) == 0 && c.File == ""
}

// decodeFileConfig strictly decodes and validates one config document.
func decodeFileConfig(data []byte, path string) (*FileConfig, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, &LoadError{File: path, Err: fmt.Errorf("failed to decode configuration data: %w", err)}
	}
	if err := gencfg.Sanitize(&fc); err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	if err := gencfg.Validate(&fc); err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	return &fc, nil
}

// options flattens the scalar fields of a FileConfig into the generic
// option map handed downstream.
func (fc *FileConfig) options() map[string]any {
	out := make(map[string]any, len(fc.Options)+6)
	for k, v := range fc.Options {
		out[k] = v
	}
	if fc.Parser != "" {
		out["parser"] = fc.Parser
	}
	if fc.Syntax != "" {
		out["syntax"] = fc.Syntax
	}
	if fc.Stringifier != "" {
		out["stringifier"] = fc.Stringifier
	}
	if fc.From != "" {
		out["from"] = fc.From
	}
	if fc.To != "" {
		out["to"] = fc.To
	}
	return out
}
