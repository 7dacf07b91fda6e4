// Package engine defines the CSS transformation engine contract the
// loader is built against and provides a default implementation based
// on github.com/tdewolff/parse. The loader treats any Processor as an
// opaque callable over text producing text, messages and a source map.
package engine

import (
	"context"
	"fmt"

	"github.com/postcss/postcss-loader/sourcemap"
)

// Version identifies the engine contract carried by results and
// already-instantiated plugins.
const Version = "8.4.0"

// Processor runs a plugin sequence over CSS source.
type Processor interface {
	Process(ctx context.Context, source []byte, opts Options) (*Result, error)
	Version() string
}

// Options is the per-call option set handed to a Processor.
type Options struct {
	From string // path of the input file, used in maps and diagnostics
	To   string // path of the output target, used for map rebasing

	Plugins []Plugin

	Parser      Parser      // overrides the processor's own parser
	Stringifier Stringifier // overrides the processor's own stringifier

	Map *MapOptions // nil disables source map generation

	// Extra carries engine-specific options pass-through. The default
	// processor ignores unrecognized keys.
	Extra map[string]any
}

// MapOptions controls source map generation.
type MapOptions struct {
	Inline bool            // emit the map as an inline annotation
	Prev   *sourcemap.Map  // map produced by an earlier pipeline stage
}

// Parser turns CSS text into a Root.
type Parser interface {
	ParseCSS(source []byte, from string) (*Root, error)
}

// Stringifier turns a Root back into CSS text. The returned line table
// holds, per generated line, the 0-based original line it came from
// (or -1 when unknown).
type Stringifier interface {
	StringifyCSS(root *Root) (css []byte, lines []int)
}

// Syntax bundles a parser and a stringifier.
type Syntax interface {
	Parser
	Stringifier
}

// Plugin transforms a parsed stylesheet in place. Plugins run in the
// order given and may append Messages and Warnings through the Result.
type Plugin interface {
	Name() string
	Transform(root *Root, res *Result) error
}

// TransformFunc adapts a bare function to the Plugin contract.
type TransformFunc func(root *Root, res *Result) error

func (f TransformFunc) Name() string { return "anonymous" }

func (f TransformFunc) Transform(root *Root, res *Result) error { return f(root, res) }

// Pack groups plugins so that one resolved name can contribute an
// ordered sub-sequence of plugins.
type Pack struct {
	Plugins []Plugin
}

// AsPlugins reports whether a resolved value satisfies the plugin
// contract: either a single transform or something carrying an ordered
// plugins sequence.
func AsPlugins(v any) ([]Plugin, bool) {
	switch p := v.(type) {
	case nil:
		return nil, false
	case Plugin:
		return []Plugin{p}, true
	case *Pack:
		return p.Plugins, true
	case Pack:
		return p.Plugins, true
	case func(*Root, *Result) error:
		return []Plugin{TransformFunc(p)}, true
	}
	return nil, false
}

// Warning is a non-fatal diagnostic attached to a Result.
type Warning struct {
	Text   string
	Plugin string
	File   string
	Line   int // 1-based, 0 when unknown
	Column int // 1-based, 0 when unknown
}

func (w Warning) String() string {
	s := w.Text
	if w.File != "" {
		s = fmt.Sprintf("%s:%d:%d: %s", w.File, w.Line, w.Column, w.Text)
	}
	if w.Plugin != "" {
		s += " (" + w.Plugin + ")"
	}
	return s
}

// MessageType classifies messages emitted by plugins. Each recognized
// type maps 1:1 to a build-tool capability call; everything else is
// MessageOther and ignored by the loader for forward compatibility.
type MessageType int

const (
	MessageOther MessageType = iota
	MessageDependency
	MessageBuildDependency
	MessageMissingDependency
	MessageContextDependency
	MessageAsset
)

func (t MessageType) String() string {
	switch t {
	case MessageDependency:
		return "dependency"
	case MessageBuildDependency:
		return "build-dependency"
	case MessageMissingDependency:
		return "missing-dependency"
	case MessageContextDependency:
		return "context-dependency"
	case MessageAsset:
		return "asset"
	default:
		return "other"
	}
}

// Message is a typed side-effect declaration produced during a run.
type Message struct {
	Type      MessageType
	Plugin    string
	File      string
	Content   []byte
	SourceMap *sourcemap.Map
	Info      map[string]any
}

// Result is what a Processor produces for one run.
type Result struct {
	CSS      []byte
	Map      *sourcemap.Map
	Root     *Root
	Messages []Message

	warnings []Warning
	version  string
}

// Warn appends a warning to the result, preserving emission order.
func (r *Result) Warn(w Warning) {
	r.warnings = append(r.warnings, w)
}

// Warnings returns accumulated warnings in emission order.
func (r *Result) Warnings() []Warning {
	return r.warnings
}

// ProcessorVersion is the version tag of the engine that produced the
// result.
func (r *Result) ProcessorVersion() string {
	return r.version
}

// SyntaxError is reported when the input cannot be parsed as CSS.
type SyntaxError struct {
	File   string
	Line   int // 1-based
	Column int // 1-based
	Reason string
}

func (e *SyntaxError) Error() string {
	file := e.File
	if file == "" {
		file = "<css input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Column, e.Reason)
}
