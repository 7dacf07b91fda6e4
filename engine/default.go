package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/postcss/postcss-loader/sourcemap"
)

// DefaultProcessor is the built-in engine: it parses CSS with the
// tdewolff parser, runs the plugin sequence over the Root and
// stringifies the result. With an empty plugin sequence the input text
// is returned byte for byte.
type DefaultProcessor struct {
	log *zap.Logger
}

// Default creates the built-in processor.
func Default(log *zap.Logger) *DefaultProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultProcessor{log: log.Named("engine")}
}

func (p *DefaultProcessor) Version() string { return Version }

// Process implements Processor.
func (p *DefaultProcessor) Process(ctx context.Context, source []byte, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var parser Parser = newCSSParser(p.log)
	if opts.Parser != nil {
		parser = opts.Parser
	}
	var stringifier Stringifier = cssPrinter{}
	if opts.Stringifier != nil {
		stringifier = opts.Stringifier
	}

	root, err := parser.ParseCSS(source, opts.From)
	if err != nil {
		return nil, err
	}

	res := &Result{Root: root, version: Version}

	for _, plugin := range opts.Plugins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := plugin.Transform(root, res); err != nil {
			return nil, fmt.Errorf("plugin %s failed: %w", plugin.Name(), err)
		}
	}

	var lineTable []int
	if len(opts.Plugins) == 0 {
		// Nothing could have changed; keep the source text intact.
		res.CSS = source
	} else {
		res.CSS, lineTable = stringifier.StringifyCSS(root)
	}

	if opts.Map != nil {
		res.Map = p.buildMap(source, res.CSS, lineTable, opts)
	}

	p.log.Debug("Processed stylesheet",
		zap.String("from", opts.From),
		zap.Int("plugins", len(opts.Plugins)),
		zap.Int("messages", len(res.Messages)),
		zap.Int("warnings", len(res.warnings)))

	return res, nil
}

// buildMap produces a line-based source map for the generated CSS.
func (p *DefaultProcessor) buildMap(source, generated []byte, lineTable []int, opts Options) *sourcemap.Map {
	m := sourcemap.New()

	src := opts.From
	if src == "" {
		src = "<input css>"
	}
	m.Sources = []string{src}
	m.SourcesContent = []string{string(source)}

	if lineTable == nil {
		m.Mappings = sourcemap.IdentityMappings(countLines(generated))
	} else {
		m.Mappings = sourcemap.EncodeLineMappings(lineTable)
	}

	if prev := opts.Map.Prev; prev != nil && len(prev.Sources) > 0 {
		// Chain through the previous stage: our single source is the
		// previous map's output, so surface its original sources and
		// content instead.
		m.Sources = append([]string(nil), prev.Sources...)
		if len(prev.SourcesContent) > 0 {
			m.SourcesContent = append([]string(nil), prev.SourcesContent...)
		}
	}
	return m
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := 1
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	if data[len(data)-1] == '\n' {
		n--
	}
	return n
}
