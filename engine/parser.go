package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// cssParser is the built-in Parser of the default processor.
type cssParser struct {
	log *zap.Logger
}

func newCSSParser(log *zap.Logger) *cssParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &cssParser{log: log.Named("css-parser")}
}

// ParseCSS parses CSS text into a Root.
func (p *cssParser) ParseCSS(source []byte, from string) (*Root, error) {
	root := &Root{Source: from}

	input := parse.NewInput(bytes.NewReader(source))
	parser := css.NewParser(input, false)

	items, err := p.parseItems(parser, input, source, false)
	if err != nil {
		if serr := (*SyntaxError)(nil); errors.As(err, &serr) {
			serr.File = from
		}
		return nil, err
	}
	root.Items = items
	return root, nil
}

// parseItems consumes grammar items until end of input or, when nested
// is set, the end of the enclosing @-rule block.
func (p *cssParser) parseItems(parser *css.Parser, input *parse.Input, source []byte, nested bool) ([]Item, error) {
	var items []Item
	var pending []string // selector parts seen before the ruleset opens

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				line, col := lineCol(source, input.Offset())
				return nil, &SyntaxError{Line: line, Column: col, Reason: err.Error()}
			}
			if nested {
				// Block left unterminated; tolerate like a close.
				return items, nil
			}
			return items, nil

		case css.EndAtRuleGrammar:
			if nested {
				return items, nil
			}

		case css.AtRuleGrammar:
			// Simple @-rule without a block (@import, @charset, ...)
			line, _ := lineCol(source, input.Offset())
			items = append(items, Item{AtRule: &AtRule{
				Name:   strings.TrimPrefix(string(data), "@"),
				Params: tokensText(parser.Values()),
				Line:   line,
			}})

		case css.BeginAtRuleGrammar:
			line, _ := lineCol(source, input.Offset())
			at := &AtRule{
				Name:   strings.TrimPrefix(string(data), "@"),
				Params: tokensText(parser.Values()),
				Line:   line,
			}
			inner, err := p.parseItems(parser, input, source, true)
			if err != nil {
				return nil, err
			}
			if inner == nil {
				inner = []Item{}
			}
			at.Items = inner
			items = append(items, Item{AtRule: at})

		case css.QualifiedRuleGrammar:
			// A selector group part before the one that opens the
			// block; collect it and wait for BeginRulesetGrammar.
			pending = append(pending, selectorText(data, parser.Values()))

		case css.BeginRulesetGrammar:
			line, _ := lineCol(source, input.Offset())
			sel := append(pending, selectorText(data, parser.Values()))
			pending = nil
			rule := &Rule{
				Selector: strings.Join(sel, ", "),
				Line:     line,
			}
			decls, err := p.parseDeclarations(parser, input, source)
			if err != nil {
				return nil, err
			}
			rule.Decls = decls
			items = append(items, Item{Rule: rule})

		case css.CommentGrammar:
			line, _ := lineCol(source, input.Offset())
			text := strings.TrimSuffix(strings.TrimPrefix(string(data), "/*"), "*/")
			items = append(items, Item{Comment: &Comment{Text: strings.TrimSpace(text), Line: line}})

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			// Declarations outside a ruleset appear in inline mode
			// only. Skip.
			p.log.Debug("Skipping stray declaration", zap.String("property", string(data)))

		case css.TokenGrammar:
			// Stray token between rules, ignore.
		}
	}
}

// parseDeclarations reads declarations until the end of the ruleset.
func (p *cssParser) parseDeclarations(parser *css.Parser, input *parse.Input, source []byte) ([]Decl, error) {
	var decls []Decl

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				line, col := lineCol(source, input.Offset())
				return nil, &SyntaxError{Line: line, Column: col, Reason: err.Error()}
			}
			return decls, nil

		case css.EndRulesetGrammar:
			return decls, nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			value, important := declValue(parser.Values())
			decls = append(decls, Decl{
				Prop:      string(data),
				Value:     value,
				Important: important,
			})
		}
	}
}

// selectorText reconstructs the full selector from the grammar data and
// its value tokens, normalizing whitespace around comma groups.
func selectorText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	var parts []string
	for part := range strings.SplitSeq(sb.String(), ",") {
		if part = strings.Join(strings.Fields(part), " "); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

// tokensText joins value tokens into a single trimmed string.
func tokensText(values []css.Token) string {
	var sb strings.Builder
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// declValue renders a declaration value, splitting off a trailing
// !important marker.
func declValue(values []css.Token) (string, bool) {
	var parts []string
	for _, t := range values {
		if t.TokenType == css.WhitespaceToken {
			continue
		}
		parts = append(parts, string(t.Data))
	}
	important := false
	if n := len(parts); n >= 2 && parts[n-1] == "important" && parts[n-2] == "!" {
		important = true
		parts = parts[:n-2]
	} else if n >= 1 && strings.EqualFold(parts[n-1], "!important") {
		important = true
		parts = parts[:n-1]
	}
	return strings.Join(parts, " "), important
}

// lineCol converts a byte offset into 1-based line and column.
func lineCol(source []byte, offset int) (int, int) {
	if offset > len(source) {
		offset = len(source)
	}
	line := 1 + bytes.Count(source[:offset], []byte{'\n'})
	last := bytes.LastIndexByte(source[:offset], '\n')
	return line, offset - last
}
