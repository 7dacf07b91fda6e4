package engine

import (
	"bytes"
	"strings"
)

// cssPrinter is the built-in Stringifier. It emits one top-level item
// per generated line so that line-based source mappings stay exact.
type cssPrinter struct{}

// StringifyCSS renders the Root. The second return value holds, per
// generated line, the 0-based source line the item came from.
func (cssPrinter) StringifyCSS(root *Root) ([]byte, []int) {
	var buf bytes.Buffer
	var lines []int
	printItems(&buf, &lines, root.Items, "")
	return buf.Bytes(), lines
}

func printItems(buf *bytes.Buffer, lines *[]int, items []Item, indent string) {
	for i := range items {
		it := &items[i]
		switch {
		case it.Rule != nil:
			*lines = append(*lines, it.Rule.Line-1)
			buf.WriteString(indent)
			buf.WriteString(printRule(it.Rule))
			buf.WriteByte('\n')
		case it.AtRule != nil:
			at := it.AtRule
			*lines = append(*lines, at.Line-1)
			buf.WriteString(indent)
			buf.WriteByte('@')
			buf.WriteString(at.Name)
			if at.Params != "" {
				buf.WriteByte(' ')
				buf.WriteString(at.Params)
			}
			if at.Items == nil {
				buf.WriteString(";\n")
				continue
			}
			buf.WriteString(" {\n")
			printItems(buf, lines, at.Items, indent+"  ")
			*lines = append(*lines, at.Line-1)
			buf.WriteString(indent)
			buf.WriteString("}\n")
		case it.Comment != nil:
			*lines = append(*lines, it.Comment.Line-1)
			buf.WriteString(indent)
			buf.WriteString("/* ")
			buf.WriteString(it.Comment.Text)
			buf.WriteString(" */\n")
		}
	}
}

func printRule(r *Rule) string {
	var sb strings.Builder
	sb.WriteString(r.Selector)
	sb.WriteString(" { ")
	for i, d := range r.Decls {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(d.Prop)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		if d.Important {
			sb.WriteString(" !important")
		}
		sb.WriteByte(';')
	}
	sb.WriteString(" }")
	return sb.String()
}
