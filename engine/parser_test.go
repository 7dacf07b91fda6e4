package engine

import (
	"strings"
	"testing"
)

func TestParseSimpleRule(t *testing.T) {
	p := newCSSParser(nil)

	root, err := p.ParseCSS([]byte(".a{color:red}"), "test.css")
	if err != nil {
		t.Fatalf("ParseCSS() error = %v", err)
	}

	if len(root.Items) != 1 || root.Items[0].Rule == nil {
		t.Fatalf("expected one rule, got %+v", root.Items)
	}
	rule := root.Items[0].Rule
	if rule.Selector != ".a" {
		t.Errorf("Selector = %q, want %q", rule.Selector, ".a")
	}
	if len(rule.Decls) != 1 {
		t.Fatalf("Decls = %+v, want one declaration", rule.Decls)
	}
	if d := rule.Decls[0]; d.Prop != "color" || d.Value != "red" || d.Important {
		t.Errorf("Decl = %+v, want color:red", d)
	}
}

func TestParseSelectorGroup(t *testing.T) {
	p := newCSSParser(nil)

	root, err := p.ParseCSS([]byte("h1, h2 , .title { margin: 0 }"), "")
	if err != nil {
		t.Fatalf("ParseCSS() error = %v", err)
	}
	if len(root.Items) != 1 || root.Items[0].Rule == nil {
		t.Fatalf("expected one rule, got %+v", root.Items)
	}
	if sel := root.Items[0].Rule.Selector; sel != "h1, h2, .title" {
		t.Errorf("Selector = %q", sel)
	}
}

func TestParseImportant(t *testing.T) {
	p := newCSSParser(nil)

	root, err := p.ParseCSS([]byte(".a { color: red !important; }"), "")
	if err != nil {
		t.Fatalf("ParseCSS() error = %v", err)
	}
	d := root.Items[0].Rule.Decls[0]
	if !d.Important || d.Value != "red" {
		t.Errorf("Decl = %+v, want important red", d)
	}
}

func TestParseAtRules(t *testing.T) {
	src := `@import "base.css";
@media print {
  .a { color: black }
}
`
	p := newCSSParser(nil)
	root, err := p.ParseCSS([]byte(src), "")
	if err != nil {
		t.Fatalf("ParseCSS() error = %v", err)
	}
	if len(root.Items) != 2 {
		t.Fatalf("Items = %d, want 2", len(root.Items))
	}

	imp := root.Items[0].AtRule
	if imp == nil || imp.Name != "import" || imp.Items != nil {
		t.Errorf("first item = %+v, want block-less @import", root.Items[0])
	}

	media := root.Items[1].AtRule
	if media == nil || media.Name != "media" {
		t.Fatalf("second item = %+v, want @media", root.Items[1])
	}
	if !strings.Contains(media.Params, "print") {
		t.Errorf("Params = %q", media.Params)
	}
	if len(media.Items) != 1 || media.Items[0].Rule == nil {
		t.Fatalf("nested items = %+v", media.Items)
	}
	if sel := media.Items[0].Rule.Selector; sel != ".a" {
		t.Errorf("nested selector = %q", sel)
	}
}

func TestParseComment(t *testing.T) {
	p := newCSSParser(nil)
	root, err := p.ParseCSS([]byte("/* banner */\n.a{color:red}"), "")
	if err != nil {
		t.Fatalf("ParseCSS() error = %v", err)
	}
	if len(root.Items) != 2 || root.Items[0].Comment == nil {
		t.Fatalf("Items = %+v, want comment then rule", root.Items)
	}
	if text := root.Items[0].Comment.Text; text != "banner" {
		t.Errorf("Comment = %q", text)
	}
}

func TestWalkAndGet(t *testing.T) {
	p := newCSSParser(nil)
	root, err := p.ParseCSS([]byte(".a{color:red}\n@media print{.b{color:blue}}"), "")
	if err != nil {
		t.Fatalf("ParseCSS() error = %v", err)
	}

	var sels []string
	root.WalkRules(func(r *Rule) bool {
		sels = append(sels, r.Selector)
		return true
	})
	if len(sels) != 2 || sels[0] != ".a" || sels[1] != ".b" {
		t.Errorf("WalkRules visited %v", sels)
	}

	if v, ok := root.Get(".b", "color"); !ok || v != "blue" {
		t.Errorf("Get(.b, color) = %q, %v", v, ok)
	}
}

func TestPrinterLineTable(t *testing.T) {
	p := newCSSParser(nil)
	root, err := p.ParseCSS([]byte(".a{color:red}\n.b{color:blue}"), "")
	if err != nil {
		t.Fatalf("ParseCSS() error = %v", err)
	}

	css, lines := cssPrinter{}.StringifyCSS(root)

	want := ".a { color: red; }\n.b { color: blue; }\n"
	if string(css) != want {
		t.Errorf("StringifyCSS() = %q, want %q", css, want)
	}
	if len(lines) != 2 || lines[0] != 0 || lines[1] != 1 {
		t.Errorf("line table = %v, want [0 1]", lines)
	}
}
