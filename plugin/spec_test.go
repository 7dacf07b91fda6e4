package plugin_test

import (
	"testing"

	yaml "gopkg.in/yaml.v3"

	"github.com/postcss/postcss-loader/plugin"
)

func decode(t *testing.T, doc string) plugin.Spec {
	t.Helper()
	var n plugin.Node
	if err := yaml.Unmarshal([]byte(doc), &n); err != nil {
		t.Fatalf("Unmarshal(%q) error = %v", doc, err)
	}
	return n.Spec
}

func TestDecodeScalar(t *testing.T) {
	spec := decode(t, "autoprefixer")
	if name, ok := spec.(plugin.Name); !ok || name != "autoprefixer" {
		t.Errorf("decoded %#v, want Name(autoprefixer)", spec)
	}
}

func TestDecodeSequence(t *testing.T) {
	spec := decode(t, "[autoprefixer, cssnano]")
	list, ok := spec.(plugin.List)
	if !ok || len(list) != 2 {
		t.Fatalf("decoded %#v, want a two element List", spec)
	}
	if list[0].(plugin.Name) != "autoprefixer" || list[1].(plugin.Name) != "cssnano" {
		t.Errorf("decoded %#v", list)
	}
}

func TestDecodeTablePreservesOrder(t *testing.T) {
	spec := decode(t, `
cssnano: {preset: default}
autoprefixer:
other-plugin: false
`)
	table, ok := spec.(plugin.Table)
	if !ok || len(table) != 3 {
		t.Fatalf("decoded %#v, want a three entry Table", spec)
	}
	if table[0].Name != "cssnano" || table[1].Name != "autoprefixer" || table[2].Name != "other-plugin" {
		t.Errorf("entry order = %s, %s, %s", table[0].Name, table[1].Name, table[2].Name)
	}
	if v, ok := table[0].Options["preset"]; !ok || v != "default" {
		t.Errorf("cssnano options = %v", table[0].Options)
	}
	if table[1].Options != nil || table[1].Disabled {
		t.Errorf("autoprefixer entry = %+v", table[1])
	}
	if !table[2].Disabled {
		t.Error("other-plugin should be disabled")
	}
}

func TestDecodeSequenceOfMappings(t *testing.T) {
	spec := decode(t, `
- autoprefixer
- cssnano: {preset: default}
`)
	list, ok := spec.(plugin.List)
	if !ok || len(list) != 2 {
		t.Fatalf("decoded %#v", spec)
	}
	table, ok := list[1].(plugin.Table)
	if !ok || len(table) != 1 || table[0].Name != "cssnano" {
		t.Errorf("second element = %#v", list[1])
	}
}

func TestDecodeRejectsScalarOptions(t *testing.T) {
	var n plugin.Node
	if err := yaml.Unmarshal([]byte("cssnano: 42"), &n); err == nil {
		t.Error("expected error for non-mapping options")
	}
}

func TestWrap(t *testing.T) {
	if _, ok := plugin.Wrap("autoprefixer").(plugin.Name); !ok {
		t.Error("Wrap(string) should produce a Name")
	}
	if _, ok := plugin.Wrap([]any{"a", "b"}).(plugin.List); !ok {
		t.Error("Wrap([]any) should produce a List")
	}
	if _, ok := plugin.Wrap(struct{}{}).(plugin.Ready); !ok {
		t.Error("Wrap(other) should produce a Ready value")
	}
	spec := plugin.Name("x")
	if plugin.Wrap(spec) != spec {
		t.Error("Wrap(Spec) should pass through")
	}
}
