package plugin_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/postcss/postcss-loader/common"
	"github.com/postcss/postcss-loader/engine"
	"github.com/postcss/postcss-loader/plugin"
)

type fakePlugin struct {
	name string
	opts plugin.Options
}

func (p *fakePlugin) Name() string { return p.name }

func (p *fakePlugin) Transform(*engine.Root, *engine.Result) error { return nil }

func testRegistry() *plugin.Registry {
	r := plugin.NewRegistry()
	for _, name := range []string{"pluginA", "pluginB", "pluginC"} {
		r.Register(name, plugin.Constructor(func(opts plugin.Options) (any, error) {
			return &fakePlugin{name: name, opts: opts}, nil
		}))
	}
	r.Register("ready", &fakePlugin{name: "ready"})
	r.Register("pack", &engine.Pack{Plugins: []engine.Plugin{
		&fakePlugin{name: "inner1"},
		&fakePlugin{name: "inner2"},
	}})
	return r
}

func newNormalizer(t *testing.T, rc *common.RuntimeContext) *plugin.Normalizer {
	t.Helper()
	return plugin.NewNormalizer(plugin.NewLoader(testRegistry(), nil), rc, nil)
}

func names(plugins []engine.Plugin) []string {
	out := make([]string, len(plugins))
	for i, p := range plugins {
		out[i] = p.Name()
	}
	return out
}

func TestNormalizeTableWithDisabled(t *testing.T) {
	n := newNormalizer(t, nil)

	spec := plugin.Table{
		{Name: "pluginA", Options: plugin.Options{"opt": 1}},
		{Name: "pluginB", Disabled: true},
	}

	plugins, err := n.Normalize(spec, "postcss.config.yaml")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if got := names(plugins); len(got) != 1 || got[0] != "pluginA" {
		t.Fatalf("Normalize() = %v, want [pluginA]", got)
	}
	fp := plugins[0].(*fakePlugin)
	if v, ok := fp.opts["opt"]; !ok || v != 1 {
		t.Errorf("pluginA options = %v, want {opt:1}", fp.opts)
	}
}

func TestNormalizeDisabledInheritedAcrossNesting(t *testing.T) {
	n := newNormalizer(t, nil)

	// pluginB disabled up front must be skipped at every nesting level
	spec := plugin.List{
		plugin.Table{{Name: "pluginB", Disabled: true}},
		plugin.List{
			plugin.Table{{Name: "pluginB"}, {Name: "pluginA"}},
			plugin.Name("pluginB"),
		},
	}

	plugins, err := n.Normalize(spec, "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := names(plugins); len(got) != 1 || got[0] != "pluginA" {
		t.Errorf("Normalize() = %v, want [pluginA]", got)
	}
}

func TestNormalizeOrderPreserved(t *testing.T) {
	n := newNormalizer(t, nil)

	spec := plugin.List{
		plugin.Name("pluginC"),
		plugin.Name("pluginA"),
		plugin.Name("pluginB"),
	}

	plugins, err := n.Normalize(spec, "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	want := []string{"pluginC", "pluginA", "pluginB"}
	got := names(plugins)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Normalize() = %v, want %v", got, want)
		}
	}
}

func TestNormalizeConcatenation(t *testing.T) {
	n := newNormalizer(t, nil)

	left, err := n.Normalize(plugin.List{plugin.Name("pluginA")}, "")
	if err != nil {
		t.Fatal(err)
	}
	right, err := n.Normalize(plugin.List{plugin.Name("pluginB")}, "")
	if err != nil {
		t.Fatal(err)
	}
	both, err := n.Normalize(plugin.List{plugin.Name("pluginA"), plugin.Name("pluginB")}, "")
	if err != nil {
		t.Fatal(err)
	}

	want := append(names(left), names(right)...)
	got := names(both)
	if len(got) != len(want) {
		t.Fatalf("concat mismatch: %v vs %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("concat mismatch: %v vs %v", got, want)
		}
	}
}

func TestNormalizePackExpansion(t *testing.T) {
	n := newNormalizer(t, nil)

	plugins, err := n.Normalize(plugin.Name("pack"), "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := names(plugins); len(got) != 2 || got[0] != "inner1" || got[1] != "inner2" {
		t.Errorf("Normalize(pack) = %v", got)
	}
}

func TestNormalizeFactory(t *testing.T) {
	rc := common.NewRuntimeContext("/work", "", map[string]any{"env": "production"})
	n := newNormalizer(t, rc)

	factory := plugin.Factory(func(rc *common.RuntimeContext) (plugin.Spec, error) {
		if rc.Env != "production" {
			return nil, fmt.Errorf("unexpected env %q", rc.Env)
		}
		return plugin.List{plugin.Name("pluginA"), plugin.Name("ready")}, nil
	})

	plugins, err := n.Normalize(factory, "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := names(plugins); len(got) != 2 || got[0] != "pluginA" || got[1] != "ready" {
		t.Errorf("Normalize(factory) = %v", got)
	}
}

func TestNormalizeEmptyTable(t *testing.T) {
	n := newNormalizer(t, nil)

	// a table with every entry disabled yields an empty sequence, not
	// an error
	plugins, err := n.Normalize(plugin.Table{
		{Name: "pluginA", Disabled: true},
		{Name: "pluginB", Disabled: true},
	}, "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if len(plugins) != 0 {
		t.Errorf("Normalize() = %v, want empty", names(plugins))
	}
}

func TestNormalizeUnknownPlugin(t *testing.T) {
	n := newNormalizer(t, nil)

	_, err := n.Normalize(plugin.Name("missing"), "/etc/postcss.config.yaml")
	if err == nil {
		t.Fatal("Normalize() expected error")
	}

	var lerr *plugin.LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("error = %T, want LoadError", err)
	}
	if lerr.Plugin != "missing" || lerr.File != "/etc/postcss.config.yaml" {
		t.Errorf("LoadError = %+v", lerr)
	}
}

func TestNormalizeShapeError(t *testing.T) {
	n := newNormalizer(t, nil)

	_, err := n.Normalize(plugin.List{
		plugin.Name("pluginA"),
		plugin.Ready{Value: 42},
	}, "cfg.yaml")
	if err == nil {
		t.Fatal("Normalize() expected error")
	}

	var serr *plugin.ShapeError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %T, want ShapeError", err)
	}
	if serr.Index != 1 || serr.File != "cfg.yaml" {
		t.Errorf("ShapeError = %+v", serr)
	}
}

func TestNormalizeConstructorByName(t *testing.T) {
	n := newNormalizer(t, nil)

	// the common declaration form: a bare name referencing a plugin
	// registered as a constructor
	plugins, err := n.Normalize(plugin.Name("pluginA"), "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := names(plugins); len(got) != 1 || got[0] != "pluginA" {
		t.Fatalf("Normalize() = %v, want [pluginA]", got)
	}
	if fp := plugins[0].(*fakePlugin); fp.opts != nil {
		t.Errorf("options = %v, want none", fp.opts)
	}
}

func TestNormalizeRegisteredFactory(t *testing.T) {
	reg := testRegistry()
	reg.Register("env-pack", plugin.Factory(func(rc *common.RuntimeContext) (plugin.Spec, error) {
		return plugin.List{plugin.Name("pluginA"), plugin.Name("pluginB")}, nil
	}))

	n := plugin.NewNormalizer(plugin.NewLoader(reg, nil), nil, nil)
	plugins, err := n.Normalize(plugin.Name("env-pack"), "")
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if got := names(plugins); len(got) != 2 || got[0] != "pluginA" || got[1] != "pluginB" {
		t.Errorf("Normalize(env-pack) = %v", got)
	}
}

func TestNormalizeDepthGuard(t *testing.T) {
	n := newNormalizer(t, nil)

	var loop plugin.Factory
	loop = func(*common.RuntimeContext) (plugin.Spec, error) { return loop, nil }

	_, err := n.Normalize(loop, "")
	if err == nil {
		t.Fatal("Normalize() expected error for a self-reproducing factory")
	}
	if !strings.Contains(err.Error(), "levels") {
		t.Errorf("error = %v, want the expansion depth limit", err)
	}
}

func TestLoaderWithoutOptionsReturnsValueUnmodified(t *testing.T) {
	reg := testRegistry()
	ready := &fakePlugin{name: "preconfigured"}
	reg.Register("preconfigured", ready)

	l := plugin.NewLoader(reg, nil)
	v, err := l.Load("preconfigured", nil, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v != ready {
		t.Errorf("Load() = %v, want the registered instance", v)
	}
}

func TestLoaderRejectsOptionsOnInstance(t *testing.T) {
	reg := testRegistry()
	l := plugin.NewLoader(reg, nil)

	_, err := l.Load("ready", plugin.Options{"x": 1}, "cfg.yaml")
	if err == nil {
		t.Fatal("Load() expected error for options on a ready instance")
	}
	var lerr *plugin.LoadError
	if !errors.As(err, &lerr) || lerr.Plugin != "ready" {
		t.Errorf("error = %v", err)
	}
}
