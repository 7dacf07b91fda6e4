package common_test

import (
	"testing"

	"github.com/postcss/postcss-loader/common"
)

func TestNewRuntimeContextOverrides(t *testing.T) {
	rc := common.NewRuntimeContext("/work", "/work/app.css", map[string]any{
		"env":    "production",
		"custom": 42,
	})
	if rc.Cwd != "/work" || rc.File != "/work/app.css" {
		t.Errorf("context = %+v", rc)
	}
	if rc.Env != "production" {
		t.Errorf("Env = %q, want production", rc.Env)
	}
	if rc.Extra["custom"] != 42 {
		t.Errorf("Extra = %v", rc.Extra)
	}
}

func TestNewRuntimeContextDefaultEnv(t *testing.T) {
	rc := common.NewRuntimeContext("/work", "", nil)
	if rc.Env != common.DefaultEnv {
		t.Errorf("Env = %q, want %q", rc.Env, common.DefaultEnv)
	}
}

func TestMergeContextWins(t *testing.T) {
	rc := common.NewRuntimeContext("/work", "", map[string]any{"custom": "x"})
	out := rc.Merge(map[string]any{"a": 1, "cwd": "/stale", "custom": "y"})

	if out["a"] != 1 {
		t.Errorf("out[a] = %v", out["a"])
	}
	if out["cwd"] != "/work" {
		t.Errorf("out[cwd] = %v, want /work", out["cwd"])
	}
	if out["custom"] != "x" {
		t.Errorf("out[custom] = %v, context overrides must win", out["custom"])
	}
	if _, ok := out["file"]; ok {
		t.Error("file key must be absent when no file is set")
	}
}
