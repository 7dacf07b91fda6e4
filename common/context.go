// Package common defines shared types used across the loader pipeline.
package common

import "maps"

// DefaultEnv is the environment name assumed when the caller does not
// provide one. It is threaded through RuntimeContext construction
// explicitly - the library never mutates process environment state.
const DefaultEnv = "development"

// RuntimeContext carries the per-request runtime information handed to
// config functions and plugin factories. It is created fresh for every
// transformation request and discarded afterwards.
type RuntimeContext struct {
	Cwd  string // working directory of the compilation
	Env  string // environment name, DefaultEnv unless overridden
	File string // path of the file being transformed, if known

	// Extra holds caller-supplied overrides and any additional fields
	// the surrounding build tool wants visible to config functions.
	Extra map[string]any
}

// NewRuntimeContext builds a context from computed defaults with
// caller-supplied overrides applied on top. The reserved keys "cwd",
// "env" and "file" override the corresponding fields, everything else
// lands in Extra.
func NewRuntimeContext(cwd, file string, overrides map[string]any) *RuntimeContext {
	rc := &RuntimeContext{
		Cwd:  cwd,
		Env:  DefaultEnv,
		File: file,
	}
	for k, v := range overrides {
		switch k {
		case "cwd":
			if s, ok := v.(string); ok {
				rc.Cwd = s
			}
		case "env":
			if s, ok := v.(string); ok {
				rc.Env = s
			}
		case "file":
			if s, ok := v.(string); ok {
				rc.File = s
			}
		default:
			if rc.Extra == nil {
				rc.Extra = make(map[string]any)
			}
			rc.Extra[k] = v
		}
	}
	return rc
}

// Merge shallow-merges the context fields onto the given option set.
// Context wins on key collision. The input map is not modified.
func (rc *RuntimeContext) Merge(options map[string]any) map[string]any {
	out := make(map[string]any, len(options)+len(rc.Extra)+3)
	maps.Copy(out, options)
	maps.Copy(out, rc.Extra)
	out["cwd"] = rc.Cwd
	out["env"] = rc.Env
	if rc.File != "" {
		out["file"] = rc.File
	}
	return out
}
