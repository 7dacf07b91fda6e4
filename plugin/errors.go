package plugin

import "fmt"

// LoadError is reported when a plugin cannot be resolved or its
// constructor fails. The message names the plugin and the config file
// it came from so the user can act on it without a stack trace.
type LoadError struct {
	Plugin string
	File   string // originating config file, "" for inline options
	Err    error
}

func (e *LoadError) Error() string {
	origin := e.File
	if origin == "" {
		origin = "inline options"
	}
	return fmt.Sprintf("loading plugin %q failed (%s): %v", e.Plugin, origin, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ShapeError is reported when a loaded value does not satisfy the
// engine plugin contract.
type ShapeError struct {
	Index int    // positional index within the normalized sequence
	File  string // originating config file, "" for inline options
	Value any
}

func (e *ShapeError) Error() string {
	origin := e.File
	if origin == "" {
		origin = "inline options"
	}
	return fmt.Sprintf("invalid plugin at index %d (%s): %T is neither a transform nor a plugin pack",
		e.Index, origin, e.Value)
}
