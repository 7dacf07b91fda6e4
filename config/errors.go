package config

import "fmt"

// NotFoundError is reported when an explicitly requested config anchor
// does not exist. Absence of any config during an upward search is not
// an error and resolves to an empty config instead.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no PostCSS config found at %s", e.Path)
}

// LoadError is reported when a config source was found but could not
// be read, parsed or validated. It is fatal.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load config %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
