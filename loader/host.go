package loader

import (
	"github.com/postcss/postcss-loader/sourcemap"
)

// Host is the capability surface the surrounding build tool provides.
// Every typed engine message maps 1:1 to one of these calls; the
// loader never touches the build tool's module graph directly.
type Host interface {
	// Path returns the path of the file currently being transformed.
	Path() string
	// Context returns the working directory of the compilation.
	Context() string

	// AddDependency marks a file whose change re-triggers this
	// transformation.
	AddDependency(file string)
	// AddBuildDependency marks a file of the build setup itself, such
	// as a resolved config file.
	AddBuildDependency(file string)
	// AddMissingDependency marks a path whose future appearance must
	// re-trigger the transformation.
	AddMissingDependency(file string)
	// AddContextDependency marks a directory watched recursively.
	AddContextDependency(dir string)

	// EmitWarning forwards a non-fatal diagnostic.
	EmitWarning(err error)
	// EmitFile writes an additional asset produced during the
	// transformation.
	EmitFile(name string, content []byte, m *sourcemap.Map, info map[string]any)
}

// NopHost discards every capability call. Useful for tests and for
// one-shot invocations with no surrounding build tool.
type NopHost struct {
	File string
	Dir  string
}

func (h NopHost) Path() string    { return h.File }
func (h NopHost) Context() string { return h.Dir }

func (NopHost) AddDependency(string)        {}
func (NopHost) AddBuildDependency(string)   {}
func (NopHost) AddMissingDependency(string) {}
func (NopHost) AddContextDependency(string) {}
func (NopHost) EmitWarning(error)           {}
func (NopHost) EmitFile(string, []byte, *sourcemap.Map, map[string]any) {}
