package loader

import (
	"errors"
	"fmt"

	"github.com/postcss/postcss-loader/engine"
)

// FileError is implemented by errors that name the file they came
// from. The loader registers that file as a dependency before
// reporting, so fixing the file re-triggers the build.
type FileError interface {
	error
	ErrorFile() string
}

// SyntaxError is the richly formatted surface of an engine
// syntax-class failure: it carries the source location and pinpoints
// the offending line.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Reason  string
	Excerpt string // offending source line, may be empty
}

func (e *SyntaxError) Error() string {
	file := e.File
	if file == "" {
		file = "<css input>"
	}
	msg := fmt.Sprintf("SyntaxError: %s:%d:%d: %s", file, e.Line, e.Column, e.Reason)
	if e.Excerpt != "" {
		msg += "\n\n  " + e.Excerpt + "\n"
	}
	return msg
}

func (e *SyntaxError) ErrorFile() string { return e.File }

// surfaceError classifies an engine failure: syntax errors become
// SyntaxError, everything else passes through with its original
// message.
func surfaceError(err error, source []byte) error {
	var serr *engine.SyntaxError
	if errors.As(err, &serr) {
		return &SyntaxError{
			File:    serr.File,
			Line:    serr.Line,
			Column:  serr.Column,
			Reason:  serr.Reason,
			Excerpt: sourceLine(source, serr.Line),
		}
	}
	return err
}

func sourceLine(source []byte, line int) string {
	if line < 1 {
		return ""
	}
	cur := 1
	start := 0
	for i, b := range source {
		if cur == line {
			start = i
			break
		}
		if b == '\n' {
			cur++
			start = i + 1
		}
	}
	if cur < line {
		return ""
	}
	end := start
	for end < len(source) && source[end] != '\n' {
		end++
	}
	return string(source[start:end])
}
