package coveragerc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOption classifies strict-mode failures caused by options or
	// sections the registry does not know. Use errors.Is(err, ErrUnknownOption)
	// instead of string matching.
	ErrUnknownOption = errors.New("unknown configuration option")

	// ErrMissingSection is returned when a required section is absent.
	ErrMissingSection = errors.New("missing configuration section")

	// ErrDuplicateOption classifies parse failures caused by an option key
	// appearing twice within one section.
	ErrDuplicateOption = errors.New("duplicate option")

	// ErrDuplicateSection classifies parse failures caused by a section header
	// appearing twice.
	ErrDuplicateSection = errors.New("duplicate section")

	// ErrUnresolvedPlaceholder is returned by Render when a {token} survives
	// substitution, and by resolved-mode linting when one is found at all.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

	// ErrUnusedSubstitution is returned by Render when a substitution names a
	// token that does not occur in the input. It usually means a typo in the
	// release manifest.
	ErrUnusedSubstitution = errors.New("substitution matches no placeholder")

	// ErrUndefinedVariable classifies ${VAR?} expansion failures.
	ErrUndefinedVariable = errors.New("undefined environment variable")

	// ErrBadPattern classifies glob or regular-expression entries that do not
	// compile.
	ErrBadPattern = errors.New("invalid pattern")
)

// ParseError describes a syntax error in a configuration file. File is the
// origin label given to Parse (path or synthetic name), Line is 1-based.
type ParseError struct {
	File string
	Line int
	Msg  string
	err  error // optional sentinel for errors.Is classification
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.err }

func parseErrorf(file string, line int, sentinel error, format string, args ...any) *ParseError {
	return &ParseError{
		File: file,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
		err:  sentinel,
	}
}
