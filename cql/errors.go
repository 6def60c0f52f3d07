package cql

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax matches every *QuerySyntaxError.
	ErrSyntax = errors.New("cql: syntax error")

	// ErrUnencodable is returned by Encode for trees that have no text form:
	// empty non-root groups, unknown operators, wrong value counts and
	// values without a literal syntax (NaN, nil geometry).
	ErrUnencodable = errors.New("cql: tree cannot be encoded")
)

// QuerySyntaxError reports where parsing failed. Pos is the byte offset of
// the offending token in the input and Token its text, empty at end of input.
type QuerySyntaxError struct {
	Pos   int
	Token string
	Msg   string
}

func (e *QuerySyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("cql: %s at position %d (end of input)", e.Msg, e.Pos)
	}
	return fmt.Sprintf("cql: %s at position %d near %q", e.Msg, e.Pos, e.Token)
}

// Is reports whether target is ErrSyntax.
func (e *QuerySyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func syntaxError(t token, format string, args ...any) *QuerySyntaxError {
	return &QuerySyntaxError{Pos: t.pos, Token: t.text, Msg: fmt.Sprintf(format, args...)}
}
