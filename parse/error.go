package parse

import (
	"fmt"
	"strings"
)

const (
	contextAhead   = 12
	contextBehind  = 12
	contextOutputs = 4
)

// ParseError is returned when a parse cannot continue: a precondition was
// violated or a matcher was told that not matching is fatal.
type ParseError struct {
	Message   string
	Pos       int    // committed position when the error was raised
	Tentative int    // tentative position, equal to Pos outside a checkpoint
	Ahead     string // rendering of up to 12 elements at Pos
	Behind    string // rendering of up to 12 elements before Pos
	Output    string // rendering of the last 4 output fragments

	err error
}

func (e *ParseError) Error() string {
	return e.Message + " " + e.Context()
}

// Context renders where the error happened.
func (e *ParseError) Context() string {
	at := fmt.Sprint(e.Pos)
	if e.Tentative != e.Pos {
		at += fmt.Sprintf("(+%d)", e.Tentative-e.Pos)
	}
	return fmt.Sprintf("at %s:%s after …%s …%s", at, e.Ahead, e.Behind, e.Output)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// Error returns a *ParseError with the given message and a diagnostic for
// the current position.
func (s *State[E, O]) Error(message string) error {
	return s.newError(message, nil)
}

// Errorf formats a *ParseError. Errors wrapped with %w remain reachable
// through errors.Is and errors.As.
func (s *State[E, O]) Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return s.newError(err.Error(), err)
}

func (s *State[E, O]) newError(message string, err error) *ParseError {
	p := s.pos
	behind := max(0, p-contextBehind)
	ahead := min(len(s.input), p+contextAhead)

	frags := append(append([][]O(nil), s.output...), s.pending...)
	frags = frags[max(0, len(frags)-contextOutputs):]
	rendered := make([]string, len(frags))
	for i, f := range frags {
		rendered[i] = renderFragment(f)
	}

	return &ParseError{
		Message:   message,
		Pos:       p,
		Tentative: s.cursor(),
		Ahead:     renderInput(s.input[p:ahead]),
		Behind:    renderInput(s.input[behind:p]),
		Output:    "[" + strings.Join(rendered, " ") + "]",
		err:       err,
	}
}

func renderInput[E Element](elems []E) string {
	var zero E
	switch any(zero).(type) {
	case byte:
		b := make([]byte, len(elems))
		for i, e := range elems {
			b[i] = byte(e)
		}
		return fmt.Sprintf("%q", b)
	case rune:
		r := make([]rune, len(elems))
		for i, e := range elems {
			r[i] = rune(e)
		}
		return fmt.Sprintf("%q", string(r))
	}
	return fmt.Sprint(elems)
}

func renderFragment(f any) string {
	switch f := f.(type) {
	case []byte:
		return fmt.Sprintf("%q", f)
	case []rune:
		return fmt.Sprintf("%q", string(f))
	}
	return fmt.Sprint(f)
}
