// Package ebnflex recognizes EBNF grammar productions in parser input.
package ebnflex

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/bastok/parse"
)

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// Matcher finds the longest match of a production at the start of some
// input.
type Matcher struct {
	grammar  ebnf.Grammar
	input    []rune
	memo     map[memoKey]int  // memoization cache: key -> match length (-1 = no match)
	visiting map[memoKey]bool // cycle detection
	nullable map[string]bool  // productions that can match the empty string
}

// NewMatcher creates a matcher for the given grammar.
func NewMatcher(grammar ebnf.Grammar) *Matcher {
	return &Matcher{grammar: grammar, nullable: make(map[string]bool)}
}

// ParseGrammar parses an EBNF grammar from r.
func ParseGrammar(filename string, r io.Reader) (ebnf.Grammar, error) {
	grammar, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return grammar, nil
}

// LoadGrammar loads an EBNF grammar from a file in fs.
func LoadGrammar(fs afero.Fs, filename string) (ebnf.Grammar, error) {
	f, err := fs.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	return ParseGrammar(filename, f)
}

// Check verifies that all productions reachable from start are defined.
func Check(grammar ebnf.Grammar, start string) error {
	if err := ebnf.Verify(grammar, start); err != nil {
		return fmt.Errorf("verify grammar: %w", err)
	}
	return nil
}

// Grammar returns the grammar the matcher was created with.
func (m *Matcher) Grammar() ebnf.Grammar {
	return m.grammar
}

// Len returns the length of the longest match of production name at the
// start of input, 0 if there is none.
func (m *Matcher) Len(input []rune, name string) (int, error) {
	prod, ok := m.grammar[name]
	if !ok {
		return 0, fmt.Errorf("unknown production %q", name)
	}
	if prod.Expr == nil {
		return 0, nil
	}

	m.input = input
	m.memo = make(map[memoKey]int)
	m.visiting = make(map[memoKey]bool)
	defer func() { m.input = nil }()

	return m.tryMatchName(name, 0), nil
}

// Match matches production name at the cursor of s. On a match the cursor
// advances past it, as it does for parse.String, and the matched input is
// returned. An empty match is a fail. Asking for a production that is not
// in the grammar is an error.
func Match[E parse.Element, O any](m *Matcher, s *parse.State[E, O], name string) ([]E, bool, error) {
	text := []rune(s.Text(s.Remain()))
	n, err := m.Len(text, name)
	if err != nil {
		return nil, false, s.Errorf("match %s: %w", name, err)
	}
	if n == 0 {
		return nil, false, nil
	}
	matched, err := s.Consume(n)
	if err != nil {
		return nil, false, err
	}
	return matched, true, nil
}

// tryMatch attempts to match an expression at the given offset.
// Returns the length of the match, or 0 if no match.
func (m *Matcher) tryMatch(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		return m.tryMatchToken(e.String, offset)

	case *ebnf.Range:
		return m.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		pos := offset
		for _, item := range e {
			n := m.tryMatch(item, pos)
			if n == 0 && !m.optional(item) {
				return 0
			}
			total += n
			pos += n
		}
		return total

	case ebnf.Alternative:
		best := 0
		for _, alt := range e {
			n := m.tryMatch(alt, offset)
			if n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		pos := offset
		for {
			n := m.tryMatch(e.Body, pos)
			if n == 0 {
				break
			}
			total += n
			pos += n
		}
		return total

	case *ebnf.Option:
		return m.tryMatch(e.Body, offset)

	case *ebnf.Group:
		return m.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return m.tryMatchName(e.String, offset)

	default:
		return 0
	}
}

// optional reports whether expr may match the empty string, so that a
// zero-length result inside a sequence does not end the sequence.
func (m *Matcher) optional(expr ebnf.Expression) bool {
	switch e := expr.(type) {
	case *ebnf.Option, *ebnf.Repetition:
		return true
	case *ebnf.Group:
		return m.optional(e.Body)
	case ebnf.Alternative:
		for _, alt := range e {
			if m.optional(alt) {
				return true
			}
		}
	case ebnf.Sequence:
		for _, item := range e {
			if !m.optional(item) {
				return false
			}
		}
		return true
	case *ebnf.Name:
		if v, ok := m.nullable[e.String]; ok {
			return v
		}
		prod, ok := m.grammar[e.String]
		if !ok {
			return false
		}
		m.nullable[e.String] = false // in progress
		v := prod.Expr == nil || m.optional(prod.Expr)
		m.nullable[e.String] = v
		return v
	}
	return false
}

// tryMatchName matches a named production with memoization and cycle detection.
func (m *Matcher) tryMatchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}

	if result, ok := m.memo[key]; ok {
		if result == -1 {
			return 0
		}
		return result
	}

	// Left recursion: already visiting this production at this offset.
	if m.visiting[key] {
		return 0
	}

	prod, ok := m.grammar[name]
	if !ok || prod.Expr == nil {
		m.memo[key] = -1
		return 0
	}

	m.visiting[key] = true
	result := m.tryMatch(prod.Expr, offset)
	delete(m.visiting, key)

	if result == 0 {
		m.memo[key] = -1
	} else {
		m.memo[key] = result
	}

	return result
}

// tryMatchToken matches a literal string token. The ebnf parser has
// already unquoted it.
func (m *Matcher) tryMatchToken(token string, offset int) int {
	s := []rune(token)
	if offset+len(s) > len(m.input) {
		return 0
	}
	for i, r := range s {
		if m.input[offset+i] != r {
			return 0
		}
	}
	return len(s)
}

// tryMatchRange matches a character range (e.g., "a" … "z").
func (m *Matcher) tryMatchRange(begin, end string, offset int) int {
	if offset >= len(m.input) {
		return 0
	}
	if utf8.RuneCountInString(begin) != 1 || utf8.RuneCountInString(end) != 1 {
		return 0
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	ch := m.input[offset]
	if ch >= lo && ch <= hi {
		return 1
	}
	return 0
}
