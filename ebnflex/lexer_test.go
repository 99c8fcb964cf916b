package ebnflex

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/bastok/charset"
	"github.com/dhamidi/bastok/parse"
)

const testGrammar = `
Number   = [ Sign ] Integer [ Fraction ] .
Sign     = "-" .
Integer  = { digit } .
Fraction = "." { digit } .
Ident    = letter { letter | digit } .
Quoted   = "\"" { letter } "\"" .
Expr     = Expr "+" Ident | Ident .
letter   = "A" … "Z" | "a" … "z" .
digit    = "0" … "9" .
`

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	g, err := ParseGrammar("test.ebnf", strings.NewReader(testGrammar))
	require.NoError(t, err)
	return NewMatcher(g)
}

func TestMatcherLen(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"Number", "123", 3},
		{"Number", "-12.5x", 5},
		{"Number", "-", 1},
		{"Number", ".5", 2},
		{"Number", "x", 0},
		{"Integer", "", 0},
		{"Ident", "A1B2 ", 4},
		{"Ident", "1A", 0},
		{"Quoted", `"ABC"+`, 5},
		{"Quoted", `"ABC`, 0},
		{"Expr", "a+b+c", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.input, func(t *testing.T) {
			got, err := m.Len([]rune(tt.input), tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMatcherUnknownProduction(t *testing.T) {
	m := newTestMatcher(t)
	_, err := m.Len([]rune("1"), "Float")
	require.ErrorContains(t, err, `unknown production "Float"`)
}

func TestMatchAdvancesCursor(t *testing.T) {
	m := newTestMatcher(t)
	s := parse.FromString[byte]("12.5 PRINT")

	s.Start()
	matched, ok, err := Match(m, s, "Number")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "12.5", string(matched))
	require.Equal(t, 4, s.Tentative())
	require.Equal(t, 0, s.Pos())
	s.Confirm()
	require.Equal(t, 4, s.Pos())
}

func TestMatchFailLeavesCursor(t *testing.T) {
	m := newTestMatcher(t)
	s := parse.FromString[byte]("PRINT")

	matched, ok, err := Match(m, s, "Number")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, matched)
	require.Equal(t, 0, s.Pos())
}

func TestMatchError(t *testing.T) {
	m := newTestMatcher(t)
	s := parse.FromString[byte]("1")

	_, _, err := Match(m, s, "Nope")
	var perr *parse.ParseError
	require.ErrorAs(t, err, &perr)
	require.Contains(t, perr.Message, "match Nope")
}

func TestMatchNativeInput(t *testing.T) {
	m := newTestMatcher(t)
	tr, err := charset.Lookup("ascii")
	require.NoError(t, err)

	s := parse.New[byte, byte]([]byte("AB12:"), tr)
	matched, ok, err := Match(m, s, "Ident")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("AB12"), matched)
}

func TestCheck(t *testing.T) {
	g, err := ParseGrammar("ok.ebnf", strings.NewReader(`Start = "a" | Other . Other = "b" .`))
	require.NoError(t, err)
	require.NoError(t, Check(g, "Start"))

	g, err = ParseGrammar("bad.ebnf", strings.NewReader(`Start = "a" | Missing .`))
	require.NoError(t, err)
	require.ErrorContains(t, Check(g, "Start"), "verify grammar")
}

func TestParseGrammarError(t *testing.T) {
	_, err := ParseGrammar("bad.ebnf", strings.NewReader(`Start = "a" `))
	require.ErrorContains(t, err, "parse grammar")
}

func TestLoadGrammar(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/num.ebnf", []byte(testGrammar), 0o644))

	g, err := LoadGrammar(fs, "/num.ebnf")
	require.NoError(t, err)
	require.Contains(t, g, "Number")

	_, err = LoadGrammar(fs, "/missing.ebnf")
	require.ErrorContains(t, err, "open grammar")
}
