package msx2

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/bastok/blines"
	"github.com/dhamidi/bastok/ebnflex"
	"github.com/dhamidi/bastok/parse"
	"github.com/dhamidi/bastok/tlines"
)

var (
	ErrBadTokenData = errors.New("bad tokenized data")
	ErrEncoding     = errors.New("cannot encode character")
	ErrOverflow     = errors.New("overflow")
)

//go:embed number.ebnf
var numberSource string

// NumberGrammar is the syntax of numeric constants in BASIC text.
var NumberGrammar = mustNumberGrammar()

func mustNumberGrammar() ebnf.Grammar {
	g, err := ebnflex.ParseGrammar("number.ebnf", strings.NewReader(numberSource))
	if err != nil {
		panic(err)
	}
	if err := ebnflex.Check(g, "Constant"); err != nil {
		panic(err)
	}
	return g
}

var log = commonlog.GetLogger("bastok.msx2")

// Tokenizer converts BASIC program text into MSX-BASIC tokenized lines.
// A Tokenizer is not safe for concurrent use.
type Tokenizer struct {
	cs      parse.Translator[byte]
	numbers *ebnflex.Matcher
}

// NewTokenizer creates a tokenizer that encodes strings, comments and DATA
// with cs.
func NewTokenizer(cs parse.Translator[byte]) *Tokenizer {
	return &Tokenizer{
		cs:      cs,
		numbers: ebnflex.NewMatcher(NumberGrammar),
	}
}

// Tokenize tokenizes lines into a program that loads at txttab. A line
// number that appears twice keeps the later line. Errors name the index of
// the failing line, counting from 1.
func (t *Tokenizer) Tokenize(lines []string, txttab int) (*tlines.Lines, error) {
	blns := make([]blines.Line, len(lines))
	for i, line := range lines {
		blns[i] = blines.Line{Text: line, Start: i}
	}
	return t.TokenizeLines(blns, txttab)
}

// TokenizeLines is Tokenize for lines joined from a source file. Errors
// name the source line each failing BASIC line starts on.
func (t *Tokenizer) TokenizeLines(lines []blines.Line, txttab int) (*tlines.Lines, error) {
	prog, err := tlines.New(txttab)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		srcline := line.Start + 1
		lineno, data, err := t.TokenizeLine(line.Text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", srcline, err)
		}
		if _, dup := prog.Line(lineno); dup {
			log.Debugf("line %d replaces an earlier line %d", srcline, lineno)
		}
		if err := prog.SetLine(lineno, data); err != nil {
			return nil, fmt.Errorf("line %d: %w", srcline, err)
		}
	}
	return prog, nil
}

// TokenizeLine tokenizes a line of BASIC text that starts with a line
// number. It returns the line number and the tokenized data, without the
// terminating 0x00.
func (t *Tokenizer) TokenizeLine(line string) (int, []byte, error) {
	s := parse.FromString[byte](line)

	s.Start()
	lineno, neg, ok, err := t.lineNumber(s, false)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, s.Error("expected line number")
	}
	if neg {
		return 0, nil, s.Errorf("line number -%d: %w", lineno, tlines.ErrLineRange)
	}
	s.Confirm()

	// One space after the line number is a separator.
	lit(s, " ")

	ident := false
	for !s.Finished() {
		if kw, ok := parse.TokTrans(s, encodeTable); ok {
			ident = false
			if err := t.keywordArgs(s, string(kw)); err != nil {
				return 0, nil, err
			}
			continue
		}

		if ok, err := t.stringLiteral(s); err != nil {
			return 0, nil, err
		} else if ok {
			ident = false
			continue
		}
		if ok, err := t.ampersand(s); err != nil {
			return 0, nil, err
		} else if ok {
			ident = false
			continue
		}
		if !ident {
			if ok, err := t.number(s); err != nil {
				return 0, nil, err
			} else if ok {
				continue
			}
		}

		// Anything else, including the digits of a variable name, is
		// passed through.
		r, _ := s.Peek()
		if err := t.char(s); err != nil {
			return 0, nil, err
		}
		ident = isLetter(r) || (ident && isDigit(r))
	}

	data, err := s.Finish()
	if err != nil {
		return 0, nil, err
	}
	if data == nil {
		data = []byte{}
	}
	log.Debugf("tokenized line %d: % X", lineno, data)
	return lineno, data, nil
}

// lit matches the literal text l at the cursor.
func lit(s *parse.State[rune, byte], l string) bool {
	_, ok := parse.String(s, l)
	return ok
}

func (t *Tokenizer) keywordArgs(s *parse.State[rune, byte], kw string) error {
	switch kw {
	case "REM", "'":
		return t.chars(s)
	case "DATA":
		return t.data(s)
	}
	if Flags(kw)&FlagLineNo == 0 {
		return nil
	}

	required := kw == "GOTO" || kw == "GOSUB"

	var err error
	lineNo := func() bool {
		t.spaces(s)
		var ok bool
		_, _, ok, err = t.lineNumber(s, true)
		return ok
	}
	if !s.Attempt(lineNo) {
		if err != nil {
			return err
		}
		if required {
			return s.Errorf("expected line number after %s", kw)
		}
		return nil
	}

	// ON ... GOTO and ON ... GOSUB take a list.
	for required {
		more := s.Attempt(func() bool {
			t.spaces(s)
			if !lit(s, ",") {
				return false
			}
			s.Generate(',')
			return lineNo()
		})
		if !more {
			return err
		}
	}
	return nil
}

// lineNumber matches an optional minus sign and decimal digits. If gen is
// set the line number token is generated, preceded by the minus token for a
// negative number, which the interpreter will reject when it runs the line.
func (t *Tokenizer) lineNumber(s *parse.State[rune, byte], gen bool) (n int, neg bool, ok bool, err error) {
	neg = lit(s, "-")
	digits, ok, err := ebnflex.Match(t.numbers, s, "Integer")
	if err != nil || !ok {
		return 0, false, false, err
	}
	n, err = strconv.Atoi(string(digits))
	if err != nil || n > tlines.MaxLine5 {
		return 0, false, false, s.Errorf("line number %s not in 0-%d: %w",
			string(digits), tlines.MaxLine5, tlines.ErrLineRange)
	}
	if gen {
		if neg {
			s.Generate(tokNegative...)
		}
		s.Generate(binary.LittleEndian.AppendUint16([]byte{tokLineNo}, uint16(n))...)
	}
	return n, neg, true, nil
}

// spaces passes through any spaces at the cursor.
func (t *Tokenizer) spaces(s *parse.State[rune, byte]) {
	for lit(s, " ") {
		s.Generate(' ')
	}
}

// chars encodes the rest of the line.
func (t *Tokenizer) chars(s *parse.State[rune, byte]) error {
	for !s.Finished() {
		if err := t.char(s); err != nil {
			return err
		}
	}
	return nil
}

// data encodes DATA arguments up to the end of the line or a colon that is
// not in quotes.
func (t *Tokenizer) data(s *parse.State[rune, byte]) error {
	quoted := false
	for {
		r, ok := s.Peek()
		if !ok || (r == ':' && !quoted) {
			return nil
		}
		if r == '"' {
			quoted = !quoted
		}
		if err := t.char(s); err != nil {
			return err
		}
	}
}

// stringLiteral matches a quoted string ending at the next quote or the end
// of the line.
func (t *Tokenizer) stringLiteral(s *parse.State[rune, byte]) (bool, error) {
	if !lit(s, `"`) {
		return false, nil
	}
	s.Generate('"')
	for !s.Finished() {
		if lit(s, `"`) {
			s.Generate('"')
			break
		}
		if err := t.char(s); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ampersand matches &H, &O and &B integer literals. A prefix without digits
// has the value 0.
func (t *Tokenizer) ampersand(s *parse.State[rune, byte]) (bool, error) {
	var (
		base int
		prod string
		tok  byte
	)
	switch {
	case matched(parse.StringIn(s, "&H", "&h")):
		base, prod, tok = 16, "HexDigits", tokHex
	case matched(parse.StringIn(s, "&O", "&o")):
		base, prod, tok = 8, "OctDigits", tokOctal
	case matched(parse.StringIn(s, "&B", "&b")):
		base, prod = 2, "BinDigits"
	default:
		return false, nil
	}

	digits, _, err := ebnflex.Match(t.numbers, s, prod)
	if err != nil {
		return false, err
	}

	// &B has no token, it stays as text.
	if base == 2 {
		s.Generate('&', 'B')
		for _, d := range digits {
			s.Generate(byte(d))
		}
		return true, nil
	}

	n := uint64(0)
	if len(digits) > 0 {
		n, err = strconv.ParseUint(string(digits), base, 64)
		if err != nil || n > 0xFFFF {
			return false, s.Errorf("&%c%s: %w", prod[0], string(digits), ErrOverflow)
		}
	}
	s.Generate(binary.LittleEndian.AppendUint16([]byte{tok}, uint16(n))...)
	return true, nil
}

func matched[T any](_ T, ok bool) bool { return ok }

// number matches a decimal constant and generates its tokenized form.
func (t *Tokenizer) number(s *parse.State[rune, byte]) (bool, error) {
	s.Start()
	intPart, hasInt, err := ebnflex.Match(t.numbers, s, "Integer")
	if err != nil {
		return false, err
	}
	frac, hasFrac, err := ebnflex.Match(t.numbers, s, "Fraction")
	if err != nil {
		return false, err
	}
	if !hasInt && len(frac) < 2 {
		s.Abandon()
		return false, nil
	}
	suffix, _, err := ebnflex.Match(t.numbers, s, "Suffix")
	if err != nil {
		return false, err
	}

	var fracDigits string
	if hasFrac {
		fracDigits = string(frac[1:])
	}
	enc, err := EncodeNumber(string(intPart), fracDigits, hasFrac, string(suffix))
	if err != nil {
		return false, s.Errorf("%s%s%s: %w", string(intPart), string(frac), string(suffix), err)
	}
	s.Generate(enc...)
	s.Confirm()
	return true, nil
}

// maxExponent bounds exponents so that adding the digit count cannot
// overflow. Anything beyond it is out of range either way.
const maxExponent = 1 << 30

// exponent parses the digits of an exponent with an optional minus sign,
// clamped to ±maxExponent.
func exponent(e string) int {
	neg := strings.HasPrefix(e, "-")
	n, err := strconv.Atoi(strings.TrimPrefix(e, "-"))
	if err != nil || n > maxExponent {
		n = maxExponent
	}
	if neg {
		return -n
	}
	return n
}

// EncodeNumber returns the tokenized form of an unsigned decimal constant
// with integer digits ip, fraction digits fp (hasFrac is set if there was a
// decimal point) and suffix, which is a type character or an exponent.
//
// The constant is an int if the suffix is % or if it has neither fraction
// nor suffix and is less than 32768. Otherwise it is single precision if
// the suffix is ! or it has at most 6 significant digits and no # or D
// exponent, and double precision if not. Digits that do not fit are
// truncated.
func EncodeNumber(ip, fp string, hasFrac bool, suffix string) ([]byte, error) {
	var (
		typeChar byte
		expChar  byte
		exp      int
	)
	if suffix != "" {
		switch suffix[0] {
		case '%', '!', '#':
			typeChar = suffix[0]
		default:
			expChar = suffix[0] &^ 0x20 // upper case
			if e := strings.TrimPrefix(suffix[1:], "+"); e != "" && e != "-" {
				exp = exponent(e)
			}
		}
	}

	trimmed := strings.TrimLeft(ip, "0")
	if typeChar == '%' || (!hasFrac && suffix == "" && len(trimmed) <= 5) {
		n := 0
		if len(trimmed) > 5 {
			n = math.MaxInt
		} else if trimmed != "" {
			n, _ = strconv.Atoi(trimmed)
		}
		switch {
		case n > 32767 && typeChar == '%':
			return nil, ErrOverflow
		case n > 32767:
			// too large for an int, falls through to single precision
		case n < 10:
			return []byte{tokDigit0 + byte(n)}, nil
		case n < 256:
			return []byte{tokByte, byte(n)}, nil
		default:
			return binary.LittleEndian.AppendUint16([]byte{tokInt}, uint16(n)), nil
		}
	}

	sigdigs := len(trimmed) + len(fp)
	if trimmed == "" {
		sigdigs = len(strings.TrimLeft(fp, "0"))
	}
	double := typeChar == '#' || expChar == 'D' || (typeChar != '!' && sigdigs > 6)

	tok, size := byte(tokSingle), 3
	if double {
		tok, size = tokDouble, 7
	}

	e := len(trimmed)
	if trimmed == "" {
		z := len(fp) - len(strings.TrimLeft(fp, "0"))
		e -= z
		fp = fp[z:]
	}
	mantissa := trimmed + fp
	out := make([]byte, 2+size)
	out[0] = tok
	if strings.Trim(mantissa, "0") == "" {
		return out, nil
	}

	e += 0x40 + exp
	if e > 0x7F {
		return nil, ErrOverflow
	}
	if e < 1 {
		// underflow
		return out, nil
	}
	out[1] = byte(e)
	for i := range size * 2 {
		d := byte(0)
		if i < len(mantissa) {
			d = mantissa[i] - '0'
		}
		out[2+i/2] |= d << (4 * (1 - i%2))
	}
	return out, nil
}

// char encodes the next character. Control characters are stored as $01
// followed by the code + $40; $7F cannot be stored.
func (t *Tokenizer) char(s *parse.State[rune, byte]) error {
	r, _, err := parse.Byte(s, nil, parse.Raise("expected a character"))
	if err != nil {
		return err
	}
	n, ok := t.cs.Native(r)
	if !ok {
		return s.Errorf("%q not in %v: %w", r, t.cs, ErrEncoding)
	}
	switch {
	case n == 0x7F:
		return s.Errorf("$7F: %w", ErrEncoding)
	case n < 0x20:
		s.Generate(tokExtended, n+0x40)
	default:
		s.Generate(n)
	}
	return nil
}

func isLetter(r rune) bool { return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
