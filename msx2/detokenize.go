package msx2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dhamidi/bastok/parse"
	"github.com/dhamidi/bastok/tlines"
)

// Keywords preceded by a space when expanding.
var prespace = []string{"THEN", "TO", "STEP", "AND", "OR", "XOR"}

// Detokenizer converts MSX-BASIC tokenized lines back into text.
type Detokenizer struct {
	cs     parse.Translator[byte]
	expand bool
}

// NewDetokenizer creates a detokenizer that decodes strings, comments and
// DATA with cs. If expand is set, spaces are added around keywords and each
// statement after a colon goes on its own indented line.
func NewDetokenizer(cs parse.Translator[byte], expand bool) *Detokenizer {
	return &Detokenizer{cs: cs, expand: expand}
}

// Detokenize returns the text of each line of prog.
func (d *Detokenizer) Detokenize(prog *tlines.Lines) ([]string, error) {
	var out []string
	for _, line := range prog.Lines() {
		text, err := d.DetokenizeLine(line.Number, line.Data)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
		out = append(out, text)
	}
	return out, nil
}

// DetokenizeLine returns the text of line lineno with tokenized data.
func (d *Detokenizer) DetokenizeLine(lineno int, data []byte) (string, error) {
	dt := &detok{
		Detokenizer: d,
		s:           parse.New[byte, rune](data, d.cs),
	}
	if d.expand {
		dt.gen(fmt.Sprintf("%5d ", lineno))
	} else {
		dt.gen(strconv.Itoa(lineno) + " ")
	}
	if err := dt.line(); err != nil {
		return "", err
	}
	out, err := dt.s.Finish()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// detok is the state of detokenizing one line.
type detok struct {
	*Detokenizer
	s    *parse.State[byte, rune]
	last rune
}

func (d *detok) gen(text string) {
	if text == "" {
		return
	}
	r := []rune(text)
	d.s.Generate(r...)
	d.last = r[len(r)-1]
}

func (d *detok) bad(format string, args ...any) error {
	return d.s.Errorf(format+": %w", append(args, ErrBadTokenData)...)
}

// next consumes the next byte.
func (d *detok) next() (byte, error) {
	b, _, err := parse.Byte(d.s, nil, parse.Raise("unexpected end of line"))
	if err != nil {
		return 0, errors.Join(err, ErrBadTokenData)
	}
	return b, nil
}

func (d *detok) word() (int, error) {
	b, err := d.s.Consume(2)
	if err != nil {
		return 0, errors.Join(err, ErrBadTokenData)
	}
	return int(binary.LittleEndian.Uint16(b)), nil
}

func (d *detok) line() error {
	for {
		b, ok := d.s.Peek()
		if !ok {
			return nil
		}

		var err error
		switch {
		case b <= 0x0A, b == 0x10, b == 0x1B, b == 0x1E:
			err = d.bad("byte $%02X", b)
		case b == tokOctal, b == tokHex, b == tokLineNo, b == tokByte, b == tokInt:
			err = d.integer(b)
		case b == tokLineAddr:
			err = d.s.Errorf("line address: %w", errors.ErrUnsupported)
		case b >= tokDigit0 && b <= tokDigit9:
			d.next()
			d.gen(strconv.Itoa(int(b - tokDigit0)))
		case b == tokSingle:
			d.next()
			err = d.real(4)
		case b == tokDouble:
			d.next()
			err = d.real(8)
		case b == '"':
			d.next()
			d.gen(`"`)
			err = d.quoted()
		case b == ':':
			err = d.colon()
		case b < 0x80:
			d.next()
			d.gen(string(rune(b)))
		case b == tokData:
			d.next()
			d.gen("DATA")
			d.expandSpace()
			err = d.data()
		case b == tokRem:
			// No space after REM: 10 REMARKABLE PROGRAM
			d.next()
			d.gen("REM")
			err = d.rest()
		default:
			err = d.token()
		}
		if err != nil {
			return err
		}
	}
}

// integer decodes the integer constant forms.
func (d *detok) integer(tok byte) error {
	d.next()
	var (
		n   int
		err error
	)
	if tok == tokByte {
		var b byte
		b, err = d.next()
		n = int(b)
	} else {
		n, err = d.word()
	}
	if err != nil {
		return err
	}

	switch tok {
	case tokOctal:
		d.gen("&O" + strconv.FormatInt(int64(n), 8))
	case tokHex:
		d.gen("&H" + strings.ToUpper(strconv.FormatInt(int64(n), 16)))
	case tokLineNo:
		if n > tlines.MaxLine5 {
			return d.bad("line number %d", n)
		}
		d.gen(strconv.Itoa(n))
	case tokByte:
		if n < 10 {
			return d.bad("one byte int %d", n)
		}
		d.gen(strconv.Itoa(n))
	case tokInt:
		if n < 256 || n > 32767 {
			return d.bad("int %d", n)
		}
		d.gen(strconv.Itoa(n))
	}
	return nil
}

// expandSpace generates a space when expanding, unless one was just
// generated or comes next.
func (d *detok) expandSpace() {
	if !d.expand || d.last == ' ' {
		return
	}
	if b, ok := d.s.Peek(); ok && b == ' ' {
		return
	}
	d.gen(" ")
}

func (d *detok) expandNewline() {
	if d.expand {
		d.gen("\n    ")
	}
}

// colon handles a colon and the ELSE and ' tokens, which are stored after
// one.
func (d *detok) colon() error {
	d.next()
	b, _ := d.s.Peek()
	switch {
	case b == tokElse:
		d.next()
		d.expandSpace()
		d.gen("ELSE")
		d.expandSpace()
	case b == tokRem:
		d.next()
		if b, ok := d.s.Peek(); ok && b == tokQuoteRem[1] {
			d.next()
			d.gen("'")
		} else {
			d.expandNewline()
			d.gen(":")
			d.expandSpace()
			d.gen("REM")
		}
		return d.rest()
	default:
		d.expandNewline()
		d.gen(":")
		d.expandSpace()
	}
	return nil
}

// char decodes one character, which may be stored as two bytes.
func (d *detok) char() error {
	c, err := d.next()
	if err != nil {
		return err
	}
	switch {
	case c == tokExtended:
		c, err = d.next()
		if err != nil {
			return err
		}
		if c < 0x40 || c > 0x5F {
			return d.bad("extended character $01 $%02X", c)
		}
		c -= 0x40
	case c < 0x20 || c == 0x7F:
		return d.bad("control character $%02X", c)
	}
	d.gen(string(d.cs.Text(c)))
	return nil
}

// rest decodes the rest of the line as characters.
func (d *detok) rest() error {
	for !d.s.Finished() {
		if err := d.char(); err != nil {
			return err
		}
	}
	return nil
}

// quoted decodes a string after its opening quote, up to and including the
// closing quote if there is one.
func (d *detok) quoted() error {
	for {
		b, ok := d.s.Peek()
		switch {
		case !ok:
			return nil
		case b == '"':
			d.next()
			d.gen(`"`)
			return nil
		}
		if err := d.char(); err != nil {
			return err
		}
	}
}

// data decodes DATA arguments up to the end of the line or an unquoted
// colon, which is handled too.
func (d *detok) data() error {
	leading := true
	for {
		b, ok := d.s.Peek()
		switch {
		case !ok:
			return nil
		case leading && b == ' ':
			d.next()
			d.gen(" ")
		case b == '"':
			leading = false
			d.next()
			d.gen(`"`)
			if err := d.quoted(); err != nil {
				return err
			}
		case b == ',':
			leading = true
			d.next()
			d.gen(",")
			d.expandSpace()
		case b == ':':
			return d.colon()
		default:
			leading = false
			if err := d.char(); err != nil {
				return err
			}
		}
	}
}

func (d *detok) token() error {
	e, ok := decodeTable.Lookup(d.s.Remain())
	if !ok {
		return d.bad("unknown token $%02X", d.s.Remain()[0])
	}
	if _, err := d.s.Consume(len(e.Key)); err != nil {
		return err
	}
	kw := string(e.Value)
	if slices.Contains(prespace, kw) {
		d.expandSpace()
	}
	d.gen(kw)
	if b, ok := d.s.Peek(); len(e.Value) > 1 && ok && b != ':' && b != '(' && b != tokEquals {
		d.expandSpace()
	}
	return nil
}

// real decodes a size byte floating point constant: an exponent byte biased
// by $40 with the decimal point before the first digit, then BCD digits.
//
// Exponents from -1 to 14 print as a plain number with a ! or # type
// character. Others print in exponent form, with D for double precision so
// that the value tokenizes back to the same precision.
func (d *detok) real(size int) error {
	bs, err := d.s.Consume(size)
	if err != nil {
		return errors.Join(err, ErrBadTokenData)
	}

	typeChar, expChar := "!", "E"
	if size == 8 {
		typeChar, expChar = "#", "D"
	}

	if bs[0]&0x80 != 0 {
		return d.bad("negative constant")
	}
	if slices.Equal(bs, make([]byte, size)) {
		d.gen("0" + typeChar)
		return nil
	}
	if bs[0] == 0 {
		return d.bad("zero exponent with non-zero significand")
	}

	var digits strings.Builder
	for _, b := range bs[1:] {
		hi, lo := b>>4, b&0x0F
		if hi > 9 || lo > 9 {
			return d.bad("BCD byte $%02X", b)
		}
		digits.WriteByte('0' + hi)
		digits.WriteByte('0' + lo)
	}
	sig := digits.String()
	exp := int(bs[0]&0x7F) - 0x40

	switch {
	case exp > 14 || exp <= -2:
		frac := strings.TrimRight(sig[1:], "0")
		if frac != "" {
			frac = "." + frac
		}
		d.gen(fmt.Sprintf("%c%s%s%+d", sig[0], frac, expChar, exp-1))
	case exp == -1:
		d.gen(".0" + strings.TrimRight(sig, "0") + typeChar)
	case exp == 0:
		d.gen("." + strings.TrimRight(sig, "0") + typeChar)
	case exp <= len(sig):
		v := sig[:exp] + "." + sig[exp:]
		d.gen(strings.TrimRight(strings.TrimRight(v, "0"), ".") + typeChar)
	default:
		d.gen(strings.TrimLeft(sig, "0") + strings.Repeat("0", exp-len(sig)) + typeChar)
	}
	return nil
}
