package msx2

import (
	"fmt"

	"github.com/dhamidi/bastok/parse"
)

// Flag describes how a keyword's arguments are tokenized.
type Flag int

const (
	// FlagLineNo marks keywords that may be followed by a line number,
	// which is tokenized as $0E and a little-endian word.
	FlagLineNo Flag = 1 << iota
)

// Token is a keyword and its tokenized form.
type Token struct {
	Bytes []byte
	Text  string
	Flags Flag
}

// Tokens is the MSX-BASIC keyword table, from the MSX2 Technical Handbook
// table 2.20.
//
// ELSE and ' are stored after a colon. INTERVAL is tokenized as INT, "ER"
// and VAL; it has its own entry so that it is always matched whole.
var Tokens = []Token{
	{[]byte{':', 0xA1}, "ELSE", FlagLineNo},
	{[]byte{':', 0x8F, 0xE6}, "'", 0},
	{[]byte{0x81}, "END", 0},
	{[]byte{0x82}, "FOR", 0},
	{[]byte{0x83}, "NEXT", 0},
	{[]byte{0x84}, "DATA", 0},
	{[]byte{0x85}, "INPUT", 0},
	{[]byte{0x86}, "DIM", 0},
	{[]byte{0x87}, "READ", 0},
	{[]byte{0x88}, "LET", 0},
	{[]byte{0x89}, "GOTO", FlagLineNo},
	{[]byte{0x8A}, "RUN", FlagLineNo},
	{[]byte{0x8B}, "IF", 0},
	{[]byte{0x8C}, "RESTORE", FlagLineNo},
	{[]byte{0x8D}, "GOSUB", FlagLineNo},
	{[]byte{0x8E}, "RETURN", FlagLineNo},
	{[]byte{0x8F}, "REM", 0},
	{[]byte{0x90}, "STOP", 0},
	{[]byte{0x91}, "PRINT", 0},
	{[]byte{0x92}, "CLEAR", 0},
	{[]byte{0x93}, "LIST", FlagLineNo},
	{[]byte{0x94}, "NEW", 0},
	{[]byte{0x95}, "ON", 0},
	{[]byte{0x96}, "WAIT", 0},
	{[]byte{0x97}, "DEF", 0},
	{[]byte{0x98}, "POKE", 0},
	{[]byte{0x99}, "CONT", 0},
	{[]byte{0x9A}, "CSAVE", 0},
	{[]byte{0x9B}, "CLOAD", 0},
	{[]byte{0x9C}, "OUT", 0},
	{[]byte{0x9D}, "LPRINT", 0},
	{[]byte{0x9E}, "LLIST", FlagLineNo},
	{[]byte{0x9F}, "CLS", 0},
	{[]byte{0xA0}, "WIDTH", 0},
	{[]byte{0xA2}, "TRON", 0},
	{[]byte{0xA3}, "TROFF", 0},
	{[]byte{0xA4}, "SWAP", 0},
	{[]byte{0xA5}, "ERASE", 0},
	{[]byte{0xA6}, "ERROR", 0},
	{[]byte{0xA7}, "RESUME", FlagLineNo},
	{[]byte{0xA8}, "DELETE", FlagLineNo},
	{[]byte{0xA9}, "AUTO", FlagLineNo},
	{[]byte{0xAA}, "RENUM", FlagLineNo},
	{[]byte{0xAB}, "DEFSTR", 0},
	{[]byte{0xAC}, "DEFINT", 0},
	{[]byte{0xAD}, "DEFSNG", 0},
	{[]byte{0xAE}, "DEFDBL", 0},
	{[]byte{0xAF}, "LINE", 0},
	{[]byte{0xB0}, "OPEN", 0},
	{[]byte{0xB1}, "FIELD", 0},
	{[]byte{0xB2}, "GET", 0},
	{[]byte{0xB3}, "PUT", 0},
	{[]byte{0xB4}, "CLOSE", 0},
	{[]byte{0xB5}, "LOAD", 0},
	{[]byte{0xB6}, "MERGE", 0},
	{[]byte{0xB7}, "FILES", 0},
	{[]byte{0xB8}, "LSET", 0},
	{[]byte{0xB9}, "RSET", 0},
	{[]byte{0xBA}, "SAVE", 0},
	{[]byte{0xBB}, "LFILES", 0},
	{[]byte{0xBC}, "CIRCLE", 0},
	{[]byte{0xBD}, "COLOR", 0},
	{[]byte{0xBE}, "DRAW", 0},
	{[]byte{0xBF}, "PAINT", 0},
	{[]byte{0xC0}, "BEEP", 0},
	{[]byte{0xC1}, "PLAY", 0},
	{[]byte{0xC2}, "PSET", 0},
	{[]byte{0xC3}, "PRESET", 0},
	{[]byte{0xC4}, "SOUND", 0},
	{[]byte{0xC5}, "SCREEN", 0},
	{[]byte{0xC6}, "VPOKE", 0},
	{[]byte{0xC7}, "SPRITE", 0},
	{[]byte{0xC8}, "VDP", 0},
	{[]byte{0xC9}, "BASE", 0},
	{[]byte{0xCA}, "CALL", 0},
	{[]byte{0xCB}, "TIME", 0},
	{[]byte{0xCC}, "KEY", 0},
	{[]byte{0xCD}, "MAX", 0},
	{[]byte{0xCE}, "MOTOR", 0},
	{[]byte{0xCF}, "BLOAD", 0},
	{[]byte{0xD0}, "BSAVE", 0},
	{[]byte{0xD1}, "DSKO$", 0},
	{[]byte{0xD2}, "SET", 0},
	{[]byte{0xD3}, "NAME", 0},
	{[]byte{0xD4}, "KILL", 0},
	{[]byte{0xD5}, "IPL", 0},
	{[]byte{0xD6}, "COPY", 0},
	{[]byte{0xD7}, "CMD", 0},
	{[]byte{0xD8}, "LOCATE", 0},
	{[]byte{0xD9}, "TO", 0},
	{[]byte{0xDA}, "THEN", FlagLineNo},
	{[]byte{0xDB}, "TAB(", 0},
	{[]byte{0xDC}, "STEP", 0},
	{[]byte{0xDD}, "USR", 0},
	{[]byte{0xDE}, "FN", 0},
	{[]byte{0xDF}, "SPC(", 0},
	{[]byte{0xE0}, "NOT", 0},
	{[]byte{0xE1}, "ERL", FlagLineNo},
	{[]byte{0xE2}, "ERR", 0},
	{[]byte{0xE3}, "STRING$", 0},
	{[]byte{0xE4}, "USING", 0},
	{[]byte{0xE5}, "INSTR", 0},
	{[]byte{0xE7}, "VARPTR", 0},
	{[]byte{0xE8}, "CSRLIN", 0},
	{[]byte{0xE9}, "ATTR$", 0},
	{[]byte{0xEA}, "DSKI$", 0},
	{[]byte{0xEB}, "OFF", 0},
	{[]byte{0xEC}, "INKEY$", 0},
	{[]byte{0xED}, "POINT", 0},
	{[]byte{0xEE}, ">", 0},
	{[]byte{0xEF}, "=", 0},
	{[]byte{0xF0}, "<", 0},
	{[]byte{0xF1}, "+", 0},
	{[]byte{0xF2}, "-", 0},
	{[]byte{0xF3}, "*", 0},
	{[]byte{0xF4}, "/", 0},
	{[]byte{0xF5}, "^", 0},
	{[]byte{0xF6}, "AND", 0},
	{[]byte{0xF7}, "OR", 0},
	{[]byte{0xF8}, "XOR", 0},
	{[]byte{0xF9}, "EQV", 0},
	{[]byte{0xFA}, "IMP", 0},
	{[]byte{0xFB}, "MOD", 0},
	{[]byte{0xFC}, `\`, 0},
	{[]byte{0xFF, 0x81}, "LEFT$", 0},
	{[]byte{0xFF, 0x82}, "RIGHT$", 0},
	{[]byte{0xFF, 0x83}, "MID$", 0},
	{[]byte{0xFF, 0x84}, "SGN", 0},
	{[]byte{0xFF, 0x85}, "INT", 0},
	{[]byte{0xFF, 0x86}, "ABS", 0},
	{[]byte{0xFF, 0x87}, "SQR", 0},
	{[]byte{0xFF, 0x88}, "RND", 0},
	{[]byte{0xFF, 0x89}, "SIN", 0},
	{[]byte{0xFF, 0x8A}, "LOG", 0},
	{[]byte{0xFF, 0x8B}, "EXP", 0},
	{[]byte{0xFF, 0x8C}, "COS", 0},
	{[]byte{0xFF, 0x8D}, "TAN", 0},
	{[]byte{0xFF, 0x8E}, "ATN", 0},
	{[]byte{0xFF, 0x8F}, "FRE", 0},
	{[]byte{0xFF, 0x90}, "INP", 0},
	{[]byte{0xFF, 0x91}, "POS", 0},
	{[]byte{0xFF, 0x92}, "LEN", 0},
	{[]byte{0xFF, 0x93}, "STR$", 0},
	{[]byte{0xFF, 0x94}, "VAL", 0},
	{[]byte{0xFF, 0x95}, "ASC", 0},
	{[]byte{0xFF, 0x96}, "CHR$", 0},
	{[]byte{0xFF, 0x97}, "PEEK", 0},
	{[]byte{0xFF, 0x98}, "VPEEK", 0},
	{[]byte{0xFF, 0x99}, "SPACE$", 0},
	{[]byte{0xFF, 0x9A}, "OCT$", 0},
	{[]byte{0xFF, 0x9B}, "HEX$", 0},
	{[]byte{0xFF, 0x9C}, "LPOS", 0},
	{[]byte{0xFF, 0x9D}, "BIN$", 0},
	{[]byte{0xFF, 0x9E}, "CINT", 0},
	{[]byte{0xFF, 0x9F}, "CSNG", 0},
	{[]byte{0xFF, 0xA0}, "CDBL", 0},
	{[]byte{0xFF, 0xA1}, "FIX", 0},
	{[]byte{0xFF, 0xA2}, "STICK", 0},
	{[]byte{0xFF, 0xA3}, "STRIG", 0},
	{[]byte{0xFF, 0xA4}, "PDL", 0},
	{[]byte{0xFF, 0xA5}, "PAD", 0},
	{[]byte{0xFF, 0xA6}, "DSKF", 0},
	{[]byte{0xFF, 0xA7}, "FPOS", 0},
	{[]byte{0xFF, 0xA8}, "CVI", 0},
	{[]byte{0xFF, 0xA9}, "CVS", 0},
	{[]byte{0xFF, 0xAA}, "CVD", 0},
	{[]byte{0xFF, 0xAB}, "EOF", 0},
	{[]byte{0xFF, 0xAC}, "LOC", 0},
	{[]byte{0xFF, 0xAD}, "LOF", 0},
	{[]byte{0xFF, 0xAE}, "MKI$", 0},
	{[]byte{0xFF, 0xAF}, "MKS$", 0},
	{[]byte{0xFF, 0xB0}, "MKD$", 0},
	{[]byte{0xFF, 0x85, 'E', 'R', 0xFF, 0x94}, "INTERVAL", 0},
}

// Byte values with special meaning in tokenized text.
const (
	tokOctal    = 0x0B // &O, le16 follows
	tokHex      = 0x0C // &H, le16 follows
	tokLineAddr = 0x0D // address of a line, only present while running
	tokLineNo   = 0x0E // line number, le16 follows
	tokByte     = 0x0F // int 10-255, one byte follows
	tokDigit0   = 0x11 // ints 0-9 are $11-$1A
	tokDigit9   = 0x1A
	tokInt      = 0x1C // int 256-32767, le16 follows
	tokSingle   = 0x1D // 3 BCD bytes follow an exponent byte
	tokDouble   = 0x1F // 7 BCD bytes follow an exponent byte

	tokExtended = 0x01 // followed by a control character + 0x40
)

var (
	tokData     = mustTokenBytes("DATA")[0]
	tokRem      = mustTokenBytes("REM")[0]
	tokQuoteRem = mustTokenBytes("'")[1:]
	tokElse     = mustTokenBytes("ELSE")[1]
	tokEquals   = mustTokenBytes("=")[0]
	tokNegative = mustTokenBytes("-")
)

// TokenBytes returns the tokenized form of keyword kw.
func TokenBytes(kw string) ([]byte, error) {
	var found []byte
	n := 0
	for _, t := range Tokens {
		if t.Text == kw {
			found = t.Bytes
			n++
		}
	}
	if n != 1 {
		return nil, fmt.Errorf("keyword %q has %d table entries", kw, n)
	}
	return found, nil
}

func mustTokenBytes(kw string) []byte {
	b, err := TokenBytes(kw)
	if err != nil {
		panic(err)
	}
	return b
}

// Flags returns the flags of keyword kw.
func Flags(kw string) Flag {
	for _, t := range Tokens {
		if t.Text == kw {
			return t.Flags
		}
	}
	return 0
}

func tokenText(t Token) []rune  { return []rune(t.Text) }
func tokenBytes(t Token) []byte { return t.Bytes }

// encodeTable maps keyword text to tokens, longest keyword first.
var encodeTable = parse.TokSort(Tokens, tokenText, tokenBytes)

// decodeTable maps tokens to keyword text, longest token first.
var decodeTable = parse.TokSort(Tokens, tokenBytes, tokenText)
