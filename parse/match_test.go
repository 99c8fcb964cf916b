package parse

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

// upper maps ASCII letters to their upper case in a one-byte encoding.
type upper struct{}

func (upper) Native(r rune) (byte, bool) {
	if r > 0x7F {
		return 0, false
	}
	return byte(unicode.ToUpper(r)), true
}

func (upper) Text(b byte) rune { return unicode.ToLower(rune(b)) }

func TestByte(t *testing.T) {
	s := FromString[byte]("ab")

	e, ok, err := Byte(s, nil, OnFail{})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 'a', e)
	require.Equal(t, 1, s.Pos())
	require.Nil(t, s.Output())
}

func TestByteGenerates(t *testing.T) {
	s := FromString[byte]("ab")
	gen := func(r rune) []byte { return []byte{byte(r) - 'a' + 'A'} }

	for !s.Finished() {
		_, _, err := Byte(s, gen, OnFail{})
		require.NoError(t, err)
	}
	require.Equal(t, "AB", string(s.Output()))
}

func TestByteAtEnd(t *testing.T) {
	tests := []struct {
		name    string
		onFail  OnFail
		wantErr string
	}{
		{"default", OnFail{}, "unexpected end of input"},
		{"raise", Raise("expected line number"), "expected line number"},
		{"fail", Fail, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New[byte, byte](nil, nil)
			called := false
			gen := func(byte) []byte { called = true; return nil }

			_, ok, err := Byte(s, gen, tt.onFail)
			require.False(t, ok)
			require.False(t, called)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
			require.Equal(t, 0, s.Pos())
			require.Nil(t, s.Output())
		})
	}
}

func TestOnFailString(t *testing.T) {
	require.Equal(t, DefaultFailMessage, OnFail{}.String())
	require.Equal(t, "fail", Fail.String())
	require.True(t, Fail.IsFail())
	require.Equal(t, "boom", Raise("boom").String())
}

func TestString(t *testing.T) {
	tests := []struct {
		input string
		lit   string
		ok    bool
		pos   int
	}{
		{"hello", "hello", true, 5},
		{"hello", "hel", true, 3},
		{"hello", "", true, 0},
		{"hello", "help", false, 0},
		{"hello", "hellos", false, 0},
		{"", "h", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input+"/"+tt.lit, func(t *testing.T) {
			s := FromString[byte](tt.input)
			s.Start()
			m, ok := String(s, tt.lit)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.pos, s.Tentative())
			require.Equal(t, 0, s.Pos())
			if ok {
				require.Equal(t, tt.lit, string(m))
			} else {
				require.Nil(t, m)
			}
		})
	}
}

func TestStringUsesTranslator(t *testing.T) {
	s := New[byte, byte]([]byte("GOTO 10"), upper{})
	s.Start()

	_, ok := String(s, "go")
	require.True(t, ok)
	m, ok := String(s, "to")
	require.True(t, ok)
	require.Equal(t, []byte("TO"), m)

	_, ok = String(s, "ü")
	require.False(t, ok)
	require.Equal(t, 4, s.Tentative())

	s.Confirm()
	require.Equal(t, 4, s.Pos())
	require.Equal(t, "to", s.Text(m))
}

func TestStringWithoutTranslatorUsesCodePoints(t *testing.T) {
	s := New[byte, byte]([]byte{'&', 'H', 0xFF}, nil)
	m, ok := String(s, "&Hÿ")
	require.True(t, ok)
	require.Len(t, m, 3)

	s = New[byte, byte]([]byte("x"), nil)
	_, ok = String(s, "Ā")
	require.False(t, ok)
}

func TestStringIn(t *testing.T) {
	s := FromString[byte]("&h1F")
	m, ok := StringIn(s, "&H", "&h")
	require.True(t, ok)
	require.Equal(t, "&h", string(m))

	_, ok = StringIn(s, "&O", "&o")
	require.False(t, ok)
	require.Equal(t, 2, s.Pos())
}
