package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateConsume(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 0, ""},
		{"hello", 1, "h"},
		{"hello", 3, "hel"},
		{"hello", 5, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := FromString[byte](tt.input)
			got, err := s.Consume(tt.n)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(got))
			require.Equal(t, tt.n, s.Pos())
			require.Equal(t, tt.input[tt.n:], string(s.Remain()))
		})
	}
}

func TestStateConsumePastEnd(t *testing.T) {
	s := New[byte, byte]([]byte("abc"), nil)
	_, err := s.Consume(2)
	require.NoError(t, err)

	_, err = s.Consume(2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "consumed past end of input: 4 > 3")
	require.Equal(t, 2, s.Pos())

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, 2, perr.Pos)
	require.Equal(t, `"c"`, perr.Ahead)
	require.Equal(t, `"ab"`, perr.Behind)
}

func TestStateConsumeNegative(t *testing.T) {
	s := FromString[byte]("abc")
	_, err := s.Consume(-1)
	require.Error(t, err)
	require.Equal(t, 0, s.Pos())
}

func TestStatePeek(t *testing.T) {
	s := FromString[byte]("ab")

	e, ok := s.Peek()
	require.True(t, ok)
	require.Equal(t, 'a', e)
	require.Equal(t, 0, s.Pos())

	_, err := s.Consume(2)
	require.NoError(t, err)

	_, ok = s.Peek()
	require.False(t, ok)
	require.Equal(t, 2, s.Pos())
	require.True(t, s.Finished())
}

func TestStatePeekEmpty(t *testing.T) {
	s := New[byte, byte](nil, nil)
	_, ok := s.Peek()
	require.False(t, ok)
	require.True(t, s.Finished())
	require.Equal(t, 0, s.Pos())
}

func TestStateRemainCannotGrowIntoInput(t *testing.T) {
	input := []byte("abcdef")
	s := New[byte, byte](input[:3], nil)
	r := s.Remain()
	_ = append(r, 'X')
	require.Equal(t, "abcdef", string(input))
}

func TestStateOutput(t *testing.T) {
	s := New[byte, byte]([]byte("x"), nil)
	require.Nil(t, s.Output())

	s.Generate('a', 'b')
	s.Generate()
	s.Generate('c')
	require.Equal(t, []byte("abc"), s.Output())
	require.Equal(t, 3, s.Fragments())
}

func TestStateOutputOnlyEmptyFragments(t *testing.T) {
	s := FromString[rune]("")
	s.Generate()
	out := s.Output()
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestStateGenerateCopiesFragment(t *testing.T) {
	s := FromString[byte]("")
	frag := []byte{1, 2}
	s.Generate(frag...)
	frag[0] = 9
	require.Equal(t, []byte{1, 2}, s.Output())
}

func TestStateErrorContext(t *testing.T) {
	s := FromString[byte]("10 PRINT \"HELLO, WORLD\"")
	_, err := s.Consume(3)
	require.NoError(t, err)
	s.Generate(0x0E, 0x0A, 0x00)
	s.Generate(0x91)

	err = s.Error("bad thing")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "bad thing", perr.Message)
	require.Equal(t, 3, perr.Pos)
	require.Equal(t, `"PRINT \"HELLO"`, perr.Ahead)
	require.Equal(t, `"10 "`, perr.Behind)
	require.Equal(t, `["\x0e\n\x00" "\x91"]`, perr.Output)
	require.Equal(t, `bad thing at 3:"PRINT \"HELLO" after …"10 " …["\x0e\n\x00" "\x91"]`, err.Error())
}

func TestStateErrorOutputWindow(t *testing.T) {
	s := FromString[rune]("")
	for _, r := range "abcdef" {
		s.Generate(r)
	}
	var perr *ParseError
	require.True(t, errors.As(s.Error("x"), &perr))
	require.Equal(t, `["c" "d" "e" "f"]`, perr.Output)
}

var errSentinel = errors.New("sentinel")

func TestStateErrorfWraps(t *testing.T) {
	s := FromString[byte]("abc")
	err := s.Errorf("%w: at %d", errSentinel, 7)
	require.ErrorIs(t, err, errSentinel)
	require.Contains(t, err.Error(), "sentinel: at 7 at 0:")
}

func TestStateErrorInsideCheckpoint(t *testing.T) {
	s := FromString[rune]("abcdef")
	s.Start()
	_, err := s.Consume(3)
	require.NoError(t, err)

	var perr *ParseError
	require.True(t, errors.As(s.Error("x"), &perr))
	require.Equal(t, 0, perr.Pos)
	require.Equal(t, 3, perr.Tentative)
	require.Equal(t, `"abcdef"`, perr.Ahead)
	require.Contains(t, perr.Error(), "x at 0(+3):")
}
