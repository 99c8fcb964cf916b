package tlines

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/bastok/parse"
)

// 10 PRINT"HI"
// 20 GOTO 10
var sample = []byte{
	0x0B, 0x80, 0x0A, 0x00, 0x91, '"', 'H', 'I', '"', 0x00,
	0x15, 0x80, 0x14, 0x00, 0x89, ' ', 0x0E, 0x0A, 0x00, 0x00,
	0x00, 0x00,
}

func TestParse(t *testing.T) {
	l, err := Parse(0x8001, sample)
	require.NoError(t, err)

	want := []Line{
		{Number: 10, Data: []byte{0x91, '"', 'H', 'I', '"'}},
		{Number: 20, Data: []byte{0x89, ' ', 0x0E, 0x0A, 0x00}},
	}
	if diff := cmp.Diff(want, l.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}

	text, err := l.Text()
	require.NoError(t, err)
	require.Equal(t, sample, text)
}

func TestParseEmpty(t *testing.T) {
	l, err := Parse(0x8001, []byte{0, 0})
	require.NoError(t, err)
	require.Equal(t, 0, l.Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		image []byte
		want  error
	}{
		{"bad termination", []byte{0x07, 0x80, 0x0A, 0x00, 0x91, 0x01, 0x00, 0x00}, ErrTermination},
		{"backwards link", []byte{0x02, 0x80, 0x0A, 0x00, 0x00, 0x00}, ErrAddress},
		{"line out of range", []byte{0x06, 0x80, 0xFF, 0xFF, 0x00, 0x00, 0x00}, ErrLineRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(0x8001, tt.image)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseTruncated(t *testing.T) {
	for _, image := range [][]byte{{}, {0x0B}, {0x0B, 0x80, 0x0A}, sample[:8], sample[:9]} {
		_, err := Parse(0x8001, image)
		var perr *parse.ParseError
		require.ErrorAs(t, err, &perr, "image % X", image)
	}
}

func TestSetLine(t *testing.T) {
	l, err := New(0x8001, WithMaxLine(MaxLine2))
	require.NoError(t, err)

	require.NoError(t, l.SetLine(MaxLine2, []byte{0x8F}))
	require.ErrorIs(t, l.SetLine(MaxLine2+1, nil), ErrLineRange)
	require.ErrorIs(t, l.SetLine(-1, nil), ErrLineRange)

	data := []byte{0x91}
	require.NoError(t, l.SetLine(10, data))
	data[0] = 0
	got, ok := l.Line(10)
	require.True(t, ok)
	require.Equal(t, []byte{0x91}, got)

	l.DeleteLine(10)
	_, ok = l.Line(10)
	require.False(t, ok)
}

func TestLineReturnsCopy(t *testing.T) {
	l, err := New(0x8001)
	require.NoError(t, err)
	require.NoError(t, l.SetLine(10, []byte{0x91, ' ', 0x12}))

	got, ok := l.Line(10)
	require.True(t, ok)
	got[0] = 0x90
	l.Lines()[0].Data[2] = 0x13

	got, _ = l.Line(10)
	require.Equal(t, []byte{0x91, ' ', 0x12}, got)
}

func TestNewAddress(t *testing.T) {
	_, err := New(-1)
	require.ErrorIs(t, err, ErrAddress)
	_, err = New(0x10000)
	require.ErrorIs(t, err, ErrAddress)
}

func TestTextOverflow(t *testing.T) {
	l, err := New(0xFFF0)
	require.NoError(t, err)
	require.NoError(t, l.SetLine(10, make([]byte, 32)))
	_, err = l.Text()
	require.ErrorIs(t, err, ErrAddress)
}

func TestWriteToAndRead(t *testing.T) {
	l, err := Parse(0x8001, sample)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := l.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, len(sample)+1, n)
	require.Equal(t, byte(FileType), buf.Bytes()[0])

	back, err := Read(&buf, 0x8001)
	require.NoError(t, err)
	if diff := cmp.Diff(l.Lines(), back.Lines()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = Read(bytes.NewReader(sample), 0x8001)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrTermination))
}

func TestString(t *testing.T) {
	l, err := New(0x8001)
	require.NoError(t, err)
	require.NoError(t, l.SetLine(20, []byte{0x81}))
	require.NoError(t, l.SetLine(10, []byte{0x91, 0x22}))
	require.Equal(t, "tlines.Lines{$8001 10:91 22 20:81}", l.String())
}
