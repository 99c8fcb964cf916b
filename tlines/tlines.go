// Package tlines holds a tokenized BASIC program: a set of numbered lines of
// opaque tokenized data, and the program image they are saved and loaded as.
//
// A program image is a chain of records starting at the load address
// TxtTab:
//
//	next-addr (le16) | line number (le16) | data | 0x00
//
// ending with a zero next-addr. A .BAS file is a 0xFF type byte followed by
// the image.
package tlines

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dhamidi/bastok/parse"
)

const (
	MaxLine5 = 65529 // MSX-BASIC, GW-BASIC
	MaxLine2 = 63999 // early 6502 BASIC

	// FileType is the type byte that starts a saved tokenized program.
	FileType = 0xFF
)

var (
	ErrLineRange   = errors.New("line number out of range")
	ErrTermination = errors.New("unexpected termination byte")
	ErrAddress     = errors.New("address out of range")
)

// Line is one numbered line of tokenized data, without its terminating 0x00.
type Line struct {
	Number int
	Data   []byte
}

// Lines is a set of tokenized lines and the address their image starts at.
type Lines struct {
	TxtTab  int
	MaxLine int

	lines map[int][]byte
}

// Option configures Lines.
type Option func(*Lines)

// WithMaxLine sets the highest line number SetLine accepts.
func WithMaxLine(n int) Option {
	return func(l *Lines) { l.MaxLine = n }
}

// New creates an empty program that loads at txttab.
func New(txttab int, opts ...Option) (*Lines, error) {
	if txttab < 0 || txttab > 0xFFFF {
		return nil, fmt.Errorf("txttab $%X: %w", txttab, ErrAddress)
	}
	l := &Lines{
		TxtTab:  txttab,
		MaxLine: MaxLine5,
		lines:   make(map[int][]byte),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Parse reads a program image that was saved from txttab. image must not
// include the file type byte.
func Parse(txttab int, image []byte, opts ...Option) (*Lines, error) {
	l, err := New(txttab, opts...)
	if err != nil {
		return nil, err
	}
	if err := l.ParseText(image); err != nil {
		return nil, err
	}
	return l, nil
}

// Read reads a saved program: a file type byte followed by an image that
// was saved from txttab.
func Read(r io.Reader, txttab int, opts ...Option) (*Lines, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	if len(data) == 0 || data[0] != FileType {
		return nil, fmt.Errorf("not a tokenized program: missing $%02X type byte", FileType)
	}
	return Parse(txttab, data[1:], opts...)
}

// ParseText adds the lines of image to l. A line that is already present is
// replaced.
func (l *Lines) ParseText(image []byte) error {
	s := parse.New[byte, byte](image, nil)
	addr := l.TxtTab
	for {
		next, err := readU2(s)
		if err != nil {
			return fmt.Errorf("read link at $%04X: %w", addr, err)
		}
		if next == 0 {
			return nil
		}
		lineno, err := readU2(s)
		if err != nil {
			return fmt.Errorf("read line number at $%04X: %w", addr+2, err)
		}

		// The record ends just before the next one starts.
		size := next - addr - 5
		if size < 0 {
			return s.Errorf("line %d at $%04X: link $%04X points backwards: %w",
				lineno, addr, next, ErrAddress)
		}
		data, err := s.Consume(size)
		if err != nil {
			return fmt.Errorf("line %d at $%04X: %w", lineno, addr, err)
		}
		term, _, err := parse.Byte(s, nil, parse.Raise("missing termination byte"))
		if err != nil {
			return fmt.Errorf("line %d at $%04X: %w", lineno, addr, err)
		}
		if term != 0 {
			return s.Errorf("line %d at $%04X: $%02X at $%04X: %w",
				lineno, addr, term, next-1, ErrTermination)
		}
		if err := l.SetLine(lineno, data); err != nil {
			return err
		}
		addr = next
	}
}

func readU2(s *parse.State[byte, byte]) (int, error) {
	b, err := s.Consume(2)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint16(b)), nil
}

// SetLine sets line n to data.
func (l *Lines) SetLine(n int, data []byte) error {
	if n < 0 || n > l.MaxLine {
		return fmt.Errorf("line %d not in 0-%d: %w", n, l.MaxLine, ErrLineRange)
	}
	l.lines[n] = slices.Clone(data)
	return nil
}

// Line returns a copy of the data of line n.
func (l *Lines) Line(n int) ([]byte, bool) {
	data, ok := l.lines[n]
	if !ok {
		return nil, false
	}
	return slices.Clone(data), true
}

// DeleteLine removes line n if it exists.
func (l *Lines) DeleteLine(n int) {
	delete(l.lines, n)
}

// Len returns the number of lines.
func (l *Lines) Len() int {
	return len(l.lines)
}

// Lines returns all lines in line number order.
func (l *Lines) Lines() []Line {
	out := make([]Line, 0, len(l.lines))
	for _, n := range slices.Sorted(maps.Keys(l.lines)) {
		out = append(out, Line{Number: n, Data: slices.Clone(l.lines[n])})
	}
	return out
}

// Text returns the program image, without a file type byte.
func (l *Lines) Text() ([]byte, error) {
	var buf []byte
	addr := l.TxtTab
	for _, line := range l.Lines() {
		addr += 2 + 2 + len(line.Data) + 1
		if addr > 0xFFFF {
			return nil, fmt.Errorf("line %d ends at $%X: %w", line.Number, addr, ErrAddress)
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(addr))
		buf = binary.LittleEndian.AppendUint16(buf, uint16(line.Number))
		buf = append(buf, line.Data...)
		buf = append(buf, 0)
	}
	return binary.LittleEndian.AppendUint16(buf, 0), nil
}

// WriteTo writes a file type byte followed by the program image.
func (l *Lines) WriteTo(w io.Writer) (int64, error) {
	text, err := l.Text()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append([]byte{FileType}, text...))
	return int64(n), err
}

func (l *Lines) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tlines.Lines{$%04X", l.TxtTab)
	for _, line := range l.Lines() {
		fmt.Fprintf(&b, " %d:% X", line.Number, line.Data)
	}
	b.WriteString("}")
	return b.String()
}
