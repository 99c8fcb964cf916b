// Package blines turns the physical lines of a BASIC source file into
// logical BASIC lines.
package blines

import (
	"bytes"
	"strings"

	"github.com/grafana/regexp"
)

// DefaultCommentChar starts an expanded-BASIC comment.
const DefaultCommentChar = '‖'

// A physical line starts a BASIC line if it begins with a number followed
// by something that is neither a digit nor a comma. "DATA 12," may then be
// continued by "34, 56".
var lineStart = regexp.MustCompile(`^\d+[^,\d]+`)

// Line is a BASIC line and the index of the physical line it starts on.
type Line struct {
	Text  string
	Start int
}

// Join joins the physical lines of expanded BASIC source into BASIC lines.
//
// Leading and trailing spaces of each physical line are dropped and the
// remaining text of the lines belonging to one BASIC line is joined with a
// single space. A comment runs from commentChar to the end of the physical
// line and is removed along with the spaces before it. Blank lines add
// nothing. Text before the first numbered line is discarded.
func Join(plines []string, commentChar rune) []string {
	lines := JoinLines(plines, commentChar)
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// JoinLines is Join, but also reports where each BASIC line starts.
func JoinLines(plines []string, commentChar rune) []Line {
	var (
		out     []Line
		current []string
		start   = -1
	)
	for i, pline := range plines {
		pline = strings.TrimSpace(pline)
		if lineStart.MatchString(pline) {
			if start >= 0 {
				out = append(out, Line{Text: strings.Join(current, " "), Start: start})
			}
			current = current[:0]
			start = i
		}
		if c := strings.IndexRune(pline, commentChar); c >= 0 {
			pline = strings.TrimSpace(pline[:c])
		}
		if pline == "" {
			continue
		}
		current = append(current, pline)
	}
	if start >= 0 {
		out = append(out, Line{Text: strings.Join(current, " "), Start: start})
	}
	return out
}

const eof = 0x1A

// StripEOL removes LF, CR or CR LF from the end of each line. If the last
// line is a lone ^Z, the CP/M and DOS end of file marker, it is dropped.
func StripEOL(lines [][]byte) [][]byte {
	if len(lines) == 0 {
		return nil
	}
	out := make([][]byte, len(lines))
	for i, l := range lines {
		l = bytes.TrimSuffix(l, []byte{'\n'})
		l = bytes.TrimSuffix(l, []byte{'\r'})
		out[i] = l
	}
	if last := out[len(out)-1]; len(last) == 1 && last[0] == eof {
		out = out[:len(out)-1]
	}
	return out
}
