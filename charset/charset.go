// Package charset provides translators between Unicode and the 8-bit
// character sets of home computers.
package charset

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/dhamidi/bastok/parse"
)

// DefaultName is the charset used when none is selected.
const DefaultName = "cp437"

// Charmap translates through a single-byte x/text character map.
type Charmap struct {
	cm *charmap.Charmap
}

// FromCharmap wraps cm.
func FromCharmap(cm *charmap.Charmap) Charmap {
	return Charmap{cm: cm}
}

func (c Charmap) Native(r rune) (byte, bool) {
	return c.cm.EncodeRune(r)
}

func (c Charmap) Text(b byte) rune {
	return c.cm.DecodeByte(b)
}

func (c Charmap) String() string {
	return c.cm.String()
}

// ASCII translates only 7-bit code points. Bytes above 0x7F decode to
// U+FFFD.
type ASCII struct{}

func (ASCII) Native(r rune) (byte, bool) {
	if r < 0 || r > 0x7F {
		return 0, false
	}
	return byte(r), true
}

func (ASCII) Text(b byte) rune {
	if b > 0x7F {
		return '�'
	}
	return rune(b)
}

func (ASCII) String() string { return "US-ASCII" }

var byName = map[string]parse.Translator[byte]{
	"ascii":  ASCII{},
	"latin1": FromCharmap(charmap.ISO8859_1),
	"cp437":  FromCharmap(charmap.CodePage437),
	"cp850":  FromCharmap(charmap.CodePage850),
}

// Lookup returns the translator registered under name. Names are case
// insensitive; the empty name selects DefaultName.
func Lookup(name string) (parse.Translator[byte], error) {
	if name == "" {
		name = DefaultName
	}
	tr, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown charset %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return tr, nil
}

// Names lists the registered charset names.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
