package parse

// Element is the set of input element types a State can hold.
type Element interface {
	~uint8 | ~uint16 | ~uint32 | ~int32
}

// Translator converts between Unicode code points and native input
// elements. It is used when text literals are compared against input that
// is not already a sequence of runes.
type Translator[E Element] interface {
	// Native returns the native element for r, or false if r has no
	// representation in the native encoding.
	Native(r rune) (E, bool)
	// Text returns the code point for a native element.
	Text(e E) rune
}

// Identity translates by code point value.
type Identity[E Element] struct{}

func (Identity[E]) Native(r rune) (E, bool) {
	e := E(r)
	if rune(e) != r {
		return 0, false
	}
	return e, true
}

func (Identity[E]) Text(e E) rune { return rune(e) }
