package parse

// DefaultFailMessage is the error message used by Byte when it reaches the
// end of input and no other message was given.
const DefaultFailMessage = "unexpected end of input"

// OnFail tells a matcher what to do when it cannot match. The zero value
// raises an error with DefaultFailMessage.
type OnFail struct {
	message string
	fail    bool
}

// Fail makes a matcher return a fail instead of an error.
var Fail = OnFail{fail: true}

// Raise makes a matcher return a *ParseError with message.
func Raise(message string) OnFail {
	return OnFail{message: message}
}

// IsFail reports whether o returns a fail rather than an error.
func (o OnFail) IsFail() bool { return o.fail }

func (o OnFail) String() string {
	if o.fail {
		return "fail"
	}
	if o.message == "" {
		return DefaultFailMessage
	}
	return o.message
}

// Byte consumes the next input element and returns it. Despite the name the
// element is of whatever type the input holds.
//
// At the end of input Byte fails (ok == false, err == nil) when onFail is
// Fail, and otherwise returns an error carrying onFail's message. If gen is
// not nil its result for the consumed element is generated.
func Byte[E Element, O any](s *State[E, O], gen func(E) []O, onFail OnFail) (E, bool, error) {
	var zero E
	if s.Finished() {
		if onFail.fail {
			return zero, false, nil
		}
		return zero, false, s.Error(onFail.String())
	}
	e, _ := s.Peek()
	s.advance(1)
	if gen != nil {
		s.Generate(gen(e)...)
	}
	return e, true, nil
}

// Native translates a text literal into input elements. Rune input is used
// as is; other input goes through the state's translator, or by code point
// value when there is none. ok is false if a rune has no native form.
func (s *State[E, O]) Native(lit string) ([]E, bool) {
	var tr Translator[E] = Identity[E]{}
	if _, text := any(*new(E)).(rune); !text && s.translator != nil {
		tr = s.translator
	}
	out := make([]E, 0, len(lit))
	for _, r := range lit {
		e, ok := tr.Native(r)
		if !ok {
			return nil, false
		}
		out = append(out, e)
	}
	return out, true
}

// Text translates input elements back into a string.
func (s *State[E, O]) Text(elems []E) string {
	var tr Translator[E] = Identity[E]{}
	if _, text := any(*new(E)).(rune); !text && s.translator != nil {
		tr = s.translator
	}
	r := make([]rune, len(elems))
	for i, e := range elems {
		r[i] = tr.Text(e)
	}
	return string(r)
}

// String matches the literal lit at the cursor. On a match the cursor
// advances past it and the matched input is returned; this is normally done
// inside a checkpoint, which must be confirmed to make it permanent. If the
// input does not match, String fails and the cursor does not move.
func String[E Element, O any](s *State[E, O], lit string) ([]E, bool) {
	expected, ok := s.Native(lit)
	if !ok {
		return nil, false
	}
	if !hasPrefix(s.Remain(), expected) {
		return nil, false
	}
	matched, _ := s.Consume(len(expected))
	return matched, true
}

// StringIn matches the first of lits that matches at the cursor.
func StringIn[E Element, O any](s *State[E, O], lits ...string) ([]E, bool) {
	for _, lit := range lits {
		if m, ok := String(s, lit); ok {
			return m, true
		}
	}
	return nil, false
}

func hasPrefix[E Element](input, prefix []E) bool {
	if len(prefix) > len(input) {
		return false
	}
	for i, e := range prefix {
		if input[i] != e {
			return false
		}
	}
	return true
}
