package parse

// State is the mutable state of a single parse: an immutable input, a
// committed and a tentative cursor, and the output accumulated so far.
type State[E Element, O any] struct {
	input      []E
	translator Translator[E]

	pos       int // committed position
	tentative int
	open      bool

	output  [][]O
	pending [][]O
}

// New creates a state for parsing input. tr may be nil.
func New[E Element, O any](input []E, tr Translator[E]) *State[E, O] {
	return &State[E, O]{
		input:      input,
		translator: tr,
	}
}

// FromString creates a state over the runes of s.
func FromString[O any](s string) *State[rune, O] {
	return New[rune, O]([]rune(s), Identity[rune]{})
}

// Input returns the whole input sequence.
func (s *State[E, O]) Input() []E {
	return s.input[:len(s.input):len(s.input)]
}

// Translator returns the translator the state was created with, or nil.
func (s *State[E, O]) Translator() Translator[E] {
	return s.translator
}

// Pos returns the committed position.
func (s *State[E, O]) Pos() int {
	return s.pos
}

// cursor is the position primitives operate at.
func (s *State[E, O]) cursor() int {
	if s.open {
		return s.tentative
	}
	return s.pos
}

// advance moves the active cursor by n elements.
func (s *State[E, O]) advance(n int) {
	if s.open {
		s.tentative += n
		return
	}
	s.pos += n
	s.tentative = s.pos
}

// Finished reports whether all input has been consumed.
func (s *State[E, O]) Finished() bool {
	return s.cursor() >= len(s.input)
}

// Consume returns the next n elements and advances past them. Consuming
// past the end of input is an error and leaves the cursor unchanged.
func (s *State[E, O]) Consume(n int) ([]E, error) {
	c := s.cursor()
	if n < 0 {
		return nil, s.Errorf("cannot consume %d elements", n)
	}
	if c+n > len(s.input) {
		return nil, s.Errorf("consumed past end of input: %d > %d", c+n, len(s.input))
	}
	s.advance(n)
	return s.input[c : c+n : c+n], nil
}

// Peek returns the next element without consuming it. ok is false at the
// end of input.
func (s *State[E, O]) Peek() (e E, ok bool) {
	c := s.cursor()
	if c >= len(s.input) {
		return e, false
	}
	return s.input[c], true
}

// Remain returns the unconsumed input.
func (s *State[E, O]) Remain() []E {
	return s.input[s.cursor():len(s.input):len(s.input)]
}

// Generate appends a fragment to the output. While a checkpoint is open the
// fragment is held until Confirm.
func (s *State[E, O]) Generate(frag ...O) {
	f := append([]O(nil), frag...)
	if s.open {
		s.pending = append(s.pending, f)
		return
	}
	s.output = append(s.output, f)
}

// Output returns the confirmed output joined together, or nil if nothing
// has been generated.
func (s *State[E, O]) Output() []O {
	if len(s.output) == 0 {
		return nil
	}
	n := 0
	for _, f := range s.output {
		n += len(f)
	}
	out := make([]O, 0, n)
	for _, f := range s.output {
		out = append(out, f...)
	}
	return out
}

// Finish returns the output of a completed parse. A checkpoint that is
// still open is an error: whatever was consumed or generated under it would
// otherwise be dropped without notice.
func (s *State[E, O]) Finish() ([]O, error) {
	if s.open {
		return nil, s.Errorf("checkpoint still open: tentative position %d, %d pending fragments",
			s.tentative, len(s.pending))
	}
	return s.Output(), nil
}

// Fragments returns the number of confirmed output fragments.
func (s *State[E, O]) Fragments() int {
	return len(s.output)
}
