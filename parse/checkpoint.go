package parse

// Start opens a checkpoint at the committed position. Any work done under a
// previous unconfirmed checkpoint is discarded.
func (s *State[E, O]) Start() {
	s.tentative = s.pos
	s.pending = nil
	s.open = true
}

// Confirm makes the work done since Start permanent: the committed position
// moves to the tentative position and pending output is appended to the
// confirmed output.
func (s *State[E, O]) Confirm() {
	if !s.open {
		return
	}
	s.pos = s.tentative
	s.output = append(s.output, s.pending...)
	s.pending = nil
	s.open = false
}

// Abandon closes the checkpoint without committing anything.
func (s *State[E, O]) Abandon() {
	s.tentative = s.pos
	s.pending = nil
	s.open = false
}

// Attempt runs m inside a checkpoint and closes it when m returns: it is
// confirmed if m reports a match and abandoned otherwise. m may confirm the
// checkpoint itself. After a failed attempt the state is as it was before,
// and later primitives work on the committed position again.
func (s *State[E, O]) Attempt(m func() bool) bool {
	s.Start()
	if !m() {
		s.Abandon()
		return false
	}
	s.Confirm()
	return true
}

// Tentative returns the tentative position. Outside a checkpoint it equals
// Pos.
func (s *State[E, O]) Tentative() int {
	if s.open {
		return s.tentative
	}
	return s.pos
}

// Speculating reports whether a checkpoint is open.
func (s *State[E, O]) Speculating() bool {
	return s.open
}
