// Package parse provides the state and primitive matchers that tokenizers
// are built from.
//
// # Overview
//
// A [State] holds an immutable input sequence, a cursor into it and an
// append-only output accumulator. Both sequences are typed: E is the input
// element (byte, rune, ...) and O is the output element. Output is appended
// in fragments with [State.Generate] and joined by [State.Output].
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│  Input []E  │────▶│  Matchers   │────▶│ Output []O  │
//	│ (immutable) │     │ Byte/String │     │ (fragments) │
//	└─────────────┘     │  TokTrans   │     └─────────────┘
//	                    └─────────────┘
//
// # Fail and Error
//
// Matchers report two different outcomes:
//
//   - A fail is an ordinary "no match". It is returned as a false ok value
//     and has no side effects: nothing is consumed or generated.
//   - An error is a violated precondition, such as consuming past the end
//     of input. It is returned as a *[ParseError] carrying a diagnostic
//     window of the input and recent output.
//
// # Checkpoints
//
// Speculative matching runs inside a checkpoint. [State.Attempt] opens one,
// runs the attempt and closes it again, confirming on a match and
// abandoning on a fail:
//
//	ok := s.Attempt(func() bool {
//	    if _, ok := parse.String(s, "&H"); !ok {
//	        return false // nothing consumed, nothing generated
//	    }
//	    s.Generate(0x0C)
//	    return true
//	})
//
// The same protocol is available step by step with [State.Start],
// [State.Confirm] and [State.Abandon]. A failed attempt must be closed with
// Abandon or replaced by the next Start:
//
//	s.Start()
//	if _, ok := parse.String(s, "&H"); !ok {
//	    s.Abandon()
//	    return false
//	}
//	s.Generate(0x0C)
//	s.Confirm()
//
// While a checkpoint is open, consumption moves only the tentative cursor
// and generated output is held back. Confirm makes both permanent and
// Abandon drops them. Only one checkpoint can be open at a time; Start on an
// open checkpoint restarts it. [State.Finish] returns the output of a parse
// and reports an error if a checkpoint was left open.
//
// # Thread Safety
//
// A State is owned by a single parse and is not safe for concurrent use.
package parse
