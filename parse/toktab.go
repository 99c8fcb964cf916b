package parse

import "slices"

// Entry is one row of a token table: input matching Key is translated to
// Value.
type Entry[E Element, O any] struct {
	Key   []E
	Value []O
}

// Table is an ordered token table. TokTrans uses the first entry that
// matches, so a key must come before any of its prefixes.
type Table[E Element, O any] []Entry[E, O]

// TokSort builds a table from rows using the key and value projections and
// orders it by descending key length. Entries with keys of equal length
// keep their order in rows.
func TokSort[T any, E Element, O any](rows []T, key func(T) []E, value func(T) []O) Table[E, O] {
	t := make(Table[E, O], len(rows))
	for i, row := range rows {
		t[i] = Entry[E, O]{Key: key(row), Value: value(row)}
	}
	return t.Sorted()
}

// Sorted returns a copy of t ordered by descending key length.
func (t Table[E, O]) Sorted() Table[E, O] {
	sorted := slices.Clone(t)
	slices.SortStableFunc(sorted, func(a, b Entry[E, O]) int {
		return len(b.Key) - len(a.Key)
	})
	return sorted
}

// Lookup returns the first entry whose key is a prefix of input.
func (t Table[E, O]) Lookup(input []E) (Entry[E, O], bool) {
	for _, e := range t {
		if hasPrefix(input, e.Key) {
			return e, true
		}
	}
	return Entry[E, O]{}, false
}

// TokTrans matches the first entry of table whose key is a prefix of the
// remaining input, consumes the key, generates the entry's value and returns
// the key. If nothing matches it fails without consuming or generating.
func TokTrans[E Element, O any](s *State[E, O], table Table[E, O]) ([]E, bool) {
	e, ok := table.Lookup(s.Remain())
	if !ok {
		return nil, false
	}
	s.advance(len(e.Key))
	s.Generate(e.Value...)
	return e.Key, true
}
