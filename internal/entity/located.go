package entity

// Position is the table/row/column a value was read from. -1 means not located.
type Position struct {
	TableIndex int `json:"table_index"`
	RowIndex   int `json:"row_index"`
	ColIndex   int `json:"col_index"`
}

// NoPosition is the sentinel for values that were not read from a cell.
var NoPosition = Position{TableIndex: -1, RowIndex: -1, ColIndex: -1}

// At builds a cell position.
func At(table, row, col int) Position {
	return Position{TableIndex: table, RowIndex: row, ColIndex: col}
}

// Valid reports whether every coordinate is set.
func (p Position) Valid() bool {
	return p.TableIndex >= 0 && p.RowIndex >= 0 && p.ColIndex >= 0
}

// LocatedValue pairs a typed value with its source text and cell.
// The zero value is an unset value with no position.
type LocatedValue[T any] struct {
	Value   *T
	RawText string
	Source  *Position
}

type (
	LocatedString = LocatedValue[string]
	LocatedFloat  = LocatedValue[float64]
	LocatedInt    = LocatedValue[int]
)

// Located returns a value read from the cell at pos.
func Located[T any](v T, raw string, pos Position) LocatedValue[T] {
	p := pos
	return LocatedValue[T]{Value: &v, RawText: raw, Source: &p}
}

// Computed returns a value derived from other fields. It keeps the sentinel position.
func Computed[T any](v T) LocatedValue[T] {
	return LocatedValue[T]{Value: &v}
}

// Derived returns a value computed from the text of another located value,
// inheriting its raw text and position.
func Derived[T, S any](v T, from LocatedValue[S]) LocatedValue[T] {
	out := LocatedValue[T]{Value: &v, RawText: from.RawText}
	if from.Source != nil {
		p := *from.Source
		out.Source = &p
	}
	return out
}

func (l LocatedValue[T]) IsSet() bool { return l.Value != nil }

// Get returns the value and whether it is set.
func (l LocatedValue[T]) Get() (T, bool) {
	if l.Value == nil {
		var zero T
		return zero, false
	}
	return *l.Value, true
}

// Or returns the value, or def when unset.
func (l LocatedValue[T]) Or(def T) T {
	if l.Value == nil {
		return def
	}
	return *l.Value
}

// Position returns the source cell, or NoPosition.
func (l LocatedValue[T]) Position() Position {
	if l.Source == nil {
		return NoPosition
	}
	return *l.Source
}
