// Package listing derives table views (filter, sort, page) from in-memory snapshots.
package listing

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Missing is the sort value of absent or placeholder numeric data. It orders before zero.
const Missing = -1.0

// SortState is the {key, direction} a table is currently ordered by
type SortState struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Toggle returns the state after the user selects key: the same key flips the
// direction, a different key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		if s.Direction == Asc {
			return SortState{Key: key, Direction: Desc}
		}
		return SortState{Key: key, Direction: Asc}
	}
	return SortState{Key: key, Direction: Asc}
}

// ParseDirection maps anything other than "desc" to Asc
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Value is a derived sort value, either a folded string or a number
type Value struct {
	str     string
	num     float64
	numeric bool
}

// Text builds a case-insensitive string value
func Text(s string) Value {
	return Value{str: strings.ToLower(s)}
}

// Number builds a numeric value
func Number(n float64) Value {
	return Value{num: n, numeric: true}
}

// NumberOrMissing builds a numeric value, using Missing when p is nil
func NumberOrMissing(p *float64) Value {
	if p == nil {
		return Number(Missing)
	}
	return Number(*p)
}

// IntOrMissing is NumberOrMissing for optional ints
func IntOrMissing(p *int) Value {
	if p == nil {
		return Number(Missing)
	}
	return Number(float64(*p))
}

// ParseNumber parses display text such as "72.5" or "-"; unparsable text is Missing.
func ParseNumber(s string) Value {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Number(Missing)
	}
	return Number(n)
}

func compareValues(a, b Value) int {
	if a.numeric || b.numeric {
		return cmp.Compare(a.num, b.num)
	}
	return strings.Compare(a.str, b.str)
}

// Keys maps sort keys to value extractors for a row type
type Keys[T any] map[string]func(T) Value

// Has reports whether key is sortable
func (k Keys[T]) Has(key string) bool {
	_, ok := k[key]
	return ok
}

// SortBy returns a stably sorted copy of items. Unknown keys leave the order untouched.
func SortBy[T any](items []T, state SortState, keys Keys[T]) []T {
	out := slices.Clone(items)
	extract, ok := keys[state.Key]
	if !ok {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := compareValues(extract(a), extract(b))
		if state.Direction == Desc {
			return -c
		}
		return c
	})
	return out
}
