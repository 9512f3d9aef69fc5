package listing

import (
	"strings"
)

// All is the dropdown sentinel meaning "no filter"
const All = "ALL"

// Inactive reports whether a filter value accepts everything
func Inactive(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.EqualFold(value, All)
}

// Predicate accepts or rejects one row
type Predicate[T any] func(T) bool

// Filter is the logical AND of its active predicates
type Filter[T any] struct {
	predicates []Predicate[T]
}

// NewFilter creates an empty filter that accepts every row
func NewFilter[T any]() *Filter[T] {
	return &Filter[T]{}
}

// Where adds an unconditional predicate
func (f *Filter[T]) Where(p Predicate[T]) *Filter[T] {
	f.predicates = append(f.predicates, p)
	return f
}

// Search adds a case-insensitive substring match over the fields returned by fields.
// A blank term adds nothing.
func (f *Filter[T]) Search(term string, fields func(T) []string) *Filter[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return f
	}
	return f.Where(func(item T) bool {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	})
}

// Equals adds a case-insensitive equality filter on one field, skipped when value is inactive
func (f *Filter[T]) Equals(value string, field func(T) string) *Filter[T] {
	if Inactive(value) {
		return f
	}
	value = strings.TrimSpace(value)
	return f.Where(func(item T) bool {
		return strings.EqualFold(field(item), value)
	})
}

// Matches adds a custom dropdown predicate, skipped when value is inactive
func (f *Filter[T]) Matches(value string, match func(T, string) bool) *Filter[T] {
	if Inactive(value) {
		return f
	}
	value = strings.TrimSpace(value)
	return f.Where(func(item T) bool {
		return match(item, value)
	})
}

// Accept reports whether every predicate accepts item
func (f *Filter[T]) Accept(item T) bool {
	for _, p := range f.predicates {
		if !p(item) {
			return false
		}
	}
	return true
}

// Apply returns the accepted rows in their original order
func (f *Filter[T]) Apply(items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.Accept(item) {
			out = append(out, item)
		}
	}
	return out
}

// Active is the number of predicates in effect
func (f *Filter[T]) Active() int {
	return len(f.predicates)
}
