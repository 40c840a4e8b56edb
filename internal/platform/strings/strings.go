// Package strings provides small string and slice helpers shared across packages
package strings

import (
	std "strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// Dedupe keeps the first occurrence of each element, preserving order
func Dedupe[T comparable](in []T) []T {
	seen := make(map[T]struct{}, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Titler title-cases text word by word ("123 MAIN ST" -> "123 Main St").
// A Titler is not safe for concurrent use; create one per goroutine
type Titler struct{ c cases.Caser }

// NewTitler returns an English title caser
func NewTitler() *Titler { return &Titler{c: cases.Title(language.English)} }

// Title returns s title-cased; blank input comes back empty
func (t *Titler) Title(s string) string {
	s = std.TrimSpace(s)
	if s == "" {
		return ""
	}
	return t.c.String(s)
}
