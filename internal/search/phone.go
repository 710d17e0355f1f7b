// Package search implements the phone-number search helpers: digit
// normalization and the debounced, cancel-and-replace search runner used by
// interactive surfaces.
package search

import "strings"

// NormalizeDigits strips every non-digit rune. Every search request sends the
// digits-only form, so "984-111-2222" and "9841112222" are the same query.
func NormalizeDigits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameNumber reports whether two phone strings reduce to the same digit
// sequence.
func SameNumber(a, b string) bool {
	na, nb := NormalizeDigits(a), NormalizeDigits(b)
	return na != "" && na == nb
}
