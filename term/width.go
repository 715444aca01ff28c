// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/width.go
// Summary: Display-width classification for runes and grapheme clusters.
// Usage: Supplies the 0/1/2 width function the grid and controller need.

package term

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// WidthFunc classifies a rune by display width: 0 (combining/format,
// occupies no cell), 1 (narrow), or 2 (wide).
type WidthFunc func(r rune) int

// RuneDisplayWidth is the default WidthFunc, backed by go-runewidth.
// Control characters and combining marks report 0; East Asian wide and
// fullwidth characters report 2.
func RuneDisplayWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w > 2 {
		return 2
	}
	return w
}

// GraphemeSpan is one grapheme cluster of a string together with its
// display width.
type GraphemeSpan struct {
	Cluster string
	Width   int
}

// Graphemes splits a string into grapheme clusters with display widths.
// Zero-width clusters (pure combining sequences) are reported with Width 0
// so callers can skip them the same way WritePrintable does.
func Graphemes(s string) []GraphemeSpan {
	var spans []GraphemeSpan
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		w := g.Width()
		if w > 2 {
			w = 2
		}
		spans = append(spans, GraphemeSpan{Cluster: cluster, Width: w})
	}
	return spans
}

// StringDisplayWidth returns the total number of columns a string occupies.
func StringDisplayWidth(s string) int {
	return uniseg.StringWidth(s)
}
