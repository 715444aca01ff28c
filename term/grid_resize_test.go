// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/grid_resize_test.go
// Summary: Tests for plain and scrollback-aware resize.
// Usage: Run with `go test`.

package term

import "testing"

func requireBufferLen(t *testing.T, g *Grid) {
	t.Helper()
	if len(g.cells) != g.Cols()*g.Rows() {
		t.Fatalf("cell buffer length %d, want %d", len(g.cells), g.Cols()*g.Rows())
	}
}

func TestResizeKeepsTopLeft(t *testing.T) {
	g := newGridWithRows(t, "ABCD", "EFGH", "IJKL")
	g.Resize(2, 2)
	requireBufferLen(t, g)
	requireRowText(t, g, 0, "AB")
	requireRowText(t, g, 1, "EF")

	g.Resize(4, 3)
	requireBufferLen(t, g)
	requireRowText(t, g, 0, "AB  ")
	requireRowText(t, g, 2, "    ")
}

func TestResizeTruncationRepairsWidePairs(t *testing.T) {
	g := NewGrid(4, 1)
	g.WriteWideChar(0, 2, '世', Style{FG: DefaultFG, BG: DefaultBG})
	g.Resize(3, 1)
	requireBufferLen(t, g)
	// The lead lost its continuation to the truncation; it must not
	// survive as a half pair.
	if c := g.Cell(0, 2); c.IsWide() || c.IsWideContinuation() {
		t.Errorf("split wide pair survived truncation: %+v", c)
	}
}

func TestResizeWithScrollbackShrinkPushesAboveCursor(t *testing.T) {
	// 4 rows, cursor on row 2, shrink to 2 rows: the two rows above the
	// cursor go to scrollback and the cursor lands on 0.
	g := newGridWithRows(t, "AAA", "BBB", "CCC", "DDD")
	sb := NewScrollback(10)
	got := g.ResizeWithScrollback(3, 2, 2, sb)
	requireBufferLen(t, g)
	if got != 0 {
		t.Fatalf("cursor row = %d, want 0", got)
	}
	if sb.Len() != 2 {
		t.Fatalf("scrollback has %d lines, want 2", sb.Len())
	}
	oldest, _ := sb.Get(0)
	newest, _ := sb.Get(1)
	if LineText(oldest) != "AAA" || LineText(newest) != "BBB" {
		t.Errorf("pushed %q then %q", LineText(oldest), LineText(newest))
	}
	requireRowText(t, g, 0, "CCC")
	requireRowText(t, g, 1, "DDD")
}

func TestResizeWithScrollbackShrinkNeverPushesCursorRow(t *testing.T) {
	g := newGridWithRows(t, "AAA", "BBB", "CCC", "DDD")
	sb := NewScrollback(10)
	// Cursor on the top row: nothing above it to push, content is
	// truncated from the bottom instead.
	got := g.ResizeWithScrollback(3, 2, 0, sb)
	if got != 0 || sb.Len() != 0 {
		t.Fatalf("cursor=%d scrollback=%d, want 0 and 0", got, sb.Len())
	}
	requireRowText(t, g, 0, "AAA")
	requireRowText(t, g, 1, "BBB")
}

func TestResizeWithScrollbackGrowPullsRowsBack(t *testing.T) {
	// Round trip of the shrink scenario: growing back pulls the pushed
	// rows in their original order and advances the cursor.
	g := newGridWithRows(t, "AAA", "BBB", "CCC", "DDD")
	sb := NewScrollback(10)
	cursor := g.ResizeWithScrollback(3, 2, 2, sb)
	cursor = g.ResizeWithScrollback(3, 4, cursor, sb)
	requireBufferLen(t, g)
	if cursor != 2 {
		t.Fatalf("cursor row = %d, want 2", cursor)
	}
	if sb.Len() != 0 {
		t.Fatalf("scrollback should be drained, has %d", sb.Len())
	}
	for r, want := range []string{"AAA", "BBB", "CCC", "DDD"} {
		requireRowText(t, g, r, want)
	}
}

func TestResizeWithScrollbackGrowWithEmptyScrollback(t *testing.T) {
	g := newGridWithRows(t, "AAA", "BBB")
	sb := NewScrollback(10)
	got := g.ResizeWithScrollback(3, 4, 1, sb)
	if got != 1 {
		t.Fatalf("cursor row = %d, want 1", got)
	}
	for r, want := range []string{"AAA", "BBB", "   ", "   "} {
		requireRowText(t, g, r, want)
	}
}

func TestResizeWithScrollbackWidthChange(t *testing.T) {
	g := newGridWithRows(t, "ABCD", "EFGH")
	sb := NewScrollback(10)
	got := g.ResizeWithScrollback(2, 2, 1, sb)
	requireBufferLen(t, g)
	if got != 1 {
		t.Fatalf("cursor row = %d, want 1", got)
	}
	requireRowText(t, g, 0, "AB")
	requireRowText(t, g, 1, "EF")
}

func TestResizeToZeroIsSafe(t *testing.T) {
	g := newGridWithRows(t, "AAA")
	sb := NewScrollback(10)
	got := g.ResizeWithScrollback(0, 0, 0, sb)
	requireBufferLen(t, g)
	if got != 0 {
		t.Fatalf("cursor row = %d, want 0", got)
	}
	if c := g.Cell(0, 0); c != nil {
		t.Error("zero-sized grid should have no addressable cells")
	}
}
