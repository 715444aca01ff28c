// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/cell_test.go
// Summary: Tests for the cell model and link table.
// Usage: Run with `go test`.

package term

import "testing"

func TestAttributeString(t *testing.T) {
	if got := Attribute(0).String(); got != "none" {
		t.Errorf("expected none, got %q", got)
	}
	a := AttrBold | AttrReverse
	if got := a.String(); got != "bold|reverse" {
		t.Errorf("expected bold|reverse, got %q", got)
	}
}

func TestBlankCellIsDefault(t *testing.T) {
	c := BlankCell()
	if c.Rune != ' ' || c.Width != 1 {
		t.Errorf("blank cell should be a width-1 space, got %q width %d", c.Rune, c.Width)
	}
	if c.FG != DefaultFG || c.BG != DefaultBG || c.Attr != 0 || c.Link != 0 {
		t.Error("blank cell should carry default style and no link")
	}
}

func TestWidePairFlags(t *testing.T) {
	lead, cont := WidePair('中', Style{Attr: AttrBold})
	if !lead.IsWide() || lead.IsWideContinuation() {
		t.Error("lead cell flags wrong")
	}
	if cont.IsWide() || !cont.IsWideContinuation() {
		t.Error("continuation cell flags wrong")
	}
	if lead.Width != 2 || cont.Width != 0 {
		t.Errorf("expected widths 2/0, got %d/%d", lead.Width, cont.Width)
	}
	if cont.Attr != AttrBold {
		t.Error("continuation should carry the pair's attributes")
	}
}

func TestSetContentClearsWideFlags(t *testing.T) {
	lead, _ := WidePair('中', Style{})
	lead.SetContent('A', 1)
	if lead.IsWide() || lead.IsWideContinuation() {
		t.Error("SetContent must drop wide flags")
	}
}

func TestEraseUsesBackgroundColor(t *testing.T) {
	red := Color{Mode: ColorModeStandard, Value: 1}
	c := Cell{Rune: 'x', Width: 1, Attr: AttrBold, Link: 3}
	c.Erase(red)
	if c.Rune != ' ' || c.BG != red {
		t.Error("erase should blank the cell with the given background")
	}
	if c.Attr != 0 || c.Link != 0 || c.FG != DefaultFG {
		t.Error("erase should reset attributes, link, and foreground")
	}
}

func TestLinkTableReservesZero(t *testing.T) {
	lt := NewLinkTable()
	if lt.Len() != 0 {
		t.Fatalf("fresh table should be empty, got %d", lt.Len())
	}
	if _, ok := lt.URL(0); ok {
		t.Error("id 0 must resolve to no link")
	}
	id := lt.Add("https://example.com")
	if id != 1 {
		t.Fatalf("first link should get id 1, got %d", id)
	}
	url, ok := lt.URL(id)
	if !ok || url != "https://example.com" {
		t.Errorf("unexpected URL lookup: %q %v", url, ok)
	}
	// Append-only: a duplicate URL still gets a fresh id.
	id2 := lt.Add("https://example.com")
	if id2 != 2 {
		t.Errorf("ids must never be reused, got %d", id2)
	}
}
