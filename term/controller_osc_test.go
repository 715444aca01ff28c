// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/controller_osc_test.go
// Summary: Tests for OSC title and hyperlink handling.
// Usage: Run with `go test`.

package term

import "testing"

func TestOscTitle(t *testing.T) {
	c := NewController(10, 2)
	var observed []string
	c.TitleChanged = func(title string) { observed = append(observed, title) }

	feed(c, "\x1b]2;my title\x07")
	if c.Title() != "my title" {
		t.Errorf("title = %q", c.Title())
	}
	feed(c, "\x1b]0;other\x1b\\")
	if c.Title() != "other" {
		t.Errorf("OSC 0 should set the title too, got %q", c.Title())
	}
	// Titles may contain semicolons.
	feed(c, "\x1b]2;a;b;c\x07")
	if c.Title() != "a;b;c" {
		t.Errorf("semicolons lost: %q", c.Title())
	}
	if len(observed) != 3 || observed[2] != "a;b;c" {
		t.Errorf("callback saw %v", observed)
	}
}

func TestOsc8LinkLifecycle(t *testing.T) {
	c := NewController(20, 2)
	feed(c, "plain ")
	feed(c, "\x1b]8;;https://example.com\x07link\x1b]8;;\x07 after")

	if cell := c.Grid().Cell(0, 0); cell.Link != 0 {
		t.Errorf("pre-link cell tagged with %d", cell.Link)
	}
	for col := 6; col < 10; col++ {
		cell := c.Grid().Cell(0, col)
		if cell.Link == 0 {
			t.Fatalf("link cell at col %d untagged", col)
		}
		if url, ok := c.LinkURL(cell.Link); !ok || url != "https://example.com" {
			t.Fatalf("link resolves to %q %v", url, ok)
		}
	}
	if cell := c.Grid().Cell(0, 11); cell.Link != 0 {
		t.Errorf("post-link cell tagged with %d", cell.Link)
	}
	if c.HasDanglingLink() {
		t.Error("closed link reported dangling")
	}
}

func TestOsc8DanglingLink(t *testing.T) {
	c := NewController(10, 2)
	feed(c, "\x1b]8;;https://example.com\x07oops")
	if !c.HasDanglingLink() {
		t.Error("open link not reported")
	}
}

func TestOsc8ParamsFieldIgnored(t *testing.T) {
	c := NewController(20, 2)
	feed(c, "\x1b]8;id=foo;https://example.com\x07x\x1b]8;;\x07")
	if url, ok := c.LinkURLAt(0, 0); !ok || url != "https://example.com" {
		t.Errorf("link with id param = %q %v", url, ok)
	}
}

func TestOsc8UriWithSemicolons(t *testing.T) {
	c := NewController(30, 2)
	feed(c, "\x1b]8;;https://example.com/a;b=c\x07x\x1b]8;;\x07")
	if url, _ := c.LinkURLAt(0, 0); url != "https://example.com/a;b=c" {
		t.Errorf("uri = %q", url)
	}
}

func TestOsc8DistinctIds(t *testing.T) {
	c := NewController(20, 2)
	feed(c, "\x1b]8;;https://one.test\x07a\x1b]8;;https://two.test\x07b\x1b]8;;\x07")
	a := c.Grid().Cell(0, 0)
	b := c.Grid().Cell(0, 1)
	if a.Link == 0 || b.Link == 0 || a.Link == b.Link {
		t.Fatalf("ids = %d, %d", a.Link, b.Link)
	}
	if c.Links().Len() != 2 {
		t.Errorf("table len = %d, want 2", c.Links().Len())
	}
}

func TestOsc8ShortFormEndsLink(t *testing.T) {
	// "OSC 8" with fewer than three fields acts as end-of-link.
	c := NewController(10, 2)
	feed(c, "\x1b]8;;https://example.com\x07\x1b]8\x07x")
	if cell := c.Grid().Cell(0, 0); cell.Link != 0 {
		t.Errorf("short form did not end the link, cell tagged %d", cell.Link)
	}
}

func TestUnknownOscIgnored(t *testing.T) {
	c := NewController(10, 2)
	feed(c, "\x1b]52;c;Zm9v\x07ok")
	requireRowText(t, c.Grid(), 0, "ok"+spaces(8))
}
