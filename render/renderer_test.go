// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/thorstone137/gridterm/term"
)

func newSimDriver(t *testing.T, cols, rows int) (*TcellScreenDriver, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim init: %v", err)
	}
	sim.SetSize(cols, rows)
	t.Cleanup(sim.Fini)
	return NewTcellScreenDriver(sim), sim
}

func simRune(t *testing.T, sim tcell.SimulationScreen, x, y int) rune {
	t.Helper()
	cells, w, _ := sim.GetContents()
	cell := cells[y*w+x]
	if len(cell.Runes) == 0 {
		return ' '
	}
	return cell.Runes[0]
}

func TestRendererPaintsText(t *testing.T) {
	driver, sim := newSimDriver(t, 10, 4)
	c := term.NewController(10, 4)
	r := NewRenderer(driver)

	c.Process([]byte("hi\x1b[2;1Hthere"))
	r.Draw(c)

	for i, want := range "hi" {
		if got := simRune(t, sim, i, 0); got != want {
			t.Errorf("cell (%d,0) = %q, want %q", i, got, want)
		}
	}
	for i, want := range "there" {
		if got := simRune(t, sim, i, 1); got != want {
			t.Errorf("cell (%d,1) = %q, want %q", i, got, want)
		}
	}
	x, y, visible := sim.GetCursor()
	if !visible || x != 5 || y != 1 {
		t.Errorf("cursor = (%d,%d) visible=%v, want (5,1) true", x, y, visible)
	}
}

func TestRendererAppliesStyle(t *testing.T) {
	driver, sim := newSimDriver(t, 10, 2)
	c := term.NewController(10, 2)
	r := NewRenderer(driver)

	c.Process([]byte("\x1b[1;31;44mX"))
	r.Draw(c)

	cells, w, _ := sim.GetContents()
	fg, bg, attrs := cells[0*w+0].Style.Decompose()
	if fg != tcell.PaletteColor(1) || bg != tcell.PaletteColor(4) {
		t.Errorf("colors = %v/%v", fg, bg)
	}
	if attrs&tcell.AttrBold == 0 {
		t.Error("bold not applied")
	}
}

func TestRendererHidesCursor(t *testing.T) {
	driver, sim := newSimDriver(t, 10, 2)
	c := term.NewController(10, 2)
	r := NewRenderer(driver)

	c.Process([]byte("\x1b[?25l"))
	r.Draw(c)
	if _, _, visible := sim.GetCursor(); visible {
		t.Error("cursor should be hidden")
	}
}

func TestRendererDiffsFrames(t *testing.T) {
	counter := &countingDriver{}
	c := term.NewController(5, 2)
	r := NewRenderer(counter)

	c.Process([]byte("abc"))
	r.Draw(c)
	first := counter.sets
	if first == 0 {
		t.Fatal("first frame painted nothing")
	}

	counter.sets = 0
	r.Draw(c)
	if counter.sets != 0 {
		t.Errorf("unchanged frame repainted %d cells", counter.sets)
	}

	c.Process([]byte("X"))
	counter.sets = 0
	r.Draw(c)
	if counter.sets != 1 {
		t.Errorf("one-cell change repainted %d cells", counter.sets)
	}

	r.Invalidate()
	counter.sets = 0
	r.Draw(c)
	if counter.sets != first {
		t.Errorf("invalidate repainted %d cells, want %d", counter.sets, first)
	}
}

func TestRendererDownsamplesTruecolor(t *testing.T) {
	driver, sim := newSimDriver(t, 5, 2)
	c := term.NewController(5, 2)
	r := NewRenderer(driver, WithPaletteDownsample())

	c.Process([]byte("\x1b[38;2;255;0;0mR"))
	r.Draw(c)

	cells, w, _ := sim.GetContents()
	fg, _, _ := cells[0*w+0].Style.Decompose()
	want := tcell.PaletteColor(int(term.NearestPaletteIndex(255, 0, 0)))
	if fg != want {
		t.Errorf("fg = %v, want palette color %v", fg, want)
	}
}

// countingDriver counts SetContent calls; everything else is a no-op.
type countingDriver struct {
	sets int
}

func (d *countingDriver) Init() error      { return nil }
func (d *countingDriver) Fini()            {}
func (d *countingDriver) Size() (int, int) { return 80, 24 }
func (d *countingDriver) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	d.sets++
}
func (d *countingDriver) ShowCursor(x, y int) {}
func (d *countingDriver) HideCursor()         {}
func (d *countingDriver) Show()               {}
func (d *countingDriver) Sync()               {}
