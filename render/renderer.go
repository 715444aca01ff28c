// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/renderer.go
// Summary: Diff renderer - paints controller state onto a ScreenDriver.
// Usage: Create with NewRenderer, call Draw after each Process chunk.
// Notes: Keeps a snapshot of the last painted frame and only touches cells
//        that changed, so full redraws happen just on resize or Invalidate.

package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/thorstone137/gridterm/term"
)

// Renderer paints a terminal controller's visible grid onto a screen
// driver, cell by cell, skipping cells unchanged since the previous frame.
type Renderer struct {
	driver ScreenDriver

	prev     []term.Cell
	prevCols int
	prevRows int

	downsample bool
}

// RendererOption configures a Renderer at construction.
type RendererOption func(*Renderer)

// WithPaletteDownsample makes the renderer map truecolor cells to the
// nearest 256-palette entry, for output terminals without truecolor.
func WithPaletteDownsample() RendererOption {
	return func(r *Renderer) {
		r.downsample = true
	}
}

// NewRenderer creates a renderer over the given driver.
func NewRenderer(driver ScreenDriver, opts ...RendererOption) *Renderer {
	r := &Renderer{driver: driver}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invalidate drops the previous-frame snapshot; the next Draw repaints
// every cell.
func (r *Renderer) Invalidate() {
	r.prev = nil
	r.prevCols = 0
	r.prevRows = 0
}

// Draw paints the controller's current screen, then flushes the driver.
func (r *Renderer) Draw(c *term.Controller) {
	grid := c.Grid()
	cols, rows := grid.Cols(), grid.Rows()

	if r.prev == nil || cols != r.prevCols || rows != r.prevRows {
		r.prev = make([]term.Cell, cols*rows)
		for i := range r.prev {
			r.prev[i].Rune = -1 // never matches, forces a paint
		}
		r.prevCols = cols
		r.prevRows = rows
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := grid.Cell(row, col)
			idx := row*cols + col
			if *cell == r.prev[idx] {
				continue
			}
			r.prev[idx] = *cell
			if cell.IsWideContinuation() {
				// tcell paints the spill of the wide lead itself.
				continue
			}
			r.driver.SetContent(col, row, cell.Rune, nil, r.cellStyle(cell))
		}
	}

	if c.CursorVisible() {
		row, col := c.CursorPos()
		r.driver.ShowCursor(col, row)
	} else {
		r.driver.HideCursor()
	}
	r.driver.Show()
}

// cellStyle translates a cell's colors and attributes to a tcell.Style.
func (r *Renderer) cellStyle(cell *term.Cell) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(r.tcellColor(cell.FG)).
		Background(r.tcellColor(cell.BG))

	attr := cell.Attr
	style = style.
		Bold(attr&term.AttrBold != 0).
		Dim(attr&term.AttrDim != 0).
		Italic(attr&term.AttrItalic != 0).
		Underline(attr&term.AttrUnderline != 0).
		Blink(attr&term.AttrBlink != 0).
		Reverse(attr&term.AttrReverse != 0).
		StrikeThrough(attr&term.AttrStrikethrough != 0)
	if attr&term.AttrHidden != 0 {
		// tcell has no hidden attribute; paint foreground as background.
		style = style.Foreground(r.tcellColor(cell.BG))
	}
	return style
}

// tcellColor maps a terminal color to tcell's color space.
func (r *Renderer) tcellColor(c term.Color) tcell.Color {
	switch c.Mode {
	case term.ColorModeStandard:
		return tcell.PaletteColor(int(c.Value))
	case term.ColorMode256:
		return tcell.PaletteColor(int(c.Value))
	case term.ColorModeRGB:
		if r.downsample {
			return tcell.PaletteColor(int(term.NearestPaletteIndex(c.R, c.G, c.B)))
		}
		return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
	default:
		return tcell.ColorDefault
	}
}
