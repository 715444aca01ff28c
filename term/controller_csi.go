// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/controller_csi.go
// Summary: CSI command dispatch - cursor motion, erase, edit, scroll, modes.
// Usage: Part of the Controller's Handler implementation.

package term

import "bytes"

// CsiDispatch routes a complete CSI sequence. Unknown finals are ignored;
// they must never abort processing of the remaining stream.
func (c *Controller) CsiDispatch(params []int, intermediates []byte, final byte) {
	private := bytes.IndexByte(intermediates, '?') >= 0

	switch final {
	case 'H', 'f': // CUP
		row := csiParam(params, 0, 1)
		col := csiParam(params, 1, 1)
		c.moveCursorTo(row-1, col-1)
	case 'A': // CUU
		c.moveCursorBy(-csiParam(params, 0, 1), 0)
	case 'B': // CUD
		c.moveCursorBy(csiParam(params, 0, 1), 0)
	case 'C': // CUF
		c.moveCursorBy(0, csiParam(params, 0, 1))
	case 'D': // CUB
		c.moveCursorBy(0, -csiParam(params, 0, 1))
	case 'E': // CNL
		c.moveCursorBy(csiParam(params, 0, 1), 0)
		c.cursorCol = 0
	case 'F': // CPL
		c.moveCursorBy(-csiParam(params, 0, 1), 0)
		c.cursorCol = 0
	case 'G': // CHA
		c.moveCursorTo(c.cursorRow, csiParam(params, 0, 1)-1)
	case 'd': // VPA
		c.moveCursorTo(csiParam(params, 0, 1)-1, c.cursorCol)
	case 'J':
		c.eraseDisplay(csiParam(params, 0, 0))
	case 'K':
		c.eraseLine(csiParam(params, 0, 0))
	case 'm':
		c.handleSGR(params)
	case 'h':
		if private {
			c.setPrivateModes(params, true)
		}
	case 'l':
		if private {
			c.setPrivateModes(params, false)
		}
	case '@': // ICH
		c.grid.InsertChars(c.cursorRow, c.cursorCol, csiParam(params, 0, 1), c.style.BG)
	case 'P': // DCH
		c.grid.DeleteChars(c.cursorRow, c.cursorCol, csiParam(params, 0, 1), c.style.BG)
	case 'X': // ECH
		c.grid.EraseChars(c.cursorRow, c.cursorCol, csiParam(params, 0, 1), c.style.BG)
	case 'L': // IL
		c.grid.InsertLines(c.cursorRow, csiParam(params, 0, 1), c.scrollTop, c.scrollBottom, c.style.BG)
	case 'M': // DL
		c.grid.DeleteLines(c.cursorRow, csiParam(params, 0, 1), c.scrollTop, c.scrollBottom, c.style.BG)
	case 'S': // SU
		c.scrollUp(csiParam(params, 0, 1))
	case 'T': // SD
		c.grid.ScrollDown(c.scrollTop, c.scrollBottom, csiParam(params, 0, 1), c.style.BG)
	case 'r': // DECSTBM
		c.setScrollRegion(csiParam(params, 0, 1), csiParam(params, 1, c.grid.Rows()))
	case 's':
		c.saveCursor()
	case 'u':
		c.restoreCursor()
	default:
		debugf("controller: ignoring CSI final %q params=%v", final, params)
	}
}

// csiParam returns params[i], substituting def when the parameter is
// missing or zero (most CSI commands treat 0 as "default").
func csiParam(params []int, i, def int) int {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

// moveCursorTo positions the cursor absolutely, clamped to grid bounds.
func (c *Controller) moveCursorTo(row, col int) {
	c.cursorRow = clamp(row, 0, max(c.grid.Rows()-1, 0))
	c.cursorCol = clamp(col, 0, max(c.grid.Cols()-1, 0))
}

// moveCursorBy moves the cursor relatively, saturating at the edges.
func (c *Controller) moveCursorBy(dRow, dCol int) {
	c.moveCursorTo(c.cursorRow+dRow, c.cursorCol+dCol)
}

// eraseDisplay implements ED with the current background color (BCE).
func (c *Controller) eraseDisplay(mode int) {
	switch mode {
	case 0:
		c.grid.EraseBelow(c.cursorRow, c.cursorCol, c.style.BG)
	case 1:
		c.grid.EraseAbove(c.cursorRow, c.cursorCol, c.style.BG)
	case 2, 3:
		c.grid.EraseAll(c.style.BG)
	}
}

// eraseLine implements EL with the current background color (BCE).
func (c *Controller) eraseLine(mode int) {
	switch mode {
	case 0:
		c.grid.EraseLineRight(c.cursorRow, c.cursorCol, c.style.BG)
	case 1:
		c.grid.EraseLineLeft(c.cursorRow, c.cursorCol, c.style.BG)
	case 2:
		c.grid.EraseLine(c.cursorRow, c.style.BG)
	}
}

// scrollUp implements SU. On the main screen with a full-height region the
// evicted rows enter scrollback; inside a sub-region or on the alternate
// screen they are discarded.
func (c *Controller) scrollUp(count int) {
	fullRegion := c.scrollTop == 0 && c.scrollBottom == c.grid.Rows()
	if !c.altScreen && fullRegion {
		c.grid.ScrollUpInto(c.scrollTop, c.scrollBottom, count, c.scrollback, c.style.BG)
		return
	}
	c.grid.ScrollUp(c.scrollTop, c.scrollBottom, count, c.style.BG)
}

// setScrollRegion implements DECSTBM. Protocol rows are 1-indexed with an
// inclusive bottom; stored as a 0-indexed [top, bottom) range. An invalid
// region resets to the full screen. The cursor homes either way.
func (c *Controller) setScrollRegion(top, bottom int) {
	t := top - 1
	b := bottom
	if t < 0 || b > c.grid.Rows() || t >= b {
		c.scrollBottomReset()
	} else {
		c.scrollTop = t
		c.scrollBottom = b
	}
	c.moveCursorTo(0, 0)
}

// setPrivateModes implements DECSET/DECRST for the tracked modes.
// Synchronized output (2026) nests: begins and ends are counted, not
// toggled, and the level never goes below zero.
func (c *Controller) setPrivateModes(params []int, set bool) {
	for _, mode := range params {
		switch mode {
		case 25: // DECTCEM
			c.cursorVisible = set
		case 1049:
			if set {
				c.enterAltScreen()
			} else {
				c.leaveAltScreen()
			}
		case 2004:
			c.bracketedPaste = set
		case 2026:
			if set {
				c.syncLevel++
			} else if c.syncLevel > 0 {
				c.syncLevel--
			}
		default:
			debugf("controller: ignoring private mode %d", mode)
		}
	}
}
