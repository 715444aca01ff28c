// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/controller.go
// Summary: Terminal controller - cursor, pen state, modes, and link table,
//          driven by parser events.
// Usage: Feed output bytes to Process; inspect the Grid and the diagnostic
//        queries afterwards.
// Notes: Single-threaded by design. One controller per terminal session.

package term

// Controller consumes parser events and applies them to a Grid and
// Scrollback while tracking cursor position, SGR state, mode flags, and
// OSC 8 hyperlinks. It implements Handler.
type Controller struct {
	grid       *Grid
	scrollback *Scrollback
	parser     *Parser
	links      *LinkTable

	cursorRow, cursorCol int
	savedRow, savedCol   int

	style          Style
	cursorVisible  bool
	altScreen      bool
	bracketedPaste bool
	syncLevel      int

	// Scroll region [scrollTop, scrollBottom), used by the explicit
	// scroll and line edit commands.
	scrollTop, scrollBottom int

	// Main-screen stash while the alternate screen is active.
	savedMain                  *Grid
	savedMainRow, savedMainCol int

	title string

	dcsParams []int
	dcsFinal  byte
	dcsData   []byte

	// TitleChanged, when set, observes OSC 0/2 title updates.
	TitleChanged func(string)
	// OnDcs, when set, receives each completed DCS payload.
	OnDcs func(params []int, final byte, data []byte)
}

// Option configures a Controller at construction.
type Option func(*Controller)

// WithScrollbackCapacity sets how many evicted rows the controller's
// scrollback retains. Zero disables scrollback.
func WithScrollbackCapacity(capacity int) Option {
	return func(c *Controller) {
		c.scrollback = NewScrollback(capacity)
	}
}

const defaultScrollbackCapacity = 2000

// NewController creates a controller over a fresh blank grid.
func NewController(cols, rows int, opts ...Option) *Controller {
	c := &Controller{
		grid:          NewGrid(cols, rows),
		scrollback:    NewScrollback(defaultScrollbackCapacity),
		links:         NewLinkTable(),
		cursorVisible: true,
	}
	c.scrollBottomReset()
	c.parser = NewParser(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) scrollBottomReset() {
	c.scrollTop = 0
	c.scrollBottom = c.grid.Rows()
}

// Process feeds a chunk of output bytes through the parser into this
// controller. Sequences may be split across calls.
func (c *Controller) Process(data []byte) {
	c.parser.Process(data)
}

// Reset performs a full reset (RIS): fresh main-screen grid, home cursor,
// default pen, default modes, and a discarded in-flight parse state.
// The link table survives; link ids are never reused.
func (c *Controller) Reset() {
	cols, rows := c.grid.Cols(), c.grid.Rows()
	if c.altScreen && c.savedMain != nil {
		cols, rows = c.savedMain.Cols(), c.savedMain.Rows()
	}
	c.grid = NewGrid(cols, rows)
	c.savedMain = nil
	c.altScreen = false
	c.cursorRow, c.cursorCol = 0, 0
	c.savedRow, c.savedCol = 0, 0
	c.style.Reset()
	c.cursorVisible = true
	c.bracketedPaste = false
	c.syncLevel = 0
	c.scrollBottomReset()
	c.dcsData = nil
	c.parser.Reset()
}

// Resize changes the terminal dimensions. The main screen cooperates with
// scrollback so the cursor row stays in view; the alternate screen
// truncates or extends in place.
func (c *Controller) Resize(cols, rows int) {
	if c.altScreen {
		c.grid.Resize(cols, rows)
		if c.savedMain != nil {
			c.savedMainRow = c.savedMain.ResizeWithScrollback(cols, rows, c.savedMainRow, c.scrollback)
			c.savedMainCol = clamp(c.savedMainCol, 0, max(cols-1, 0))
		}
		c.cursorRow = clamp(c.cursorRow, 0, max(rows-1, 0))
	} else {
		c.cursorRow = c.grid.ResizeWithScrollback(cols, rows, c.cursorRow, c.scrollback)
	}
	c.cursorCol = clamp(c.cursorCol, 0, max(cols-1, 0))
	c.scrollBottomReset()
}

// ── Handler: printable characters and C0 controls ───────────────────

// Print places one character at the cursor, advancing by its display width.
// At the right margin the cursor wraps to column 0 of the next row, clamped
// at the bottom; printing never scrolls.
func (c *Controller) Print(r rune) {
	width := RuneDisplayWidth(r)
	if width == 0 {
		return
	}
	cols, rows := c.grid.Cols(), c.grid.Rows()
	if cols == 0 || rows == 0 {
		return
	}
	if width == 2 && c.cursorCol+1 >= cols {
		// A wide character never splits across the margin.
		c.wrapCursor()
	}
	c.grid.WritePrintable(c.cursorRow, c.cursorCol, r, c.style)
	c.cursorCol += width
	if c.cursorCol >= cols {
		c.wrapCursor()
	}
}

func (c *Controller) wrapCursor() {
	c.cursorCol = 0
	if c.cursorRow+1 < c.grid.Rows() {
		c.cursorRow++
	}
}

// Execute handles a C0 control code.
func (c *Controller) Execute(b byte) {
	switch b {
	case 0x07: // BEL
	case 0x08: // BS
		if c.cursorCol > 0 {
			c.cursorCol--
		}
	case 0x09: // HT, 8-column stops
		c.cursorCol = (c.cursorCol/8 + 1) * 8
		if c.cursorCol >= c.grid.Cols() {
			c.cursorCol = max(c.grid.Cols()-1, 0)
		}
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		if c.cursorRow+1 < c.grid.Rows() {
			c.cursorRow++
		}
	case 0x0D: // CR
		c.cursorCol = 0
	default:
		debugf("controller: ignoring control byte 0x%02x", b)
	}
}

// ── Handler: ESC sequences ──────────────────────────────────────────

// EscDispatch handles plain ESC sequences: cursor save/restore, index
// moves, keypad modes, and full reset.
func (c *Controller) EscDispatch(intermediates []byte, final byte) {
	if len(intermediates) > 0 {
		// Charset designations and friends are tracked nowhere; drop.
		return
	}
	switch final {
	case '7': // DECSC
		c.saveCursor()
	case '8': // DECRC
		c.restoreCursor()
	case 'c': // RIS
		c.Reset()
	case 'D': // IND
		if c.cursorRow+1 < c.grid.Rows() {
			c.cursorRow++
		}
	case 'M': // RI
		if c.cursorRow > 0 {
			c.cursorRow--
		}
	case 'E': // NEL
		c.cursorCol = 0
		if c.cursorRow+1 < c.grid.Rows() {
			c.cursorRow++
		}
	case '=', '>': // keypad modes, accepted and ignored
	default:
		debugf("controller: ignoring ESC %q", final)
	}
}

func (c *Controller) saveCursor() {
	c.savedRow, c.savedCol = c.cursorRow, c.cursorCol
}

func (c *Controller) restoreCursor() {
	c.cursorRow = clamp(c.savedRow, 0, max(c.grid.Rows()-1, 0))
	c.cursorCol = clamp(c.savedCol, 0, max(c.grid.Cols()-1, 0))
}

// ── Handler: DCS ────────────────────────────────────────────────────

const maxDcsPayload = 4096

// Hook begins a device control string.
func (c *Controller) Hook(params []int, intermediates []byte, final byte) {
	c.dcsParams = append(c.dcsParams[:0], params...)
	c.dcsFinal = final
	c.dcsData = c.dcsData[:0]
}

// Put accumulates DCS payload bytes, bounded so hostile streams cannot
// grow memory without limit.
func (c *Controller) Put(b byte) {
	if len(c.dcsData) < maxDcsPayload {
		c.dcsData = append(c.dcsData, b)
	}
}

// Unhook ends the device control string and hands off the payload.
func (c *Controller) Unhook() {
	if c.OnDcs != nil {
		data := make([]byte, len(c.dcsData))
		copy(data, c.dcsData)
		c.OnDcs(c.dcsParams, c.dcsFinal, data)
	}
	c.dcsData = c.dcsData[:0]
}

// ── Alternate screen ────────────────────────────────────────────────

func (c *Controller) enterAltScreen() {
	if c.altScreen {
		return
	}
	c.savedMain = c.grid
	c.savedMainRow, c.savedMainCol = c.cursorRow, c.cursorCol
	c.grid = NewGrid(c.savedMain.Cols(), c.savedMain.Rows())
	c.cursorRow, c.cursorCol = 0, 0
	c.altScreen = true
	c.scrollBottomReset()
}

func (c *Controller) leaveAltScreen() {
	if !c.altScreen {
		return
	}
	if c.savedMain != nil {
		c.grid = c.savedMain
		c.cursorRow, c.cursorCol = c.savedMainRow, c.savedMainCol
		c.savedMain = nil
	}
	c.altScreen = false
	c.scrollBottomReset()
}

// ── Read surface and diagnostics ────────────────────────────────────

// Grid returns the active screen grid (alternate screen when enabled).
func (c *Controller) Grid() *Grid { return c.grid }

// Scrollback returns the history buffer for the main screen.
func (c *Controller) Scrollback() *Scrollback { return c.scrollback }

// Links returns the hyperlink table.
func (c *Controller) Links() *LinkTable { return c.links }

// CursorPos returns the 0-indexed cursor position.
func (c *Controller) CursorPos() (row, col int) { return c.cursorRow, c.cursorCol }

// CursorVisible reports the DECTCEM state.
func (c *Controller) CursorVisible() bool { return c.cursorVisible }

// AltScreenActive reports whether the alternate screen buffer is in use.
func (c *Controller) AltScreenActive() bool { return c.altScreen }

// BracketedPaste reports whether bracketed paste mode (DECSET 2004) is on.
func (c *Controller) BracketedPaste() bool { return c.bracketedPaste }

// Title returns the last OSC 0/2 window title.
func (c *Controller) Title() string { return c.title }

// SyncOutputLevel returns the synchronized-output nesting depth: the number
// of unmatched 2026h begins.
func (c *Controller) SyncOutputLevel() int { return c.syncLevel }

// SyncOutputBalanced reports whether every synchronized-output begin has
// been matched by an end.
func (c *Controller) SyncOutputBalanced() bool { return c.syncLevel == 0 }

// HasDanglingLink reports whether an OSC 8 hyperlink was opened and never
// closed. A diagnostic for callers, not an error.
func (c *Controller) HasDanglingLink() bool { return c.style.Link != 0 }

// LinkURL resolves a link id from the table.
func (c *Controller) LinkURL(id LinkID) (string, bool) { return c.links.URL(id) }

// LinkURLAt resolves the hyperlink under a grid position, if any.
func (c *Controller) LinkURLAt(row, col int) (string, bool) {
	cell := c.grid.Cell(row, col)
	if cell == nil {
		return "", false
	}
	return c.links.URL(cell.Link)
}
