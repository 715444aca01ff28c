// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/grid.go
// Summary: The cell matrix and its mutation primitives - erase, insert,
//          delete, scroll, wide-character writes, and resize.
// Usage: Driven by the Controller; its read surface feeds renderers.
// Notes: Flat row-major buffer addressed by row*cols+col. Out-of-range
//        coordinates clamp or no-op; nothing here panics on bad input.

package term

// Grid is a row-major matrix of cells. The backing buffer always has
// exactly cols*rows cells; resize replaces the whole buffer.
type Grid struct {
	cols, rows int
	cells      []Cell
}

// NewGrid creates a grid of blank cells. Negative dimensions are treated
// as zero.
func NewGrid(cols, rows int) *Grid {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	g := &Grid{cols: cols, rows: rows, cells: make([]Cell, cols*rows)}
	for i := range g.cells {
		g.cells[i] = BlankCell()
	}
	return g
}

// Cols returns the grid width in columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height in rows.
func (g *Grid) Rows() int { return g.rows }

// Cell returns a pointer to the cell at (row, col), or nil outside the grid.
func (g *Grid) Cell(row, col int) *Cell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return nil
	}
	return &g.cells[g.index(row, col)]
}

// RowCells returns the live cell slice for one row, or nil outside the grid.
// The slice aliases the grid buffer; callers that need a snapshot must copy.
func (g *Grid) RowCells(row int) []Cell {
	if row < 0 || row >= g.rows {
		return nil
	}
	start := g.index(row, 0)
	return g.cells[start : start+g.cols]
}

// RowText returns the row's characters as a string, skipping continuation
// cells. Returns "" outside the grid.
func (g *Grid) RowText(row int) string {
	cells := g.RowCells(row)
	if cells == nil {
		return ""
	}
	runes := make([]rune, 0, len(cells))
	for i := range cells {
		if cells[i].IsWideContinuation() {
			continue
		}
		runes = append(runes, cells[i].Rune)
	}
	return string(runes)
}

// ── Erase family ────────────────────────────────────────────────────
//
// Every erase operation routes through eraseRange, which applies the
// background color (BCE) and the wide-pair fixup at both boundaries.

// EraseBelow erases from (row, col) to the end of the display (ED 0).
func (g *Grid) EraseBelow(row, col int, bg Color) {
	if row < 0 || row >= g.rows {
		return
	}
	g.eraseRange(row, col, row, g.cols, bg)
	g.eraseRange(row+1, 0, g.rows, 0, bg)
}

// EraseAbove erases from the start of the display through (row, col)
// inclusive (ED 1).
func (g *Grid) EraseAbove(row, col int, bg Color) {
	if row < 0 || row >= g.rows {
		return
	}
	if row > 0 {
		g.eraseRange(0, 0, row, 0, bg)
	}
	ec := col + 1
	if ec > g.cols {
		ec = g.cols
	}
	g.eraseRange(row, 0, row, ec, bg)
}

// EraseAll erases the entire display (ED 2).
func (g *Grid) EraseAll(bg Color) {
	for i := range g.cells {
		g.cells[i].Erase(bg)
	}
}

// EraseLineRight erases from (row, col) to the end of the line (EL 0).
func (g *Grid) EraseLineRight(row, col int, bg Color) {
	g.eraseRange(row, col, row, g.cols, bg)
}

// EraseLineLeft erases from the start of the line through (row, col)
// inclusive (EL 1).
func (g *Grid) EraseLineLeft(row, col int, bg Color) {
	ec := col + 1
	if ec > g.cols {
		ec = g.cols
	}
	g.eraseRange(row, 0, row, ec, bg)
}

// EraseLine erases the entire line (EL 2).
func (g *Grid) EraseLine(row int, bg Color) {
	g.eraseRange(row, 0, row, g.cols, bg)
}

// EraseChars erases count cells starting at (row, col), in place (ECH).
func (g *Grid) EraseChars(row, col, count int, bg Color) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols || count <= 0 {
		return
	}
	end := col + count
	if end > g.cols {
		end = g.cols
	}
	g.eraseRange(row, col, row, end, bg)
}

// eraseRange erases a rectangular region: a single-row span when
// endRow == startRow, otherwise a partial first row, full middle rows, and
// a partial last row when endCol > 0. Boundaries that split a wide pair
// erase the other half of the pair too.
func (g *Grid) eraseRange(startRow, startCol, endRow, endCol int, bg Color) {
	sr := clamp(startRow, 0, g.rows)
	er := clamp(endRow, 0, g.rows)
	if sr >= g.rows {
		return
	}

	if sr == er {
		sc := clamp(startCol, 0, g.cols)
		ec := clamp(endCol, 0, g.cols)

		// Fixup (left): erasing starts at a continuation cell, so its
		// lead one column left would be orphaned.
		if sc > 0 && sc < g.cols && g.cells[g.index(sr, sc)].IsWideContinuation() {
			g.cells[g.index(sr, sc-1)].Erase(bg)
		}
		// Fixup (right): the cell just past the range is a continuation
		// whose lead is inside the range.
		if ec < g.cols && g.cells[g.index(sr, ec)].IsWideContinuation() {
			g.cells[g.index(sr, ec)].Erase(bg)
		}

		for c := sc; c < ec; c++ {
			g.cells[g.index(sr, c)].Erase(bg)
		}
		return
	}

	// Partial first row.
	sc := clamp(startCol, 0, g.cols)
	if sc > 0 && sc < g.cols && g.cells[g.index(sr, sc)].IsWideContinuation() {
		g.cells[g.index(sr, sc-1)].Erase(bg)
	}
	for c := sc; c < g.cols; c++ {
		g.cells[g.index(sr, c)].Erase(bg)
	}
	// Full rows in between.
	for r := sr + 1; r < er; r++ {
		for c := 0; c < g.cols; c++ {
			g.cells[g.index(r, c)].Erase(bg)
		}
	}
	// Partial last row, when endCol > 0 and the last row is inside the grid.
	if endCol > 0 && er < g.rows {
		ec := clamp(endCol, 0, g.cols)
		if ec < g.cols && g.cells[g.index(er, ec)].IsWideContinuation() {
			g.cells[g.index(er, ec)].Erase(bg)
		}
		for c := 0; c < ec; c++ {
			g.cells[g.index(er, c)].Erase(bg)
		}
	}
}

// ── Insert / delete characters ──────────────────────────────────────

// InsertChars inserts count blank cells at (row, col), shifting the rest of
// the row right (ICH). Cells shifted past the right margin are lost.
func (g *Grid) InsertChars(row, col, count int, bg Color) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols || count <= 0 {
		return
	}
	cols := g.cols
	n := count
	if n > cols-col {
		n = cols - col
	}
	rowCells := g.RowCells(row)

	// Fixup: inserting at a continuation cell orphans the lead at col-1.
	wasContinuation := rowCells[col].IsWideContinuation()
	if wasContinuation && col > 0 {
		rowCells[col-1].Erase(bg)
	}

	// Shift right, walking backwards so the copy never overlaps.
	for i := cols - 1; i >= col+n; i-- {
		rowCells[i] = rowCells[i-n]
	}
	for i := col; i < col+n; i++ {
		rowCells[i].Erase(bg)
	}

	// Fixup: the continuation that sat at col shifted to col+n with its
	// lead already erased.
	if wasContinuation && col+n < cols && rowCells[col+n].IsWideContinuation() {
		rowCells[col+n].Erase(bg)
	}
	// Fixup: a lead shifted onto the last column has no room for its
	// continuation.
	if rowCells[cols-1].IsWide() {
		rowCells[cols-1].Erase(bg)
	}
}

// DeleteChars deletes count cells at (row, col), shifting the remaining
// cells left and blanking the vacated right margin (DCH).
func (g *Grid) DeleteChars(row, col, count int, bg Color) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols || count <= 0 {
		return
	}
	cols := g.cols
	n := count
	if n > cols-col {
		n = cols - col
	}
	rowCells := g.RowCells(row)

	// Fixup: deleting at a continuation cell orphans the lead at col-1.
	if rowCells[col].IsWideContinuation() && col > 0 {
		rowCells[col-1].Erase(bg)
	}

	// Shift left.
	for i := col; i < cols-n; i++ {
		rowCells[i] = rowCells[i+n]
	}
	for i := cols - n; i < cols; i++ {
		rowCells[i].Erase(bg)
	}

	// Fixup: the cell now at col may be a continuation whose lead was
	// deleted.
	if rowCells[col].IsWideContinuation() {
		rowCells[col].Erase(bg)
	}
}

// ── Scroll operations ───────────────────────────────────────────────

// ScrollUp removes count rows at top of the region [top, bottom), shifts the
// rest up, and blanks the vacated rows at the bottom with bg.
func (g *Grid) ScrollUp(top, bottom, count int, bg Color) {
	top = clamp(top, 0, g.rows)
	bottom = clamp(bottom, 0, g.rows)
	if top >= bottom || count <= 0 {
		return
	}
	if count > bottom-top {
		count = bottom - top
	}
	cols := g.cols

	src := (top + count) * cols
	dst := top * cols
	moveLen := (bottom - top - count) * cols
	copy(g.cells[dst:dst+moveLen], g.cells[src:src+moveLen])

	for i := (bottom - count) * cols; i < bottom*cols; i++ {
		g.cells[i].Erase(bg)
	}
}

// ScrollDown inserts count blank rows at top of the region [top, bottom),
// shifting the rest down; rows shifted past bottom are discarded.
func (g *Grid) ScrollDown(top, bottom, count int, bg Color) {
	top = clamp(top, 0, g.rows)
	bottom = clamp(bottom, 0, g.rows)
	if top >= bottom || count <= 0 {
		return
	}
	if count > bottom-top {
		count = bottom - top
	}
	cols := g.cols

	src := top * cols
	moveLen := (bottom - top - count) * cols
	dst := (top + count) * cols
	copy(g.cells[dst:dst+moveLen], g.cells[src:src+moveLen])

	for i := top * cols; i < (top+count)*cols; i++ {
		g.cells[i].Erase(bg)
	}
}

// ScrollUpInto scrolls up, first pushing the evicted rows (top to bottom,
// oldest-evicted first) into the scrollback.
func (g *Grid) ScrollUpInto(top, bottom, count int, sb *Scrollback, bg Color) {
	top = clamp(top, 0, g.rows)
	bottom = clamp(bottom, 0, g.rows)
	if top >= bottom || count <= 0 {
		return
	}
	if count > bottom-top {
		count = bottom - top
	}
	for r := top; r < top+count; r++ {
		sb.PushRow(g.RowCells(r), false)
	}
	g.ScrollUp(top, bottom, count, bg)
}

// ScrollDownFrom scrolls down, then fills the vacated rows at top from
// scrollback. Rows are popped newest-first and placed bottom-up, which
// restores them in correct visual order without random access into the
// scrollback. Rows the scrollback cannot supply stay blank.
func (g *Grid) ScrollDownFrom(top, bottom, count int, sb *Scrollback, bg Color) {
	top = clamp(top, 0, g.rows)
	bottom = clamp(bottom, 0, g.rows)
	if top >= bottom || count <= 0 {
		return
	}
	if count > bottom-top {
		count = bottom - top
	}
	g.ScrollDown(top, bottom, count, bg)

	for r := top + count - 1; r >= top; r-- {
		line, ok := sb.PopNewest()
		if !ok {
			break
		}
		rowCells := g.RowCells(r)
		n := len(line.Cells)
		if n > g.cols {
			n = g.cols
		}
		copy(rowCells[:n], line.Cells[:n])
	}
	// Restored lines may be wider than the grid; truncation can split a
	// wide pair at the right edge.
	g.fixupWideEdges()
}

// InsertLines inserts count blank lines at row within [top, bottom) (IL).
// No-op when row lies outside the region.
func (g *Grid) InsertLines(row, count, top, bottom int, bg Color) {
	if row < top || row >= bottom {
		return
	}
	g.ScrollDown(row, bottom, count, bg)
}

// DeleteLines deletes count lines at row within [top, bottom) (DL),
// with blank lines appearing at the bottom of the region.
func (g *Grid) DeleteLines(row, count, top, bottom int, bg Color) {
	if row < top || row >= bottom {
		return
	}
	g.ScrollUp(row, bottom, count, bg)
}

// ── Wide character writes ───────────────────────────────────────────

// WriteWideChar writes a 2-column character: lead cell at col, continuation
// at col+1. Refuses to write when col+1 would fall past the right margin.
// Overwriting either half of an existing wide pair clears the other half.
func (g *Grid) WriteWideChar(row, col int, r rune, style Style) {
	if row < 0 || row >= g.rows || col < 0 || col+1 >= g.cols {
		return
	}
	// Fixup: overwriting the continuation of the pair ending at col.
	if col > 0 && g.cells[g.index(row, col-1)].IsWide() {
		g.cells[g.index(row, col-1)].Clear()
	}
	// Fixup: overwriting the lead of the pair starting at col+1.
	nextIdx := g.index(row, col+1)
	if g.cells[nextIdx].IsWide() && col+2 < g.cols {
		g.cells[g.index(row, col+2)].Clear()
	}

	lead, cont := WidePair(r, style)
	g.cells[g.index(row, col)] = lead
	g.cells[nextIdx] = cont
}

// WritePrintable writes one printable rune with terminal width semantics and
// returns the written display width: 0 for combining/format characters
// (ignored - no write) and for wide characters that do not fit at col,
// 1 for narrow cells, 2 for wide cells. Wrap policy is the caller's problem.
func (g *Grid) WritePrintable(row, col int, r rune, style Style) int {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0
	}
	switch RuneDisplayWidth(r) {
	case 0:
		return 0
	case 1:
		// Fixup: overwriting a continuation clears its lead.
		if col > 0 && g.cells[g.index(row, col-1)].IsWide() {
			g.cells[g.index(row, col-1)].Clear()
		}
		// Fixup: overwriting a lead clears its continuation.
		idx := g.index(row, col)
		if g.cells[idx].IsWide() && col+1 < g.cols {
			g.cells[g.index(row, col+1)].Clear()
		}
		cell := &g.cells[idx]
		cell.SetContent(r, 1)
		cell.FG = style.FG
		cell.BG = style.BG
		cell.Attr = style.Attr
		cell.Link = style.Link
		return 1
	default:
		if col+1 >= g.cols {
			return 0
		}
		g.WriteWideChar(row, col, r, style)
		return 2
	}
}

// WriteString writes a string starting at (row, col), one grapheme cluster
// per cell (wide clusters take a pair). Returns the number of columns
// consumed. Writing stops at the right margin; nothing wraps.
func (g *Grid) WriteString(row, col int, s string, style Style) int {
	written := 0
	for _, span := range Graphemes(s) {
		if span.Width == 0 {
			continue
		}
		r, _ := firstRune(span.Cluster)
		w := g.WritePrintable(row, col+written, r, style)
		if w == 0 && span.Width > 0 {
			break
		}
		written += w
	}
	return written
}

// ── Resize ──────────────────────────────────────────────────────────

// Resize reallocates the cell buffer to the new dimensions, copying the
// overlapping top-left rectangle. New area is blank, truncated area is
// discarded. No reflow.
func (g *Grid) Resize(newCols, newRows int) {
	if newCols < 0 {
		newCols = 0
	}
	if newRows < 0 {
		newRows = 0
	}
	if newCols == g.cols && newRows == g.rows {
		return
	}
	newCells := make([]Cell, newCols*newRows)
	for i := range newCells {
		newCells[i] = BlankCell()
	}
	copyRows := min(g.rows, newRows)
	copyCols := min(g.cols, newCols)
	for r := 0; r < copyRows; r++ {
		oldStart := r * g.cols
		newStart := r * newCols
		copy(newCells[newStart:newStart+copyCols], g.cells[oldStart:oldStart+copyCols])
	}
	g.cells = newCells
	g.cols = newCols
	g.rows = newRows
	g.fixupWideEdges()
}

// ResizeWithScrollback resizes the grid, cooperating with scrollback so the
// cursor's row stays in the viewport.
//
// Height decrease pushes up to min(excess, cursorRow) rows from the top into
// scrollback - never a row at or below the cursor. Height increase pulls up
// to min(extra, sb.Len()) rows back, oldest pulled row topmost, advancing
// the cursor by the number pulled. Width changes truncate or extend columns
// without reflow. The returned cursor row is clamped to [0, newRows).
func (g *Grid) ResizeWithScrollback(newCols, newRows, cursorRow int, sb *Scrollback) int {
	if newCols < 0 {
		newCols = 0
	}
	if newRows < 0 {
		newRows = 0
	}
	if newCols == g.cols && newRows == g.rows {
		return clamp(cursorRow, 0, max(g.rows-1, 0))
	}

	oldRows := g.rows
	newCursorRow := cursorRow
	rowsPushed := 0

	// Height decrease: push excess top rows to scrollback, keeping the
	// cursor's row in the viewport.
	if newRows < oldRows {
		excess := oldRows - newRows
		rowsPushed = min(excess, max(cursorRow, 0))
		for r := 0; r < rowsPushed; r++ {
			sb.PushRow(g.RowCells(r), false)
		}
		if rowsPushed > 0 {
			cols := g.cols
			src := rowsPushed * cols
			moveLen := (oldRows - rowsPushed) * cols
			copy(g.cells[0:moveLen], g.cells[src:src+moveLen])
			newCursorRow = cursorRow - rowsPushed
		}
	}

	// Height increase: pull rows back from scrollback to fill the new
	// space at the top.
	pulled := 0
	if newRows > oldRows {
		pulled = min(newRows-oldRows, sb.Len())
	}

	newCells := make([]Cell, newCols*newRows)
	for i := range newCells {
		newCells[i] = BlankCell()
	}

	destRow := 0
	if pulled > 0 {
		lines := make([]ScrollbackLine, 0, pulled)
		for i := 0; i < pulled; i++ {
			line, ok := sb.PopNewest()
			if !ok {
				break
			}
			lines = append(lines, line)
		}
		// Popped newest-first; reverse so the oldest pulled row lands on top.
		for i := len(lines) - 1; i >= 0; i-- {
			line := lines[i]
			start := destRow * newCols
			n := min(len(line.Cells), newCols)
			copy(newCells[start:start+n], line.Cells[:n])
			destRow++
		}
		newCursorRow = cursorRow + pulled
	}

	copyCols := min(g.cols, newCols)
	srcRowsAvailable := oldRows - rowsPushed
	copyRows := min(srcRowsAvailable, newRows-destRow)
	for r := 0; r < copyRows; r++ {
		oldStart := r * g.cols
		newStart := (destRow + r) * newCols
		copy(newCells[newStart:newStart+copyCols], g.cells[oldStart:oldStart+copyCols])
	}

	g.cells = newCells
	g.cols = newCols
	g.rows = newRows
	g.fixupWideEdges()

	return clamp(newCursorRow, 0, max(newRows-1, 0))
}

// fixupWideEdges repairs wide pairs split by a column truncation: a lead in
// the last column lost its continuation, and a continuation in the first
// position of a copied row could only appear if its lead was cut off.
func (g *Grid) fixupWideEdges() {
	if g.cols == 0 {
		return
	}
	for r := 0; r < g.rows; r++ {
		row := g.RowCells(r)
		if row[0].IsWideContinuation() {
			row[0].Clear()
		}
		if row[g.cols-1].IsWide() {
			row[g.cols-1].Clear()
		}
	}
}

func (g *Grid) index(row, col int) int {
	return row*g.cols + col
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(s)
	}
	return ' ', 0
}
