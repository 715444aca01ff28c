// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/selection.go
// Summary: Selection model and copy extraction over grid plus scrollback.
// Usage: Build a Selection with SelectChar/SelectWord/SelectLine (or from
//        raw positions) and pull the text with ExtractText.
// Notes: Pure read surface; no terminal state is touched. Positions address
//        the combined buffer: lines 0..sb.Len() are scrollback (oldest
//        first), followed by the viewport rows top to bottom.

package term

import (
	"strings"
	"unicode"
)

// BufferPos is a cell position in the combined buffer.
type BufferPos struct {
	Line int
	Col  int
}

// ViewportPos converts a viewport (row, col) into a combined-buffer
// position given the current scrollback depth.
func ViewportPos(scrollbackLines, row, col int) BufferPos {
	return BufferPos{Line: scrollbackLines + row, Col: col}
}

// Selection is an inclusive range over the combined buffer. Start and End
// may be given in either order; consumers normalize as needed.
type Selection struct {
	Start BufferPos
	End   BufferPos
}

// Normalized returns the selection with Start at or before End.
func (s Selection) Normalized() Selection {
	if s.Start.Line < s.End.Line ||
		(s.Start.Line == s.End.Line && s.Start.Col <= s.End.Col) {
		return s
	}
	return Selection{Start: s.End, End: s.Start}
}

// SelectChar selects the single character cell at pos. A wide character
// expands to cover both of its columns.
func SelectChar(pos BufferPos, g *Grid, sb *Scrollback) Selection {
	cols := g.Cols()
	if cols == 0 {
		return Selection{Start: pos, End: pos}
	}
	line := pos.Line
	col := normalizeToWideLead(line, clamp(pos.Col, 0, cols-1), g, sb)
	return Selection{
		Start: BufferPos{Line: line, Col: col},
		End:   BufferPos{Line: line, Col: wideEndCol(line, col, g, sb)},
	}
}

// SelectLine selects every column of one combined-buffer line.
func SelectLine(line int, g *Grid, sb *Scrollback) Selection {
	cols := g.Cols()
	total := totalLines(g, sb)
	if cols == 0 || total == 0 {
		p := BufferPos{Line: line}
		return Selection{Start: p, End: p}
	}
	line = clamp(line, 0, total-1)
	return Selection{
		Start: BufferPos{Line: line, Col: 0},
		End:   BufferPos{Line: line, Col: cols - 1},
	}
}

// SelectWord selects the contiguous run of same-class characters around
// pos: a word run when the cell holds a word character, a whitespace run
// when it holds whitespace. Word characters are tuned for code and paths,
// so "foo-bar/baz" selects as one word.
func SelectWord(pos BufferPos, g *Grid, sb *Scrollback) Selection {
	cols := g.Cols()
	total := totalLines(g, sb)
	if cols == 0 || total == 0 {
		return Selection{Start: pos, End: pos}
	}

	line := clamp(pos.Line, 0, total-1)
	col := normalizeToWideLead(line, clamp(pos.Col, 0, cols-1), g, sb)
	target := classifyRune(cellRune(line, col, g, sb))

	startCol := col
	endCol := wideEndCol(line, col, g, sb)

	for startCol > 0 {
		prev := normalizeToWideLead(line, startCol-1, g, sb)
		if classifyRune(cellRune(line, prev, g, sb)) != target {
			break
		}
		startCol = prev
	}
	for {
		next := endCol + 1
		if next >= cols {
			break
		}
		next = normalizeToWideLead(line, next, g, sb)
		if classifyRune(cellRune(line, next, g, sb)) != target {
			break
		}
		endCol = wideEndCol(line, next, g, sb)
		if endCol >= cols-1 {
			break
		}
	}

	return Selection{
		Start: BufferPos{Line: line, Col: startCol},
		End:   BufferPos{Line: line, Col: endCol},
	}
}

// ExtractText renders the selected region as text. Wide characters appear
// once, trailing blanks on each line are trimmed, and a scrollback line
// whose successor is a soft-wrap continuation is joined to it without a
// newline.
func (s Selection) ExtractText(g *Grid, sb *Scrollback) string {
	cols := g.Cols()
	total := totalLines(g, sb)
	if cols == 0 || total == 0 {
		return ""
	}

	sel := s.Normalized()
	startLine := clamp(sel.Start.Line, 0, total-1)
	endLine := clamp(sel.End.Line, 0, total-1)

	var out strings.Builder
	for line := startLine; line <= endLine; line++ {
		sc := 0
		if line == startLine {
			sc = clamp(sel.Start.Col, 0, cols-1)
		}
		ec := cols - 1
		if line == endLine {
			ec = clamp(sel.End.Col, 0, cols-1)
		}

		runes := make([]rune, 0, ec-sc+1)
		for col := sc; col <= ec; col++ {
			cell := cellAt(line, col, g, sb)
			if cell == nil {
				runes = append(runes, ' ')
				continue
			}
			if cell.IsWideContinuation() {
				continue
			}
			runes = append(runes, cell.Rune)
		}
		for len(runes) > 0 && runes[len(runes)-1] == ' ' {
			runes = runes[:len(runes)-1]
		}
		out.WriteString(string(runes))

		if line != endLine && !joinsWithNext(line, sb) {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// ── Combined-buffer helpers ─────────────────────────────────────────

type runeClass int

const (
	classWhitespace runeClass = iota
	classWord
	classOther
)

func classifyRune(r rune) runeClass {
	switch {
	case unicode.IsSpace(r):
		return classWhitespace
	case isWordRune(r):
		return classWord
	default:
		return classOther
	}
}

// isWordRune is tuned for selecting code and paths in one double-click:
// identifiers plus the separators common in paths, URLs, and user@host.
func isWordRune(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '_', '-', '.', '/', '\\', ':', '@':
		return true
	}
	return false
}

func totalLines(g *Grid, sb *Scrollback) int {
	return sb.Len() + g.Rows()
}

// joinsWithNext reports whether line and line+1 belong to one logical line
// (the successor is a soft-wrap continuation in scrollback).
func joinsWithNext(line int, sb *Scrollback) bool {
	next, ok := sb.Get(line + 1)
	return ok && next.Wrapped
}

// cellAt resolves a combined-buffer position to a cell, or nil when the
// position is outside the stored content (short scrollback lines).
func cellAt(line, col int, g *Grid, sb *Scrollback) *Cell {
	if stored, ok := sb.Get(line); ok {
		if col < 0 || col >= len(stored.Cells) {
			return nil
		}
		return &stored.Cells[col]
	}
	return g.Cell(line-sb.Len(), col)
}

func cellRune(line, col int, g *Grid, sb *Scrollback) rune {
	if cell := cellAt(line, col, g, sb); cell != nil {
		return cell.Rune
	}
	return ' '
}

// normalizeToWideLead snaps a position on a wide continuation back to its
// lead column.
func normalizeToWideLead(line, col int, g *Grid, sb *Scrollback) int {
	if col == 0 {
		return col
	}
	if cell := cellAt(line, col, g, sb); cell != nil && cell.IsWideContinuation() {
		return col - 1
	}
	return col
}

// wideEndCol returns the last column of the character starting at leadCol:
// the continuation column for a wide lead, leadCol itself otherwise.
func wideEndCol(line, leadCol int, g *Grid, sb *Scrollback) int {
	cell := cellAt(line, leadCol, g, sb)
	if cell != nil && cell.IsWide() && leadCol+1 < g.Cols() {
		return leadCol + 1
	}
	return leadCol
}
