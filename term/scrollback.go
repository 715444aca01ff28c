// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/scrollback.go
// Summary: Bounded history of rows evicted from the visible grid.
// Usage: Fed by ScrollUpInto and shrinking resizes; drained by
//        ScrollDownFrom and growing resizes.

package term

// ScrollbackLine is one stored row: an immutable snapshot of the cells it
// held when it left the viewport. Wrapped records whether the row was a
// soft-wrap continuation of the previous one.
type ScrollbackLine struct {
	Cells   []Cell
	Wrapped bool
}

// Scrollback is a bounded, ordered buffer of evicted rows, oldest first.
// Pushing past capacity evicts the oldest entry; popping removes the newest.
type Scrollback struct {
	lines    []ScrollbackLine
	capacity int

	// Evicted, when set, observes every line dropped by capacity overflow.
	// Used to feed secondary stores such as the search index.
	Evicted func(ScrollbackLine)
}

// NewScrollback creates a scrollback holding at most capacity lines.
// Capacity 0 disables storage entirely; every push is dropped.
func NewScrollback(capacity int) *Scrollback {
	if capacity < 0 {
		capacity = 0
	}
	return &Scrollback{capacity: capacity}
}

// Capacity returns the maximum number of stored lines.
func (s *Scrollback) Capacity() int { return s.capacity }

// Len returns the current number of stored lines.
func (s *Scrollback) Len() int { return len(s.lines) }

// IsEmpty reports whether no lines are stored.
func (s *Scrollback) IsEmpty() bool { return len(s.lines) == 0 }

// PushRow appends a snapshot of cells at the newest end. When the buffer is
// full the oldest line is evicted first (and handed to Evicted, if set).
func (s *Scrollback) PushRow(cells []Cell, wrapped bool) {
	if s.capacity == 0 {
		return
	}
	if len(s.lines) == s.capacity {
		evicted := s.lines[0]
		copy(s.lines, s.lines[1:])
		s.lines = s.lines[:len(s.lines)-1]
		if s.Evicted != nil {
			s.Evicted(evicted)
		}
	}
	snapshot := make([]Cell, len(cells))
	copy(snapshot, cells)
	s.lines = append(s.lines, ScrollbackLine{Cells: snapshot, Wrapped: wrapped})
}

// PopNewest removes and returns the most recently pushed line.
func (s *Scrollback) PopNewest() (ScrollbackLine, bool) {
	if len(s.lines) == 0 {
		return ScrollbackLine{}, false
	}
	line := s.lines[len(s.lines)-1]
	s.lines = s.lines[:len(s.lines)-1]
	return line, true
}

// PeekNewest returns the most recently pushed line without removing it.
func (s *Scrollback) PeekNewest() (ScrollbackLine, bool) {
	if len(s.lines) == 0 {
		return ScrollbackLine{}, false
	}
	return s.lines[len(s.lines)-1], true
}

// Get returns the line at index i, where index 0 is the oldest.
func (s *Scrollback) Get(i int) (ScrollbackLine, bool) {
	if i < 0 || i >= len(s.lines) {
		return ScrollbackLine{}, false
	}
	return s.lines[i], true
}

// SetCapacity changes the capacity, evicting oldest lines as needed.
func (s *Scrollback) SetCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	s.capacity = capacity
	for len(s.lines) > capacity {
		evicted := s.lines[0]
		copy(s.lines, s.lines[1:])
		s.lines = s.lines[:len(s.lines)-1]
		if s.Evicted != nil {
			s.Evicted(evicted)
		}
	}
}

// Clear drops all stored lines.
func (s *Scrollback) Clear() {
	s.lines = s.lines[:0]
}

// LineText flattens a stored line to a string, skipping continuation cells
// and trimming trailing blanks. Convenience for text-level consumers such
// as the search index.
func LineText(line ScrollbackLine) string {
	runes := make([]rune, 0, len(line.Cells))
	for i := range line.Cells {
		if line.Cells[i].IsWideContinuation() {
			continue
		}
		runes = append(runes, line.Cells[i].Rune)
	}
	end := len(runes)
	for end > 0 && runes[end-1] == ' ' {
		end--
	}
	return string(runes[:end])
}
