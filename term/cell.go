// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/cell.go
// Summary: Cell model for the terminal grid - character, width, style, link.
// Usage: Consumed by Grid, Scrollback, and the Controller.
// Notes: Keeps the cell a plain value type; no per-cell allocation.

package term

// Attribute is a bitmask of SGR text attributes.
type Attribute uint16

const (
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrReverse
	AttrHidden
	AttrStrikethrough
)

// String returns a human-readable representation of the attribute flags.
func (a Attribute) String() string {
	if a == 0 {
		return "none"
	}
	names := []struct {
		flag Attribute
		name string
	}{
		{AttrBold, "bold"},
		{AttrDim, "dim"},
		{AttrItalic, "italic"},
		{AttrUnderline, "underline"},
		{AttrBlink, "blink"},
		{AttrReverse, "reverse"},
		{AttrHidden, "hidden"},
		{AttrStrikethrough, "strikethrough"},
	}
	var result string
	for _, n := range names {
		if a&n.flag == 0 {
			continue
		}
		if result != "" {
			result += "|"
		}
		result += n.name
	}
	if result == "" {
		return "unknown"
	}
	return result
}

// ColorMode defines the type of color stored.
type ColorMode int

const (
	ColorModeDefault  ColorMode = iota // Default terminal color
	ColorModeStandard                  // The 16 named ANSI colors (0-7 basic, 8-15 bright)
	ColorMode256                       // 256-color palette
	ColorModeRGB                       // 24-bit "true" color
)

// Color represents a color in potentially different modes.
type Color struct {
	Mode    ColorMode
	Value   uint8 // Holds the color code for Standard (0-15) and 256-mode (0-255)
	R, G, B uint8 // Holds the values for RGB mode
}

// Predefined default colors for convenience.
var (
	DefaultFG = Color{Mode: ColorModeDefault}
	DefaultBG = Color{Mode: ColorModeDefault}
)

// CellFlags marks cell-level state orthogonal to SGR attributes.
type CellFlags uint8

const (
	// CellFlagWideChar marks the leading (left) cell of a 2-column character.
	CellFlagWideChar CellFlags = 1 << iota
	// CellFlagWideContinuation marks the trailing (right) half of a wide
	// character. Its content is meaningless; rendering uses the lead cell.
	CellFlagWideContinuation
)

// LinkID identifies an OSC 8 hyperlink. Zero means "no link".
type LinkID uint32

// Style is the pen state applied to printed cells: colors, attributes,
// and the active hyperlink.
type Style struct {
	FG   Color
	BG   Color
	Attr Attribute
	Link LinkID
}

// Reset restores the default pen state.
func (s *Style) Reset() {
	*s = Style{}
}

// Cell represents a single character cell on the screen.
type Cell struct {
	Rune  rune
	Width uint8 // display width in columns: 0 (continuation), 1, or 2
	FG    Color
	BG    Color
	Attr  Attribute
	Flags CellFlags
	Link  LinkID
}

// BlankCell returns the default cell: a space with default style and no link.
func BlankCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// IsWide reports whether this cell is the leading half of a wide character.
func (c *Cell) IsWide() bool {
	return c.Flags&CellFlagWideChar != 0
}

// IsWideContinuation reports whether this cell is the trailing half of a
// wide character.
func (c *Cell) IsWideContinuation() bool {
	return c.Flags&CellFlagWideContinuation != 0
}

// SetContent replaces the character and width, dropping any wide-pair flags.
func (c *Cell) SetContent(r rune, width uint8) {
	c.Rune = r
	c.Width = width
	c.Flags &^= CellFlagWideChar | CellFlagWideContinuation
}

// Erase resets the cell to a blank with the given background color.
// Erase operations (ED, EL, ECH) fill with the current background but reset
// every other attribute - Background Color Erase semantics.
func (c *Cell) Erase(bg Color) {
	*c = Cell{Rune: ' ', Width: 1, BG: bg}
}

// Clear resets the cell to the default blank.
func (c *Cell) Clear() {
	*c = BlankCell()
}

// WidePair builds the lead/continuation pair for a 2-column character.
func WidePair(r rune, style Style) (Cell, Cell) {
	lead := Cell{
		Rune:  r,
		Width: 2,
		FG:    style.FG,
		BG:    style.BG,
		Attr:  style.Attr,
		Flags: CellFlagWideChar,
		Link:  style.Link,
	}
	cont := Cell{
		Rune:  ' ',
		Width: 0,
		FG:    style.FG,
		BG:    style.BG,
		Attr:  style.Attr,
		Flags: CellFlagWideContinuation,
		Link:  style.Link,
	}
	return lead, cont
}

// LinkTable is the append-only registry of OSC 8 hyperlink URLs.
// Index 0 is reserved to mean "no link"; ids are never reused or compacted.
type LinkTable struct {
	urls []string
}

// NewLinkTable creates a table with the reserved empty entry at index 0.
func NewLinkTable() *LinkTable {
	return &LinkTable{urls: []string{""}}
}

// Add appends a URL and returns its id. The first real link gets id 1.
func (t *LinkTable) Add(url string) LinkID {
	t.urls = append(t.urls, url)
	return LinkID(len(t.urls) - 1)
}

// URL returns the URL for an id, or "" and false for id 0 or unknown ids.
func (t *LinkTable) URL(id LinkID) (string, bool) {
	if id == 0 || int(id) >= len(t.urls) {
		return "", false
	}
	return t.urls[id], true
}

// Len returns the number of registered links, excluding the reserved entry.
func (t *LinkTable) Len() int {
	return len(t.urls) - 1
}
