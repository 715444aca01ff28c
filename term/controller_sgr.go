// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/controller_sgr.go
// Summary: SGR (Select Graphic Rendition) - text attributes and colors.
// Usage: Part of the Controller's Handler implementation.

package term

// handleSGR processes the parameters of a CSI ... m sequence, left to
// right. Unrecognized codes are skipped, including an extended-color
// sub-mode we do not understand; only a truncated extended-color sequence
// (38/48 missing its payload at the end) stops the scan, so trailing
// values are never misread as colors.
func (c *Controller) handleSGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	i := 0
	for i < len(params) {
		p := params[i]
		switch {
		case p == 0:
			c.resetAttributes()
		case p == 1:
			c.style.Attr |= AttrBold
		case p == 2:
			c.style.Attr |= AttrDim
		case p == 3:
			c.style.Attr |= AttrItalic
		case p == 4:
			c.style.Attr |= AttrUnderline
		case p == 5 || p == 6:
			c.style.Attr |= AttrBlink
		case p == 7:
			c.style.Attr |= AttrReverse
		case p == 8:
			c.style.Attr |= AttrHidden
		case p == 9:
			c.style.Attr |= AttrStrikethrough
		case p == 21 || p == 22:
			c.style.Attr &^= AttrBold | AttrDim
		case p == 23:
			c.style.Attr &^= AttrItalic
		case p == 24:
			c.style.Attr &^= AttrUnderline
		case p == 25:
			c.style.Attr &^= AttrBlink
		case p == 27:
			c.style.Attr &^= AttrReverse
		case p == 28:
			c.style.Attr &^= AttrHidden
		case p == 29:
			c.style.Attr &^= AttrStrikethrough
		case p >= 30 && p <= 37:
			c.style.FG = Color{Mode: ColorModeStandard, Value: uint8(p - 30)}
		case p == 38:
			color, consumed, ok := parseExtendedColor(params[i+1:])
			if ok {
				c.style.FG = color
			} else if consumed == 0 {
				return
			}
			i += consumed
		case p == 39:
			c.style.FG = DefaultFG
		case p >= 40 && p <= 47:
			c.style.BG = Color{Mode: ColorModeStandard, Value: uint8(p - 40)}
		case p == 48:
			color, consumed, ok := parseExtendedColor(params[i+1:])
			if ok {
				c.style.BG = color
			} else if consumed == 0 {
				return
			}
			i += consumed
		case p == 49:
			c.style.BG = DefaultBG
		case p >= 90 && p <= 97:
			c.style.FG = Color{Mode: ColorModeStandard, Value: uint8(p - 90 + 8)}
		case p >= 100 && p <= 107:
			c.style.BG = Color{Mode: ColorModeStandard, Value: uint8(p - 100 + 8)}
		default:
			debugf("controller: ignoring SGR code %d", p)
		}
		i++
	}
}

// resetAttributes restores the default pen but keeps the active hyperlink;
// SGR 0 is a style reset, not a link terminator.
func (c *Controller) resetAttributes() {
	link := c.style.Link
	c.style.Reset()
	c.style.Link = link
}

// parseExtendedColor decodes the payload of SGR 38/48: "5;index" for the
// 256-color palette or "2;r;g;b" for truecolor. Returns the number of
// parameters consumed after the 38/48 itself, and ok=false when the
// payload is truncated (consumed 0) or the sub-mode is unknown (consumed
// 1, so the caller can skip it and keep scanning).
func parseExtendedColor(rest []int) (Color, int, bool) {
	if len(rest) == 0 {
		return Color{}, 0, false
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return Color{}, 0, false
		}
		return Color{Mode: ColorMode256, Value: clampUint8(rest[1])}, 2, true
	case 2:
		if len(rest) < 4 {
			return Color{}, 0, false
		}
		return Color{
			Mode: ColorModeRGB,
			R:    clampUint8(rest[1]),
			G:    clampUint8(rest[2]),
			B:    clampUint8(rest[3]),
		}, 4, true
	default:
		return Color{}, 1, false
	}
}

func clampUint8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
