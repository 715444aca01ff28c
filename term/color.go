// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/color.go
// Summary: Palette resolution - 16-color table, 256-color cube, nearest match.
// Usage: Used by the renderer to translate cell colors for the output driver.

package term

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// basicRGB is the conventional RGB rendering of the 8 basic ANSI colors.
var basicRGB = [8][3]uint8{
	{0, 0, 0},       // black
	{128, 0, 0},     // red
	{0, 128, 0},     // green
	{128, 128, 0},   // yellow
	{0, 0, 128},     // blue
	{128, 0, 128},   // magenta
	{0, 128, 128},   // cyan
	{192, 192, 192}, // white
}

// brightRGB is the conventional RGB rendering of the 8 bright ANSI colors.
var brightRGB = [8][3]uint8{
	{128, 128, 128},
	{255, 0, 0},
	{0, 255, 0},
	{255, 255, 0},
	{0, 0, 255},
	{255, 0, 255},
	{0, 255, 255},
	{255, 255, 255},
}

// Palette256 resolves a 256-color palette index to RGB: indices 0-15 are the
// named colors, 16-231 the 6x6x6 cube, 232-255 the grayscale ramp.
func Palette256(idx uint8) (r, g, b uint8) {
	switch {
	case idx < 8:
		c := basicRGB[idx]
		return c[0], c[1], c[2]
	case idx < 16:
		c := brightRGB[idx-8]
		return c[0], c[1], c[2]
	case idx < 232:
		i := idx - 16
		channel := func(v uint8) uint8 {
			if v == 0 {
				return 0
			}
			return 55 + v*40
		}
		return channel((i / 36) % 6), channel((i / 6) % 6), channel(i % 6)
	default:
		gray := 8 + (idx-232)*10
		return gray, gray, gray
	}
}

// RGB resolves the color to 24-bit RGB. Returns ok=false for the default
// color, which has no fixed RGB value (the host terminal decides).
func (c Color) RGB() (r, g, b uint8, ok bool) {
	switch c.Mode {
	case ColorModeStandard:
		if c.Value < 8 {
			v := basicRGB[c.Value]
			return v[0], v[1], v[2], true
		}
		v := brightRGB[(c.Value-8)%8]
		return v[0], v[1], v[2], true
	case ColorMode256:
		r, g, b := Palette256(c.Value)
		return r, g, b, true
	case ColorModeRGB:
		return c.R, c.G, c.B, true
	default:
		return 0, 0, 0, false
	}
}

var (
	paletteLabOnce sync.Once
	paletteLab     [256]colorful.Color
)

// NearestPaletteIndex returns the 256-palette index closest to an RGB color,
// measured in CIE Lab space. Used to downsample truecolor cells when the
// output terminal only supports the 256-color palette.
func NearestPaletteIndex(r, g, b uint8) uint8 {
	paletteLabOnce.Do(func() {
		for i := 0; i < 256; i++ {
			pr, pg, pb := Palette256(uint8(i))
			paletteLab[i] = colorful.Color{
				R: float64(pr) / 255,
				G: float64(pg) / 255,
				B: float64(pb) / 255,
			}
		}
	})
	target := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	best := 0
	bestDist := target.DistanceLab(paletteLab[0])
	for i := 1; i < 256; i++ {
		d := target.DistanceLab(paletteLab[i])
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return uint8(best)
}
