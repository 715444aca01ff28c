// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/driver.go
// Summary: Output-surface abstraction and the tcell adapter.
// Usage: Wrap a tcell.Screen with NewTcellScreenDriver, or supply another
//        ScreenDriver implementation (tests use tcell's simulation screen).

package render

import "github.com/gdamore/tcell/v2"

// ScreenDriver abstracts the rendering surface. It mirrors the subset of
// tcell.Screen the renderer needs, so a recorded or remote surface can be
// swapped in.
type ScreenDriver interface {
	Init() error
	Fini()
	Size() (int, int)
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	ShowCursor(x, y int)
	HideCursor()
	Show()
	Sync()
}

// TcellScreenDriver adapts a tcell.Screen to the ScreenDriver interface.
type TcellScreenDriver struct {
	screen tcell.Screen
}

// NewTcellScreenDriver wraps the provided screen.
func NewTcellScreenDriver(screen tcell.Screen) *TcellScreenDriver {
	return &TcellScreenDriver{screen: screen}
}

func (d *TcellScreenDriver) Init() error {
	return d.screen.Init()
}

func (d *TcellScreenDriver) Fini() {
	d.screen.Fini()
}

func (d *TcellScreenDriver) Size() (int, int) {
	return d.screen.Size()
}

func (d *TcellScreenDriver) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	d.screen.SetContent(x, y, mainc, combc, style)
}

func (d *TcellScreenDriver) ShowCursor(x, y int) {
	d.screen.ShowCursor(x, y)
}

func (d *TcellScreenDriver) HideCursor() {
	d.screen.HideCursor()
}

func (d *TcellScreenDriver) Show() {
	d.screen.Show()
}

func (d *TcellScreenDriver) Sync() {
	d.screen.Sync()
}

// Underlying exposes the wrapped tcell.Screen for code paths that still
// need direct access.
func (d *TcellScreenDriver) Underlying() tcell.Screen {
	return d.screen
}
