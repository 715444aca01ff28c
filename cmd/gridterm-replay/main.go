// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/gridterm-replay/main.go
// Summary: Replays a captured terminal byte stream through the emulator.
// Usage: gridterm-replay [flags] [capture-file]
//        Reads the capture from the file argument or stdin, then prints the
//        final screen. With -play the replay is shown live in a tcell
//        window; with -index evicted history lands in a searchable SQLite
//        database queryable via -search.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/thorstone137/gridterm/render"
	"github.com/thorstone137/gridterm/term"
	"github.com/thorstone137/gridterm/term/search"
)

func main() {
	cols := flag.Int("cols", 80, "terminal width in columns")
	rows := flag.Int("rows", 24, "terminal height in rows")
	scrollback := flag.Int("scrollback", 2000, "scrollback capacity in lines")
	indexPath := flag.String("index", "", "SQLite file to index evicted history into")
	query := flag.String("search", "", "search the index after the replay")
	play := flag.Bool("play", false, "replay live in a tcell screen")
	delay := flag.Duration("delay", 5*time.Millisecond, "per-chunk delay with -play")
	flag.Parse()

	data, err := readCapture(flag.Arg(0))
	if err != nil {
		log.Fatalf("gridterm-replay: %v", err)
	}

	ctrl := term.NewController(*cols, *rows, term.WithScrollbackCapacity(*scrollback))

	var idx *search.Index
	if *indexPath != "" {
		idx, err = search.Open(*indexPath)
		if err != nil {
			log.Fatalf("gridterm-replay: %v", err)
		}
		defer idx.Close()
		ctrl.Scrollback().Evicted = func(line term.ScrollbackLine) {
			idx.Record(term.LineText(line))
		}
	}

	if *play {
		if err := playLive(ctrl, data, *delay); err != nil {
			log.Fatalf("gridterm-replay: %v", err)
		}
	} else {
		ctrl.Process(data)
	}

	printScreen(ctrl)

	if idx != nil && *query != "" {
		idx.Flush()
		results, err := idx.Search(*query, 20)
		if err != nil {
			log.Fatalf("gridterm-replay: search: %v", err)
		}
		fmt.Printf("\n%d match(es) for %q in history:\n", len(results), *query)
		for _, r := range results {
			fmt.Printf("  %6d  %s\n", r.Seq, r.Text)
		}
	}
}

func readCapture(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// playLive feeds the capture in small chunks onto a live tcell screen and
// waits for a key press at the end.
func playLive(ctrl *term.Controller, data []byte, delay time.Duration) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	driver := render.NewTcellScreenDriver(screen)
	if err := driver.Init(); err != nil {
		return err
	}
	defer driver.Fini()

	r := render.NewRenderer(driver)
	const chunkSize = 256
	for off := 0; off < len(data); off += chunkSize {
		end := min(off+chunkSize, len(data))
		ctrl.Process(data[off:end])
		r.Draw(ctrl)
		time.Sleep(delay)
	}
	r.Draw(ctrl)

	for {
		if _, ok := screen.PollEvent().(*tcell.EventKey); ok {
			return nil
		}
	}
}

// printScreen dumps the final screen and the diagnostic state as text.
func printScreen(ctrl *term.Controller) {
	grid := ctrl.Grid()
	for row := 0; row < grid.Rows(); row++ {
		fmt.Println(grid.RowText(row))
	}

	row, col := ctrl.CursorPos()
	fmt.Printf("\ncursor: (%d,%d)  alt-screen: %v  title: %q\n",
		row, col, ctrl.AltScreenActive(), ctrl.Title())
	fmt.Printf("scrollback: %d line(s)  links: %d\n",
		ctrl.Scrollback().Len(), ctrl.Links().Len())
	if ctrl.HasDanglingLink() {
		fmt.Println("warning: unterminated hyperlink in stream")
	}
	if !ctrl.SyncOutputBalanced() {
		fmt.Printf("warning: %d unmatched synchronized-output begin(s)\n", ctrl.SyncOutputLevel())
	}
}
