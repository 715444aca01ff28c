// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser_test.go
// Summary: Tests for the escape-sequence state machine.
// Usage: Run with `go test`.

package term

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// recorder flattens every handler event to a string so tests can compare
// full event streams. Slices handed to the handler are only valid for the
// duration of the call, so everything is rendered immediately.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) Print(ch rune)  { r.add("print %q", ch) }
func (r *recorder) Execute(b byte) { r.add("exec 0x%02X", b) }
func (r *recorder) Put(b byte)     { r.add("put 0x%02X", b) }
func (r *recorder) Unhook()        { r.add("unhook") }

func (r *recorder) CsiDispatch(params []int, intermediates []byte, final byte) {
	r.add("csi %v %q %c", params, intermediates, final)
}

func (r *recorder) OscDispatch(params [][]byte) {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = string(p)
	}
	r.add("osc %v", parts)
}

func (r *recorder) EscDispatch(intermediates []byte, final byte) {
	r.add("esc %q %c", intermediates, final)
}

func (r *recorder) Hook(params []int, intermediates []byte, final byte) {
	r.add("hook %v %q %c", params, intermediates, final)
}

func parse(t *testing.T, input string) []string {
	t.Helper()
	rec := &recorder{}
	p := NewParser(rec)
	p.Process([]byte(input))
	return rec.events
}

func requireEvents(t *testing.T, got, want []string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestParsePrintableAndControls(t *testing.T) {
	got := parse(t, "Hi\n\r")
	requireEvents(t, got, []string{
		`print 'H'`, `print 'i'`, "exec 0x0A", "exec 0x0D",
	})
}

func TestParseCsiParams(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{"\x1b[5;10H", `csi [5 10] "" H`},
		{"\x1b[H", `csi [] "" H`},
		{"\x1b[;5H", `csi [0 5] "" H`},
		{"\x1b[5;H", `csi [5 0] "" H`},
		{"\x1b[0m", `csi [0] "" m`},
		{"\x1b[38;2;10;20;30m", `csi [38 2 10 20 30] "" m`},
		{"\x1b[?25h", `csi [25] "?" h`},
		{"\x1b[>0c", `csi [0] ">" c`},
	} {
		got := parse(t, tc.input)
		requireEvents(t, got, []string{tc.want})
	}
}

func TestParseCsiParamSaturation(t *testing.T) {
	got := parse(t, "\x1b[99999999999999999999G")
	requireEvents(t, got, []string{
		fmt.Sprintf(`csi [%d] "" G`, 1<<30),
	})
}

func TestParseCsiColonSeparator(t *testing.T) {
	// Colon-form extended color sequences split the same way semicolons do.
	got := parse(t, "\x1b[38:5:42m")
	requireEvents(t, got, []string{`csi [38 5 42] "" m`})
}

func TestParseSplitAcrossChunks(t *testing.T) {
	rec := &recorder{}
	p := NewParser(rec)
	for _, chunk := range []string{"\x1b", "[5;1", "0", "H"} {
		p.Process([]byte(chunk))
	}
	requireEvents(t, rec.events, []string{`csi [5 10] "" H`})
}

func TestParseUtf8(t *testing.T) {
	got := parse(t, "é世🎉")
	requireEvents(t, got, []string{`print 'é'`, `print '世'`, `print '🎉'`})
}

func TestParseUtf8SplitAcrossChunks(t *testing.T) {
	rec := &recorder{}
	p := NewParser(rec)
	raw := []byte("世")
	p.Process(raw[:1])
	p.Process(raw[1:2])
	if len(rec.events) != 0 {
		t.Fatalf("partial rune already emitted: %v", rec.events)
	}
	p.Process(raw[2:])
	requireEvents(t, rec.events, []string{`print '世'`})
}

func TestParseUtf8BrokenSequence(t *testing.T) {
	// Lead byte followed by ASCII: replacement char, then the ASCII byte
	// is reprocessed normally.
	got := parse(t, "\xE4A")
	requireEvents(t, got, []string{
		fmt.Sprintf("print %q", utf8.RuneError), `print 'A'`,
	})
	// Stray continuation byte on its own.
	got = parse(t, "\x80")
	requireEvents(t, got, []string{fmt.Sprintf("print %q", utf8.RuneError)})
}

func TestParseOscTerminators(t *testing.T) {
	// BEL and ST terminate identically.
	bel := parse(t, "\x1b]0;my title\x07")
	st := parse(t, "\x1b]0;my title\x1b\\")
	want := []string{"osc [0 my title]"}
	requireEvents(t, bel, want)
	requireEvents(t, st, want)
}

func TestParseOscLoneEscapeIsLiteral(t *testing.T) {
	got := parse(t, "\x1b]0;a\x1bb\x07")
	requireEvents(t, got, []string{"osc [0 a\x1bb]"})
}

func TestParseOscEmptyParams(t *testing.T) {
	got := parse(t, "\x1b]8;;\x07")
	requireEvents(t, got, []string{"osc [8  ]"})
}

func TestParseOscPayloadCapped(t *testing.T) {
	// A giant OSC string accumulates only up to the cap; the overflow is
	// dropped and the sequence still dispatches on its terminator.
	got := parse(t, "\x1b]0;"+strings.Repeat("x", 4*maxOscPayload)+"\x07")
	want := "osc [0 " + strings.Repeat("x", maxOscPayload-2) + "]"
	requireEvents(t, got, []string{want})

	// The literal-ESC path respects the same cap.
	got = parse(t, "\x1b]0;"+strings.Repeat("\x1bx", maxOscPayload)+"\x07")
	if len(got) != 1 || len(got[0]) > maxOscPayload+16 {
		t.Fatalf("capped OSC produced %d events, first %d bytes long",
			len(got), len(got[0]))
	}
}

func TestParseEscFinals(t *testing.T) {
	got := parse(t, "\x1b7\x1b8\x1bM")
	requireEvents(t, got, []string{`esc "" 7`, `esc "" 8`, `esc "" M`})
}

func TestParseEscIntermediate(t *testing.T) {
	// Charset designation: intermediate then final.
	got := parse(t, "\x1b(B")
	requireEvents(t, got, []string{`esc "(" B`})
}

func TestParseUnknownEscDropped(t *testing.T) {
	got := parse(t, "\x1bqA")
	requireEvents(t, got, []string{`print 'A'`})
}

func TestParseMalformedCsiDropped(t *testing.T) {
	// A control byte inside CSI aborts the sequence without an event.
	got := parse(t, "\x1b[5\x01A")
	requireEvents(t, got, []string{`print 'A'`})
}

func TestParseDcs(t *testing.T) {
	got := parse(t, "\x1bP1;2qAB\x1b\\")
	requireEvents(t, got, []string{
		`hook [1 2] "" q`, "put 0x41", "put 0x42", "unhook",
	})
}

func TestParseDcsEscapePayload(t *testing.T) {
	// ESC not followed by backslash stays in the payload.
	got := parse(t, "\x1bPq\x1bX\x1b\\")
	requireEvents(t, got, []string{
		`hook [] "" q`, "put 0x1B", "put 0x58", "unhook",
	})
}

func TestParseResetDiscardsInFlight(t *testing.T) {
	rec := &recorder{}
	p := NewParser(rec)
	p.Process([]byte("\x1b[12;"))
	p.Reset()
	p.Process([]byte("A"))
	requireEvents(t, rec.events, []string{`print 'A'`})
}

func TestParseInterleavedStream(t *testing.T) {
	// A realistic mixed stream: text, cursor motion, SGR, OSC title.
	got := parse(t, "ok\x1b[2;3H\x1b[1mX\x1b]2;t\x07")
	requireEvents(t, got, []string{
		`print 'o'`, `print 'k'`,
		`csi [2 3] "" H`,
		`csi [1] "" m`,
		`print 'X'`,
		"osc [2 t]",
	})
}

func TestParseLargeStreamStaysInGround(t *testing.T) {
	rec := &recorder{}
	p := NewParser(rec)
	p.Process([]byte(strings.Repeat("\x1b[0mA", 100)))
	if len(rec.events) != 200 {
		t.Fatalf("got %d events, want 200", len(rec.events))
	}
}
