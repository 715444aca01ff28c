// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser.go
// Summary: Byte-driven escape-sequence state machine.
// Usage: Feed raw output bytes through Process; events are dispatched to a
//        Handler (normally the Controller).
// Notes: State persists across Process calls, so sequences and multi-byte
//        UTF-8 characters may be split arbitrarily between chunks.

package term

import (
	"bytes"
	"unicode/utf8"
)

// Handler receives the typed events the parser extracts from the byte
// stream. Any terminal-state consumer implements this interface.
type Handler interface {
	// Print handles one printable character.
	Print(r rune)
	// Execute handles a C0/C1 control code (BEL, BS, HT, LF, CR, ...).
	Execute(b byte)
	// CsiDispatch handles a complete CSI sequence. Params may be empty when
	// the sequence carried none; intermediates holds private markers
	// (? > !) and bytes in 0x20-0x2F.
	CsiDispatch(params []int, intermediates []byte, final byte)
	// OscDispatch handles a complete OSC string, split on semicolons.
	OscDispatch(params [][]byte)
	// EscDispatch handles a plain ESC sequence (non-CSI, non-OSC).
	EscDispatch(intermediates []byte, final byte)
	// Hook begins a DCS sequence.
	Hook(params []int, intermediates []byte, final byte)
	// Put handles one DCS payload byte.
	Put(b byte)
	// Unhook ends a DCS sequence.
	Unhook()
}

type parseState int

const (
	stateGround parseState = iota
	stateEscape
	stateCsiEntry
	stateCsiParam
	stateOscEntry
	stateOscString // saw ESC inside OSC, deciding whether it is ST
	stateDcsEntry
	stateDcsPassthrough
	stateDcsEscape // saw ESC inside DCS payload
	stateEscapeIntermediate
)

// maxCsiParam caps accumulated CSI parameters; larger values saturate
// instead of wrapping.
const maxCsiParam = 1 << 30

// maxOscPayload caps the accumulated OSC string. A hostile stream that
// never terminates its OSC otherwise grows the buffer without bound;
// excess bytes are dropped and the sequence still dispatches on its
// terminator.
const maxOscPayload = 4096

// Plain ESC finals the parser recognizes. Anything else after ESC is
// dropped without an event.
var knownEscFinals = []byte("78=>cDEHMNOZ\\")

// Parser converts an output byte stream into Handler events. One parser
// instance belongs to one terminal session; there is no shared state.
type Parser struct {
	handler Handler
	state   parseState

	params       []int
	currentParam int
	paramStarted bool
	intermediate []byte
	oscBuf       []byte

	// In-flight UTF-8 decoding for printable characters.
	utf8Buf  [utf8.UTFMax]byte
	utf8Len  int
	utf8Need int
}

// NewParser creates a parser dispatching to the given handler.
func NewParser(h Handler) *Parser {
	return &Parser{
		handler:      h,
		state:        stateGround,
		params:       make([]int, 0, 16),
		intermediate: make([]byte, 0, 4),
		oscBuf:       make([]byte, 0, 128),
	}
}

// Reset discards any in-flight sequence and returns to ground state.
func (p *Parser) Reset() {
	p.state = stateGround
	p.clearSequence()
	p.oscBuf = p.oscBuf[:0]
	p.utf8Len = 0
	p.utf8Need = 0
}

func (p *Parser) clearSequence() {
	p.params = p.params[:0]
	p.currentParam = 0
	p.paramStarted = false
	p.intermediate = p.intermediate[:0]
}

// Process consumes a chunk of bytes. Incomplete sequences are retained and
// completed by the next call.
func (p *Parser) Process(data []byte) {
	for _, b := range data {
		p.processByte(b)
	}
}

func (p *Parser) processByte(b byte) {
	switch p.state {
	case stateGround:
		p.groundByte(b)
	case stateEscape:
		p.escapeByte(b)
	case stateCsiEntry:
		p.csiEntryByte(b)
	case stateCsiParam:
		p.csiParamByte(b)
	case stateOscEntry:
		p.oscEntryByte(b)
	case stateOscString:
		p.oscStringByte(b)
	case stateDcsEntry:
		p.dcsEntryByte(b)
	case stateDcsPassthrough:
		p.dcsPassthroughByte(b)
	case stateDcsEscape:
		p.dcsEscapeByte(b)
	case stateEscapeIntermediate:
		p.escapeIntermediateByte(b)
	}
}

func (p *Parser) groundByte(b byte) {
	if p.utf8Need > 0 {
		if b&0xC0 == 0x80 {
			p.utf8Buf[p.utf8Len] = b
			p.utf8Len++
			p.utf8Need--
			if p.utf8Need == 0 {
				r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
				p.utf8Len = 0
				p.handler.Print(r)
			}
			return
		}
		// Broken sequence: emit a replacement and reprocess this byte.
		p.utf8Len = 0
		p.utf8Need = 0
		p.handler.Print(utf8.RuneError)
	}

	switch {
	case b == 0x1B:
		p.state = stateEscape
	case b < 0x20 || b == 0x7F:
		p.handler.Execute(b)
	case b < 0x80:
		p.handler.Print(rune(b))
	default:
		need := utf8SequenceLength(b)
		if need == 0 {
			// Stray continuation or invalid lead byte.
			p.handler.Print(utf8.RuneError)
			return
		}
		p.utf8Buf[0] = b
		p.utf8Len = 1
		p.utf8Need = need - 1
	}
}

func (p *Parser) escapeByte(b byte) {
	switch b {
	case '[':
		p.clearSequence()
		p.state = stateCsiEntry
	case ']':
		p.oscBuf = p.oscBuf[:0]
		p.state = stateOscEntry
	case 'P':
		p.clearSequence()
		p.state = stateDcsEntry
	case 0x1B:
		// ESC ESC: stay, the second ESC starts over.
	default:
		if b >= 0x20 && b <= 0x2F {
			// Intermediate (charset designation etc.); a final byte follows.
			p.intermediate = p.intermediate[:0]
			p.intermediate = append(p.intermediate, b)
			p.state = stateEscapeIntermediate
			return
		}
		if bytes.IndexByte(knownEscFinals, b) >= 0 {
			p.handler.EscDispatch(nil, b)
		} else {
			debugf("parser: dropping unrecognized ESC final %q", b)
		}
		p.state = stateGround
	}
}

func (p *Parser) escapeIntermediateByte(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		p.intermediate = append(p.intermediate, b)
	case b >= 0x30 && b <= 0x7E:
		p.handler.EscDispatch(p.intermediate, b)
		p.intermediate = p.intermediate[:0]
		p.state = stateGround
	default:
		// Malformed: drop without an event.
		p.intermediate = p.intermediate[:0]
		p.state = stateGround
	}
}

func (p *Parser) csiEntryByte(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.accumulateDigit(b)
		p.state = stateCsiParam
	case b == ';':
		p.finishParam()
		p.state = stateCsiParam
	case b == '?' || b == '>' || b == '!':
		p.intermediate = append(p.intermediate, b)
		p.state = stateCsiParam
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCsi(b)
	default:
		// Malformed: drop the sequence, no event.
		p.state = stateGround
	}
}

func (p *Parser) csiParamByte(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.accumulateDigit(b)
	case b == ';' || b == ':':
		p.finishParam()
	case b >= 0x20 && b <= 0x2F:
		p.intermediate = append(p.intermediate, b)
	case b == '?' || b == '>' || b == '!':
		p.intermediate = append(p.intermediate, b)
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCsi(b)
	default:
		p.state = stateGround
	}
}

// accumulateDigit extends the current parameter, saturating on overflow.
func (p *Parser) accumulateDigit(b byte) {
	p.currentParam = saturateParam(p.currentParam, int(b-'0'))
	p.paramStarted = true
}

// finishParam commits the current parameter. An unstarted parameter between
// separators commits as 0.
func (p *Parser) finishParam() {
	p.params = append(p.params, p.currentParam)
	p.currentParam = 0
	p.paramStarted = false
}

func (p *Parser) dispatchCsi(final byte) {
	// A trailing started param, or a trailing separator after earlier
	// params, commits before dispatch. A bare final keeps params empty.
	if p.paramStarted || len(p.params) > 0 {
		p.finishParam()
	}
	p.handler.CsiDispatch(p.params, p.intermediate, final)
	p.state = stateGround
}

func (p *Parser) oscEntryByte(b byte) {
	switch b {
	case 0x07:
		p.dispatchOsc()
	case 0x1B:
		p.state = stateOscString
	default:
		if len(p.oscBuf) < maxOscPayload {
			p.oscBuf = append(p.oscBuf, b)
		}
	}
}

func (p *Parser) oscStringByte(b byte) {
	if b == '\\' {
		// ST terminator.
		p.dispatchOsc()
		return
	}
	// Lone ESC inside OSC data is literal, not a terminator.
	if len(p.oscBuf)+2 <= maxOscPayload {
		p.oscBuf = append(p.oscBuf, 0x1B, b)
	}
	p.state = stateOscEntry
}

func (p *Parser) dispatchOsc() {
	parts := bytes.Split(p.oscBuf, []byte{';'})
	p.handler.OscDispatch(parts)
	p.oscBuf = p.oscBuf[:0]
	p.state = stateGround
}

func (p *Parser) dcsEntryByte(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.accumulateDigit(b)
	case b == ';':
		p.finishParam()
	case b >= 0x20 && b <= 0x2F || b == '?' || b == '>' || b == '!':
		p.intermediate = append(p.intermediate, b)
	case b >= 0x40 && b <= 0x7E:
		if p.paramStarted || len(p.params) > 0 {
			p.finishParam()
		}
		p.handler.Hook(p.params, p.intermediate, b)
		p.state = stateDcsPassthrough
	default:
		p.state = stateGround
	}
}

func (p *Parser) dcsPassthroughByte(b byte) {
	if b == 0x1B {
		p.state = stateDcsEscape
		return
	}
	p.handler.Put(b)
}

func (p *Parser) dcsEscapeByte(b byte) {
	if b == '\\' {
		p.handler.Unhook()
		p.state = stateGround
		return
	}
	// Not ST: the ESC was payload.
	p.handler.Put(0x1B)
	p.handler.Put(b)
	p.state = stateDcsPassthrough
}

// saturateParam appends a decimal digit, saturating at maxCsiParam.
func saturateParam(current, digit int) int {
	if current > (maxCsiParam-digit)/10 {
		return maxCsiParam
	}
	return current*10 + digit
}

// utf8SequenceLength returns the total byte length implied by a UTF-8 lead
// byte, or 0 for invalid leads.
func utf8SequenceLength(b byte) int {
	switch {
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
