package focus

import (
	"github.com/danmuck/focusctl/internal/protocol"
)

// Peek returns the next unread byte without consuming it.
func (e *Engine) Peek() (byte, bool) {
	e.ManageFlowControl()
	return e.port.Peek()
}

// IsEOL reports whether the current line has no more parameters: either no
// byte is available or the next byte is a line terminator.
func (e *Engine) IsEOL() bool {
	b, ok := e.port.Peek()
	return !ok || protocol.IsLineEnd(b)
}

// ReadToken reads the next separator-delimited token of the current line.
// Tokens longer than the line capacity are consumed and rejected.
func (e *Engine) ReadToken() (string, bool) {
	e.ManageFlowControl()
	tok, err := protocol.ReadToken(e.port, e.lineCapacity)
	if err != nil {
		if isRejected(err) {
			e.metrics.TokenRejected()
			e.log.Warn().Int("capacity", e.lineCapacity).Msg("token rejected: exceeds line capacity")
		}
		return "", false
	}
	return tok, true
}

// ReadChar consumes exactly one raw byte.
func (e *Engine) ReadChar() (byte, bool) {
	e.ManageFlowControl()
	return e.port.Next()
}

// ReadInt decodes the next decimal integer.
func (e *Engine) ReadInt() (int64, bool) {
	e.ManageFlowControl()
	return protocol.ReadInt(e.port)
}

// ReadUint8 decodes the next integer truncated to 8 bits.
func (e *Engine) ReadUint8() (uint8, bool) {
	n, ok := e.ReadInt()
	return uint8(n), ok
}

// ReadUint16 decodes the next integer truncated to 16 bits.
func (e *Engine) ReadUint16() (uint16, bool) {
	n, ok := e.ReadInt()
	return uint16(n), ok
}

// ReadKey decodes one integer as a packed key.
func (e *Engine) ReadKey() (protocol.Key, bool) {
	n, ok := e.ReadUint16()
	return protocol.Key(n), ok
}

// ReadColor decodes red, green and blue in that order. Components are not
// range checked; ok is false unless all three were present.
func (e *Engine) ReadColor() (protocol.Color, bool) {
	e.ManageFlowControl()
	r, okR := protocol.ReadInt(e.port)
	g, okG := protocol.ReadInt(e.port)
	b, okB := protocol.ReadInt(e.port)
	return protocol.Color{R: uint8(r), G: uint8(g), B: uint8(b)}, okR && okG && okB
}

// ReadBool decodes one token as a boolean.
func (e *Engine) ReadBool() (bool, bool) {
	tok, ok := e.ReadToken()
	if !ok {
		return false, false
	}
	return protocol.ParseBool(tok)
}

// DrainLine discards the rest of the current line including its terminator.
func (e *Engine) DrainLine() int {
	e.ManageFlowControl()
	n, _ := protocol.DrainLine(e.port)
	return n
}
