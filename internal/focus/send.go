package focus

import (
	"github.com/danmuck/focusctl/internal/protocol"
)

// Send writes each value followed by the separator, in order.
func (e *Engine) Send(values ...protocol.Value) {
	e.scratch = protocol.AppendValues(e.scratch[:0], values...)
	e.write(e.scratch)
}

// SendRaw writes each value's text with no separators in between.
func (e *Engine) SendRaw(values ...protocol.Value) {
	e.scratch = protocol.AppendRawValues(e.scratch[:0], values...)
	e.write(e.scratch)
}

func (e *Engine) SendBool(v bool)            { e.Send(protocol.Bool(v)) }
func (e *Engine) SendUint8(v uint8)          { e.Send(protocol.Uint8(v)) }
func (e *Engine) SendUint16(v uint16)        { e.Send(protocol.Uint16(v)) }
func (e *Engine) SendColor(c protocol.Color) { e.Send(protocol.ColorValue(c)) }
func (e *Engine) SendKey(k protocol.Key)     { e.Send(protocol.KeyValue(k)) }

func (e *Engine) SendColors(cs ...protocol.Color) {
	for _, c := range cs {
		e.SendColor(c)
	}
}

// Println terminates the current response line.
func (e *Engine) Println() {
	e.writeString(protocol.LineEnd)
}

// PrintHelp writes each name on its own line. No names is a no-op.
func (e *Engine) PrintHelp(names ...string) {
	for _, name := range names {
		e.writeString(name)
		e.Println()
	}
}

// SendName answers a name query with a single line.
func (e *Engine) SendName(name string) {
	e.writeString(name)
	e.Println()
}

// EndResponse writes the lone-period marker that closes a command's output.
func (e *Engine) EndResponse() {
	e.writeString(protocol.EndOfResponse)
}

func (e *Engine) writeString(s string) {
	for i := 0; i < len(s); i++ {
		e.writeByte(s[i])
	}
}

func (e *Engine) write(p []byte) {
	for _, b := range p {
		e.writeByte(b)
	}
}

// writeByte transmits one character and then waits the pacing delay.
func (e *Engine) writeByte(b byte) {
	if e.err != nil {
		return
	}
	if err := e.port.WriteByte(b); err != nil {
		e.fail(err)
		return
	}
	e.metrics.BytesSent(1)
	e.pacer.Delay(e.charDelay)
}
