// Package ledcontrol exposes an LED array over focus.
//
//	led.at <index> [r g b]   get or set one LED
//	led.setAll <r g b>       set every LED
//	led.mode [n]             get or set the active mode
//	led.brightness [n]       get or set the global brightness
//	led.theme [r g b ...]    get or set all LEDs in order
package ledcontrol

import (
	"errors"

	"github.com/danmuck/focusctl/internal/focus"
	"github.com/danmuck/focusctl/internal/focus/dispatch"
	"github.com/danmuck/focusctl/internal/protocol"
)

const (
	CmdAt         = "led.at"
	CmdSetAll     = "led.setAll"
	CmdMode       = "led.mode"
	CmdBrightness = "led.brightness"
	CmdTheme      = "led.theme"
)

var ErrInvalidCount = errors.New("ledcontrol: led count must be positive")

type Plugin struct {
	colors     []protocol.Color
	mode       uint8
	modes      uint8
	brightness uint8
}

// New creates an LED array of count pixels with modes selectable modes.
func New(count int, modes uint8) (*Plugin, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if modes == 0 {
		modes = 1
	}
	return &Plugin{
		colors:     make([]protocol.Color, count),
		modes:      modes,
		brightness: 255,
	}, nil
}

func (p *Plugin) Name() string { return "LEDControl" }

func (p *Plugin) OnFocusEvent(e *focus.Engine, input string) dispatch.Result {
	switch {
	case e.InputMatchesHelp(input):
		e.PrintHelp(CmdAt, CmdSetAll, CmdMode, CmdBrightness, CmdTheme)
		return dispatch.OK
	case e.InputMatchesCommand(input, CmdAt):
		p.at(e)
	case e.InputMatchesCommand(input, CmdSetAll):
		if c, ok := e.ReadColor(); ok {
			for i := range p.colors {
				p.colors[i] = c
			}
		}
	case e.InputMatchesCommand(input, CmdMode):
		if e.IsEOL() {
			e.SendUint8(p.mode)
			e.Println()
			break
		}
		// Out-of-range modes are ignored, matching a device with fewer modes installed.
		if m, ok := e.ReadUint8(); ok && m < p.modes {
			p.mode = m
		}
	case e.InputMatchesCommand(input, CmdBrightness):
		if e.IsEOL() {
			e.SendUint8(p.brightness)
			e.Println()
			break
		}
		if b, ok := e.ReadUint8(); ok {
			p.brightness = b
		}
	case e.InputMatchesCommand(input, CmdTheme):
		p.theme(e)
	default:
		return dispatch.OK
	}
	return dispatch.Consumed
}

func (p *Plugin) at(e *focus.Engine) {
	idx, ok := e.ReadUint16()
	if !ok || int(idx) >= len(p.colors) {
		return
	}
	if e.IsEOL() {
		e.SendColor(p.colors[idx])
		e.Println()
		return
	}
	if c, ok := e.ReadColor(); ok {
		p.colors[idx] = c
	}
}

func (p *Plugin) theme(e *focus.Engine) {
	if e.IsEOL() {
		e.SendColors(p.colors...)
		e.Println()
		return
	}
	for i := range p.colors {
		if e.IsEOL() {
			return
		}
		c, ok := e.ReadColor()
		if !ok {
			return
		}
		p.colors[i] = c
	}
}

// Color returns the color at index i.
func (p *Plugin) Color(i int) (protocol.Color, bool) {
	if i < 0 || i >= len(p.colors) {
		return protocol.Color{}, false
	}
	return p.colors[i], true
}

func (p *Plugin) Mode() uint8       { return p.mode }
func (p *Plugin) Brightness() uint8 { return p.brightness }
func (p *Plugin) Count() int        { return len(p.colors) }

// Reset turns every LED off and restores mode 0 at full brightness.
func (p *Plugin) Reset() {
	clear(p.colors)
	p.mode = 0
	p.brightness = 255
}
