// Package keymap exposes a layered key table over focus.
//
// The default layers are fixed at construction; custom layers start as a copy
// of them and are rewritten key by key, in layer-major order, by
// "keymap.custom". Keys travel as their raw 16-bit value.
package keymap

import (
	"errors"
	"fmt"

	"github.com/danmuck/focusctl/internal/focus"
	"github.com/danmuck/focusctl/internal/focus/dispatch"
	"github.com/danmuck/focusctl/internal/protocol"
)

const (
	CmdCustom     = "keymap.custom"
	CmdDefault    = "keymap.default"
	CmdOnlyCustom = "keymap.onlyCustom"
)

var ErrInvalidShape = errors.New("keymap: invalid shape")

type Plugin struct {
	layers, keys int
	defaults     []protocol.Key
	custom       []protocol.Key
	onlyCustom   bool
}

// New builds a layers×keys map. defaults may be shorter than the map; missing
// entries are zero (no key).
func New(layers, keys int, defaults []protocol.Key) (*Plugin, error) {
	if layers <= 0 || keys <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, layers, keys)
	}
	size := layers * keys
	if len(defaults) > size {
		return nil, fmt.Errorf("%w: %d defaults for %d slots", ErrInvalidShape, len(defaults), size)
	}
	p := &Plugin{
		layers:   layers,
		keys:     keys,
		defaults: make([]protocol.Key, size),
		custom:   make([]protocol.Key, size),
	}
	copy(p.defaults, defaults)
	copy(p.custom, p.defaults)
	return p, nil
}

func (p *Plugin) Name() string { return "Keymap" }

func (p *Plugin) OnFocusEvent(e *focus.Engine, input string) dispatch.Result {
	switch {
	case e.InputMatchesHelp(input):
		e.PrintHelp(CmdCustom, CmdDefault, CmdOnlyCustom)
		return dispatch.OK
	case e.InputMatchesCommand(input, CmdDefault):
		p.dump(e, p.defaults)
	case e.InputMatchesCommand(input, CmdCustom):
		if e.IsEOL() {
			p.dump(e, p.custom)
			break
		}
		for i := range p.custom {
			if e.IsEOL() {
				break
			}
			k, ok := e.ReadKey()
			if !ok {
				break
			}
			p.custom[i] = k
		}
	case e.InputMatchesCommand(input, CmdOnlyCustom):
		if e.IsEOL() {
			e.SendBool(p.onlyCustom)
			e.Println()
			break
		}
		if v, ok := e.ReadBool(); ok {
			p.onlyCustom = v
		}
	default:
		return dispatch.OK
	}
	return dispatch.Consumed
}

func (p *Plugin) dump(e *focus.Engine, keys []protocol.Key) {
	for _, k := range keys {
		e.SendKey(k)
	}
	e.Println()
}

// Lookup returns the effective key at layer, index: the custom key, falling
// back to the default when custom-only mode is off and the custom slot is empty.
func (p *Plugin) Lookup(layer, index int) (protocol.Key, bool) {
	if layer < 0 || layer >= p.layers || index < 0 || index >= p.keys {
		return 0, false
	}
	i := layer*p.keys + index
	if k := p.custom[i]; k != 0 || p.onlyCustom {
		return k, true
	}
	return p.defaults[i], true
}

func (p *Plugin) OnlyCustom() bool { return p.onlyCustom }
func (p *Plugin) Size() int        { return len(p.custom) }

// Reset discards custom keys and leaves custom-only mode.
func (p *Plugin) Reset() {
	copy(p.custom, p.defaults)
	p.onlyCustom = false
}
