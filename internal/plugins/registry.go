package plugins

import (
	"github.com/danmuck/focusctl/internal/focus/dispatch"
	"github.com/danmuck/focusctl/internal/plugins/keymap"
	"github.com/danmuck/focusctl/internal/plugins/ledcontrol"
	"github.com/danmuck/focusctl/internal/protocol"
)

// Options sizes the built-in plugins.
type Options struct {
	LEDCount       int
	LEDModes       uint8
	KeymapLayers   int
	KeymapKeys     int
	KeymapDefaults []protocol.Key
}

// Set holds plugin instances in registration order.
type Set struct {
	order []Plugin
}

// Builtin creates the LED and keymap plugins.
func Builtin(opts Options) (*Set, error) {
	leds, err := ledcontrol.New(opts.LEDCount, opts.LEDModes)
	if err != nil {
		return nil, err
	}
	keys, err := keymap.New(opts.KeymapLayers, opts.KeymapKeys, opts.KeymapDefaults)
	if err != nil {
		return nil, err
	}
	return NewSet(leds, keys), nil
}

func NewSet(ps ...Plugin) *Set {
	return &Set{order: ps}
}

// Dispatch returns the plugins as the dispatcher expects them.
func (s *Set) Dispatch() []dispatch.Plugin {
	out := make([]dispatch.Plugin, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, p)
	}
	return out
}

// Reset restores every plugin; it satisfies dispatch.Resetter.
func (s *Set) Reset() error {
	for _, p := range s.order {
		p.Reset()
	}
	return nil
}
