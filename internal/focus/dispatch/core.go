package dispatch

import (
	"github.com/danmuck/focusctl/internal/focus"
)

const (
	CmdReset   = "device.reset"
	CmdPlugins = "plugins"

	coreName = "Focus"
)

// Resetter restarts the device after a device.reset request.
type Resetter interface {
	Reset() error
}

// ResetFunc adapts a function to Resetter.
type ResetFunc func() error

func (f ResetFunc) Reset() error { return f() }

// core answers the protocol's own commands.
type core struct {
	registry *Registry
	resetter Resetter
	onReset  func(error)
}

func (c *core) Name() string { return coreName }

func (c *core) OnFocusEvent(e *focus.Engine, input string) Result {
	if e.InputMatchesHelp(input) {
		e.PrintHelp("help", CmdReset, CmdPlugins)
		return OK
	}
	if e.InputMatchesCommand(input, CmdReset) {
		// Flow state and any latched transmit error belong to the link, not
		// the device, and survive a reset.
		var err error
		if c.resetter != nil {
			err = c.resetter.Reset()
		}
		c.onReset(err)
		return Consumed
	}
	if e.InputMatchesCommand(input, CmdPlugins) {
		for _, p := range c.registry.Plugins() {
			e.SendName(p.Name())
		}
		return Consumed
	}
	return OK
}
