// Package dispatch routes focus command lines to plugins.
//
// Once per control-loop tick Cycle runs the engine's flow check and, when a
// request is waiting, reads its command token, offers it to each plugin in
// registration order, discards whatever the handler left unread on the line,
// and closes the response with the end-of-response marker. Unknown commands
// are reported as not handled; nothing extra is written to the wire.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/focusctl/internal/focus"
)

var ErrNilEngine = errors.New("dispatch: nil engine")

// Metrics receives one event per dispatched command line.
type Metrics interface {
	Command(handled bool)
}

type nopMetrics struct{}

func (nopMetrics) Command(bool) {}

// Config wires the dispatcher's optional collaborators.
type Config struct {
	Resetter Resetter
	Metrics  Metrics
	Logger   *zerolog.Logger
}

type Dispatcher struct {
	engine   *focus.Engine
	registry *Registry
	metrics  Metrics
	log      zerolog.Logger
}

// New builds a dispatcher and registers the core plugin ahead of any others.
func New(e *focus.Engine, cfg Config) (*Dispatcher, error) {
	if e == nil {
		return nil, ErrNilEngine
	}
	d := &Dispatcher{
		engine:   e,
		registry: NewRegistry(),
		metrics:  cfg.Metrics,
		log:      zerolog.Nop(),
	}
	if d.metrics == nil {
		d.metrics = nopMetrics{}
	}
	if cfg.Logger != nil {
		d.log = cfg.Logger.With().Str("component", "dispatch").Logger()
	}
	c := &core{registry: d.registry, resetter: cfg.Resetter}
	c.onReset = func(err error) {
		if err != nil {
			d.log.Error().Err(err).Msg("device reset failed")
			return
		}
		d.log.Info().Msg("device reset requested")
	}
	if err := d.registry.Register(c); err != nil {
		return nil, err
	}
	return d, nil
}

// Register appends a plugin to the dispatch order.
func (d *Dispatcher) Register(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := d.registry.Register(p); err != nil {
			return err
		}
		d.log.Debug().Str("plugin", p.Name()).Msg("plugin registered")
	}
	return nil
}

func (d *Dispatcher) Engine() *focus.Engine { return d.engine }

// OnFocusEvent offers input to the plugins. A help request reaches every
// plugin so each can list its commands; anything else stops at the first
// plugin that consumes it.
func (d *Dispatcher) OnFocusEvent(input string) bool {
	if d.engine.InputMatchesHelp(input) {
		for _, p := range d.registry.Plugins() {
			p.OnFocusEvent(d.engine, input)
		}
		return true
	}
	for _, p := range d.registry.Plugins() {
		if p.OnFocusEvent(d.engine, input) == Consumed {
			return true
		}
	}
	return false
}

// Cycle runs one control-loop tick. It reports whether a command was handled
// and any transmit error raised while answering it.
func (d *Dispatcher) Cycle() (bool, error) {
	d.engine.AfterEachCycle()
	if d.engine.Available() == 0 {
		return false, nil
	}
	if d.engine.IsEOL() {
		d.engine.DrainLine()
		return false, nil
	}

	handled := false
	input, ok := d.engine.ReadToken()
	if ok {
		handled = d.OnFocusEvent(input)
		d.metrics.Command(handled)
		d.log.Debug().Str("command", input).Bool("handled", handled).Msg("focus command")
	}

	d.engine.DrainLine()
	d.engine.EndResponse()
	return handled, d.engine.Flush()
}

// Run calls Cycle on every tick until ctx is done or a transmit error occurs.
func (d *Dispatcher) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.Cycle(); err != nil {
				return err
			}
		}
	}
}
