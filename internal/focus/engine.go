package focus

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/focusctl/internal/protocol"
	"github.com/danmuck/focusctl/internal/protocol/flow"
	"github.com/danmuck/focusctl/internal/transport"
)

// Engine is the single protocol responder bound to one serial port.
type Engine struct {
	port    transport.Port
	flow    *flow.Controller
	pacer   Pacer
	metrics Metrics
	log     zerolog.Logger

	charDelay    time.Duration
	lineCapacity int

	scratch []byte
	err     error
}

func New(port transport.Port, cfg Config) (*Engine, error) {
	if port == nil {
		return nil, ErrNilPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fc, err := flow.New(cfg.Flow)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		port:         port,
		flow:         fc,
		pacer:        cfg.Pacer,
		metrics:      cfg.Metrics,
		log:          zerolog.Nop(),
		charDelay:    cfg.CharDelay,
		lineCapacity: cfg.LineCapacity,
		scratch:      make([]byte, 0, 64),
	}
	if e.pacer == nil {
		e.pacer = SleepPacer{}
	}
	if e.metrics == nil {
		e.metrics = nopMetrics{}
	}
	if cfg.Logger != nil {
		e.log = cfg.Logger.With().Str("component", "focus").Logger()
	}
	return e, nil
}

// ManageFlowControl compares the receive backlog against the watermarks and
// transmits XOFF or XON on a state edge. The state only changes once the
// control byte is written; a failed write leaves it owed for the next check.
// Control bytes are not paced.
func (e *Engine) ManageFlowControl() {
	ctrl, emit := e.flow.Check(e.port.Available())
	if !emit {
		return
	}
	if err := e.port.WriteByte(ctrl); err != nil {
		e.fail(err)
		return
	}
	e.flow.Commit(ctrl)
	state := e.flow.State()
	e.metrics.FlowTransition(state)
	e.log.Debug().Stringer("flow", state).Int("backlog", e.port.Available()).Msg("flow control transition")
}

// AfterEachCycle is the per-tick hook.
func (e *Engine) AfterEachCycle() {
	e.ManageFlowControl()
}

// FlowState reports the last signalled flow state.
func (e *Engine) FlowState() flow.State { return e.flow.State() }

// Available returns the receive backlog.
func (e *Engine) Available() int { return e.port.Available() }

// Err returns the first transmit error since the last Flush.
func (e *Engine) Err() error { return e.err }

// Flush flushes the port and returns, then clears, any latched transmit error.
func (e *Engine) Flush() error {
	err := e.err
	e.err = nil
	if ferr := e.port.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func (e *Engine) fail(err error) {
	if e.err == nil {
		e.err = err
		e.log.Error().Err(err).Msg("transmit failed")
	}
}

// InputMatchesCommand is an exact, case-sensitive comparison.
func (e *Engine) InputMatchesCommand(input, expected string) bool {
	return input == expected
}

// InputMatchesHelp reports whether input is the reserved help keyword.
func (e *Engine) InputMatchesHelp(input string) bool {
	return e.InputMatchesCommand(input, protocol.HelpCommand)
}

func isRejected(err error) bool {
	return errors.Is(err, protocol.ErrTokenTooLong)
}
