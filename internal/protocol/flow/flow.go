// Package flow owns receive-side software flow control.
//
// The controller is a two-state machine with hysteresis: it pauses the remote
// sender once the receive backlog reaches the pause watermark and resumes it
// only after the backlog has drained to the resume watermark.
package flow

import (
	"errors"
	"fmt"

	"github.com/danmuck/focusctl/internal/protocol"
)

var ErrInvalidWatermarks = errors.New("flow: invalid watermarks")

// State is the remote sender's flow state as last signalled by us.
type State uint8

const (
	Open State = iota
	Paused
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Config holds the backlog thresholds in bytes.
type Config struct {
	ResumeWatermark int
	PauseWatermark  int
}

// DefaultConfig returns the reference thresholds for a 64 byte receive buffer.
func DefaultConfig() Config {
	return Config{
		ResumeWatermark: 4,
		PauseWatermark:  32,
	}
}

func (c Config) Validate() error {
	if c.ResumeWatermark < 0 {
		return fmt.Errorf("%w: resume watermark %d is negative", ErrInvalidWatermarks, c.ResumeWatermark)
	}
	if c.PauseWatermark <= c.ResumeWatermark {
		return fmt.Errorf("%w: pause watermark %d must exceed resume watermark %d",
			ErrInvalidWatermarks, c.PauseWatermark, c.ResumeWatermark)
	}
	return nil
}

// Controller tracks flow state. The zero value is not usable; call New.
type Controller struct {
	cfg     Config
	state   State
	pauses  uint64
	resumes uint64
}

func New(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg, state: Open}, nil
}

// Check evaluates one backlog observation and returns the control byte owed
// to the remote sender, if any. Only the edges Open->Paused and Paused->Open
// produce a byte. The state does not change until Commit.
func (c *Controller) Check(backlog int) (byte, bool) {
	switch c.state {
	case Open:
		if backlog >= c.cfg.PauseWatermark {
			return protocol.XOFF, true
		}
	case Paused:
		if backlog <= c.cfg.ResumeWatermark {
			return protocol.XON, true
		}
	}
	return 0, false
}

// Commit records that ctrl reached the remote sender. Bytes that do not match
// the pending edge are ignored.
func (c *Controller) Commit(ctrl byte) {
	switch {
	case ctrl == protocol.XOFF && c.state == Open:
		c.state = Paused
		c.pauses++
	case ctrl == protocol.XON && c.state == Paused:
		c.state = Open
		c.resumes++
	}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Config() Config { return c.cfg }

// Transitions returns how many XOFF and XON bytes have been committed.
func (c *Controller) Transitions() (pauses, resumes uint64) {
	return c.pauses, c.resumes
}
