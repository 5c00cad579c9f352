package focus

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/focusctl/internal/protocol"
	"github.com/danmuck/focusctl/internal/protocol/flow"
)

var (
	ErrNilPort       = errors.New("focus: nil port")
	ErrInvalidConfig = errors.New("focus: invalid config")
)

// DefaultCharDelay is the pause after every transmitted character. Some host
// serial stacks drop bytes when single characters arrive back to back.
const DefaultCharDelay = 100 * time.Microsecond

// Pacer waits between transmitted characters.
type Pacer interface {
	Delay(d time.Duration)
}

// SleepPacer paces with time.Sleep.
type SleepPacer struct{}

func (SleepPacer) Delay(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Metrics receives engine events. Implementations must be cheap.
type Metrics interface {
	FlowTransition(state flow.State)
	BytesSent(n int)
	TokenRejected()
}

type nopMetrics struct{}

func (nopMetrics) FlowTransition(flow.State) {}
func (nopMetrics) BytesSent(int)             {}
func (nopMetrics) TokenRejected()            {}

// Config configures an Engine. Zero-valued collaborators fall back to defaults.
type Config struct {
	CharDelay    time.Duration
	LineCapacity int
	Flow         flow.Config

	Pacer   Pacer
	Metrics Metrics
	Logger  *zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		CharDelay:    DefaultCharDelay,
		LineCapacity: protocol.DefaultLineCapacity,
		Flow:         flow.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if c.CharDelay < 0 {
		return fmt.Errorf("%w: negative char delay", ErrInvalidConfig)
	}
	if c.LineCapacity <= 0 {
		return fmt.Errorf("%w: line capacity %d", ErrInvalidConfig, c.LineCapacity)
	}
	if err := c.Flow.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
