// Package serialport adapts a real serial device to transport.Port.
//
// One reader goroutine moves bytes from the device into a bounded receive
// ring; every Port method is meant to be called from the single control-loop
// goroutine that owns the engine.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"github.com/danmuck/focusctl/internal/transport"
)

var ErrInvalidConfig = errors.New("serialport: invalid config")

// Conn is the subset of serial.Port the adapter needs.
type Conn interface {
	io.ReadWriteCloser
	Drain() error
}

// Config describes the device and the adapter's buffering.
type Config struct {
	Device      string
	BaudRate    int
	ReadTimeout time.Duration
	RxCapacity  int
}

func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		ReadTimeout: 50 * time.Millisecond,
		RxCapacity:  transport.DefaultRxCapacity,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Device) == "" {
		return fmt.Errorf("%w: missing device", ErrInvalidConfig)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidConfig, c.BaudRate)
	}
	// A zero timeout makes the device return empty reads at once and the
	// reader would spin.
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read timeout must be positive", ErrInvalidConfig)
	}
	if c.RxCapacity <= 0 {
		return fmt.Errorf("%w: rx capacity %d", ErrInvalidConfig, c.RxCapacity)
	}
	return nil
}

// Port is a transport.Port backed by a serial connection.
type Port struct {
	conn    Conn
	rx      *transport.Ring
	timeout time.Duration
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
	err    error
	done   chan struct{}
}

// Open opens cfg.Device in 8N1 mode and starts the reader.
func Open(cfg Config, log zerolog.Logger) (*Port, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sp, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Device, err)
	}
	if err := sp.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = sp.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", cfg.Device, err)
	}
	log.Info().Str("device", cfg.Device).Int("baud", cfg.BaudRate).Msg("serial port opened")
	return New(sp, cfg, log)
}

// New wraps an already open connection.
func New(conn Conn, cfg Config, log zerolog.Logger) (*Port, error) {
	rx, err := transport.NewRing(cfg.RxCapacity)
	if err != nil {
		return nil, err
	}
	p := &Port{
		conn:    conn,
		rx:      rx,
		timeout: cfg.ReadTimeout,
		log:     log.With().Str("component", "serialport").Logger(),
		done:    make(chan struct{}),
	}
	go p.readLoop()
	return p, nil
}

func (p *Port) readLoop() {
	defer close(p.done)
	buf := make([]byte, 64)
	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			if accepted := p.rx.Push(buf[:n]); accepted < n {
				p.log.Warn().Int("dropped", n-accepted).Msg("receive buffer overrun")
			}
		}
		if err != nil {
			p.mu.Lock()
			if !p.closed && !errors.Is(err, io.EOF) {
				p.err = err
				p.log.Error().Err(err).Msg("serial read failed")
			}
			p.mu.Unlock()
			return
		}
		if p.isClosed() {
			return
		}
	}
}

// wait blocks until a byte is buffered, the read timeout elapses, or the reader stops.
func (p *Port) wait() bool {
	if p.rx.Len() > 0 {
		return true
	}
	if p.timeout <= 0 {
		return false
	}
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	for p.rx.Len() == 0 {
		select {
		case <-p.rx.Ready():
		case <-p.done:
			return p.rx.Len() > 0
		case <-timer.C:
			return false
		}
	}
	return true
}

func (p *Port) Peek() (byte, bool) {
	if !p.wait() {
		return 0, false
	}
	return p.rx.Peek()
}

func (p *Port) Next() (byte, bool) {
	if !p.wait() {
		return 0, false
	}
	return p.rx.Pop()
}

func (p *Port) Available() int { return p.rx.Len() }

func (p *Port) WriteByte(b byte) error {
	if p.isClosed() {
		return transport.ErrClosed
	}
	_, err := p.conn.Write([]byte{b})
	return err
}

func (p *Port) Flush() error {
	if p.isClosed() {
		return transport.ErrClosed
	}
	return p.conn.Drain()
}

// Dropped returns the number of received bytes lost to overrun.
func (p *Port) Dropped() uint64 { return p.rx.Dropped() }

// Err returns the reader's terminal error, if any.
func (p *Port) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close stops the reader and closes the connection.
func (p *Port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	err := p.conn.Close()
	<-p.done
	return err
}

func (p *Port) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

var _ transport.Port = (*Port)(nil)
