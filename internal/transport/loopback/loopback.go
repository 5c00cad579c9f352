// Package loopback provides an in-memory transport.Port for host-side tests
// and simulations. Received bytes are injected by the caller; transmitted
// bytes and pacing delays are recorded in order.
package loopback

import (
	"strings"
	"sync"
	"time"

	"github.com/danmuck/focusctl/internal/protocol"
	"github.com/danmuck/focusctl/internal/transport"
)

// EventKind distinguishes recorded transmit events.
type EventKind uint8

const (
	EventByte EventKind = iota
	EventDelay
)

// Event is one recorded write or pacing delay.
type Event struct {
	Kind  EventKind
	Byte  byte
	Delay time.Duration
}

// Port implements transport.Port over an in-memory receive ring. It also
// implements the engine's pacer so delays interleave with written bytes.
type Port struct {
	mu       sync.Mutex
	rx       *transport.Ring
	events   []Event
	flushes  int
	writeErr error
}

// New creates a loopback port whose receive buffer holds rxCapacity bytes.
func New(rxCapacity int) (*Port, error) {
	rx, err := transport.NewRing(rxCapacity)
	if err != nil {
		return nil, err
	}
	return &Port{rx: rx}, nil
}

// Inject queues bytes as if they arrived from the host. Bytes beyond the
// receive capacity are dropped; the accepted count is returned.
func (p *Port) Inject(s string) int {
	return p.rx.Push([]byte(s))
}

func (p *Port) Peek() (byte, bool) { return p.rx.Peek() }
func (p *Port) Next() (byte, bool) { return p.rx.Pop() }
func (p *Port) Available() int     { return p.rx.Len() }

// Dropped returns the number of injected bytes lost to receive overflow.
func (p *Port) Dropped() uint64 { return p.rx.Dropped() }

func (p *Port) WriteByte(b byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return p.writeErr
	}
	p.events = append(p.events, Event{Kind: EventByte, Byte: b})
	return nil
}

func (p *Port) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushes++
	return p.writeErr
}

// Delay records a pacing delay without sleeping.
func (p *Port) Delay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Event{Kind: EventDelay, Delay: d})
}

// FailWrites makes every later write and flush return err. Pass nil to recover.
func (p *Port) FailWrites(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// Events returns a copy of everything recorded so far.
func (p *Port) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Written returns every transmitted byte, including flow-control bytes.
func (p *Port) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, 0, len(p.events))
	for _, ev := range p.events {
		if ev.Kind == EventByte {
			out = append(out, ev.Byte)
		}
	}
	return out
}

// Output returns transmitted text with flow-control bytes removed.
func (p *Port) Output() string {
	var b strings.Builder
	for _, c := range p.Written() {
		if c == protocol.XON || c == protocol.XOFF {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ControlBytes returns the XON/XOFF bytes transmitted, in order.
func (p *Port) ControlBytes() []byte {
	var out []byte
	for _, c := range p.Written() {
		if c == protocol.XON || c == protocol.XOFF {
			out = append(out, c)
		}
	}
	return out
}

// Lines splits Output into response lines. Documentation lines are kept
// unless dataOnly is set.
func (p *Port) Lines(dataOnly bool) []string {
	raw := strings.Split(p.Output(), protocol.LineEnd)
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if dataOnly && protocol.IsDocLine(line) {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// Flushes returns how many times Flush was called.
func (p *Port) Flushes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushes
}

// Reset clears recorded transmit events.
func (p *Port) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
	p.flushes = 0
}

var _ transport.Port = (*Port)(nil)
