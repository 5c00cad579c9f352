// Package transport owns the byte-level contract between the focus engine and
// a serial link, plus the bounded receive buffer adapters share.
package transport

import "errors"

var (
	ErrClosed          = errors.New("transport: port closed")
	ErrInvalidCapacity = errors.New("transport: invalid buffer capacity")
)

// DefaultRxCapacity mirrors a typical UART receive buffer.
const DefaultRxCapacity = 64

// Port is the byte-level serial link seen by the engine.
//
// Peek and Next report false when no byte arrives; an adapter may wait up
// to its own read timeout before giving up. Available never blocks.
type Port interface {
	Peek() (byte, bool)
	Next() (byte, bool)
	Available() int
	WriteByte(b byte) error
	Flush() error
}
