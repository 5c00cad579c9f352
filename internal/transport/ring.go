package transport

import "sync"

// Ring is a fixed-capacity byte FIFO. When full, newly pushed bytes are
// dropped and counted, the way a UART overruns.
type Ring struct {
	mu      sync.Mutex
	data    []byte
	head    int // next pop
	count   int
	dropped uint64
	notify  chan struct{}
}

func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Ring{
		data:   make([]byte, capacity),
		notify: make(chan struct{}, 1),
	}, nil
}

// Push appends as many bytes as fit and returns how many were accepted.
func (r *Ring) Push(p []byte) int {
	r.mu.Lock()
	accepted := 0
	for _, b := range p {
		if r.count == len(r.data) {
			r.dropped++
			continue
		}
		r.data[(r.head+r.count)%len(r.data)] = b
		r.count++
		accepted++
	}
	r.mu.Unlock()
	if accepted > 0 {
		select {
		case r.notify <- struct{}{}:
		default:
		}
	}
	return accepted
}

func (r *Ring) Peek() (byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return 0, false
	}
	return r.data[r.head], true
}

func (r *Ring) Pop() (byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return 0, false
	}
	b := r.data[r.head]
	r.head = (r.head + 1) % len(r.data)
	r.count--
	return b, true
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Ring) Cap() int { return len(r.data) }

// Dropped returns the number of bytes lost to overflow.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Ready is signalled after a Push that stored at least one byte.
func (r *Ring) Ready() <-chan struct{} { return r.notify }
