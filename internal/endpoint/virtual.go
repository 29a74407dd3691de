package endpoint

import (
	"sync"
	"time"
)

// VirtualPair is two in-memory endpoints wired together: bytes written to
// one side arrive as reads on the other. It stands in for a real serial
// cable when exercising the mux against a simulated radio or amplifier.
type VirtualPair struct {
	A Endpoint
	B Endpoint
}

// NewVirtualPair builds a connected pair of virtual endpoints.
func NewVirtualPair() *VirtualPair {
	ab := make(chan []byte, 256)
	ba := make(chan []byte, 256)
	return &VirtualPair{
		A: &virtualEndpoint{out: ab, in: ba},
		B: &virtualEndpoint{out: ba, in: ab},
	}
}

type virtualEndpoint struct {
	mu     sync.Mutex
	closed bool
	out    chan<- []byte
	in     <-chan []byte
	pend   []byte
}

func (v *virtualEndpoint) Write(data []byte) (int, error) {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return 0, ErrClosed
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	select {
	case v.out <- frame:
		return len(data), nil
	default:
		return 0, ErrTimeout
	}
}

func (v *virtualEndpoint) ReadTimeout(data []byte, timeout time.Duration) (int, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return 0, ErrClosed
	}
	if len(v.pend) > 0 {
		n := copy(data, v.pend)
		v.pend = v.pend[n:]
		v.mu.Unlock()
		return n, nil
	}
	v.mu.Unlock()

	select {
	case frame, ok := <-v.in:
		if !ok {
			return 0, ErrClosed
		}
		n := copy(data, frame)
		if n < len(frame) {
			v.mu.Lock()
			v.pend = frame[n:]
			v.mu.Unlock()
		}
		return n, nil
	case <-time.After(timeout):
		return 0, ErrTimeout
	}
}

func (v *virtualEndpoint) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.closed = true
	return nil
}
