// Package endpoint wraps the physical and virtual transports a radio or
// amplifier is reachable over behind one small interface, so the mux actor
// never has to know whether it is talking to a serial port or a simulated
// peer.
package endpoint

import (
	"errors"
	"time"
)

// ErrClosed is returned by Write/ReadTimeout once the endpoint has been
// closed.
var ErrClosed = errors.New("endpoint: closed")

// ErrTimeout is returned by ReadTimeout when no data arrived before the
// deadline. It is not a failure of the link itself.
var ErrTimeout = errors.New("endpoint: read timeout")

// Endpoint is the capability every transport a radio or amplifier can live
// behind must provide. A serial port and an in-memory virtual peer satisfy
// it identically, so nothing above this package special-cases either one.
type Endpoint interface {
	Write(data []byte) (int, error)
	ReadTimeout(data []byte, timeout time.Duration) (int, error)
	Close() error
}

// Opener constructs a fresh Endpoint, used by Session to re-establish a
// link after it drops.
type Opener func() (Endpoint, error)
