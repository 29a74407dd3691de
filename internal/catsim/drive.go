package catsim

import (
	"context"
	"time"
)

// wireEndpoint is the minimal duck-typed surface drive.go needs from
// internal/endpoint.Endpoint, so this package doesn't have to import it.
type wireEndpoint interface {
	Write(data []byte) (int, error)
	ReadTimeout(data []byte, timeout time.Duration) (int, error)
}

const driveReadTimeout = 100 * time.Millisecond
const driveBufferSize = 512

// DriveRadio pumps bytes between ep and radio until ctx is cancelled: bytes
// read from ep are handed to radio.Receive, and any reply frames radio
// queues are written back out over ep. Use this to back a configured
// virtual radio with a real endpoint.Session on the other end of a
// VirtualPair.
func DriveRadio(ctx context.Context, ep wireEndpoint, radio *VirtualRadio) error {
	buf := make([]byte, driveBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := ep.ReadTimeout(buf, driveReadTimeout)
		if err != nil {
			continue
		}
		if n > 0 {
			radio.Receive(buf[:n])
			for _, frame := range radio.TakeOutput() {
				if _, werr := ep.Write(frame); werr != nil {
					return werr
				}
			}
		}
	}
}

// DriveAmp pumps bytes between ep and amp until ctx is cancelled: bytes
// read from ep (responses from the mux) are handed to amp.Receive, while
// amp.Run (started separately) writes its own poll queries out over ep.
func DriveAmp(ctx context.Context, ep wireEndpoint, amp *VirtualAmp) error {
	buf := make([]byte, driveBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := ep.ReadTimeout(buf, driveReadTimeout)
		if err != nil {
			continue
		}
		if n > 0 {
			amp.Receive(buf[:n])
		}
	}
}
