package endpoint

import (
	"context"
	"log/slog"
	"time"

	"github.com/catmux-radio/catmux/internal/catproto"
	"github.com/go-co-op/gocron/v2"
)

// Session owns one Endpoint's lifetime: it keeps the link open, relays
// incoming bytes to onData, and reopens the link on a backoff schedule
// after it drops. Real and virtual endpoints are handled identically; only
// the Opener differs.
type Session struct {
	name        string
	open        Opener
	onData      func([]byte)
	readTimeout time.Duration
	reconnect   time.Duration
	probe       []catproto.RadioCommand
	encode      func(catproto.RadioCommand) ([]byte, error)
	log         *slog.Logger
	registry    *Registry

	cancel context.CancelFunc
	done   chan struct{}

	writeCh chan writeRequest
}

type writeRequest struct {
	data  []byte
	reply chan error
}

// probeTimeout bounds how long runProbe waits for a reply to each connect-
// time query, per §4.D ("wait up to 1 s each").
const probeTimeout = 1 * time.Second

// SessionConfig configures a Session.
type SessionConfig struct {
	Name        string
	Open        Opener
	OnData      func([]byte)
	ReadTimeout time.Duration
	Reconnect   time.Duration
	Probe       []catproto.RadioCommand
	Encode      func(catproto.RadioCommand) ([]byte, error)
	Log         *slog.Logger
	Registry    *Registry
}

// NewSession constructs a Session. Call Run to start it.
func NewSession(cfg SessionConfig) *Session {
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 100 * time.Millisecond
	}
	reconnect := cfg.Reconnect
	if reconnect <= 0 {
		reconnect = 5 * time.Second
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		name:        cfg.Name,
		open:        cfg.Open,
		onData:      cfg.OnData,
		readTimeout: readTimeout,
		reconnect:   reconnect,
		probe:       cfg.Probe,
		encode:      cfg.Encode,
		log:         log,
		registry:    cfg.Registry,
		writeCh:     make(chan writeRequest),
	}
}

// Write sends data out over the currently open link, blocking until the
// write loop has accepted it and returned the endpoint's write result.
// While the link is down between reconnect attempts, Write blocks until a
// new link is open; it returns ErrClosed only once Run has returned.
func (s *Session) Write(data []byte) error {
	reply := make(chan error, 1)
	req := writeRequest{data: data, reply: reply}
	select {
	case s.writeCh <- req:
		return <-reply
	case <-s.done:
		return ErrClosed
	}
}

// Run drives the session until ctx is cancelled. Each connection attempt
// runs reader and writer loops over one Endpoint instance; when the
// endpoint's read loop observes a hard failure, Run tears it down and
// schedules a reconnect via gocron before opening a new one.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	defer close(s.done)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	defer func() { _ = scheduler.Shutdown() }()
	scheduler.Start()

	for {
		ep, err := s.open()
		if err != nil {
			s.log.Warn("endpoint open failed, backing off", "endpoint", s.name, "error", err, "retry_in", s.reconnect)
			if s.registry != nil {
				s.registry.SetDisconnected(s.name, err)
			}
			if !s.waitReconnect(ctx, scheduler) {
				return ctx.Err()
			}
			continue
		}

		s.log.Info("endpoint connected", "endpoint", s.name)
		if s.registry != nil {
			s.registry.SetConnected(s.name)
		}
		s.runProbe(ep)
		connErr := s.runConnection(ctx, ep)
		_ = ep.Close()
		if connErr == nil {
			if s.registry != nil {
				s.registry.SetDisconnected(s.name, nil)
			}
			return nil
		}
		s.log.Warn("endpoint link dropped, reconnecting", "endpoint", s.name, "error", connErr)
		if s.registry != nil {
			s.registry.SetDisconnected(s.name, connErr)
		}
		if !s.waitReconnect(ctx, scheduler) {
			return ctx.Err()
		}
	}
}

func (s *Session) waitReconnect(ctx context.Context, scheduler gocron.Scheduler) bool {
	fired := make(chan struct{}, 1)
	job, err := scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(s.reconnect))),
		gocron.NewTask(func() { fired <- struct{}{} }),
	)
	if err != nil {
		select {
		case <-time.After(s.reconnect):
			return true
		case <-ctx.Done():
			return false
		}
	}
	defer func() { _ = scheduler.RemoveJob(job.ID()) }()
	select {
	case <-fired:
		return true
	case <-ctx.Done():
		return false
	}
}

// runProbe sends a handful of state queries on connect, each waiting up to
// probeTimeout for a reply, and ignores failures: a radio that doesn't
// answer one simply stays unknown until traffic arrives. Replies are
// forwarded to onData so the mux actor captures them (model, frequency,
// mode) through the same decode path as ordinary traffic.
func (s *Session) runProbe(ep Endpoint) {
	if s.encode == nil {
		return
	}
	probe := s.probe
	if len(probe) == 0 {
		probe = []catproto.RadioCommand{
			{Kind: catproto.KindGetID},
			{Kind: catproto.KindGetFrequency},
			{Kind: catproto.KindGetMode},
		}
	}
	buf := make([]byte, 256)
	for _, cmd := range probe {
		bytes, err := s.encode(cmd)
		if err != nil {
			continue
		}
		if _, err := ep.Write(bytes); err != nil {
			s.log.Debug("probe command failed", "endpoint", s.name, "kind", cmd.Kind, "error", err)
			continue
		}
		if !s.awaitProbeReply(ep, buf) {
			s.log.Debug("probe command got no reply within timeout", "endpoint", s.name, "kind", cmd.Kind)
		}
	}
}

// awaitProbeReply blocks until the endpoint produces bytes in response to a
// just-sent probe query or probeTimeout elapses, whichever comes first. It
// reports whether a reply arrived.
func (s *Session) awaitProbeReply(ep Endpoint, buf []byte) bool {
	deadline := time.Now().Add(probeTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		timeout := s.readTimeout
		if timeout > remaining {
			timeout = remaining
		}
		n, err := ep.ReadTimeout(buf, timeout)
		if err != nil {
			if err == ErrTimeout {
				continue
			}
			return false
		}
		if n > 0 {
			if s.onData != nil {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				s.onData(chunk)
			}
			return true
		}
	}
}

func (s *Session) runConnection(ctx context.Context, ep Endpoint) error {
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			select {
			case <-ctx.Done():
				readErr <- nil
				return
			default:
			}
			n, err := ep.ReadTimeout(buf, s.readTimeout)
			if err != nil {
				if err == ErrTimeout {
					continue
				}
				readErr <- err
				return
			}
			if n > 0 && s.onData != nil {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				s.onData(chunk)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case req := <-s.writeCh:
			_, err := ep.Write(req.data)
			req.reply <- err
		}
	}
}
