package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/catmux-radio/catmux/internal/catmux"
	"github.com/catmux-radio/catmux/internal/catproto"
	"github.com/catmux-radio/catmux/internal/catsim"
	"github.com/catmux-radio/catmux/internal/config"
	"github.com/catmux-radio/catmux/internal/endpoint"
	"github.com/catmux-radio/catmux/internal/metrics"
	"github.com/catmux-radio/catmux/internal/traffic"
	"golang.org/x/sync/errgroup"
)

const metaLookupTimeout = 250 * time.Millisecond

// bridgeTrafficLog feeds every MuxEvent into the observer-facing traffic
// log, grounded on cat-desktop's traffic monitor consuming the same event
// stream the core UI would.
func bridgeTrafficLog(ctx context.Context, events *catmux.EventBus, actor *catmux.Actor, log *traffic.Log) {
	sub := events.Subscribe()
	defer sub.Close()

	metaFor := func(handle catmux.RadioHandle) (catmux.RadioChannelMeta, bool) {
		qctx, cancel := context.WithTimeout(ctx, metaLookupTimeout)
		defer cancel()
		snap, ok := actor.QueryRadioState(qctx, handle)
		return snap.Meta, ok
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			log.ProcessEvent(event, metaFor)
		}
	}
}

// bridgeMetrics feeds every MuxEvent into the Prometheus counters/gauges,
// keeping the connected-radio gauge and election/translation counters in
// sync with the actor's authoritative event stream rather than duplicating
// that bookkeeping inside the actor itself.
func bridgeMetrics(ctx context.Context, events *catmux.EventBus, m *metrics.Metrics) {
	sub := events.Subscribe()
	defer sub.Close()

	connected := 0
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			switch event.Kind {
			case catmux.EventRadioConnected:
				connected++
				m.SetConnectedRadios(float64(connected))
			case catmux.EventRadioDisconnected:
				connected--
				m.SetConnectedRadios(float64(connected))
			case catmux.EventRadioDataIn:
				m.RecordCommandDecoded(event.Protocol.String(), "in")
			case catmux.EventActiveRadioChanged:
				m.RecordElectionSwitch()
			case catmux.EventSwitchingBlocked:
				m.RecordElectionBlock()
			case catmux.EventAmpDataOut:
				m.RecordTranslation("ok")
			case catmux.EventError:
				if event.Source == "translate" {
					m.RecordTranslation("error")
				}
			}
		}
	}
}

func protocolFromConfig(p config.Protocol) catproto.Protocol {
	switch p {
	case config.ProtocolYaesu:
		return catproto.ProtocolYaesu
	case config.ProtocolIcomCIV:
		return catproto.ProtocolIcomCIV
	case config.ProtocolElecraft:
		return catproto.ProtocolElecraft
	case config.ProtocolFlexRadio:
		return catproto.ProtocolFlexRadio
	case config.ProtocolKenwood:
		return catproto.ProtocolKenwood
	default:
		return catproto.ProtocolKenwood
	}
}

func switchingModeFromConfig(m config.SwitchingMode) catmux.SwitchingMode {
	switch m {
	case config.SwitchingModeManual:
		return catmux.SwitchingModeManual
	case config.SwitchingModeAutomatic:
		return catmux.SwitchingModeAutomatic
	case config.SwitchingModeFrequencyTriggered:
		return catmux.SwitchingModeFrequencyTriggered
	default:
		return catmux.SwitchingModeFrequencyTriggered
	}
}

// probeCommands is sent to every newly (re)connected radio endpoint so its
// last-known state is populated without waiting for unsolicited traffic.
func probeCommands() []catproto.RadioCommand {
	return []catproto.RadioCommand{
		{Kind: catproto.KindGetID},
		{Kind: catproto.KindGetFrequency},
		{Kind: catproto.KindGetMode},
	}
}

// reconnectCountingOpener wraps open so every call after the first counts
// as a reconnect for metrics purposes.
func reconnectCountingOpener(name string, open endpoint.Opener, onReconnect func(string)) endpoint.Opener {
	first := true
	return func() (endpoint.Endpoint, error) {
		if !first {
			onReconnect(name)
		}
		first = false
		return open()
	}
}

// wireRealRadio starts a Session against a physical serial port, registers
// it with the actor, and runs it under g until ctx is cancelled.
func wireRealRadio(ctx context.Context, g *errgroup.Group, actor *catmux.Actor, log *slog.Logger, reg *endpoint.Registry, onReconnect func(string), cfg config.ConfiguredRadio) error {
	protocol := protocolFromConfig(cfg.Protocol)

	handle, err := actor.RegisterRadio(ctx, catmux.RadioConfig{
		Name: cfg.Port, Port: cfg.Port, Protocol: protocol, Model: cfg.ModelName, CIVAddress: cfg.CIVAddress,
	})
	if err != nil {
		return fmt.Errorf("register radio %s: %w", cfg.Port, err)
	}

	probeCodec := catproto.NewCodec(protocol, cfg.CIVAddress)
	open := reconnectCountingOpener(cfg.Port, func() (endpoint.Endpoint, error) {
		return endpoint.OpenSerial(endpoint.SerialConfig{Path: cfg.Port, BaudRate: cfg.BaudRate})
	}, onReconnect)

	session := endpoint.NewSession(endpoint.SessionConfig{
		Name:     cfg.Port,
		Open:     open,
		OnData:   func(data []byte) { actor.RawRx(handle, data) },
		Probe:    probeCommands(),
		Encode:   probeCodec.Encode,
		Log:      log,
		Registry: reg,
	})

	g.Go(func() error {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			actor.ReportError(cfg.Port, err.Error())
		}
		return nil
	})
	return nil
}

// wireVirtualRadio backs a configured simulated radio with a VirtualPair:
// a Session on one end behaves exactly as it would against real hardware,
// while a VirtualRadio driven over the other end answers its queries.
func wireVirtualRadio(ctx context.Context, g *errgroup.Group, actor *catmux.Actor, log *slog.Logger, reg *endpoint.Registry, cfg config.VirtualRadio) error {
	protocol := protocolFromConfig(cfg.Protocol)

	handle, err := actor.RegisterRadio(ctx, catmux.RadioConfig{
		Name: cfg.Name, Port: catmux.VirtualEndpointPrefix + cfg.ID, Protocol: protocol, CIVAddress: cfg.CIVAddress, Simulated: true,
	})
	if err != nil {
		return fmt.Errorf("register virtual radio %s: %w", cfg.ID, err)
	}

	pair := endpoint.NewVirtualPair()
	sim := catsim.NewVirtualRadio(protocol, cfg.CIVAddress, cfg.ID, 0, catproto.ModeUsb)
	probeCodec := catproto.NewCodec(protocol, cfg.CIVAddress)

	session := endpoint.NewSession(endpoint.SessionConfig{
		Name:     cfg.ID,
		Open:     func() (endpoint.Endpoint, error) { return pair.A, nil },
		OnData:   func(data []byte) { actor.RawRx(handle, data) },
		Probe:    probeCommands(),
		Encode:   probeCodec.Encode,
		Log:      log,
		Registry: reg,
	})

	g.Go(func() error { return catsim.DriveRadio(ctx, pair.B, sim) })
	g.Go(func() error {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			actor.ReportError(cfg.ID, err.Error())
		}
		return nil
	})
	return nil
}

// wireRealAmplifier starts a Session against the physical amplifier port
// and attaches it to the actor, wiring the actor's outbound writes and the
// session's inbound reads to each other.
func wireRealAmplifier(ctx context.Context, g *errgroup.Group, actor *catmux.Actor, log *slog.Logger, reg *endpoint.Registry, onReconnect func(string), cfg config.Amplifier) error {
	protocol := protocolFromConfig(cfg.Protocol)

	open := reconnectCountingOpener(cfg.Port, func() (endpoint.Endpoint, error) {
		return endpoint.OpenSerial(endpoint.SerialConfig{Path: cfg.Port, BaudRate: cfg.BaudRate})
	}, onReconnect)

	session := endpoint.NewSession(endpoint.SessionConfig{
		Name:     cfg.Port,
		Open:     open,
		OnData:   actor.AmpRawRx,
		Log:      log,
		Registry: reg,
	})

	actor.AttachAmplifier(catmux.AmplifierConfig{
		Port: cfg.Port, Protocol: protocol, BaudRate: cfg.BaudRate, CIVAddress: cfg.CIVAddress,
		Write: session.Write,
	})

	g.Go(func() error {
		if err := session.Run(ctx); err != nil && ctx.Err() == nil {
			actor.ReportError(cfg.Port, err.Error())
		}
		return nil
	})
	return nil
}

// wireVirtualAmplifier attaches the in-process simulated amplifier,
// driving its poll/response traffic over a VirtualPair exactly as a real
// amplifier's bytes would flow, so the same translation and election code
// paths in Actor are exercised.
func wireVirtualAmplifier(ctx context.Context, g *errgroup.Group, actor *catmux.Actor, cfg config.Amplifier) error {
	protocol := protocolFromConfig(cfg.Protocol)
	pair := endpoint.NewVirtualPair()

	sim := catsim.NewVirtualAmp(protocol, cfg.CIVAddress, func(data []byte) error {
		_, err := pair.B.Write(data)
		return err
	})

	actor.AttachAmplifier(catmux.AmplifierConfig{
		Port: catmux.VirtualEndpointPrefix + "amplifier", Protocol: protocol, CIVAddress: cfg.CIVAddress, Simulated: true,
		Write: func(data []byte) error {
			_, err := pair.A.Write(data)
			return err
		},
	})

	g.Go(func() error { return sim.Run(ctx) })
	g.Go(func() error { return catsim.DriveAmp(ctx, pair.B, sim) })
	g.Go(func() error {
		buf := make([]byte, 4096)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			n, err := pair.A.ReadTimeout(buf, 100*time.Millisecond)
			if err != nil {
				continue
			}
			if n > 0 {
				actor.AmpRawRx(buf[:n])
			}
		}
	})
	return nil
}
