package catsim

import (
	"context"
	"time"

	"github.com/catmux-radio/catmux/internal/catproto"
	"github.com/go-co-op/gocron/v2"
)

// PollInterval is how often a VirtualAmp polls the radio it is attached
// to when auto-info is unavailable or disabled.
const PollInterval = 500 * time.Millisecond

// VirtualAmp simulates an amplifier that tracks a radio's frequency,
// mode, and PTT either by receiving unsolicited reports (when the radio
// has auto-info enabled) or by round-robin polling GetFrequency,
// GetMode, and GetPtt otherwise.
type VirtualAmp struct {
	protocol    catproto.Protocol
	civAddress  *uint8
	codec       catproto.Codec
	write       func([]byte) error
	autoInfo    bool
	frequencyHz uint64
	mode        catproto.Mode
	ptt         bool

	pollKind int
}

// NewVirtualAmp constructs a simulated amplifier. write is called with
// encoded query frames while polling.
func NewVirtualAmp(protocol catproto.Protocol, civAddress *uint8, write func([]byte) error) *VirtualAmp {
	return &VirtualAmp{
		protocol:   protocol,
		civAddress: civAddress,
		codec:      catproto.NewCodec(protocol, civAddress),
		write:      write,
	}
}

// HandleCommand applies an inbound report or query answer from the
// radio to the amp's tracked state.
func (a *VirtualAmp) HandleCommand(cmd catproto.RadioCommand) {
	switch cmd.Kind {
	case catproto.KindFrequencyReport:
		a.frequencyHz = cmd.FrequencyHz
	case catproto.KindModeReport:
		a.mode = cmd.Mode
	case catproto.KindPttReport:
		a.ptt = cmd.PttActive
	case catproto.KindAutoInfoReport:
		a.autoInfo = cmd.AutoInfoOn
	}
}

// Receive decodes raw wire bytes arriving from the mux (a query answer or
// unsolicited report) and applies each extracted command to the amp's
// tracked state.
func (a *VirtualAmp) Receive(data []byte) {
	a.codec.PushBytes(data)
	for {
		cmd, ok := a.codec.NextCommand()
		if !ok {
			return
		}
		if cmd.Kind == catproto.KindUnknown {
			continue
		}
		a.HandleCommand(cmd)
	}
}

// State returns the amp's currently tracked radio state.
func (a *VirtualAmp) State() (frequencyHz uint64, mode catproto.Mode, ptt bool) {
	return a.frequencyHz, a.mode, a.ptt
}

// Run starts the round-robin polling loop and blocks until ctx is
// cancelled. It is a no-op once auto-info is enabled, since unsolicited
// reports keep the amp's state current without polling.
func (a *VirtualAmp) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	defer func() { _ = scheduler.Shutdown() }()

	_, err = scheduler.NewJob(
		gocron.DurationJob(PollInterval),
		gocron.NewTask(func() { a.pollOnce() }),
	)
	if err != nil {
		return err
	}
	scheduler.Start()

	<-ctx.Done()
	return nil
}

func (a *VirtualAmp) pollOnce() {
	if a.autoInfo || a.write == nil {
		return
	}
	queries := [...]catproto.RadioCommand{
		{Kind: catproto.KindGetFrequency},
		{Kind: catproto.KindGetMode},
		{Kind: catproto.KindGetPtt},
	}
	cmd := queries[a.pollKind%len(queries)]
	a.pollKind++

	bytes, err := a.codec.Encode(cmd)
	if err != nil {
		return
	}
	_ = a.write(bytes)
}
