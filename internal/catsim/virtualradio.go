// Package catsim implements simulated radios and amplifiers used for
// local testing and demos, so the mux can be exercised without any real
// hardware attached.
package catsim

import (
	"sync"

	"github.com/catmux-radio/catmux/internal/catproto"
)

// VirtualRadio holds the state a simulated radio would report over the
// air: protocol, identity, frequency, mode, PTT, and an optional
// auto-info flag. HandleCommand mutates that state and may enqueue a
// reply frame; TakeOutput drains replies in FIFO order.
type VirtualRadio struct {
	mu sync.Mutex

	protocol   catproto.Protocol
	civAddress *uint8
	identity   string
	codec      catproto.Codec

	frequencyHz uint64
	mode        catproto.Mode
	ptt         bool
	autoInfo    bool

	output [][]byte
}

// NewVirtualRadio constructs a simulated radio speaking the given
// protocol, starting at the given frequency/mode.
func NewVirtualRadio(protocol catproto.Protocol, civAddress *uint8, identity string, frequencyHz uint64, mode catproto.Mode) *VirtualRadio {
	return &VirtualRadio{
		protocol:    protocol,
		civAddress:  civAddress,
		identity:    identity,
		codec:       catproto.NewCodec(protocol, civAddress),
		frequencyHz: frequencyHz,
		mode:        mode,
	}
}

// SetAutoInfo toggles whether Sets are echoed as unsolicited reports.
func (v *VirtualRadio) SetAutoInfo(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.autoInfo = on
}

// Control applies a command as if it arrived over the radio's control
// channel (e.g. from a UI), enqueuing an unsolicited report when
// auto-info is enabled. This is the entry point scenario 4 exercises.
func (v *VirtualRadio) Control(cmd catproto.RadioCommand) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.apply(cmd)
	if v.autoInfo {
		v.enqueueReportLocked(cmd)
	}
}

// HandleCommand applies an inbound command received over the wire
// (queries and sets alike) and enqueues any reply the radio owes:
// queries always reply, sets reply only when auto-info is enabled.
func (v *VirtualRadio) HandleCommand(cmd catproto.RadioCommand) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handleLocked(cmd)
}

func (v *VirtualRadio) handleLocked(cmd catproto.RadioCommand) {
	switch cmd.Kind {
	case catproto.KindGetFrequency:
		v.enqueueLocked(catproto.FrequencyReport(v.frequencyHz))
		return
	case catproto.KindGetMode:
		v.enqueueLocked(catproto.ModeReport(v.mode))
		return
	case catproto.KindGetPtt:
		v.enqueueLocked(catproto.PttReport(v.ptt))
		return
	case catproto.KindGetID:
		v.enqueueLocked(catproto.RadioCommand{Kind: catproto.KindIDReport, ID: v.identity})
		return
	case catproto.KindGetAutoInfo:
		v.enqueueLocked(catproto.RadioCommand{Kind: catproto.KindAutoInfoReport, AutoInfoOn: v.autoInfo})
		return
	case catproto.KindEnableAutoInfo:
		v.autoInfo = cmd.AutoInfoOn
		return
	}

	v.apply(cmd)
	if v.autoInfo {
		v.enqueueReportLocked(cmd)
	}
}

func (v *VirtualRadio) apply(cmd catproto.RadioCommand) {
	switch cmd.Kind {
	case catproto.KindSetFrequency, catproto.KindFrequencyReport:
		v.frequencyHz = cmd.FrequencyHz
	case catproto.KindSetMode, catproto.KindModeReport:
		v.mode = cmd.Mode
	case catproto.KindSetPtt, catproto.KindPttReport:
		v.ptt = cmd.PttActive
	}
}

func (v *VirtualRadio) enqueueReportLocked(cmd catproto.RadioCommand) {
	switch cmd.Kind {
	case catproto.KindSetFrequency, catproto.KindFrequencyReport:
		v.enqueueLocked(catproto.FrequencyReport(v.frequencyHz))
	case catproto.KindSetMode, catproto.KindModeReport:
		v.enqueueLocked(catproto.ModeReport(v.mode))
	case catproto.KindSetPtt, catproto.KindPttReport:
		v.enqueueLocked(catproto.PttReport(v.ptt))
	}
}

func (v *VirtualRadio) enqueueLocked(cmd catproto.RadioCommand) {
	bytes, err := v.codec.Encode(cmd)
	if err != nil {
		return
	}
	v.output = append(v.output, bytes)
}

// Receive decodes raw wire bytes arriving from a session (a query or a
// control command addressed to this radio) and handles each extracted
// command, enqueueing any reply frames owed.
func (v *VirtualRadio) Receive(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.codec.PushBytes(data)
	for {
		cmd, ok := v.codec.NextCommand()
		if !ok {
			return
		}
		if cmd.Kind == catproto.KindUnknown {
			continue
		}
		v.handleLocked(cmd)
	}
}

// TakeOutput drains and returns every queued reply frame in FIFO order.
func (v *VirtualRadio) TakeOutput() [][]byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.output
	v.output = nil
	return out
}

// Snapshot returns the radio's current state.
func (v *VirtualRadio) Snapshot() (frequencyHz uint64, mode catproto.Mode, ptt bool, autoInfo bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frequencyHz, v.mode, v.ptt, v.autoInfo
}
