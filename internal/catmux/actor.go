package catmux

import (
	"context"
	"log/slog"
	"time"

	"github.com/catmux-radio/catmux/internal/catproto"
)

// RadioConfig describes a radio endpoint being registered with the actor.
type RadioConfig struct {
	Name       string
	Port       string
	Protocol   catproto.Protocol
	Model      string
	CIVAddress *uint8
	Simulated  bool
}

// AmplifierConfig describes the amplifier endpoint being attached.
type AmplifierConfig struct {
	Port            string
	Protocol        catproto.Protocol
	BaudRate        uint32
	CIVAddress      *uint8
	AutoInfoEnabled bool
	Simulated       bool
	// Write sends encoded amplifier-dialect bytes to the amp's writer task.
	Write func([]byte) error
}

// RadioSnapshot is a synchronous, point-in-time view of one radio, returned
// by QueryRadioState.
type RadioSnapshot struct {
	Handle      RadioHandle
	Meta        RadioChannelMeta
	FrequencyHz *uint64
	Mode        *catproto.Mode
	Ptt         bool
	IsActive    bool
}

type actorMsgKind int

const (
	msgRegisterRadio actorMsgKind = iota
	msgUnregisterRadio
	msgAttachAmplifier
	msgDetachAmplifier
	msgSetActiveRadio
	msgSetSwitchingMode
	msgRawRx
	msgAmpRawRx
	msgQueryRadioState
	msgListRadios
	msgUpdateRadioMeta
	msgReportError
	msgShutdown
)

type actorMsg struct {
	kind actorMsgKind

	radioCfg      RadioConfig
	registerReply chan RadioHandle

	ampCfg AmplifierConfig

	handle RadioHandle
	name   string

	mode SwitchingMode

	bytes []byte

	snapshotReply chan *RadioSnapshot
	listReply     chan []RadioSnapshot

	source  string
	message string

	done chan struct{}
}

type radioEntry struct {
	record *RadioRecord
	codec  catproto.Codec
}

type ampEntry struct {
	record *AmplifierRecord
	codec  catproto.Codec
	write  func([]byte) error
}

// Actor is the single-threaded multiplexer core. It owns every mutable
// piece of mux state; all access happens through its mailbox, so nothing
// here needs locking.
type Actor struct {
	mailbox  chan actorMsg
	events   *EventBus
	log      *slog.Logger
	handles  HandleAllocator
	radios   map[RadioHandle]*radioEntry
	amp      *ampEntry
	election *ElectionState
}

// NewActor constructs an Actor. Run must be called to start processing.
func NewActor(events *EventBus, mode SwitchingMode, lockout time.Duration, log *slog.Logger) *Actor {
	if log == nil {
		log = slog.Default()
	}
	return &Actor{
		mailbox:  make(chan actorMsg, 256),
		events:   events,
		log:      log,
		radios:   make(map[RadioHandle]*radioEntry),
		election: NewElectionState(mode, lockout),
	}
}

// Run processes the mailbox until ctx is canceled or a Shutdown is
// requested. It never panics on endpoint failures: those are surfaced as
// Error events.
func (a *Actor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.mailbox:
			if msg.kind == msgShutdown {
				if msg.done != nil {
					close(msg.done)
				}
				return
			}
			a.handle(msg)
		}
	}
}

// Shutdown drains the actor and stops Run, blocking until it has exited.
func (a *Actor) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	select {
	case a.mailbox <- actorMsg{kind: msgShutdown, done: done}:
	case <-ctx.Done():
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// RegisterRadio registers a new radio endpoint and returns its handle.
func (a *Actor) RegisterRadio(ctx context.Context, cfg RadioConfig) (RadioHandle, error) {
	reply := make(chan RadioHandle, 1)
	select {
	case a.mailbox <- actorMsg{kind: msgRegisterRadio, radioCfg: cfg, registerReply: reply}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case handle := <-reply:
		return handle, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// UnregisterRadio removes a previously registered radio.
func (a *Actor) UnregisterRadio(handle RadioHandle) {
	a.mailbox <- actorMsg{kind: msgUnregisterRadio, handle: handle}
}

// AttachAmplifier attaches the (possibly virtual) amplifier endpoint.
func (a *Actor) AttachAmplifier(cfg AmplifierConfig) {
	a.mailbox <- actorMsg{kind: msgAttachAmplifier, ampCfg: cfg}
}

// DetachAmplifier detaches the amplifier endpoint, if any.
func (a *Actor) DetachAmplifier() {
	a.mailbox <- actorMsg{kind: msgDetachAmplifier}
}

// SetActiveRadio manually overrides the active radio, bypassing lockout.
func (a *Actor) SetActiveRadio(handle RadioHandle) {
	a.mailbox <- actorMsg{kind: msgSetActiveRadio, handle: handle}
}

// SetSwitchingMode changes the election policy.
func (a *Actor) SetSwitchingMode(mode SwitchingMode) {
	a.mailbox <- actorMsg{kind: msgSetSwitchingMode, mode: mode}
}

// RawRx delivers newly received bytes from a radio's reader task.
func (a *Actor) RawRx(handle RadioHandle, data []byte) {
	a.mailbox <- actorMsg{kind: msgRawRx, handle: handle, bytes: data}
}

// AmpRawRx delivers newly received bytes from the amplifier's reader task.
func (a *Actor) AmpRawRx(data []byte) {
	a.mailbox <- actorMsg{kind: msgAmpRawRx, bytes: data}
}

// QueryRadioState synchronously snapshots one radio's state.
func (a *Actor) QueryRadioState(ctx context.Context, handle RadioHandle) (RadioSnapshot, bool) {
	reply := make(chan *RadioSnapshot, 1)
	select {
	case a.mailbox <- actorMsg{kind: msgQueryRadioState, handle: handle, snapshotReply: reply}:
	case <-ctx.Done():
		return RadioSnapshot{}, false
	}
	select {
	case snap := <-reply:
		if snap == nil {
			return RadioSnapshot{}, false
		}
		return *snap, true
	case <-ctx.Done():
		return RadioSnapshot{}, false
	}
}

// ListRadios synchronously snapshots every registered radio, in no
// particular order.
func (a *Actor) ListRadios(ctx context.Context) ([]RadioSnapshot, error) {
	reply := make(chan []RadioSnapshot, 1)
	select {
	case a.mailbox <- actorMsg{kind: msgListRadios, listReply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case snaps := <-reply:
		return snaps, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// UpdateRadioMeta updates the display name of a registered radio.
func (a *Actor) UpdateRadioMeta(handle RadioHandle, name string) {
	a.mailbox <- actorMsg{kind: msgUpdateRadioMeta, handle: handle, name: name}
}

// ReportError surfaces an endpoint-level error as an Error event.
func (a *Actor) ReportError(source, message string) {
	a.mailbox <- actorMsg{kind: msgReportError, source: source, message: message}
}

func (a *Actor) handle(msg actorMsg) {
	switch msg.kind {
	case msgRegisterRadio:
		a.handleRegisterRadio(msg)
	case msgUnregisterRadio:
		a.handleUnregisterRadio(msg.handle)
	case msgAttachAmplifier:
		a.handleAttachAmplifier(msg.ampCfg)
	case msgDetachAmplifier:
		a.handleDetachAmplifier()
	case msgSetActiveRadio:
		a.handleSetActiveRadio(msg.handle)
	case msgSetSwitchingMode:
		a.election.Mode = msg.mode
		a.publish(MuxEvent{Kind: EventSwitchingModeChanged, Timestamp: time.Now(), SwitchingMode: msg.mode})
	case msgRawRx:
		a.handleRawRx(msg.handle, msg.bytes)
	case msgAmpRawRx:
		a.handleAmpRawRx(msg.bytes)
	case msgQueryRadioState:
		a.handleQueryRadioState(msg.handle, msg.snapshotReply)
	case msgListRadios:
		a.handleListRadios(msg.listReply)
	case msgUpdateRadioMeta:
		a.handleUpdateRadioMeta(msg.handle, msg.name)
	case msgReportError:
		a.publish(MuxEvent{Kind: EventError, Timestamp: time.Now(), Source: msg.source, Message: msg.message})
	}
}

func (a *Actor) handleRegisterRadio(msg actorMsg) {
	handle := a.handles.Next()
	record := NewRadioRecord(handle, msg.radioCfg.Name, msg.radioCfg.Port, msg.radioCfg.Protocol, msg.radioCfg.Simulated)
	record.Model = msg.radioCfg.Model
	record.CIVAddress = msg.radioCfg.CIVAddress
	a.radios[handle] = &radioEntry{
		record: record,
		codec:  catproto.NewCodec(msg.radioCfg.Protocol, msg.radioCfg.CIVAddress),
	}

	var meta RadioChannelMeta
	if msg.radioCfg.Simulated {
		meta = NewSimulatedRadioChannelMeta(msg.radioCfg.Name, msg.radioCfg.Port, msg.radioCfg.Protocol, msg.radioCfg.CIVAddress)
	} else {
		meta = NewRealRadioChannelMeta(msg.radioCfg.Name, msg.radioCfg.Port, msg.radioCfg.Protocol, msg.radioCfg.CIVAddress)
	}
	meta.Model = msg.radioCfg.Model
	a.publish(MuxEvent{Kind: EventRadioConnected, Timestamp: time.Now(), Handle: handle, Meta: meta})

	if msg.registerReply != nil {
		msg.registerReply <- handle
	}
}

func (a *Actor) handleUnregisterRadio(handle RadioHandle) {
	if _, ok := a.radios[handle]; !ok {
		return
	}
	delete(a.radios, handle)
	a.publish(MuxEvent{Kind: EventRadioDisconnected, Timestamp: time.Now(), Handle: handle})
}

func (a *Actor) handleAttachAmplifier(cfg AmplifierConfig) {
	a.amp = &ampEntry{
		record: &AmplifierRecord{
			Port:       cfg.Port,
			Protocol:   cfg.Protocol,
			BaudRate:   cfg.BaudRate,
			CIVAddress: cfg.CIVAddress,
			Emulated:   AmplifierEmulatedState{AutoInfoEnabled: cfg.AutoInfoEnabled},
		},
		codec: catproto.NewCodec(cfg.Protocol, cfg.CIVAddress),
		write: cfg.Write,
	}
	meta := AmplifierChannelMeta{Port: cfg.Port, Protocol: cfg.Protocol, BaudRate: cfg.BaudRate, CIVAddress: cfg.CIVAddress, Simulated: cfg.Simulated}
	a.publish(MuxEvent{Kind: EventAmpConnected, Timestamp: time.Now(), AmpMeta: meta})
}

func (a *Actor) handleDetachAmplifier() {
	if a.amp == nil {
		return
	}
	a.amp = nil
	a.publish(MuxEvent{Kind: EventAmpDisconnected, Timestamp: time.Now()})
}

func (a *Actor) handleSetActiveRadio(handle RadioHandle) {
	if _, ok := a.radios[handle]; !ok {
		return
	}
	from := a.election.Active
	result := a.election.SetActiveManual(handle, time.Now())
	if result.Switched {
		a.publishActiveRadioChanged(from, handle)
	}
}

func (a *Actor) handleUpdateRadioMeta(handle RadioHandle, name string) {
	entry, ok := a.radios[handle]
	if !ok || name == "" {
		return
	}
	entry.record.Name = name
}

func (a *Actor) handleQueryRadioState(handle RadioHandle, reply chan *RadioSnapshot) {
	entry, ok := a.radios[handle]
	if !ok {
		reply <- nil
		return
	}
	reply <- &RadioSnapshot{
		Handle:      handle,
		Meta:        a.metaFor(entry),
		FrequencyHz: entry.record.FrequencyHz,
		Mode:        entry.record.Mode,
		Ptt:         entry.record.Ptt,
		IsActive:    a.election.Active == handle,
	}
}

func (a *Actor) handleListRadios(reply chan []RadioSnapshot) {
	snaps := make([]RadioSnapshot, 0, len(a.radios))
	for handle, entry := range a.radios {
		snaps = append(snaps, RadioSnapshot{
			Handle:      handle,
			Meta:        a.metaFor(entry),
			FrequencyHz: entry.record.FrequencyHz,
			Mode:        entry.record.Mode,
			Ptt:         entry.record.Ptt,
			IsActive:    a.election.Active == handle,
		})
	}
	reply <- snaps
}

func (a *Actor) metaFor(entry *radioEntry) RadioChannelMeta {
	var meta RadioChannelMeta
	if entry.record.IsSimulated {
		meta = NewSimulatedRadioChannelMeta(entry.record.Name, entry.record.Port, entry.record.Protocol, entry.record.CIVAddress)
	} else {
		meta = NewRealRadioChannelMeta(entry.record.Name, entry.record.Port, entry.record.Protocol, entry.record.CIVAddress)
	}
	meta.Model = entry.record.Model
	return meta
}

// handleRawRx implements the RawRx step function from §4.E: push bytes into
// the radio's codec, normalize each extracted command, update the
// RadioRecord idempotently, run the election, and emit events.
func (a *Actor) handleRawRx(handle RadioHandle, data []byte) {
	entry, ok := a.radios[handle]
	if !ok {
		return
	}
	now := time.Now()
	a.publish(MuxEvent{Kind: EventRadioDataIn, Timestamp: now, Handle: handle, Data: data, Protocol: entry.record.Protocol})

	entry.codec.PushBytes(data)
	for {
		cmd, ok := entry.codec.NextCommand()
		if !ok {
			break
		}
		if cmd.Kind == catproto.KindUnknown {
			continue
		}
		a.applyCommand(handle, entry, cmd, now)
	}
}

func (a *Actor) applyCommand(handle RadioHandle, entry *radioEntry, cmd catproto.RadioCommand, now time.Time) {
	var freqChanged, modeChanged, pttChanged, pttRising, modelChanged bool
	var newFreq *uint64
	var newMode *catproto.Mode
	var newPtt *bool
	var newModel *string

	if cmd.Kind == catproto.KindIDReport {
		if entry.record.SetModel(cmd.ID) {
			modelChanged = true
			model := entry.record.Model
			newModel = &model
		}
	}

	if hz, ok := cmd.Frequency(); ok {
		if entry.record.SetFrequency(hz) {
			freqChanged = true
			newFreq = &hz
		}
	}
	if m, ok := cmd.ModeOf(); ok {
		if entry.record.SetMode(m) {
			modeChanged = true
			newMode = &m
		}
	}
	if p, ok := cmd.Ptt(); ok {
		prevPtt := entry.record.Ptt
		if entry.record.SetPtt(p) {
			pttChanged = true
			newPtt = &p
			if p && !prevPtt {
				pttRising = true
			}
		}
	}

	if freqChanged || modeChanged || pttChanged || modelChanged {
		a.publish(MuxEvent{
			Kind: EventRadioStateChanged, Timestamp: now, Handle: handle,
			FrequencyHz: newFreq, Mode: newMode, Ptt: newPtt, Model: newModel,
		})
	}

	if a.election.ShouldConsiderCandidate(freqChanged, pttRising) {
		from := a.election.Active
		result := a.election.EvaluateCandidate(handle, now)
		switch {
		case result.Switched:
			a.publishActiveRadioChanged(from, handle)
		case result.Blocked:
			a.publish(MuxEvent{
				Kind: EventSwitchingBlocked, Timestamp: now,
				Requested: result.Requested, Current: result.Current, RemainingMS: result.RemainingMS,
			})
		}
	}

	if a.election.Active == handle {
		a.translateToAmp(cmd)
	}
}

func (a *Actor) publishActiveRadioChanged(from, to RadioHandle) {
	var fromPtr *RadioHandle
	if from != 0 {
		fromPtr = &from
	}
	a.publish(MuxEvent{Kind: EventActiveRadioChanged, Timestamp: time.Now(), From: fromPtr, To: to})
}

// translateToAmp implements §4.G's "translation on active-radio activity":
// Set*/Report commands that mutate frequency, mode, or PTT are translated
// to the amplifier's dialect and written out, updating the amp's emulated
// state so later queries can be answered without round-tripping upstream.
func (a *Actor) translateToAmp(cmd catproto.RadioCommand) {
	if a.amp == nil || !TranslatesEveryAmpProtocol(cmd.Kind) {
		return
	}
	bytes, err := Translate(cmd, a.amp.record.Protocol, a.amp.record.CIVAddress)
	if err != nil {
		a.publish(MuxEvent{Kind: EventError, Timestamp: time.Now(), Source: "translate", Message: err.Error()})
		return
	}
	if hz, ok := cmd.Frequency(); ok {
		a.amp.record.Emulated.FrequencyHz = &hz
	}
	if m, ok := cmd.ModeOf(); ok {
		a.amp.record.Emulated.Mode = &m
	}
	if p, ok := cmd.Ptt(); ok {
		a.amp.record.Emulated.Ptt = p
	}
	if a.amp.write != nil {
		if err := a.amp.write(bytes); err != nil {
			a.publish(MuxEvent{Kind: EventError, Timestamp: time.Now(), Source: "amp-writer", Message: err.Error()})
			return
		}
	}
	a.publish(MuxEvent{Kind: EventAmpDataOut, Timestamp: time.Now(), Data: bytes, Protocol: a.amp.record.Protocol})
}

// handleAmpRawRx answers amplifier queries from the AmplifierRecord's
// emulated state (never re-querying the active radio), and tracks
// EnableAutoInfo toggles from the amp.
func (a *Actor) handleAmpRawRx(data []byte) {
	if a.amp == nil {
		return
	}
	now := time.Now()
	a.publish(MuxEvent{Kind: EventAmpDataIn, Timestamp: now, Data: data, Protocol: a.amp.record.Protocol})

	a.amp.codec.PushBytes(data)
	for {
		cmd, ok := a.amp.codec.NextCommand()
		if !ok {
			break
		}
		switch cmd.Kind {
		case catproto.KindEnableAutoInfo:
			a.amp.record.Emulated.AutoInfoEnabled = cmd.AutoInfoOn
		case catproto.KindGetFrequency:
			if a.amp.record.Emulated.AutoInfoEnabled {
				continue
			}
			a.respondAmpQuery(catproto.FrequencyReport(valueOrZero(a.amp.record.Emulated.FrequencyHz)))
		case catproto.KindGetMode:
			if a.amp.record.Emulated.AutoInfoEnabled {
				continue
			}
			if a.amp.record.Emulated.Mode != nil {
				a.respondAmpQuery(catproto.ModeReport(*a.amp.record.Emulated.Mode))
			}
		case catproto.KindGetPtt:
			if a.amp.record.Emulated.AutoInfoEnabled {
				continue
			}
			a.respondAmpQuery(catproto.PttReport(a.amp.record.Emulated.Ptt))
		}
	}
}

func (a *Actor) respondAmpQuery(cmd catproto.RadioCommand) {
	if a.amp == nil || a.amp.write == nil {
		return
	}
	bytes, err := a.amp.codec.Encode(cmd)
	if err != nil {
		return
	}
	if err := a.amp.write(bytes); err != nil {
		a.publish(MuxEvent{Kind: EventError, Timestamp: time.Now(), Source: "amp-writer", Message: err.Error()})
		return
	}
	a.publish(MuxEvent{Kind: EventAmpDataOut, Timestamp: time.Now(), Data: bytes, Protocol: a.amp.record.Protocol})
}

func valueOrZero(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}

func (a *Actor) publish(event MuxEvent) {
	if a.events == nil {
		return
	}
	if err := a.events.Publish(event); err != nil {
		a.log.Warn("failed to publish mux event", "error", err)
	}
}
