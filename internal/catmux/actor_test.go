package catmux_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/catmux-radio/catmux/internal/catmux"
	"github.com/catmux-radio/catmux/internal/catproto"
	"github.com/catmux-radio/catmux/internal/catsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingWriter records every frame written to it, safe for concurrent use.
type capturingWriter struct {
	mu     sync.Mutex
	frames [][]byte
}

func (w *capturingWriter) write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	w.frames = append(w.frames, frame)
	return nil
}

func (w *capturingWriter) all() [][]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]byte, len(w.frames))
	copy(out, w.frames)
	return out
}

func startTestActor(t *testing.T, mode catmux.SwitchingMode, lockout time.Duration) (*catmux.Actor, *catmux.EventBus) {
	t.Helper()
	bus := catmux.NewEventBus()
	actor := catmux.NewActor(bus, mode, lockout, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go actor.Run(ctx)
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
	})
	return actor, bus
}

func drainEvents(t *testing.T, sub *catmux.EventSubscription, n int, timeout time.Duration) []catmux.MuxEvent {
	t.Helper()
	events := make([]catmux.MuxEvent, 0, n)
	deadline := time.After(timeout)
	for len(events) < n {
		select {
		case e := <-sub.Events():
			events = append(events, e)
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d: %+v", n, len(events), events)
		}
	}
	return events
}

// Scenario 1: Kenwood frequency pass-through.
func TestScenarioKenwoodFrequencyPassThrough(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeFrequencyTriggered, 500*time.Millisecond)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	radio, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 1, time.Second) // RadioConnected

	amp := &capturingWriter{}
	actor.AttachAmplifier(catmux.AmplifierConfig{Protocol: catproto.ProtocolKenwood, Simulated: true, Write: amp.write})
	drainEvents(t, sub, 1, time.Second) // AmpConnected

	actor.SetActiveRadio(radio)
	drainEvents(t, sub, 1, time.Second) // ActiveRadioChanged

	actor.RawRx(radio, []byte("FA00014250000;"))

	events := drainEvents(t, sub, 3, time.Second) // RadioDataIn, RadioStateChanged, AmpDataOut
	assert.Equal(t, catmux.EventRadioDataIn, events[0].Kind)
	assert.Equal(t, catmux.EventRadioStateChanged, events[1].Kind)
	require.NotNil(t, events[1].FrequencyHz)
	assert.Equal(t, uint64(14250000), *events[1].FrequencyHz)
	assert.Equal(t, catmux.EventAmpDataOut, events[2].Kind)

	snap, ok := actor.QueryRadioState(ctx, radio)
	require.True(t, ok)
	require.NotNil(t, snap.FrequencyHz)
	assert.Equal(t, uint64(14250000), *snap.FrequencyHz)

	frames := amp.all()
	require.Len(t, frames, 1)
	assert.Equal(t, "FA00014250000;", string(frames[0]))
}

// Scenario 2: lockout denies a second radio.
func TestScenarioLockoutDeniesSecondRadio(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeFrequencyTriggered, 500*time.Millisecond)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	r1, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R1", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	r2, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R2", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 2, time.Second) // two RadioConnected

	amp := &capturingWriter{}
	actor.AttachAmplifier(catmux.AmplifierConfig{Protocol: catproto.ProtocolKenwood, Simulated: true, Write: amp.write})
	drainEvents(t, sub, 1, time.Second)

	actor.SetActiveRadio(r1)
	drainEvents(t, sub, 1, time.Second)

	actor.RawRx(r2, []byte("FA00007150000;"))
	events := drainEvents(t, sub, 2, time.Second) // RadioDataIn, RadioStateChanged; the election event follows

	assert.Equal(t, catmux.EventRadioDataIn, events[0].Kind)
	assert.Equal(t, catmux.EventRadioStateChanged, events[1].Kind)

	// r2's frequency changed for the first time, so it IS a candidate and
	// should be blocked by r1's still-active lockout window.
	blocked := drainEvents(t, sub, 1, time.Second)[0]
	assert.Equal(t, catmux.EventSwitchingBlocked, blocked.Kind)
	assert.Equal(t, r2, blocked.Requested)
	assert.Equal(t, r1, blocked.Current)

	snap, ok := actor.QueryRadioState(ctx, r2)
	require.True(t, ok)
	require.NotNil(t, snap.FrequencyHz)
	assert.Equal(t, uint64(7150000), *snap.FrequencyHz)
	assert.False(t, snap.IsActive)

	assert.Empty(t, amp.all(), "amp must not receive a frame for the blocked radio")
}

// Scenario 3: Icom CI-V to Kenwood translation.
func TestScenarioIcomToKenwoodTranslation(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeFrequencyTriggered, 500*time.Millisecond)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	addr := uint8(0x94)
	radio, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R", Protocol: catproto.ProtocolIcomCIV, CIVAddress: &addr, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 1, time.Second)

	amp := &capturingWriter{}
	actor.AttachAmplifier(catmux.AmplifierConfig{Protocol: catproto.ProtocolKenwood, Simulated: true, Write: amp.write})
	drainEvents(t, sub, 1, time.Second)

	actor.SetActiveRadio(radio)
	drainEvents(t, sub, 1, time.Second)

	actor.RawRx(radio, []byte{0xFE, 0xFE, 0x94, 0x00, 0x00, 0x00, 0x00, 0x25, 0x14, 0x00, 0xFD})
	drainEvents(t, sub, 3, time.Second) // RadioDataIn, RadioStateChanged, AmpDataOut

	snap, ok := actor.QueryRadioState(ctx, radio)
	require.True(t, ok)
	require.NotNil(t, snap.FrequencyHz)
	assert.Equal(t, uint64(14250000), *snap.FrequencyHz)

	frames := amp.all()
	require.Len(t, frames, 1)
	assert.Equal(t, "FA00014250000;", string(frames[0]))
}

// Scenario 6: manual override ignores lockout.
func TestScenarioManualOverrideIgnoresLockout(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeFrequencyTriggered, 500*time.Millisecond)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	r1, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R1", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	r2, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R2", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 2, time.Second)

	actor.SetActiveRadio(r1)
	first := drainEvents(t, sub, 1, time.Second)[0]
	assert.Equal(t, catmux.EventActiveRadioChanged, first.Kind)
	assert.Equal(t, r1, first.To)

	actor.SetActiveRadio(r2)
	second := drainEvents(t, sub, 1, time.Second)[0]
	assert.Equal(t, catmux.EventActiveRadioChanged, second.Kind)
	require.NotNil(t, second.From)
	assert.Equal(t, r1, *second.From)
	assert.Equal(t, r2, second.To)

	snap, ok := actor.QueryRadioState(ctx, r2)
	require.True(t, ok)
	assert.True(t, snap.IsActive)
}

// Scenario 4: auto-info echo from a virtual radio.
func TestScenarioAutoInfoEcho(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeFrequencyTriggered, 500*time.Millisecond)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	radio, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "V", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 1, time.Second)

	amp := &capturingWriter{}
	actor.AttachAmplifier(catmux.AmplifierConfig{Protocol: catproto.ProtocolKenwood, Simulated: true, Write: amp.write})
	drainEvents(t, sub, 1, time.Second)

	actor.SetActiveRadio(radio)
	drainEvents(t, sub, 1, time.Second)

	v := catsim.NewVirtualRadio(catproto.ProtocolKenwood, nil, "V", 14250000, catproto.ModeUsb)
	v.SetAutoInfo(true)
	v.Control(catproto.SetFrequency(7074000))

	for _, frame := range v.TakeOutput() {
		actor.RawRx(radio, frame)
	}

	events := drainEvents(t, sub, 3, time.Second) // RadioDataIn, RadioStateChanged, AmpDataOut
	assert.Equal(t, catmux.EventRadioDataIn, events[0].Kind)
	assert.Equal(t, catmux.EventRadioStateChanged, events[1].Kind)
	require.NotNil(t, events[1].FrequencyHz)
	assert.Equal(t, uint64(7074000), *events[1].FrequencyHz)
	assert.Equal(t, catmux.EventAmpDataOut, events[2].Kind)

	frames := amp.all()
	require.Len(t, frames, 1)
	assert.Equal(t, "FA00007074000;", string(frames[0]))
}

func TestListRadiosReturnsEverySnapshot(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeManual, 0)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	r1, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R1", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	r2, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R2", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 2, time.Second)

	snaps, err := actor.ListRadios(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	handles := map[catmux.RadioHandle]bool{}
	for _, s := range snaps {
		handles[s.Handle] = true
	}
	assert.True(t, handles[r1])
	assert.True(t, handles[r2])
}

func TestIDReportUpdatesRadioModel(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeManual, 0)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	radio, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 1, time.Second) // RadioConnected

	actor.RawRx(radio, []byte("ID019;"))
	events := drainEvents(t, sub, 2, time.Second) // RadioDataIn, RadioStateChanged
	assert.Equal(t, catmux.EventRadioDataIn, events[0].Kind)
	assert.Equal(t, catmux.EventRadioStateChanged, events[1].Kind)
	require.NotNil(t, events[1].Model)
	assert.Equal(t, "019", *events[1].Model)

	snap, ok := actor.QueryRadioState(ctx, radio)
	require.True(t, ok)
	assert.Equal(t, "019", snap.Meta.Model)
}

func TestUnregisterRadioEmitsDisconnected(t *testing.T) {
	t.Parallel()
	actor, bus := startTestActor(t, catmux.SwitchingModeManual, 0)
	sub := bus.Subscribe()
	defer sub.Close()

	ctx := context.Background()
	radio, err := actor.RegisterRadio(ctx, catmux.RadioConfig{Name: "R", Protocol: catproto.ProtocolKenwood, Simulated: true})
	require.NoError(t, err)
	drainEvents(t, sub, 1, time.Second)

	actor.UnregisterRadio(radio)
	event := drainEvents(t, sub, 1, time.Second)[0]
	assert.Equal(t, catmux.EventRadioDisconnected, event.Kind)
	assert.Equal(t, radio, event.Handle)

	_, ok := actor.QueryRadioState(ctx, radio)
	assert.False(t, ok)
}
