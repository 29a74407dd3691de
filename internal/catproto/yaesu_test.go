package catproto_test

import (
	"testing"

	"github.com/catmux-radio/catmux/internal/catproto"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestYaesuFrequencyRoundTrip(t *testing.T) {
	t.Parallel()
	enc := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	bytes, err := enc.Encode(catproto.SetFrequency(14250000))
	assert.NoError(t, err)
	assert.Len(t, bytes, 5)

	dec := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	dec.PushBytes(bytes)
	cmd, ok := dec.NextCommand()
	assert.True(t, ok)
	hz, _ := cmd.Frequency()
	assert.Equal(t, uint64(14250000), hz)
}

func TestYaesuModeRoundTrip(t *testing.T) {
	t.Parallel()
	enc := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	bytes, err := enc.Encode(catproto.SetMode(catproto.ModeUsb))
	assert.NoError(t, err)

	dec := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	dec.PushBytes(bytes)
	cmd, ok := dec.NextCommand()
	assert.True(t, ok)
	mode, _ := cmd.ModeOf()
	assert.Equal(t, catproto.ModeUsb, mode)
}

func TestYaesuFrequencyReportRoundTripIsExact(t *testing.T) {
	t.Parallel()
	want := catproto.FrequencyReport(50125000)

	enc := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	bytes, err := enc.Encode(want)
	assert.NoError(t, err)

	dec := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	dec.PushBytes(bytes)
	got, ok := dec.NextCommand()
	assert.True(t, ok)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frequency report changed across the wire (-want +got):\n%s", diff)
	}
}

func TestYaesuPttOpcodes(t *testing.T) {
	t.Parallel()
	dec := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	dec.PushBytes([]byte{0, 0, 0, 0, 0x08})
	cmd, ok := dec.NextCommand()
	assert.True(t, ok)
	active, _ := cmd.Ptt()
	assert.True(t, active)

	dec.PushBytes([]byte{0, 0, 0, 0, 0x88})
	cmd, ok = dec.NextCommand()
	assert.True(t, ok)
	active, _ = cmd.Ptt()
	assert.False(t, active)
}

func TestYaesuYieldsOneCommandPerFiveBytes(t *testing.T) {
	t.Parallel()
	dec := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	dec.PushBytes([]byte{0, 0, 0, 0, 0x08, 0, 0, 0, 0})
	_, ok := dec.NextCommand()
	assert.True(t, ok)
	_, ok = dec.NextCommand()
	assert.False(t, ok, "only 4 trailing bytes remain, not a full frame")
}

func TestYaesuUnknownOpcodePreservesRawFrame(t *testing.T) {
	t.Parallel()
	dec := catproto.NewCodec(catproto.ProtocolYaesu, nil)
	raw := []byte{0x12, 0x34, 0x56, 0x78, 0xAA}
	dec.PushBytes(raw)
	cmd, ok := dec.NextCommand()
	assert.True(t, ok)
	assert.Equal(t, catproto.KindUnknown, cmd.Kind)
	assert.Equal(t, raw, cmd.Raw)
}
