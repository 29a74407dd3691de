package catproto_test

import (
	"testing"

	"github.com/catmux-radio/catmux/internal/catproto"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestIcomDecodeFrequencyFrame(t *testing.T) {
	t.Parallel()
	addr := uint8(0x94)
	codec := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	// 14.250.000 Hz as 5 little-endian BCD bytes.
	codec.PushBytes([]byte{0xFE, 0xFE, 0x94, 0xE0, 0x00, 0x00, 0x00, 0x25, 0x14, 0x00, 0xFD})
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	hz, present := cmd.Frequency()
	assert.True(t, present)
	assert.Equal(t, uint64(14250000), hz)
}

func TestIcomDecodeFrequencyFrameReadFreqAlt(t *testing.T) {
	t.Parallel()
	addr := uint8(0x94)
	codec := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	// Opcode 0x05 ("read freq alt") carries the same 5-byte little-endian
	// BCD payload as 0x00, with no leading sub-byte.
	codec.PushBytes([]byte{0xFE, 0xFE, 0x94, 0xE0, 0x05, 0x00, 0x00, 0x25, 0x14, 0x00, 0xFD})
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	assert.Equal(t, catproto.KindSetFrequency, cmd.Kind)
	hz, present := cmd.Frequency()
	assert.True(t, present)
	assert.Equal(t, uint64(14250000), hz)
}

func TestIcomDecodeModeFrameReadModeAlt(t *testing.T) {
	t.Parallel()
	addr := uint8(0x94)
	codec := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	// Opcode 0x06 ("read mode alt") carries the same single-byte mode code
	// as 0x01.
	codec.PushBytes([]byte{0xFE, 0xFE, 0x94, 0xE0, 0x06, 0x03, 0xFD})
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	mode, present := cmd.ModeOf()
	assert.True(t, present)
	assert.Equal(t, catproto.ModeCw, mode)
}

func TestIcomDiscardsFrameWithInvalidAddress(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolIcomCIV, nil)
	// 0xF1 is outside the valid 0x00..=0xEF address range.
	codec.PushBytes([]byte{0xFE, 0xFE, 0xF1, 0xE0, 0x03, 0xFD})
	codec.PushBytes([]byte{0xFE, 0xFE, 0x00, 0xE0, 0x03, 0xFD})
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	assert.Equal(t, catproto.KindGetFrequency, cmd.Kind)
}

func TestIcomResyncsOnMissingTerminator(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolIcomCIV, nil)
	garbage := make([]byte, 0, 300)
	garbage = append(garbage, 0xFE, 0xFE, 0x00, 0xE0, 0x00)
	for len(garbage) < 300 {
		garbage = append(garbage, 0x11)
	}
	codec.PushBytes(garbage)
	codec.PushBytes([]byte{0xFE, 0xFE, 0x00, 0xE0, 0x03, 0xFD})

	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	assert.Equal(t, catproto.KindGetFrequency, cmd.Kind)
}

func TestIcomModeRoundTrip(t *testing.T) {
	t.Parallel()
	addr := uint8(0x58)
	enc := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	bytes, err := enc.Encode(catproto.SetMode(catproto.ModeCw))
	assert.NoError(t, err)

	dec := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	dec.PushBytes(bytes)
	cmd, ok := dec.NextCommand()
	assert.True(t, ok)
	mode, _ := cmd.ModeOf()
	assert.Equal(t, catproto.ModeCw, mode)
}

func TestIcomSetFrequencyRoundTripIsExact(t *testing.T) {
	t.Parallel()
	addr := uint8(0x94)
	// CI-V has one opcode for both SetFrequency and FrequencyReport; the
	// decoder always yields SetFrequency, so that's the only command this
	// dialect can round-trip byte-for-byte back to its own Kind.
	want := catproto.SetFrequency(432175000)

	enc := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	bytes, err := enc.Encode(want)
	assert.NoError(t, err)

	dec := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	dec.PushBytes(bytes)
	got, ok := dec.NextCommand()
	assert.True(t, ok)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("set-frequency command changed across the wire (-want +got):\n%s", diff)
	}
}

func TestIcomPttRoundTrip(t *testing.T) {
	t.Parallel()
	addr := uint8(0x58)
	enc := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	bytes, err := enc.Encode(catproto.SetPtt(true))
	assert.NoError(t, err)

	dec := catproto.NewCodec(catproto.ProtocolIcomCIV, &addr)
	dec.PushBytes(bytes)
	cmd, ok := dec.NextCommand()
	assert.True(t, ok)
	active, present := cmd.Ptt()
	assert.True(t, present)
	assert.True(t, active)
}
