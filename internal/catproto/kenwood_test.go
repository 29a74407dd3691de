package catproto_test

import (
	"testing"

	"github.com/catmux-radio/catmux/internal/catproto"
	"github.com/stretchr/testify/assert"
)

func TestKenwoodDecodeFrequency(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolKenwood, nil)
	codec.PushBytes([]byte("FA00014250000;"))
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	hz, _ := cmd.Frequency()
	assert.Equal(t, uint64(14250000), hz)
}

func TestKenwoodDecodeMode(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolElecraft, nil)
	codec.PushBytes([]byte("MD2;"))
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	mode, _ := cmd.ModeOf()
	assert.Equal(t, catproto.ModeUsb, mode)
}

func TestKenwoodPttCommands(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolKenwood, nil)
	codec.PushBytes([]byte("TX;RX;"))

	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	active, _ := cmd.Ptt()
	assert.True(t, active)

	cmd, ok = codec.NextCommand()
	assert.True(t, ok)
	active, _ = cmd.Ptt()
	assert.False(t, active)

	_, ok = codec.NextCommand()
	assert.False(t, ok)
}

func TestKenwoodHandlesFragmentation(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolKenwood, nil)
	codec.PushBytes([]byte("FA0001425"))
	_, ok := codec.NextCommand()
	assert.False(t, ok, "partial frame must not yield a command")

	codec.PushBytes([]byte("0000;"))
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	hz, _ := cmd.Frequency()
	assert.Equal(t, uint64(14250000), hz)
}

func TestFlexRadioZZPrefixNormalizes(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolFlexRadio, nil)
	codec.PushBytes([]byte("ZZFA00007150000;"))
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	hz, present := cmd.Frequency()
	assert.True(t, present)
	assert.Equal(t, uint64(7150000), hz)
}

func TestKenwoodUnrecognizedBecomesUnknown(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolKenwood, nil)
	codec.PushBytes([]byte("ZZ;"))
	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	assert.Equal(t, catproto.KindUnknown, cmd.Kind)
}

func TestKenwoodResyncsAfterGarbageStatement(t *testing.T) {
	t.Parallel()
	codec := catproto.NewCodec(catproto.ProtocolKenwood, nil)
	codec.PushBytes([]byte("XX;FA00014250000;"))

	garbage, ok := codec.NextCommand()
	assert.True(t, ok)
	assert.Equal(t, catproto.KindUnknown, garbage.Kind)

	cmd, ok := codec.NextCommand()
	assert.True(t, ok)
	assert.Equal(t, catproto.KindSetFrequency, cmd.Kind)
	assert.Equal(t, uint64(14250000), cmd.FrequencyHz)
}

func TestKenwoodEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []catproto.RadioCommand{
		catproto.SetFrequency(7150000),
		{Kind: catproto.KindIDReport, ID: "019"},
		catproto.SetMode(catproto.ModeCw),
		catproto.SetPtt(true),
		catproto.SetPtt(false),
		{Kind: catproto.KindGetFrequency},
		{Kind: catproto.KindGetMode},
		{Kind: catproto.KindEnableAutoInfo, AutoInfoOn: true},
		{Kind: catproto.KindControlBandReport, ControlBand: 1},
	}

	for _, original := range cases {
		enc := catproto.NewCodec(catproto.ProtocolKenwood, nil)
		bytes, err := enc.Encode(original)
		assert.NoError(t, err)

		dec := catproto.NewCodec(catproto.ProtocolKenwood, nil)
		dec.PushBytes(bytes)
		decoded, ok := dec.NextCommand()
		assert.True(t, ok)
		assert.Equal(t, original.Kind, decoded.Kind)
	}
}
