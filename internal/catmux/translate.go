package catmux

import "github.com/catmux-radio/catmux/internal/catproto"

// Translate renders srcCmd as wire bytes for the amplifier's dialect. It is
// pure: no I/O, no shared state, and it produces at most one amplifier frame
// per input command. The Yaesu binary dialect is not supported as an
// amplifier target; all its commands return ErrUnsupportedAmpProtocol.
func Translate(srcCmd catproto.RadioCommand, ampProtocol catproto.Protocol, ampCIVAddress *uint8) ([]byte, error) {
	if ampProtocol == catproto.ProtocolYaesu {
		return nil, catproto.ErrUnsupportedAmpProtocol
	}

	codec := catproto.NewCodec(ampProtocol, ampCIVAddress)
	return codec.Encode(srcCmd)
}

// TranslatesEveryAmpProtocol reports whether kind is one of the command
// kinds §4.G requires to translate successfully for every supported
// amplifier dialect (frequency, mode, and PTT set/report commands).
func TranslatesEveryAmpProtocol(kind catproto.Kind) bool {
	switch kind {
	case catproto.KindSetFrequency, catproto.KindSetMode, catproto.KindSetPtt,
		catproto.KindFrequencyReport, catproto.KindModeReport, catproto.KindPttReport:
		return true
	default:
		return false
	}
}
