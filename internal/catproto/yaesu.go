package catproto

// Yaesu frames are fixed 5-byte binary blocks with no start/end markers: the
// codec simply consumes 5 buffered bytes at a time. Byte 4 is the opcode;
// bytes 0-3 carry a BCD payload when the opcode calls for one.
const yaesuFrameLen = 5

const (
	yaesuOpSetFrequency    = 0x01
	yaesuOpGetFrequency    = 0x02
	yaesuOpFrequencyReport = 0x81
	yaesuOpSetMode         = 0x07
	yaesuOpGetMode         = 0x06
	yaesuOpModeReport      = 0x87
	yaesuOpPttOn           = 0x08
	yaesuOpPttOff          = 0x88
)

var yaesuModeTable = [...]Mode{ModeLsb, ModeUsb, ModeCw, ModeCwR, ModeAm, ModeFm, ModeDig, ModePkt} //nolint:gochecknoglobals

func yaesuModeToCode(m Mode) (byte, bool) {
	for i, candidate := range yaesuModeTable {
		if candidate == m {
			return byte(i), true
		}
	}
	return 0, false
}

func yaesuCodeToMode(code byte) (Mode, bool) {
	if int(code) >= len(yaesuModeTable) {
		return 0, false
	}
	return yaesuModeTable[code], true
}

type yaesuCodec struct {
	buf []byte
}

func (y *yaesuCodec) pushBytes(data []byte) {
	y.buf = append(y.buf, data...)
}

func (y *yaesuCodec) nextCommand() (RadioCommand, bool) {
	if len(y.buf) < yaesuFrameLen {
		return RadioCommand{}, false
	}

	frame := y.buf[:yaesuFrameLen]
	y.buf = y.buf[yaesuFrameLen:]

	opcode := frame[4]
	switch opcode {
	case yaesuOpSetFrequency:
		return SetFrequency(yaesuDecodeBCDFreq(frame[:4])), true
	case yaesuOpFrequencyReport:
		return FrequencyReport(yaesuDecodeBCDFreq(frame[:4])), true
	case yaesuOpGetFrequency:
		return RadioCommand{Kind: KindGetFrequency}, true
	case yaesuOpSetMode:
		if mode, ok := yaesuCodeToMode(frame[0]); ok {
			return SetMode(mode), true
		}
	case yaesuOpModeReport:
		if mode, ok := yaesuCodeToMode(frame[0]); ok {
			return ModeReport(mode), true
		}
	case yaesuOpGetMode:
		return RadioCommand{Kind: KindGetMode}, true
	case yaesuOpPttOn:
		return SetPtt(true), true
	case yaesuOpPttOff:
		return SetPtt(false), true
	}

	return Unknown(frame), true
}

func (y *yaesuCodec) encode(cmd RadioCommand) ([]byte, error) {
	switch cmd.Kind {
	case KindSetFrequency:
		return yaesuEncodeFreqFrame(cmd.FrequencyHz, yaesuOpSetFrequency), nil
	case KindFrequencyReport:
		return yaesuEncodeFreqFrame(cmd.FrequencyHz, yaesuOpFrequencyReport), nil
	case KindGetFrequency:
		return []byte{0, 0, 0, 0, yaesuOpGetFrequency}, nil
	case KindSetMode:
		code, ok := yaesuModeToCode(cmd.Mode)
		if !ok {
			return nil, ErrUntranslatable
		}
		return []byte{code, 0, 0, 0, yaesuOpSetMode}, nil
	case KindModeReport:
		code, ok := yaesuModeToCode(cmd.Mode)
		if !ok {
			return nil, ErrUntranslatable
		}
		return []byte{code, 0, 0, 0, yaesuOpModeReport}, nil
	case KindGetMode:
		return []byte{0, 0, 0, 0, yaesuOpGetMode}, nil
	case KindSetPtt, KindPttReport:
		if cmd.PttActive {
			return []byte{0, 0, 0, 0, yaesuOpPttOn}, nil
		}
		return []byte{0, 0, 0, 0, yaesuOpPttOff}, nil
	case KindUnknown:
		if len(cmd.Raw) == yaesuFrameLen {
			return append([]byte(nil), cmd.Raw...), nil
		}
	}

	return nil, ErrUntranslatable
}

// yaesuDecodeBCDFreq decodes 4 BCD bytes in 10 Hz units into a frequency in Hz.
func yaesuDecodeBCDFreq(bcd []byte) uint64 {
	var freq uint64
	var multiplier uint64 = 10 // the classic Yaesu convention: least-significant unit is 10 Hz
	for i := len(bcd) - 1; i >= 0; i-- {
		low := uint64(bcd[i] & 0x0F)
		high := uint64(bcd[i]>>4) & 0x0F
		freq += low * multiplier
		multiplier *= 10
		freq += high * multiplier
		multiplier *= 10
	}
	return freq
}

// yaesuEncodeFreqFrame packs hz into 4 BCD bytes (10 Hz units) and appends opcode.
func yaesuEncodeFreqFrame(hz uint64, opcode byte) []byte {
	units := hz / 10
	frame := make([]byte, yaesuFrameLen)
	for i := 3; i >= 0; i-- {
		low := byte(units % 10)
		units /= 10
		high := byte(units % 10)
		units /= 10
		frame[i] = (high << 4) | low
	}
	frame[4] = opcode
	return frame
}
