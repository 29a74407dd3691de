package catproto

// Icom CI-V frames are binary and self-delimiting: 0xFE 0xFE <to> <from> <cmd>
// [<sub>] [<data...>] 0xFD. The codec scans for the two-byte preamble,
// locates the next terminator, and parses in between.
const (
	icomPreamble         = 0xFE
	icomTerminator       = 0xFD
	icomMaxAddress       = 0xEF
	icomControllerAddr   = 0xE0
	icomMaxPendingBuffer = 256 // drop and resync if no terminator found within this many bytes
)

const (
	icomCmdSetFrequency = 0x00
	icomCmdSetMode      = 0x01
	icomCmdGetFrequency = 0x03
	icomCmdGetMode      = 0x04
	icomCmdReadFreqAlt  = 0x05
	icomCmdReadModeAlt  = 0x06
	icomCmdTransceiverID = 0x1C
	icomSubPtt          = 0x00
)

var icomModeTable = map[byte]Mode{ //nolint:gochecknoglobals
	0x00: ModeLsb,
	0x01: ModeUsb,
	0x02: ModeAm,
	0x03: ModeCw,
	0x04: ModeRtty,
	0x05: ModeFm,
	0x07: ModeCwR,
	0x08: ModeRttyR,
}

func icomModeToCode(m Mode) (byte, bool) {
	for code, candidate := range icomModeTable {
		if candidate == m {
			return code, true
		}
	}
	return 0, false
}

func icomCodeToMode(b byte) (Mode, bool) {
	mode, ok := icomModeTable[b]
	return mode, ok
}

// icomCodec talks CI-V to a single device address.
type icomCodec struct {
	selfAddress byte // the CI-V address of the device this codec is bound to
	buf         []byte
}

func (c *icomCodec) pushBytes(data []byte) {
	c.buf = append(c.buf, data...)
}

func (c *icomCodec) nextCommand() (RadioCommand, bool) {
	for {
		idx := indexOfPreamble(c.buf)
		if idx < 0 {
			if len(c.buf) > 1 {
				c.buf = c.buf[len(c.buf)-1:]
			}
			return RadioCommand{}, false
		}
		if idx > 0 {
			c.buf = c.buf[idx:]
		}

		if len(c.buf) < 5 {
			return RadioCommand{}, false
		}
		to, from := c.buf[2], c.buf[3]
		if to > icomMaxAddress || from > icomMaxAddress {
			c.buf = c.buf[2:]
			continue
		}

		fdPos := -1
		for i := 4; i < len(c.buf) && i < icomMaxPendingBuffer; i++ {
			if c.buf[i] == icomTerminator {
				fdPos = i
				break
			}
		}
		if fdPos < 0 {
			if len(c.buf) > icomMaxPendingBuffer {
				c.buf = c.buf[2:]
				continue
			}
			return RadioCommand{}, false
		}

		frame := append([]byte(nil), c.buf[:fdPos+1]...)
		c.buf = c.buf[fdPos+1:]
		return icomDecodeFrame(frame), true
	}
}

func indexOfPreamble(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == icomPreamble && buf[i+1] == icomPreamble {
			return i
		}
	}
	return -1
}

func icomDecodeFrame(frame []byte) RadioCommand {
	cmd := frame[4]
	payload := frame[5 : len(frame)-1]

	switch cmd {
	case icomCmdSetFrequency, icomCmdReadFreqAlt:
		if hz, ok := icomDecodeBCDFreqLE(payload); ok {
			return SetFrequency(hz)
		}
	case icomCmdSetMode, icomCmdReadModeAlt:
		if len(payload) > 0 {
			if mode, ok := icomCodeToMode(payload[0]); ok {
				return SetMode(mode)
			}
		}
	case icomCmdGetFrequency:
		return RadioCommand{Kind: KindGetFrequency}
	case icomCmdGetMode:
		return RadioCommand{Kind: KindGetMode}
	case icomCmdTransceiverID:
		if len(payload) > 1 && payload[0] == icomSubPtt {
			return SetPtt(payload[1] != 0x00)
		}
	}

	return Unknown(frame)
}

// icomDecodeBCDFreqLE decodes a little-endian BCD frequency payload (each
// byte holds two BCD digits, least-significant pair first).
func icomDecodeBCDFreqLE(data []byte) (uint64, bool) {
	if len(data) < 5 {
		return 0, false
	}
	var freq uint64
	var multiplier uint64 = 1
	for _, b := range data[:5] {
		low := uint64(b & 0x0F)
		high := uint64(b>>4) & 0x0F
		freq += low * multiplier
		multiplier *= 10
		freq += high * multiplier
		multiplier *= 10
	}
	return freq, true
}

func icomEncodeBCDFreqLE(hz uint64) []byte {
	out := make([]byte, 5)
	for i := 0; i < 5; i++ {
		low := byte(hz % 10)
		hz /= 10
		high := byte(hz % 10)
		hz /= 10
		out[i] = (high << 4) | low
	}
	return out
}

func (c *icomCodec) encode(cmd RadioCommand) ([]byte, error) {
	frame := []byte{icomPreamble, icomPreamble, c.selfAddress, icomControllerAddr}

	switch cmd.Kind {
	case KindSetFrequency:
		frame = append(frame, icomCmdSetFrequency)
		frame = append(frame, icomEncodeBCDFreqLE(cmd.FrequencyHz)...)
	case KindFrequencyReport:
		frame = append(frame, icomCmdSetFrequency)
		frame = append(frame, icomEncodeBCDFreqLE(cmd.FrequencyHz)...)
	case KindGetFrequency:
		frame = append(frame, icomCmdGetFrequency)
	case KindSetMode:
		code, ok := icomModeToCode(cmd.Mode)
		if !ok {
			return nil, ErrUntranslatable
		}
		frame = append(frame, icomCmdSetMode, code)
	case KindModeReport:
		code, ok := icomModeToCode(cmd.Mode)
		if !ok {
			return nil, ErrUntranslatable
		}
		frame = append(frame, icomCmdSetMode, code)
	case KindGetMode:
		frame = append(frame, icomCmdGetMode)
	case KindSetPtt, KindPttReport:
		frame = append(frame, icomCmdTransceiverID, icomSubPtt)
		if cmd.PttActive {
			frame = append(frame, 0x01)
		} else {
			frame = append(frame, 0x00)
		}
	case KindUnknown:
		if len(cmd.Raw) >= 6 && cmd.Raw[0] == icomPreamble && cmd.Raw[len(cmd.Raw)-1] == icomTerminator {
			return append([]byte(nil), cmd.Raw...), nil
		}
		return nil, ErrUntranslatable
	default:
		return nil, ErrUntranslatable
	}

	frame = append(frame, icomTerminator)
	return frame, nil
}
