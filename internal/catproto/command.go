// Package catproto implements the streaming CAT wire codecs for the four
// supported radio dialects and the normalized RadioCommand model used to
// translate between them.
package catproto

// Mode is an operating mode supported by amateur radio transceivers.
type Mode int

const (
	ModeLsb Mode = iota
	ModeUsb
	ModeCw
	ModeCwR
	ModeAm
	ModeFm
	ModeFmN
	ModeDig
	ModeDigU
	ModeDigL
	ModePkt
	ModeData
	ModeDataU
	ModeDataL
	ModeRtty
	ModeRttyR
)

// IsVoice reports whether m is a voice mode.
func (m Mode) IsVoice() bool {
	switch m {
	case ModeLsb, ModeUsb, ModeAm, ModeFm, ModeFmN:
		return true
	default:
		return false
	}
}

// IsDigital reports whether m is a digital/data mode.
func (m Mode) IsDigital() bool {
	switch m {
	case ModeDig, ModeDigU, ModeDigL, ModeData, ModeDataU, ModeDataL, ModePkt, ModeRtty, ModeRttyR:
		return true
	default:
		return false
	}
}

// IsCW reports whether m is a CW mode.
func (m Mode) IsCW() bool {
	return m == ModeCw || m == ModeCwR
}

// Vfo selects the active VFO.
type Vfo int

const (
	VfoA Vfo = iota
	VfoB
	VfoSplit
	VfoMemory
)

// Kind identifies a RadioCommand's variant without requiring a type switch
// on every field access.
type Kind int

const (
	KindSetFrequency Kind = iota
	KindGetFrequency
	KindFrequencyReport
	KindSetMode
	KindGetMode
	KindModeReport
	KindSetPtt
	KindGetPtt
	KindPttReport
	KindSetVfo
	KindGetVfo
	KindVfoReport
	KindGetID
	KindIDReport
	KindGetStatus
	KindStatusReport
	KindSetPower
	KindEnableAutoInfo
	KindGetAutoInfo
	KindAutoInfoReport
	KindGetControlBand
	KindControlBandReport
	KindGetTransmitBand
	KindTransmitBandReport
	KindUnknown
)

// RadioCommand is the normalized intermediate representation shared by every
// CAT dialect. Only the fields relevant to Kind are populated; the rest hold
// their zero value.
type RadioCommand struct {
	Kind Kind

	FrequencyHz uint64
	Mode        Mode
	PttActive   bool
	Vfo         Vfo
	ID          string
	PowerOn     bool
	AutoInfoOn  bool
	ControlBand uint8
	TransmitBand uint8

	// StatusReport fields are independently optional; nil means "not reported".
	StatusFrequencyHz *uint64
	StatusMode        *Mode
	StatusPtt         *bool
	StatusVfo         *Vfo

	// Raw holds the original bytes of an Unknown command.
	Raw []byte
}

// IsQuery reports whether c is a query/request command.
func (c RadioCommand) IsQuery() bool {
	switch c.Kind {
	case KindGetFrequency, KindGetMode, KindGetPtt, KindGetVfo, KindGetID,
		KindGetStatus, KindGetAutoInfo, KindGetControlBand, KindGetTransmitBand:
		return true
	default:
		return false
	}
}

// IsReport reports whether c is a response/report command.
func (c RadioCommand) IsReport() bool {
	switch c.Kind {
	case KindFrequencyReport, KindModeReport, KindPttReport, KindVfoReport,
		KindIDReport, KindStatusReport, KindAutoInfoReport,
		KindControlBandReport, KindTransmitBandReport:
		return true
	default:
		return false
	}
}

// IsSet reports whether c is a set/action command.
func (c RadioCommand) IsSet() bool {
	switch c.Kind {
	case KindSetFrequency, KindSetMode, KindSetPtt, KindSetVfo, KindSetPower, KindEnableAutoInfo:
		return true
	default:
		return false
	}
}

// Frequency extracts a frequency in Hz from c, if present.
func (c RadioCommand) Frequency() (uint64, bool) {
	switch c.Kind {
	case KindSetFrequency, KindFrequencyReport:
		return c.FrequencyHz, true
	case KindStatusReport:
		if c.StatusFrequencyHz != nil {
			return *c.StatusFrequencyHz, true
		}
	}
	return 0, false
}

// ModeOf extracts an operating mode from c, if present.
func (c RadioCommand) ModeOf() (Mode, bool) {
	switch c.Kind {
	case KindSetMode, KindModeReport:
		return c.Mode, true
	case KindStatusReport:
		if c.StatusMode != nil {
			return *c.StatusMode, true
		}
	}
	return 0, false
}

// Ptt extracts a PTT state from c, if present.
func (c RadioCommand) Ptt() (bool, bool) {
	switch c.Kind {
	case KindSetPtt, KindPttReport:
		return c.PttActive, true
	case KindStatusReport:
		if c.StatusPtt != nil {
			return *c.StatusPtt, true
		}
	}
	return false, false
}

// SetFrequency constructs a SetFrequency command.
func SetFrequency(hz uint64) RadioCommand {
	return RadioCommand{Kind: KindSetFrequency, FrequencyHz: hz}
}

// FrequencyReport constructs a FrequencyReport command.
func FrequencyReport(hz uint64) RadioCommand {
	return RadioCommand{Kind: KindFrequencyReport, FrequencyHz: hz}
}

// SetMode constructs a SetMode command.
func SetMode(mode Mode) RadioCommand {
	return RadioCommand{Kind: KindSetMode, Mode: mode}
}

// ModeReport constructs a ModeReport command.
func ModeReport(mode Mode) RadioCommand {
	return RadioCommand{Kind: KindModeReport, Mode: mode}
}

// SetPtt constructs a SetPtt command.
func SetPtt(active bool) RadioCommand {
	return RadioCommand{Kind: KindSetPtt, PttActive: active}
}

// PttReport constructs a PttReport command.
func PttReport(active bool) RadioCommand {
	return RadioCommand{Kind: KindPttReport, PttActive: active}
}

// Unknown constructs an Unknown command preserving its raw bytes.
func Unknown(data []byte) RadioCommand {
	raw := make([]byte, len(data))
	copy(raw, data)
	return RadioCommand{Kind: KindUnknown, Raw: raw}
}
