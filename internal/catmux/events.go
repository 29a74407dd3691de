package catmux

import (
	"time"

	"github.com/catmux-radio/catmux/internal/catproto"
)

// EventKind identifies a MuxEvent's variant.
type EventKind int

const (
	EventRadioConnected EventKind = iota
	EventRadioDisconnected
	EventRadioStateChanged
	EventActiveRadioChanged
	EventRadioDataIn
	EventRadioDataOut
	EventAmpDataOut
	EventAmpDataIn
	EventAmpConnected
	EventAmpDisconnected
	EventSwitchingModeChanged
	EventSwitchingBlocked
	EventError
)

// MuxEvent is a single entry in the mux actor's unified, ordered event
// stream. Only the fields relevant to Kind are populated.
type MuxEvent struct {
	Kind      EventKind
	Timestamp time.Time

	Handle RadioHandle
	Meta   RadioChannelMeta
	AmpMeta AmplifierChannelMeta

	FrequencyHz *uint64
	Mode        *catproto.Mode
	Ptt         *bool
	Model       *string

	From *RadioHandle
	To   RadioHandle

	Data     []byte
	Protocol catproto.Protocol

	SwitchingMode SwitchingMode

	Requested   RadioHandle
	Current     RadioHandle
	RemainingMS uint64

	Source  string
	Message string
}

// IsTraffic reports whether e carries raw wire bytes (radio/amp data in/out).
func (e MuxEvent) IsTraffic() bool {
	switch e.Kind {
	case EventRadioDataIn, EventRadioDataOut, EventAmpDataOut, EventAmpDataIn:
		return true
	default:
		return false
	}
}

// IsRadioLifecycle reports whether e is a radio connect/disconnect/election event.
func (e MuxEvent) IsRadioLifecycle() bool {
	switch e.Kind {
	case EventRadioConnected, EventRadioDisconnected, EventActiveRadioChanged:
		return true
	default:
		return false
	}
}

// IsAmpLifecycle reports whether e is an amplifier connect/disconnect event.
func (e MuxEvent) IsAmpLifecycle() bool {
	switch e.Kind {
	case EventAmpConnected, EventAmpDisconnected:
		return true
	default:
		return false
	}
}

// RadioHandleOf returns the radio handle this event is associated with, if any.
func (e MuxEvent) RadioHandleOf() (RadioHandle, bool) {
	switch e.Kind {
	case EventRadioConnected, EventRadioDisconnected, EventRadioStateChanged, EventRadioDataIn, EventRadioDataOut:
		return e.Handle, true
	case EventActiveRadioChanged:
		return e.To, true
	case EventSwitchingBlocked:
		return e.Requested, true
	default:
		return 0, false
	}
}
