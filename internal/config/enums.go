package config

// Protocol identifies a CAT wire dialect spoken by a radio or amplifier endpoint.
type Protocol string

const (
	// ProtocolYaesu is the Yaesu 5-byte binary dialect.
	ProtocolYaesu Protocol = "Yaesu"
	// ProtocolIcomCIV is the Icom CI-V framed binary dialect.
	ProtocolIcomCIV Protocol = "IcomCIV"
	// ProtocolKenwood is the Kenwood ASCII dialect.
	ProtocolKenwood Protocol = "Kenwood"
	// ProtocolElecraft is the Elecraft ASCII dialect, Kenwood-compatible with extensions.
	ProtocolElecraft Protocol = "Elecraft"
	// ProtocolFlexRadio is the FlexRadio ASCII dialect, Kenwood-compatible with ZZ* extensions.
	ProtocolFlexRadio Protocol = "FlexRadio"
)

// SwitchingMode selects the election policy the mux actor uses to decide
// which connected radio owns the amplifier.
type SwitchingMode string

const (
	// SwitchingModeManual disables automatic election; the active radio only
	// changes in response to an explicit operator action.
	SwitchingModeManual SwitchingMode = "Manual"
	// SwitchingModeFrequencyTriggered elects a new active radio when it
	// reports a frequency differing from its last known value.
	SwitchingModeFrequencyTriggered SwitchingMode = "FrequencyTriggered"
	// SwitchingModeAutomatic adds a PTT-off-to-PTT-on rising edge as an
	// additional election trigger on top of FrequencyTriggered.
	SwitchingModeAutomatic SwitchingMode = "Automatic"
)

// FlowControl selects the serial flow control discipline for a physical endpoint.
type FlowControl string

const (
	// FlowControlNone disables flow control.
	FlowControlNone FlowControl = "none"
	// FlowControlHardware uses RTS/CTS hardware flow control.
	FlowControlHardware FlowControl = "hardware"
	// FlowControlSoftware uses XON/XOFF software flow control.
	FlowControlSoftware FlowControl = "software"
)

// AmplifierConnectionType selects whether the amplifier endpoint is a real
// serial device or the in-process virtual amplifier.
type AmplifierConnectionType string

const (
	// AmplifierConnectionCOM is a physical serial port.
	AmplifierConnectionCOM AmplifierConnectionType = "com"
	// AmplifierConnectionSimulated is the in-process virtual amplifier.
	AmplifierConnectionSimulated AmplifierConnectionType = "simulated"
)
