package config

import "errors"

var (
	// ErrInvalidSwitchingMode indicates the switching mode is not one of the known values.
	ErrInvalidSwitchingMode = errors.New("invalid switching mode provided")
	// ErrInvalidProtocol indicates a protocol field is not one of the known dialects.
	ErrInvalidProtocol = errors.New("invalid protocol provided")
	// ErrInvalidFlowControl indicates a flow control field is not one of the known values.
	ErrInvalidFlowControl = errors.New("invalid flow control provided")
	// ErrInvalidAmplifierConnectionType indicates the amplifier connection type is not known.
	ErrInvalidAmplifierConnectionType = errors.New("invalid amplifier connection type provided")
	// ErrRadioPortRequired indicates a configured physical radio has no port set.
	ErrRadioPortRequired = errors.New("configured radio port is required")
	// ErrRadioBaudRateRequired indicates a configured physical radio has no baud rate set.
	ErrRadioBaudRateRequired = errors.New("configured radio baud rate must be positive")
	// ErrCIVAddressRequired indicates an Icom CI-V endpoint is missing its address.
	ErrCIVAddressRequired = errors.New("civ address is required for the IcomCIV protocol")
	// ErrVirtualRadioIDRequired indicates a virtual radio entry has no id.
	ErrVirtualRadioIDRequired = errors.New("virtual radio id is required")
	// ErrAmplifierPortRequired indicates a com-connected amplifier has no port set.
	ErrAmplifierPortRequired = errors.New("amplifier port is required for the com connection type")
	// ErrDuplicateVirtualRadioID indicates two virtual radios share the same id.
	ErrDuplicateVirtualRadioID = errors.New("duplicate virtual radio id")
)

func validProtocol(p Protocol) bool {
	switch p {
	case ProtocolYaesu, ProtocolIcomCIV, ProtocolKenwood, ProtocolElecraft, ProtocolFlexRadio:
		return true
	default:
		return false
	}
}

func validFlowControl(f FlowControl) bool {
	switch f {
	case FlowControlNone, FlowControlHardware, FlowControlSoftware:
		return true
	default:
		return false
	}
}

// Validate validates a configured physical radio entry.
func (c ConfiguredRadio) Validate() error {
	if c.Port == "" {
		return ErrRadioPortRequired
	}
	if !validProtocol(c.Protocol) {
		return ErrInvalidProtocol
	}
	if c.BaudRate == 0 {
		return ErrRadioBaudRateRequired
	}
	if !validFlowControl(c.FlowControl) {
		return ErrInvalidFlowControl
	}
	if c.Protocol == ProtocolIcomCIV && c.CIVAddress == nil {
		return ErrCIVAddressRequired
	}

	return nil
}

// Validate validates a virtual radio entry.
func (v VirtualRadio) Validate() error {
	if v.ID == "" {
		return ErrVirtualRadioIDRequired
	}
	if !validProtocol(v.Protocol) {
		return ErrInvalidProtocol
	}
	if v.Protocol == ProtocolIcomCIV && v.CIVAddress == nil {
		return ErrCIVAddressRequired
	}

	return nil
}

// Validate validates the amplifier configuration.
func (a Amplifier) Validate() error {
	switch a.ConnectionType {
	case AmplifierConnectionCOM, AmplifierConnectionSimulated:
	default:
		return ErrInvalidAmplifierConnectionType
	}

	if !validProtocol(a.Protocol) {
		return ErrInvalidProtocol
	}
	if !validFlowControl(a.FlowControl) {
		return ErrInvalidFlowControl
	}
	if a.ConnectionType == AmplifierConnectionCOM && a.Port == "" {
		return ErrAmplifierPortRequired
	}
	if a.Protocol == ProtocolIcomCIV && a.CIVAddress == nil {
		return ErrCIVAddressRequired
	}

	return nil
}

// Validate validates the full settings document, including every nested
// configured radio, virtual radio, and the amplifier.
func (s Settings) Validate() error {
	switch s.SwitchingMode {
	case SwitchingModeManual, SwitchingModeFrequencyTriggered, SwitchingModeAutomatic:
	default:
		return ErrInvalidSwitchingMode
	}

	for _, r := range s.ConfiguredRadios {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	seen := make(map[string]struct{}, len(s.VirtualRadios))
	for _, v := range s.VirtualRadios {
		if err := v.Validate(); err != nil {
			return err
		}
		if _, ok := seen[v.ID]; ok {
			return ErrDuplicateVirtualRadioID
		}
		seen[v.ID] = struct{}{}
	}

	if err := s.Amplifier.Validate(); err != nil {
		return err
	}

	return nil
}
