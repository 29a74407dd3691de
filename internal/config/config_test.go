package config_test

import (
	"errors"
	"testing"

	"github.com/catmux-radio/catmux/internal/config"
)

func validCIVAddress() *uint8 {
	addr := uint8(0x94)
	return &addr
}

// --- ConfiguredRadio validation ---

func TestConfiguredRadioValidateMissingPort(t *testing.T) {
	t.Parallel()
	r := config.ConfiguredRadio{Protocol: config.ProtocolKenwood, BaudRate: 9600, FlowControl: config.FlowControlNone}
	if !errors.Is(r.Validate(), config.ErrRadioPortRequired) {
		t.Errorf("expected ErrRadioPortRequired, got %v", r.Validate())
	}
}

func TestConfiguredRadioValidateInvalidProtocol(t *testing.T) {
	t.Parallel()
	r := config.ConfiguredRadio{Port: "/dev/ttyUSB0", Protocol: "bogus", BaudRate: 9600, FlowControl: config.FlowControlNone}
	if !errors.Is(r.Validate(), config.ErrInvalidProtocol) {
		t.Errorf("expected ErrInvalidProtocol, got %v", r.Validate())
	}
}

func TestConfiguredRadioValidateZeroBaud(t *testing.T) {
	t.Parallel()
	r := config.ConfiguredRadio{Port: "/dev/ttyUSB0", Protocol: config.ProtocolKenwood, FlowControl: config.FlowControlNone}
	if !errors.Is(r.Validate(), config.ErrRadioBaudRateRequired) {
		t.Errorf("expected ErrRadioBaudRateRequired, got %v", r.Validate())
	}
}

func TestConfiguredRadioValidateIcomMissingCIVAddress(t *testing.T) {
	t.Parallel()
	r := config.ConfiguredRadio{Port: "/dev/ttyUSB0", Protocol: config.ProtocolIcomCIV, BaudRate: 9600, FlowControl: config.FlowControlNone}
	if !errors.Is(r.Validate(), config.ErrCIVAddressRequired) {
		t.Errorf("expected ErrCIVAddressRequired, got %v", r.Validate())
	}
}

func TestConfiguredRadioValidateValid(t *testing.T) {
	t.Parallel()
	r := config.ConfiguredRadio{
		Port:        "/dev/ttyUSB0",
		Protocol:    config.ProtocolIcomCIV,
		BaudRate:    19200,
		CIVAddress:  validCIVAddress(),
		FlowControl: config.FlowControlHardware,
	}
	if err := r.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- VirtualRadio validation ---

func TestVirtualRadioValidateMissingID(t *testing.T) {
	t.Parallel()
	v := config.VirtualRadio{Protocol: config.ProtocolKenwood}
	if !errors.Is(v.Validate(), config.ErrVirtualRadioIDRequired) {
		t.Errorf("expected ErrVirtualRadioIDRequired, got %v", v.Validate())
	}
}

func TestVirtualRadioValidateValid(t *testing.T) {
	t.Parallel()
	v := config.VirtualRadio{ID: "sim-1", Name: "Simulated FT-991", Protocol: config.ProtocolFlexRadio}
	if err := v.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Amplifier validation ---

func TestAmplifierValidateSimulatedNoPortRequired(t *testing.T) {
	t.Parallel()
	a := config.Amplifier{
		ConnectionType: config.AmplifierConnectionSimulated,
		Protocol:       config.ProtocolKenwood,
		FlowControl:    config.FlowControlNone,
	}
	if err := a.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestAmplifierValidateCOMRequiresPort(t *testing.T) {
	t.Parallel()
	a := config.Amplifier{
		ConnectionType: config.AmplifierConnectionCOM,
		Protocol:       config.ProtocolKenwood,
		FlowControl:    config.FlowControlNone,
	}
	if !errors.Is(a.Validate(), config.ErrAmplifierPortRequired) {
		t.Errorf("expected ErrAmplifierPortRequired, got %v", a.Validate())
	}
}

func TestAmplifierValidateInvalidConnectionType(t *testing.T) {
	t.Parallel()
	a := config.Amplifier{ConnectionType: "bogus", Protocol: config.ProtocolKenwood}
	if !errors.Is(a.Validate(), config.ErrInvalidAmplifierConnectionType) {
		t.Errorf("expected ErrInvalidAmplifierConnectionType, got %v", a.Validate())
	}
}

// --- Settings validation ---

func TestSettingsValidateDefaultIsValid(t *testing.T) {
	t.Parallel()
	s := config.Default()
	if err := s.Validate(); err != nil {
		t.Errorf("expected default settings to validate cleanly, got %v", err)
	}
}

func TestSettingsValidateInvalidSwitchingMode(t *testing.T) {
	t.Parallel()
	s := config.Default()
	s.SwitchingMode = "bogus"
	if !errors.Is(s.Validate(), config.ErrInvalidSwitchingMode) {
		t.Errorf("expected ErrInvalidSwitchingMode, got %v", s.Validate())
	}
}

func TestSettingsValidateDuplicateVirtualRadioID(t *testing.T) {
	t.Parallel()
	s := config.Default()
	s.VirtualRadios = []config.VirtualRadio{
		{ID: "sim-1", Protocol: config.ProtocolKenwood},
		{ID: "sim-1", Protocol: config.ProtocolElecraft},
	}
	if !errors.Is(s.Validate(), config.ErrDuplicateVirtualRadioID) {
		t.Errorf("expected ErrDuplicateVirtualRadioID, got %v", s.Validate())
	}
}

func TestSettingsValidatePropagatesRadioError(t *testing.T) {
	t.Parallel()
	s := config.Default()
	s.ConfiguredRadios = []config.ConfiguredRadio{{Protocol: config.ProtocolKenwood, BaudRate: 9600}}
	if !errors.Is(s.Validate(), config.ErrRadioPortRequired) {
		t.Errorf("expected ErrRadioPortRequired, got %v", s.Validate())
	}
}

// --- Load / defaults / XDG path resolution ---

func TestDefaultValues(t *testing.T) {
	t.Parallel()
	s := config.Default()
	if s.LockoutMS != config.DefaultLockoutMS {
		t.Errorf("expected default lockout of %d ms, got %d", config.DefaultLockoutMS, s.LockoutMS)
	}
	if s.SwitchingMode != config.SwitchingModeFrequencyTriggered {
		t.Errorf("expected FrequencyTriggered default switching mode, got %v", s.SwitchingMode)
	}
	if s.TrafficHistorySize != config.DefaultTrafficHistorySize {
		t.Errorf("expected default traffic history size of %d, got %d", config.DefaultTrafficHistorySize, s.TrafficHistorySize)
	}
	if !s.ShowHex || !s.ShowDecoded {
		t.Errorf("expected show_hex and show_decoded to default true")
	}
	if len(s.BaudRates) != len(config.DefaultBaudRates) {
		t.Errorf("expected %d default baud rates, got %d", len(config.DefaultBaudRates), len(s.BaudRates))
	}
}

func TestConfigDirRespectsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	dir, err := config.ConfigDir("catmux")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/tmp/xdgtest/catmux" {
		t.Errorf("expected /tmp/xdgtest/catmux, got %s", dir)
	}
}

func TestConfigDirFallsBackToHomeConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/hometest")
	dir, err := config.ConfigDir("catmux")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != "/tmp/hometest/.config/catmux" {
		t.Errorf("expected /tmp/hometest/.config/catmux, got %s", dir)
	}
}

func TestLoadMissingFileReturnsErrSettingsNotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, err := config.Load("catmux-does-not-exist")
	if !errors.Is(err, config.ErrSettingsNotFound) {
		t.Errorf("expected ErrSettingsNotFound, got %v", err)
	}
}

func TestLoadOrDefaultFallsBackOnMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	s := config.LoadOrDefault("catmux-does-not-exist")
	if s.LockoutMS != config.DefaultLockoutMS {
		t.Errorf("expected defaults, got %+v", s)
	}
}
