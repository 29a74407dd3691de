// Package config loads the persisted settings file that configures the CAT
// mux on boot. The settings file is owned by the UI collaborator; the mux
// only ever reads it.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// DefaultLockoutMS is the default election lockout window in milliseconds.
const DefaultLockoutMS = 500

// DefaultTrafficHistorySize is the default number of traffic entries retained
// by the observer's history buffer.
const DefaultTrafficHistorySize = 1000

// DefaultBaudRates lists the baud rates offered to the operator when
// configuring a physical endpoint.
var DefaultBaudRates = []uint32{38400, 19200, 9600, 4800, 115200} //nolint:gochecknoglobals

// ConfiguredRadio describes a physical radio endpoint the mux should open on boot.
type ConfiguredRadio struct {
	Port        string      `json:"port"`
	Protocol    Protocol    `json:"protocol"`
	ModelName   string      `json:"model_name"`
	BaudRate    uint32      `json:"baud_rate"`
	CIVAddress  *uint8      `json:"civ_address,omitempty"`
	FlowControl FlowControl `json:"flow_control"`
}

// VirtualRadio describes an in-process simulated radio endpoint.
type VirtualRadio struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Protocol   Protocol `json:"protocol"`
	CIVAddress *uint8   `json:"civ_address,omitempty"`
}

// Amplifier describes the single amplifier endpoint the mux arbitrates access to.
type Amplifier struct {
	ConnectionType AmplifierConnectionType `json:"connection_type"`
	Protocol       Protocol                `json:"protocol"`
	Port           string                  `json:"port"`
	BaudRate       uint32                  `json:"baud_rate"`
	CIVAddress     *uint8                  `json:"civ_address,omitempty"`
	FlowControl    FlowControl             `json:"flow_control"`
}

// Settings is the full persisted settings schema, deserialized from
// $XDG_CONFIG_HOME/<app>/settings.json (or its fallback location).
type Settings struct {
	LockoutMS          uint64            `json:"lockout_ms"`
	SwitchingMode       SwitchingMode     `json:"switching_mode"`
	ConfiguredRadios    []ConfiguredRadio `json:"configured_radios"`
	VirtualRadios       []VirtualRadio    `json:"virtual_radios"`
	Amplifier           Amplifier         `json:"amplifier"`
	BaudRates           []uint32          `json:"baud_rates"`
	TrafficHistorySize  int               `json:"traffic_history_size"`
	ShowHex             bool              `json:"show_hex"`
	ShowDecoded         bool              `json:"show_decoded"`
	DebugMode           bool              `json:"debug_mode"`
}

// Default returns the settings a fresh installation boots with.
func Default() Settings {
	return Settings{
		LockoutMS:          DefaultLockoutMS,
		SwitchingMode:      SwitchingModeFrequencyTriggered,
		ConfiguredRadios:   nil,
		VirtualRadios:      nil,
		Amplifier: Amplifier{
			ConnectionType: AmplifierConnectionSimulated,
			Protocol:       ProtocolKenwood,
			BaudRate:       38400,
			FlowControl:    FlowControlNone,
		},
		BaudRates:          append([]uint32(nil), DefaultBaudRates...),
		TrafficHistorySize: DefaultTrafficHistorySize,
		ShowHex:            true,
		ShowDecoded:        true,
		DebugMode:          false,
	}
}

// ConfigDir resolves the XDG config directory for appName: $XDG_CONFIG_HOME/<app>
// if XDG_CONFIG_HOME is set to an absolute path, otherwise ~/.config/<app>.
func ConfigDir(appName string) (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", appName), nil
}

// SettingsPath returns the path to appName's settings.json.
func SettingsPath(appName string) (string, error) {
	dir, err := ConfigDir(appName)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "settings.json"), nil
}

// ErrSettingsNotFound indicates no settings file exists at the resolved path.
var ErrSettingsNotFound = errors.New("settings file not found")

// Load reads and parses appName's settings file. A missing file is reported
// via ErrSettingsNotFound; callers should fall back to Default() per the
// configuration-error handling category rather than treating it as fatal.
func Load(appName string) (Settings, error) {
	path, err := SettingsPath(appName)
	if err != nil {
		return Settings{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, ErrSettingsNotFound
		}
		return Settings{}, err
	}

	settings := Default()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

// LoadOrDefault behaves like Load but returns Default() instead of an error
// when the settings file is absent or malformed, matching the "configuration
// errors fall back to defaults" handling rule.
func LoadOrDefault(appName string) Settings {
	settings, err := Load(appName)
	if err != nil {
		return Default()
	}

	return settings
}
