//go:build linux

package endpoint

import (
	"fmt"
	"time"

	serial "github.com/daedaluz/goserial"
)

// SerialConfig describes a real serial port to dial.
type SerialConfig struct {
	Path        string
	BaudRate    uint32
	ReadTimeout time.Duration
}

// OpenSerial opens a real serial port in raw mode at the requested baud
// rate. The returned Endpoint is a *serial.Port, whose Write/ReadTimeout/
// Close signatures already satisfy Endpoint.
func OpenSerial(cfg SerialConfig) (Endpoint, error) {
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 100 * time.Millisecond
	}
	opts := serial.NewOptions().SetReadTimeout(readTimeout)
	port, err := serial.Open(cfg.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("endpoint: open %s: %w", cfg.Path, err)
	}
	if err := port.MakeRaw(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("endpoint: set raw mode on %s: %w", cfg.Path, err)
	}
	if err := setBaudRate(port, cfg.BaudRate); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("endpoint: set baud rate on %s: %w", cfg.Path, err)
	}
	return port, nil
}

// setBaudRate reconfigures the port's termios2 structure to the requested
// rate using BOTHER, which accepts an arbitrary integer speed rather than
// one of the fixed Bnnnn constants.
func setBaudRate(port *serial.Port, baud uint32) error {
	if baud == 0 {
		return nil
	}
	attrs, err := port.GetAttr2()
	if err != nil {
		return err
	}
	attrs.Cflag &^= serial.CBAUD | serial.CIBAUD
	attrs.Cflag |= serial.BOTHER
	attrs.ISpeed = baud
	attrs.OSpeed = baud
	return port.SetAttr2(serial.TCSANOW, attrs)
}
