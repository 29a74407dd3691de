package catmux

import "github.com/catmux-radio/catmux/internal/catproto"

// RadioChannelMeta describes a radio endpoint for the benefit of observers
// (the RadioConnected event payload and QueryRadioState responses).
type RadioChannelMeta struct {
	Name       string
	Port       string
	Protocol   catproto.Protocol
	Model      string
	CIVAddress *uint8
	Simulated  bool
}

// NewRealRadioChannelMeta describes a physical radio endpoint.
func NewRealRadioChannelMeta(name, port string, protocol catproto.Protocol, civAddress *uint8) RadioChannelMeta {
	return RadioChannelMeta{Name: name, Port: port, Protocol: protocol, CIVAddress: civAddress}
}

// VirtualEndpointPrefix marks an endpoint identifier as an in-process
// virtual endpoint rather than an OS serial path, per the "VSIM:<id>"
// convention.
const VirtualEndpointPrefix = "VSIM:"

// NewSimulatedRadioChannelMeta describes a virtual radio endpoint. port is
// the endpoint identifier with the VirtualEndpointPrefix already applied.
func NewSimulatedRadioChannelMeta(name, port string, protocol catproto.Protocol, civAddress *uint8) RadioChannelMeta {
	return RadioChannelMeta{Name: name, Port: port, Protocol: protocol, CIVAddress: civAddress, Simulated: true}
}

// AmplifierChannelMeta describes the attached amplifier endpoint.
type AmplifierChannelMeta struct {
	Port       string
	Protocol   catproto.Protocol
	BaudRate   uint32
	CIVAddress *uint8
	Simulated  bool
}
