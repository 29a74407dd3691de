package catproto

// frameCodec is the behavior every per-dialect parser implements. Codecs are
// not exposed directly; callers use Codec, which pairs the Protocol tag with
// one per-dialect parser chosen by NewCodec. Every call on a Codec is
// dispatched through this unexported interface.
type frameCodec interface {
	pushBytes(data []byte)
	nextCommand() (RadioCommand, bool)
	encode(cmd RadioCommand) ([]byte, error)
}

// Codec is a streaming parser/encoder for one CAT dialect. Zero value is not
// usable; construct with NewCodec.
type Codec struct {
	protocol Protocol
	inner    frameCodec
}

// NewCodec returns a Codec for the given protocol, optionally bound to a
// CI-V address (only meaningful for Protocol.IcomCIV; ignored otherwise).
func NewCodec(protocol Protocol, civAddress *uint8) Codec {
	switch protocol {
	case ProtocolYaesu:
		return Codec{protocol: protocol, inner: &yaesuCodec{}}
	case ProtocolIcomCIV:
		addr := uint8(0x00)
		if civAddress != nil {
			addr = *civAddress
		}
		return Codec{protocol: protocol, inner: &icomCodec{selfAddress: addr}}
	default:
		return Codec{protocol: protocol, inner: &kenwoodCodec{dialect: protocol}}
	}
}

// Protocol returns the dialect this codec speaks.
func (c Codec) Protocol() Protocol {
	return c.protocol
}

// PushBytes appends newly received bytes to the codec's internal buffer.
func (c *Codec) PushBytes(data []byte) {
	c.inner.pushBytes(data)
}

// NextCommand returns the next fully-framed command in the buffer, consuming
// its bytes. It returns false when only a partial frame remains.
func (c *Codec) NextCommand() (RadioCommand, bool) {
	return c.inner.nextCommand()
}

// Encode renders cmd as wire bytes for this codec's dialect. The result
// round-trips through NextCommand for any command originally produced by a
// decode of the same dialect.
func (c *Codec) Encode(cmd RadioCommand) ([]byte, error) {
	return c.inner.encode(cmd)
}
