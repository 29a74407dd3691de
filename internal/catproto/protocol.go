package catproto

// Protocol identifies a CAT wire dialect.
type Protocol int

const (
	ProtocolYaesu Protocol = iota
	ProtocolIcomCIV
	ProtocolKenwood
	ProtocolElecraft
	ProtocolFlexRadio
)

// String implements fmt.Stringer for use in logs and annotations.
func (p Protocol) String() string {
	switch p {
	case ProtocolYaesu:
		return "Yaesu"
	case ProtocolIcomCIV:
		return "IcomCIV"
	case ProtocolKenwood:
		return "Kenwood"
	case ProtocolElecraft:
		return "Elecraft"
	case ProtocolFlexRadio:
		return "FlexRadio"
	default:
		return "Unknown"
	}
}

// IsASCII reports whether the dialect uses semicolon-terminated ASCII
// framing, as opposed to binary framing.
func (p Protocol) IsASCII() bool {
	switch p {
	case ProtocolKenwood, ProtocolElecraft, ProtocolFlexRadio:
		return true
	default:
		return false
	}
}
