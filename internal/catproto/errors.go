package catproto

import "errors"

var (
	// ErrIncompleteFrame indicates the codec needs more bytes before a
	// complete command can be decoded. Not a failure; callers should retry
	// after pushing more data.
	ErrIncompleteFrame = errors.New("incomplete CAT frame")
	// ErrBadChecksum indicates a frame's checksum/terminator validation failed.
	ErrBadChecksum = errors.New("invalid CAT frame checksum")
	// ErrUnknownCommand indicates a frame was structurally valid but its
	// command vocabulary was not recognized.
	ErrUnknownCommand = errors.New("unrecognized CAT command")

	// ErrUntranslatable indicates translate could not express src_cmd in the
	// target amplifier dialect.
	ErrUntranslatable = errors.New("command cannot be translated for this amplifier protocol")
	// ErrUnsupportedAmpProtocol indicates the amplifier dialect itself is not
	// supported as a translation target (the Yaesu binary dialect).
	ErrUnsupportedAmpProtocol = errors.New("amplifier protocol does not support CAT translation")
)
