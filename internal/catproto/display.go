package catproto

// SegmentType classifies a byte range within an annotated frame for display
// purposes (e.g. highlighting in a traffic monitor).
type SegmentType int

const (
	SegmentPreamble SegmentType = iota
	SegmentAddress
	SegmentCommand
	SegmentFrequency
	SegmentMode
	SegmentStatus
	SegmentData
	SegmentTerminator
)

// Segment is a labeled byte range within a raw frame.
type Segment struct {
	Type  SegmentType
	Start int
	End   int
	Label string
}

// AnnotatedFrame pairs a decoded command with the byte-range breakdown used
// to render it in a traffic monitor.
type AnnotatedFrame struct {
	Protocol Protocol
	Command  RadioCommand
	Segments []Segment
}

// DecodeAndAnnotateWithHint decodes data as a single CAT frame, annotating
// its byte ranges for display. If hint is non-nil, that protocol's codec is
// tried first; otherwise every protocol is tried in turn and the first
// non-Unknown decode wins. Returns false only when data is empty.
func DecodeAndAnnotateWithHint(data []byte, hint *Protocol) (AnnotatedFrame, bool) {
	if len(data) == 0 {
		return AnnotatedFrame{}, false
	}

	order := []Protocol{ProtocolKenwood, ProtocolElecraft, ProtocolFlexRadio, ProtocolIcomCIV, ProtocolYaesu}
	if hint != nil {
		order = append([]Protocol{*hint}, order...)
	}

	var fallback AnnotatedFrame
	haveFallback := false

	tried := make(map[Protocol]bool, len(order))
	for _, p := range order {
		if tried[p] {
			continue
		}
		tried[p] = true

		codec := NewCodec(p, nil)
		codec.PushBytes(data)
		cmd, ok := codec.NextCommand()
		if !ok {
			continue
		}

		frame := AnnotatedFrame{Protocol: p, Command: cmd, Segments: annotateSegments(p, data, cmd)}
		if cmd.Kind != KindUnknown {
			return frame, true
		}
		if !haveFallback {
			fallback = frame
			haveFallback = true
		}
	}

	if haveFallback {
		return fallback, true
	}

	return AnnotatedFrame{Segments: []Segment{{Type: SegmentData, Start: 0, End: len(data), Label: "unrecognized"}}}, true
}

func annotateSegments(p Protocol, data []byte, cmd RadioCommand) []Segment {
	switch p {
	case ProtocolIcomCIV:
		return icomSegments(data)
	case ProtocolYaesu:
		return yaesuSegments(data)
	default:
		return kenwoodSegments(data, cmd)
	}
}

func icomSegments(data []byte) []Segment {
	if len(data) < 6 {
		return []Segment{{Type: SegmentData, Start: 0, End: len(data)}}
	}
	segs := []Segment{
		{Type: SegmentPreamble, Start: 0, End: 2, Label: "FE FE"},
		{Type: SegmentAddress, Start: 2, End: 4, Label: "to/from"},
		{Type: SegmentCommand, Start: 4, End: 5, Label: "cmd"},
	}
	if len(data) > 6 {
		segs = append(segs, Segment{Type: SegmentData, Start: 5, End: len(data) - 1, Label: "payload"})
	}
	segs = append(segs, Segment{Type: SegmentTerminator, Start: len(data) - 1, End: len(data), Label: "FD"})
	return segs
}

func yaesuSegments(data []byte) []Segment {
	if len(data) != yaesuFrameLen {
		return []Segment{{Type: SegmentData, Start: 0, End: len(data)}}
	}
	return []Segment{
		{Type: SegmentFrequency, Start: 0, End: 4, Label: "BCD frequency"},
		{Type: SegmentCommand, Start: 4, End: 5, Label: "opcode"},
	}
}

func kenwoodSegments(data []byte, cmd RadioCommand) []Segment {
	if len(data) < 3 {
		return []Segment{{Type: SegmentData, Start: 0, End: len(data)}}
	}
	segType := SegmentCommand
	switch cmd.Kind {
	case KindSetFrequency, KindFrequencyReport, KindGetFrequency:
		segType = SegmentFrequency
	case KindSetMode, KindModeReport, KindGetMode:
		segType = SegmentMode
	case KindGetStatus:
		segType = SegmentStatus
	}
	segs := []Segment{{Type: SegmentCommand, Start: 0, End: 2, Label: "opcode"}}
	if len(data) > 3 {
		segs = append(segs, Segment{Type: segType, Start: 2, End: len(data) - 1, Label: "payload"})
	}
	segs = append(segs, Segment{Type: SegmentTerminator, Start: len(data) - 1, End: len(data), Label: ";"})
	return segs
}
