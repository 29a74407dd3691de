// Package traffic keeps a bounded, annotated log of CAT frames flowing
// through the mux, for diagnostic and observer consumption.
package traffic

import (
	"time"

	"github.com/catmux-radio/catmux/internal/catmux"
	"github.com/catmux-radio/catmux/internal/catproto"
)

// SourceKind identifies which endpoint a traffic entry came from or went to.
type SourceKind int

const (
	SourceRealRadio SourceKind = iota
	SourceToRealRadio
	SourceSimulatedRadio
	SourceToSimulatedRadio
	SourceRealAmplifier
	SourceFromRealAmplifier
	SourceSimulatedAmplifier
	SourceFromSimulatedAmplifier
)

// Source describes where a traffic entry originated or was sent.
type Source struct {
	Kind   SourceKind
	Handle catmux.RadioHandle
	Port   string
}

// DiagnosticSeverity grades a Diagnostic entry.
type DiagnosticSeverity int

const (
	SeverityDebug DiagnosticSeverity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// Direction is the flow of a Data entry relative to the mux.
type Direction int

const (
	DirectionIncoming Direction = iota // from a radio or the amplifier
	DirectionOutgoing                  // to a radio or the amplifier
)

// EntryKind distinguishes the two shapes an Entry can take.
type EntryKind int

const (
	EntryData EntryKind = iota
	EntryDiagnostic
)

// Entry is a single row in the traffic log: either a raw/annotated CAT
// frame, or a diagnostic message about the mux's own operation.
type Entry struct {
	Kind      EntryKind
	Timestamp time.Time

	// Data fields.
	Direction Direction
	Source    Source
	Raw       []byte
	Decoded   *catproto.AnnotatedFrame

	// Diagnostic fields.
	DiagnosticSource string
	Severity         DiagnosticSeverity
	Message          string
}

// NewDataEntry builds a Data entry, decoding and annotating raw using hint
// (nil means try every protocol).
func NewDataEntry(ts time.Time, dir Direction, src Source, raw []byte, hint *catproto.Protocol) Entry {
	entry := Entry{
		Kind:      EntryData,
		Timestamp: ts,
		Direction: dir,
		Source:    src,
		Raw:       append([]byte(nil), raw...),
	}
	if frame, ok := catproto.DecodeAndAnnotateWithHint(raw, hint); ok {
		entry.Decoded = &frame
	}
	return entry
}

// NewDiagnosticEntry builds a Diagnostic entry.
func NewDiagnosticEntry(ts time.Time, source string, severity DiagnosticSeverity, message string) Entry {
	return Entry{
		Kind:             EntryDiagnostic,
		Timestamp:        ts,
		DiagnosticSource: source,
		Severity:         severity,
		Message:          message,
	}
}

// ExportAction is the outcome of an export request against a Log.
type ExportAction int

const (
	ExportCopiedToClipboard ExportAction = iota
	ExportSavedToFile
	ExportCancelled
	ExportFailed
)

// ExportResult carries the outcome and any resulting payload of an export.
type ExportResult struct {
	Action ExportAction
	Text   string
	Path   string
	Err    error
}
