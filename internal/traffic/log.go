package traffic

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/catmux-radio/catmux/internal/catmux"
	"github.com/catmux-radio/catmux/internal/catproto"
)

// Log is a bounded, filterable record of CAT traffic and diagnostics, safe
// for concurrent use by an event-stream consumer and an observer reading it.
type Log struct {
	mu sync.Mutex

	entries    []Entry
	maxEntries int
	paused     bool

	filterDirection    *Direction
	filterDirectionSet bool
	showSimulated      bool

	minDiagnostic    DiagnosticSeverity
	diagnosticsOff   bool

	cache *annotationCache
}

// NewLog creates a Log that keeps at most maxEntries, showing diagnostics at
// minSeverity and above. Pass diagnosticsOff=true to hide all diagnostics.
func NewLog(maxEntries int, minSeverity DiagnosticSeverity, diagnosticsOff bool) *Log {
	return &Log{
		entries:        make([]Entry, 0, maxEntries),
		maxEntries:     maxEntries,
		showSimulated:  true,
		minDiagnostic:  minSeverity,
		diagnosticsOff: diagnosticsOff,
		cache:          newAnnotationCache(),
	}
}

// SetPaused stops or resumes ingestion; entries already in the log are kept.
func (l *Log) SetPaused(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paused = paused
}

// SetFilterDirection restricts Entries to one direction; pass nil for both.
func (l *Log) SetFilterDirection(dir *Direction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if dir == nil {
		l.filterDirectionSet = false
		return
	}
	l.filterDirection = dir
	l.filterDirectionSet = true
}

// SetShowSimulated toggles whether simulated-radio/amp traffic is included.
func (l *Log) SetShowSimulated(show bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.showSimulated = show
}

// AddDiagnostic appends a diagnostic entry, subject to pause.
func (l *Log) AddDiagnostic(source string, severity DiagnosticSeverity, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused {
		return
	}
	l.append(NewDiagnosticEntry(time.Now(), source, severity, message))
}

// AddData appends a Data entry for raw bytes flowing in dir from/to src,
// decoding and caching the annotation, subject to pause.
func (l *Log) AddData(dir Direction, src Source, raw []byte, hint *catproto.Protocol) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused {
		return
	}
	decoded := l.cache.get(raw, hint)
	l.append(Entry{
		Kind:      EntryData,
		Timestamp: time.Now(),
		Direction: dir,
		Source:    src,
		Raw:       append([]byte(nil), raw...),
		Decoded:   decoded,
	})
}

func (l *Log) append(entry Entry) {
	if len(l.entries) >= l.maxEntries {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, entry)
}

// Clear empties the log and its annotation cache.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
	l.cache.clear()
}

// ProcessEvent translates a mux event into the appropriate traffic entry.
// metaFor looks up a radio's channel metadata (port, simulated status) by
// handle; it may return ok=false for a handle the mux has already forgotten.
func (l *Log) ProcessEvent(event catmux.MuxEvent, metaFor func(catmux.RadioHandle) (catmux.RadioChannelMeta, bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused {
		return
	}

	switch event.Kind {
	case catmux.EventRadioDataIn:
		l.appendRadioTraffic(DirectionIncoming, event, metaFor)
	case catmux.EventRadioDataOut:
		l.appendRadioTraffic(DirectionOutgoing, event, metaFor)
	case catmux.EventAmpDataOut:
		l.appendAmpTraffic(DirectionOutgoing, event)
	case catmux.EventAmpDataIn:
		l.appendAmpTraffic(DirectionIncoming, event)
	case catmux.EventError:
		l.append(NewDiagnosticEntry(event.Timestamp, event.Source, SeverityError, event.Message))
	}
}

func (l *Log) appendRadioTraffic(dir Direction, event catmux.MuxEvent, metaFor func(catmux.RadioHandle) (catmux.RadioChannelMeta, bool)) {
	meta, ok := metaFor(event.Handle)
	simulated := ok && meta.Simulated
	kind := SourceRealRadio
	if simulated {
		kind = SourceSimulatedRadio
	}
	if dir == DirectionOutgoing {
		if simulated {
			kind = SourceToSimulatedRadio
		} else {
			kind = SourceToRealRadio
		}
	}
	src := Source{Kind: kind, Handle: event.Handle, Port: meta.Port}
	proto := event.Protocol
	l.appendData(dir, src, event.Data, &proto, simulated)
}

func (l *Log) appendAmpTraffic(dir Direction, event catmux.MuxEvent) {
	simulated := event.AmpMeta.Simulated
	var kind SourceKind
	switch {
	case dir == DirectionOutgoing && simulated:
		kind = SourceSimulatedAmplifier
	case dir == DirectionOutgoing:
		kind = SourceRealAmplifier
	case simulated:
		kind = SourceFromSimulatedAmplifier
	default:
		kind = SourceFromRealAmplifier
	}
	proto := event.Protocol
	l.appendData(dir, Source{Kind: kind, Port: event.AmpMeta.Port}, event.Data, &proto, simulated)
}

func (l *Log) appendData(dir Direction, src Source, raw []byte, hint *catproto.Protocol, simulated bool) {
	if !l.showSimulated && simulated {
		return
	}
	if l.filterDirectionSet && *l.filterDirection != dir {
		return
	}
	decoded := l.cache.get(raw, hint)
	l.append(Entry{
		Kind:      EntryData,
		Timestamp: time.Now(),
		Direction: dir,
		Source:    src,
		Raw:       append([]byte(nil), raw...),
		Decoded:   decoded,
	})
}

// Entries returns a snapshot copy of the entries currently passing the
// configured filters.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if l.passesFilter(e) {
			out = append(out, e)
		}
	}
	return out
}

func (l *Log) passesFilter(e Entry) bool {
	if e.Kind == EntryDiagnostic {
		return !l.diagnosticsOff && e.Severity >= l.minDiagnostic
	}
	if l.filterDirectionSet && e.Direction != *l.filterDirection {
		return false
	}
	return true
}

// FormatLog renders the filtered entries as a plain-text export.
func (l *Log) FormatLog() string {
	entries := l.Entries()

	var b strings.Builder
	fmt.Fprintf(&b, "# catmux traffic log export\n# Entries: %d\n\n", len(entries))
	for _, e := range entries {
		b.WriteString(formatEntry(e))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatEntry(e Entry) string {
	ts := e.Timestamp.Format("15:04:05.000")
	if e.Kind == EntryDiagnostic {
		return fmt.Sprintf("%s %s [%s] %s", ts, severityLabel(e.Severity), e.DiagnosticSource, e.Message)
	}

	dir := "IN "
	if e.Direction == DirectionOutgoing {
		dir = "OUT"
	}

	var hex strings.Builder
	for i, b := range e.Raw {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02X", b)
	}

	var decodedStr string
	if e.Decoded != nil {
		decodedStr = fmt.Sprintf(" [%s]", e.Decoded.Protocol)
	}

	return fmt.Sprintf("%s %s %-14s %s%s", ts, dir, sourceLabel(e.Source), hex.String(), decodedStr)
}

func severityLabel(s DiagnosticSeverity) string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO "
	case SeverityWarning:
		return "WARN "
	case SeverityError:
		return "ERROR"
	default:
		return "?????"
	}
}

func sourceLabel(s Source) string {
	switch s.Kind {
	case SourceRealRadio:
		return fmt.Sprintf("Radio(%s)", s.Port)
	case SourceToRealRadio:
		return fmt.Sprintf("->Radio(%s)", s.Port)
	case SourceSimulatedRadio:
		return fmt.Sprintf("Sim(%d)", s.Handle)
	case SourceToSimulatedRadio:
		return fmt.Sprintf("->Sim(%d)", s.Handle)
	case SourceRealAmplifier:
		return fmt.Sprintf("->Amp(%s)", s.Port)
	case SourceFromRealAmplifier:
		return fmt.Sprintf("Amp(%s)", s.Port)
	case SourceSimulatedAmplifier:
		return "->SimAmp"
	case SourceFromSimulatedAmplifier:
		return "SimAmp"
	default:
		return "?"
	}
}
