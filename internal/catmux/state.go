package catmux

import (
	"time"

	"github.com/catmux-radio/catmux/internal/catproto"
)

// RadioHandle uniquely identifies a registered radio endpoint. Handles are
// monotonically increasing and never recycled within a mux actor's lifetime.
type RadioHandle uint32

// HandleAllocator hands out monotonically increasing RadioHandles.
type HandleAllocator struct {
	next uint32
}

// Next returns the next unused handle.
func (a *HandleAllocator) Next() RadioHandle {
	a.next++
	return RadioHandle(a.next)
}

// RadioRecord is the mux actor's view of a single connected radio.
type RadioRecord struct {
	Handle        RadioHandle
	Name          string
	Port          string
	Protocol      catproto.Protocol
	Model         string
	FrequencyHz   *uint64
	Mode          *catproto.Mode
	Ptt           bool
	CIVAddress    *uint8
	LastActivity  time.Time
	LastFreqChange *time.Time
	IsSimulated   bool
}

// NewRadioRecord constructs a RadioRecord for a freshly registered endpoint.
func NewRadioRecord(handle RadioHandle, name, port string, protocol catproto.Protocol, simulated bool) *RadioRecord {
	return &RadioRecord{
		Handle:      handle,
		Name:        name,
		Port:        port,
		Protocol:    protocol,
		IsSimulated: simulated,
		LastActivity: time.Now(),
	}
}

// Touch updates the last-activity timestamp.
func (r *RadioRecord) Touch() {
	r.LastActivity = time.Now()
}

// SetFrequency updates the frequency, reporting whether the value actually
// changed so callers can skip emitting redundant events.
func (r *RadioRecord) SetFrequency(hz uint64) (changed bool) {
	if r.FrequencyHz == nil || *r.FrequencyHz != hz {
		r.FrequencyHz = &hz
		now := time.Now()
		r.LastFreqChange = &now
		changed = true
	}
	r.Touch()
	return changed
}

// SetMode updates the mode, reporting whether the value actually changed.
func (r *RadioRecord) SetMode(mode catproto.Mode) (changed bool) {
	if r.Mode == nil || *r.Mode != mode {
		r.Mode = &mode
		changed = true
	}
	r.Touch()
	return changed
}

// SetPtt updates PTT state, reporting whether the value actually changed.
func (r *RadioRecord) SetPtt(active bool) (changed bool) {
	changed = r.Ptt != active
	r.Ptt = active
	r.Touch()
	return changed
}

// SetModel updates the identified model, reporting whether it actually
// changed. An empty id is a no-op: GetId can fail independently of other
// probe queries and should never blank out a previously identified model.
func (r *RadioRecord) SetModel(id string) (changed bool) {
	if id == "" || r.Model == id {
		return false
	}
	r.Model = id
	r.Touch()
	return true
}

// AmplifierRecord is the mux actor's view of the attached amplifier.
type AmplifierRecord struct {
	Port       string
	Protocol   catproto.Protocol
	BaudRate   uint32
	CIVAddress *uint8
	Emulated   AmplifierEmulatedState
}

// AmplifierEmulatedState tracks what the mux has last told the amplifier,
// so amplifier queries can be answered from cache rather than re-querying
// the active radio, and so unsolicited auto-info reports know what changed.
type AmplifierEmulatedState struct {
	FrequencyHz     *uint64
	Mode            *catproto.Mode
	Ptt             bool
	AutoInfoEnabled bool
}

// SwitchingMode selects the election policy (see election.go).
type SwitchingMode int

const (
	SwitchingModeManual SwitchingMode = iota
	SwitchingModeFrequencyTriggered
	SwitchingModeAutomatic
)
