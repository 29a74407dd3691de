package catmux

import "time"

// DefaultLockoutWindow is the lockout duration used when a zero value is
// configured, matching the persisted-settings default of 500 ms.
const DefaultLockoutWindow = 500 * time.Millisecond

// ElectionState tracks which radio is currently active and enforces the
// lockout window between switches. It holds no goroutines or timers:
// lockout expiry is computed fresh on every candidate evaluation.
type ElectionState struct {
	Mode          SwitchingMode
	LockoutWindow time.Duration

	Active      RadioHandle
	ActiveSince time.Time
}

// NewElectionState constructs an ElectionState with no active radio yet.
func NewElectionState(mode SwitchingMode, lockout time.Duration) *ElectionState {
	if lockout <= 0 {
		lockout = DefaultLockoutWindow
	}
	return &ElectionState{Mode: mode, LockoutWindow: lockout}
}

// ElectionResult describes the outcome of evaluating one candidate radio.
type ElectionResult struct {
	Switched    bool
	Blocked     bool
	Requested   RadioHandle
	Current     RadioHandle
	RemainingMS uint64
}

// ShouldConsiderCandidate reports whether the current switching mode reacts
// to the given state transition at all. freqChanged and pttRisingEdge are
// computed by the caller from the RadioRecord's idempotent setters before
// the election runs.
func (e *ElectionState) ShouldConsiderCandidate(freqChanged, pttRisingEdge bool) bool {
	switch e.Mode {
	case SwitchingModeManual:
		return false
	case SwitchingModeFrequencyTriggered:
		return freqChanged
	case SwitchingModeAutomatic:
		return freqChanged || pttRisingEdge
	default:
		return false
	}
}

// lockoutRemaining returns how much of the lockout window is left at now.
func (e *ElectionState) lockoutRemaining(now time.Time) time.Duration {
	if e.ActiveSince.IsZero() {
		return 0
	}
	elapsed := now.Sub(e.ActiveSince)
	if elapsed >= e.LockoutWindow {
		return 0
	}
	return e.LockoutWindow - elapsed
}

// EvaluateCandidate runs the election for a radio that just qualified as a
// candidate (per ShouldConsiderCandidate). Switching to the already-active
// radio is a no-op that does not reset the lockout window. Manual mode
// never reaches here through the automatic path, but is handled the same
// way SetActiveManual is: no lockout applies.
func (e *ElectionState) EvaluateCandidate(candidate RadioHandle, now time.Time) ElectionResult {
	if candidate == e.Active {
		return ElectionResult{Requested: candidate, Current: e.Active}
	}
	if e.Mode != SwitchingModeManual {
		if remaining := e.lockoutRemaining(now); remaining > 0 {
			return ElectionResult{
				Blocked:     true,
				Requested:   candidate,
				Current:     e.Active,
				RemainingMS: uint64(remaining.Milliseconds()),
			}
		}
	}
	e.Active = candidate
	e.ActiveSince = now
	return ElectionResult{Switched: true, Requested: candidate, Current: candidate}
}

// SetActiveManual unconditionally switches the active radio, as driven by
// a SetActiveRadio mailbox message. Lockout never applies to manual
// overrides, regardless of the configured switching mode.
func (e *ElectionState) SetActiveManual(handle RadioHandle, now time.Time) ElectionResult {
	if handle == e.Active {
		return ElectionResult{Requested: handle, Current: e.Active}
	}
	e.Active = handle
	e.ActiveSince = now
	return ElectionResult{Switched: true, Requested: handle, Current: handle}
}
