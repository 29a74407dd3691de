package endpoint

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// Status is a point-in-time snapshot of one endpoint's link state.
type Status struct {
	Name      string
	Connected bool
	LastError string
	Since     time.Time
}

// Registry tracks every Session's current link state. It is written by the
// Session goroutine that owns that endpoint and read concurrently by the
// observer API's HTTP handler goroutines, so a bespoke mutex-guarded map
// would serialize readers against every connect/disconnect; xsync.Map
// avoids that the same way hub.Hub.activeStreams tracks concurrently
// mutated stream IDs in the teacher codebase.
type Registry struct {
	statuses *xsync.Map[string, Status]
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{statuses: xsync.NewMap[string, Status]()}
}

// SetConnected records name as connected, clearing any prior error.
func (r *Registry) SetConnected(name string) {
	r.statuses.Store(name, Status{Name: name, Connected: true, Since: time.Now()})
}

// SetDisconnected records name as disconnected along with the error that
// caused the drop, if any.
func (r *Registry) SetDisconnected(name string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.statuses.Store(name, Status{Name: name, Connected: false, LastError: msg, Since: time.Now()})
}

// Snapshot returns every tracked endpoint's current status.
func (r *Registry) Snapshot() []Status {
	out := make([]Status, 0)
	r.statuses.Range(func(_ string, v Status) bool {
		out = append(out, v)
		return true
	})
	return out
}
