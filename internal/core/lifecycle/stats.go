package lifecycle

import "time"

// Fault records one failed handler call during a frame pass.
type Fault struct {
	ID         string    `json:"id"`
	Frame      uint64    `json:"frame"`
	Kind       EventKind `json:"kind"`
	EntityType string    `json:"entity_type"`
	Handler    string    `json:"handler"`
	Message    string    `json:"error"`
	Time       time.Time `json:"time"`
	Err        error     `json:"-"`
}

// Stats is a point-in-time view of the manager counters.
type Stats struct {
	Frames         uint64         `json:"frames"`
	Rebuilds       uint64         `json:"rebuilds"`
	Modules        int            `json:"modules"`
	Types          int            `json:"types"`
	Live           int            `json:"live"`
	Members        map[string]int `json:"members"`
	PendingAdd     int            `json:"pending_add"`
	PendingRemove  int            `json:"pending_remove"`
	Dispatched     uint64         `json:"dispatched"`
	Skipped        uint64         `json:"skipped"`
	Faults         uint64         `json:"faults"`
	LastUpdate     time.Duration  `json:"last_update_ns"`
	LastLateUpdate time.Duration  `json:"last_late_update_ns"`
	// Fingerprint changes whenever the set of bound handlers changes.
	Fingerprint string `json:"fingerprint"`
}

// Snapshot is a detached copy of the manager state, safe to hand to other goroutines.
type Snapshot struct {
	Stats  Stats   `json:"stats"`
	Faults []Fault `json:"faults"`
	Types  string  `json:"types"`
}

// faultRing keeps the most recent faults.
type faultRing struct {
	buf  []Fault
	next int
	full bool
}

func newFaultRing(size int) *faultRing {
	if size < 0 {
		size = 0
	}
	return &faultRing{buf: make([]Fault, size)}
}

func (r *faultRing) push(f Fault) {
	if len(r.buf) == 0 {
		return
	}
	r.buf[r.next] = f
	r.next++
	if r.next == len(r.buf) {
		r.next = 0
		r.full = true
	}
}

// list returns faults oldest first.
func (r *faultRing) list() []Fault {
	if !r.full {
		out := make([]Fault, r.next)
		copy(out, r.buf[:r.next])
		return out
	}
	out := make([]Fault, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}
