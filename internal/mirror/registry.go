package mirror

import (
	"sort"
	"sync"
	"time"
)

// Phase is the lifecycle stage of one instance's worker.
type Phase string

const (
	PhaseQueued     Phase = "queued"
	PhaseWaiting    Phase = "waiting"
	PhaseHistorical Phase = "historical"
	PhaseTailing    Phase = "tailing"
	PhaseStopped    Phase = "stopped"
	PhaseFailed     Phase = "failed"
)

// InstanceStatus is a point-in-time view of one instance's sync state.
type InstanceStatus struct {
	Instance        string
	Phase           Phase
	ActiveFile      string
	Marker          string
	BytesWritten    int64
	FilesDownloaded int
	FilesSkipped    int
	FilesFailed     int
	FailureStreak   int
	LastPoll        time.Time
	LastError       string
	UpdatedAt       time.Time
}

// Registry collects InstanceStatus updates from workers. A nil *Registry
// accepts and discards updates.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*InstanceStatus
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*InstanceStatus), now: time.Now}
}

func (r *Registry) update(instance string, fn func(*InstanceStatus)) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[instance]
	if !ok {
		entry = &InstanceStatus{Instance: instance, Phase: PhaseQueued}
		r.entries[instance] = entry
	}
	fn(entry)
	entry.UpdatedAt = r.now()
}

func (r *Registry) setPhase(instance string, phase Phase) {
	r.update(instance, func(s *InstanceStatus) { s.Phase = phase })
}

func (r *Registry) setError(instance string, err error) {
	r.update(instance, func(s *InstanceStatus) {
		if err == nil {
			s.LastError = ""
			return
		}
		s.LastError = err.Error()
	})
}

// Get returns the status of one instance.
func (r *Registry) Get(instance string) (InstanceStatus, bool) {
	if r == nil {
		return InstanceStatus{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[instance]
	if !ok {
		return InstanceStatus{}, false
	}
	return *entry, true
}

// Snapshot returns every instance's status ordered by instance name.
func (r *Registry) Snapshot() []InstanceStatus {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]InstanceStatus, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, *entry)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out
}
