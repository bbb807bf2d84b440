package web

import "sync"

// AxisStatus is the monitor's view of one axis.
type AxisStatus struct {
	Position int    `json:"position"`
	State    string `json:"state"`
}

// StatusStore holds the latest per-axis snapshot. The control loop
// publishes into it every tick; HTTP handlers read from it.
type StatusStore struct {
	mu   sync.RWMutex
	axes map[string]AxisStatus
}

func NewStatusStore() *StatusStore {
	return &StatusStore{axes: make(map[string]AxisStatus)}
}

// Publish implements the control loop's status sink.
func (s *StatusStore) Publish(tag string, position int, state string) {
	s.mu.Lock()
	s.axes[tag] = AxisStatus{Position: position, State: state}
	s.mu.Unlock()
}

// Snapshot returns a copy of the current per-axis status.
func (s *StatusStore) Snapshot() map[string]AxisStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]AxisStatus, len(s.axes))
	for k, v := range s.axes {
		out[k] = v
	}
	return out
}
