package sensor

// Counter names.
const (
	CounterPartsProduced = "parts_produced"
)

// State holds the mutable counters of a single asset.
//
// A State is owned by one simulation loop and must not be shared. It has no
// locking.
type State struct {
	counters map[string]int64
}

// NewState returns a State with all counters at zero.
func NewState() *State {
	return &State{counters: make(map[string]int64)}
}

// Increment adds one to the named counter and returns the new value.
func (s *State) Increment(name string) int64 {
	if s.counters == nil {
		s.counters = make(map[string]int64)
	}
	s.counters[name]++
	return s.counters[name]
}

// Counter returns the current value of the named counter.
func (s *State) Counter(name string) int64 {
	return s.counters[name]
}

// Counters returns a copy of all counters.
func (s *State) Counters() map[string]int64 {
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[k] = v
	}
	return out
}
