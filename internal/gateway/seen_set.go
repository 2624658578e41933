package gateway

import "sync"

// seenSet is a bounded set of recently delivered message IDs, used to absorb
// transport-level redelivery. Oldest entries are evicted first.
type seenSet struct {
	mu    sync.Mutex
	max   int
	order []string
	set   map[string]struct{}
}

func newSeenSet(max int) *seenSet {
	if max <= 0 {
		max = 200
	}
	return &seenSet{
		max: max,
		set: make(map[string]struct{}, max),
	}
}

// add records id and reports whether it was new.
func (s *seenSet) add(id string) bool {
	if id == "" {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.set[id]; ok {
		return false
	}

	s.set[id] = struct{}{}
	s.order = append(s.order, id)

	if len(s.order) <= s.max {
		return true
	}

	overflow := len(s.order) - s.max
	for i := 0; i < overflow; i++ {
		delete(s.set, s.order[i])
	}
	s.order = append([]string(nil), s.order[overflow:]...)
	return true
}
