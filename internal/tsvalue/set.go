package tsvalue

// SetAdd adds value to the set, returning its stable index. If the value is
// already present, returns its existing index and false. Re-adding a value
// that was removed revives its own tombstoned slot, and a slot is never
// given to a different value, so indices stay stable for the lifetime of
// this storage — the overlay's added/removed index buffers
// reference these same indices (§4.2.2).
func (s *Storage) SetAdd(value any) (index int, added bool) {
	if idx, ok := s.setIdx[value]; ok && s.setLive[idx] {
		return idx, false
	}
	if idx, ok := s.setIdx[value]; ok && !s.setLive[idx] {
		s.setLive[idx] = true
		return idx, true
	}
	idx := len(s.setVals)
	s.setVals = append(s.setVals, value)
	s.setLive = append(s.setLive, true)
	s.setIdx[value] = idx
	return idx, true
}

// SetRemove removes value from the set, returning its index and true if it
// was present.
func (s *Storage) SetRemove(value any) (index int, removed bool) {
	idx, ok := s.setIdx[value]
	if !ok || !s.setLive[idx] {
		return 0, false
	}
	s.setLive[idx] = false
	return idx, true
}

// SetContains reports whether value is currently a live member.
func (s *Storage) SetContains(value any) bool {
	idx, ok := s.setIdx[value]
	return ok && s.setLive[idx]
}

// SetValueAt returns the value stored at index (live or tombstoned).
func (s *Storage) SetValueAt(index int) any {
	return s.setVals[index]
}

// SetMembers returns all currently-live values.
func (s *Storage) SetMembers() []any {
	out := make([]any, 0, len(s.setVals))
	for i, v := range s.setVals {
		if s.setLive[i] {
			out = append(out, v)
		}
	}
	return out
}

// SetSize returns the number of live members.
func (s *Storage) SetSize() int {
	n := 0
	for _, live := range s.setLive {
		if live {
			n++
		}
	}
	return n
}
