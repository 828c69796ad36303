package faultproof

// proposalStore is an append-only arena of proposals addressed by a stable
// index. Index 0 is genesis. Not safe for concurrent use; guarded by the
// engine lock.
type proposalStore struct {
	proposals []*Proposal
}

func (s *proposalStore) append(p *Proposal) uint64 {
	s.proposals = append(s.proposals, p)
	return uint64(len(s.proposals) - 1)
}

func (s *proposalStore) get(id uint64) (*Proposal, bool) {
	if id >= uint64(len(s.proposals)) {
		return nil, false
	}
	return s.proposals[id], true
}

func (s *proposalStore) len() uint64 {
	return uint64(len(s.proposals))
}

// latest returns up to n indices in reverse chronological order, clipped to
// the store size.
func (s *proposalStore) latest(n uint64) []uint64 {
	size := s.len()
	if n > size {
		n = size
	}
	ids := make([]uint64, 0, n)
	for i := uint64(0); i < n; i++ {
		ids = append(ids, size-1-i)
	}
	return ids
}

// searchBackward scans from start toward index 0, skipping resolved entries,
// and returns the first limit indices matching pred. A start beyond the
// store is clipped to the newest entry.
func (s *proposalStore) searchBackward(start uint64, limit int, pred func(uint64, *Proposal) bool) []uint64 {
	if limit <= 0 || s.len() == 0 {
		return nil
	}
	if start >= s.len() {
		start = s.len() - 1
	}
	var ids []uint64
	for i := start; ; i-- {
		p := s.proposals[i]
		if p.Resolution == ResolutionInProgress && pred(i, p) {
			ids = append(ids, i)
			if len(ids) == limit {
				break
			}
		}
		if i == 0 {
			break
		}
	}
	return ids
}
