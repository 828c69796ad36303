package faultproof

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func storeWithHeights(heights ...uint64) *proposalStore {
	s := &proposalStore{}
	for _, h := range heights {
		s.append(&Proposal{L2BlockNumber: h})
	}
	return s
}

func TestStoreAppendGet(t *testing.T) {
	s := storeWithHeights(100, 200)
	require.Equal(t, uint64(2), s.len())

	p, ok := s.get(1)
	require.True(t, ok)
	require.Equal(t, uint64(200), p.L2BlockNumber)

	_, ok = s.get(2)
	require.False(t, ok)
}

func TestStoreLatest(t *testing.T) {
	s := storeWithHeights(100, 200, 300)
	if diff := cmp.Diff([]uint64{2, 1, 0}, s.latest(5)); diff != "" {
		t.Errorf("unexpected latest indices (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{2, 1}, s.latest(2)); diff != "" {
		t.Errorf("unexpected latest indices (-want +got):\n%s", diff)
	}
}

func TestStoreSearchBackward(t *testing.T) {
	s := storeWithHeights(100, 200, 300, 400)
	all := func(uint64, *Proposal) bool { return true }

	if diff := cmp.Diff([]uint64{3, 2, 1, 0}, s.searchBackward(3, 10, all)); diff != "" {
		t.Errorf("unexpected indices (-want +got):\n%s", diff)
	}

	// Start beyond the store clips to the newest entry, limit truncates.
	if diff := cmp.Diff([]uint64{3, 2}, s.searchBackward(99, 2, all)); diff != "" {
		t.Errorf("unexpected indices (-want +got):\n%s", diff)
	}

	// Resolved entries are skipped.
	p, _ := s.get(2)
	p.Resolution = ResolutionDefenderWins
	if diff := cmp.Diff([]uint64{3, 1, 0}, s.searchBackward(3, 10, all)); diff != "" {
		t.Errorf("unexpected indices (-want +got):\n%s", diff)
	}

	// Predicate filters by height.
	atMost := func(_ uint64, p *Proposal) bool { return p.L2BlockNumber <= 200 }
	if diff := cmp.Diff([]uint64{1, 0}, s.searchBackward(3, 10, atMost)); diff != "" {
		t.Errorf("unexpected indices (-want +got):\n%s", diff)
	}

	require.Nil(t, s.searchBackward(3, 0, all))
	require.Nil(t, (&proposalStore{}).searchBackward(0, 5, all))
}
