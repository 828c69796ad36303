package timeref

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArtificial(t *testing.T) {
	clock := NewArtificial(100)
	require.Equal(t, Timestamp(100), clock.Now())

	clock.Advance(50)
	require.Equal(t, Timestamp(150), clock.Now())

	clock.Set(200)
	require.Equal(t, Timestamp(200), clock.Now())

	// Moving backwards is ignored.
	clock.Set(10)
	require.Equal(t, Timestamp(200), clock.Now())

	// Advancing past the maximum saturates instead of wrapping.
	clock.Advance(^Timestamp(0))
	require.Equal(t, ^Timestamp(0), clock.Now())
}

func TestWallClock(t *testing.T) {
	clock := NewWallClock()
	first := clock.Now()
	require.NotZero(t, first)
	require.GreaterOrEqual(t, clock.Now(), first)
}
