// Package timeref abstracts the logical clock the dispute engine compares
// deadlines against. The engine never reads wall time directly; it is handed
// a Reference so tests can drive deadlines deterministically.
package timeref

import (
	"sync"
	"time"
)

// Timestamp is a unix timestamp in seconds. The clock backing a Reference is
// required to be monotonically non-decreasing.
type Timestamp uint64

// Reference yields the current logical time.
type Reference interface {
	Now() Timestamp
}

type wallClock struct{}

// NewWallClock returns a Reference backed by the system clock.
func NewWallClock() Reference {
	return wallClock{}
}

func (wallClock) Now() Timestamp {
	return Timestamp(time.Now().Unix())
}

// Artificial is a manually advanced Reference for tests.
type Artificial struct {
	mutex   sync.Mutex
	current Timestamp
}

func NewArtificial(start Timestamp) *Artificial {
	return &Artificial{current: start}
}

func (a *Artificial) Now() Timestamp {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.current
}

// Set moves the clock to newVal. Moving backwards is ignored so the
// monotonicity contract holds even with careless test code.
func (a *Artificial) Set(newVal Timestamp) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if newVal > a.current {
		a.current = newVal
	}
}

func (a *Artificial) Advance(delta Timestamp) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	sum := a.current + delta
	if sum < a.current {
		sum = ^Timestamp(0)
	}
	a.current = sum
}
