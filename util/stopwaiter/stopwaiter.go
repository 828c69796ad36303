package stopwaiter

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

const stopDelayWarningTimeout = 30 * time.Second

// StopWaiter tracks goroutines launched by a long-running service so that
// StopAndWait can cancel them and block until they exit. Embed it in the
// service struct and call Start before launching threads.
type StopWaiter struct {
	mutex    sync.Mutex // protects started, stopped, ctx, stopFunc
	started  bool
	stopped  bool
	ctx      context.Context
	stopFunc func()
	name     string

	wg sync.WaitGroup
}

func getParentName(parent any) string {
	// remove asterisk in case the type is a pointer
	return strings.Replace(reflect.TypeOf(parent).String(), "*", "", 1)
}

// Start-after-start panics, start-after-stop yields an already-canceled
// context.
func (s *StopWaiter) Start(ctx context.Context, parent any) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.started {
		panic("start after start")
	}
	s.started = true
	s.name = getParentName(parent)
	s.ctx, s.stopFunc = context.WithCancel(ctx)
	if s.stopped {
		s.stopFunc()
	}
}

func (s *StopWaiter) Started() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.started
}

func (s *StopWaiter) Stopped() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.stopped
}

// StopAndWait may be called multiple times, even before Start.
func (s *StopWaiter) StopAndWait() {
	s.mutex.Lock()
	if s.started && !s.stopped {
		s.stopFunc()
	}
	s.stopped = true
	name := s.name
	s.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(stopDelayWarningTimeout)
	defer timer.Stop()
	for {
		select {
		case <-done:
			return
		case <-timer.C:
			log.Warn("taking too long to stop", "name", name, "delay", stopDelayWarningTimeout)
			timer.Reset(stopDelayWarningTimeout)
		}
	}
}

// GetContext returns the context canceled by StopAndWait. Panics if the
// StopWaiter was never started.
func (s *StopWaiter) GetContext() context.Context {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.started {
		panic("stopwaiter context requested before start")
	}
	return s.ctx
}

// LaunchThread launches a tracked goroutine that should exit when its
// context is canceled.
func (s *StopWaiter) LaunchThread(foo func(context.Context)) {
	ctx := s.GetContext()
	if s.Stopped() {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		foo(ctx)
	}()
}

// CallIteratively calls foo in a loop. foo returns how long to wait before
// the next call; the wait is cut short by shutdown.
func (s *StopWaiter) CallIteratively(foo func(context.Context) time.Duration) {
	s.LaunchThread(func(ctx context.Context) {
		for {
			interval := foo(ctx)
			if ctx.Err() != nil {
				return
			}
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	})
}
