package yank

import (
	"sync"
	"time"
)

// Scheduler runs one-shot callbacks keyed by name. Scheduling a key that is
// already pending replaces the earlier callback.
type Scheduler interface {
	Schedule(key string, d time.Duration, fn func())
	Cancel(key string)
	Stop()
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

type timerScheduler struct {
	mu      sync.Mutex
	gen     uint64
	timers  map[string]pendingTimer
	stopped bool
}

// NewTimerScheduler returns a Scheduler backed by time.AfterFunc.
//
// Every scheduled callback carries a generation number. A timer whose
// generation no longer matches the pending entry for its key does nothing, so a
// replaced callback never runs even when its timer fired while it was being
// replaced. Callbacks run with the scheduler locked and must not call back into
// it.
func NewTimerScheduler() Scheduler {
	return &timerScheduler{timers: make(map[string]pendingTimer)}
}

func (s *timerScheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.cancel(key)

	s.gen++
	gen := s.gen
	s.timers[key] = pendingTimer{
		gen: gen,
		timer: time.AfterFunc(d, func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			if p, ok := s.timers[key]; !ok || p.gen != gen {
				return
			}
			delete(s.timers, key)
			fn()
		}),
	}
}

func (s *timerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel(key)
}

func (s *timerScheduler) cancel(key string) {
	if p, ok := s.timers[key]; ok {
		p.timer.Stop()
		delete(s.timers, key)
	}
}

// Stop cancels every pending callback. Later calls to Schedule are ignored.
func (s *timerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.timers {
		s.cancel(key)
	}
	s.stopped = true
}
