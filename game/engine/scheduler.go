package engine

import (
	"sort"
	"sync"
	"time"
)

// Timing holds the delay before each step of a roll
type Timing struct {
	Roll         time.Duration // rolling → committed value
	FaceInterval time.Duration // animated face changes while rolling
	MoveDelay    time.Duration // committed value → token moves
	Settle       time.Duration // token arrives → animating cleared
	Resolve      time.Duration // settled → snake/ladder lookup
	HazardNotice time.Duration // lookup → "landed on a snake" message
	HazardMove   time.Duration // message → token slides or climbs
}

// DefaultTiming returns the interactive pacing
func DefaultTiming() Timing {
	return Timing{
		Roll:         1000 * time.Millisecond,
		FaceInterval: 100 * time.Millisecond,
		MoveDelay:    500 * time.Millisecond,
		Settle:       500 * time.Millisecond,
		Resolve:      300 * time.Millisecond,
		HazardNotice: 300 * time.Millisecond,
		HazardMove:   700 * time.Millisecond,
	}
}

// Scaled multiplies every delay by factor
func (t Timing) Scaled(factor float64) Timing {
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * factor)
	}
	return Timing{
		Roll:         scale(t.Roll),
		FaceInterval: scale(t.FaceInterval),
		MoveDelay:    scale(t.MoveDelay),
		Settle:       scale(t.Settle),
		Resolve:      scale(t.Resolve),
		HazardNotice: scale(t.HazardNotice),
		HazardMove:   scale(t.HazardMove),
	}
}

// Total is the longest a single roll can take, snake or ladder included
func (t Timing) Total() time.Duration {
	return t.Roll + t.MoveDelay + 2*(t.Settle+t.Resolve) + t.HazardNotice + t.HazardMove
}

// Scheduler runs fn once d has elapsed
type Scheduler interface {
	Schedule(d time.Duration, fn func())
}

// TimerScheduler schedules on the wall clock
type TimerScheduler struct{}

// Schedule implements Scheduler
func (TimerScheduler) Schedule(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

type scheduledTask struct {
	due time.Duration
	seq uint64
	fn  func()
}

// ManualScheduler is a virtual clock. Tasks only run when the clock is
// advanced; tasks due at the same instant run in the order they were
// scheduled.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []scheduledTask
}

// NewManualScheduler creates a virtual clock at zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.tasks = append(s.tasks, scheduledTask{due: s.now + d, seq: s.seq, fn: fn})
}

// Now returns the elapsed virtual time
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of tasks not yet run
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Advance moves the clock forward by d, running every task that falls due
// on the way, including tasks scheduled by tasks.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		task, ok := s.popDue(target)
		if !ok {
			break
		}
		task.fn()
	}

	s.mu.Lock()
	if s.now < target {
		s.now = target
	}
	s.mu.Unlock()
}

// RunUntilIdle runs tasks in due order until none remain. It returns the
// number of tasks run and stops after limit tasks to guard against
// self-rescheduling loops.
func (s *ManualScheduler) RunUntilIdle(limit int) int {
	ran := 0
	for ran < limit {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			break
		}
		s.sortLocked()
		target := s.tasks[0].due
		s.mu.Unlock()

		task, ok := s.popDue(target)
		if !ok {
			break
		}
		task.fn()
		ran++
	}
	return ran
}

// popDue removes the earliest task due at or before target and moves the
// clock to it. The lock is released before the task runs.
func (s *ManualScheduler) popDue(target time.Duration) (scheduledTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return scheduledTask{}, false
	}
	s.sortLocked()
	task := s.tasks[0]
	if task.due > target {
		return scheduledTask{}, false
	}
	s.tasks = s.tasks[1:]
	if task.due > s.now {
		s.now = task.due
	}
	return task, true
}

func (s *ManualScheduler) sortLocked() {
	sort.Slice(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
}
