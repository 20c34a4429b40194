package game

import "time"

// Task is a callback scheduled on a Scheduler.
type Task struct {
	due      time.Duration
	seq      uint64
	fn       func()
	canceled bool
}

// Cancel prevents the task from running. Safe to call more than once or after it ran.
func (t *Task) Cancel() {
	if t != nil {
		t.canceled = true
	}
}

// Scheduler runs delayed callbacks against a virtual clock that only moves
// when Advance is called. It is not safe for concurrent use: the owning game
// goroutine advances it once per tick, and tests advance it by hand.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks []*Task
}

// NewScheduler returns a scheduler at virtual time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once d has elapsed. A non-positive d runs on the next Advance.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &Task{due: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by dt and runs every due task in (due, scheduling)
// order. Tasks scheduled by a callback that are already due run in the same call.
// It returns the number of callbacks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt > 0 {
		s.now += dt
	}
	ran := 0
	for {
		next := s.popDue()
		if next == nil {
			return ran
		}
		next.fn()
		ran++
	}
}

// Pending returns the number of tasks that have not run and are not canceled.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.canceled {
			n++
		}
	}
	return n
}

// CancelAll cancels every pending task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.canceled = true
	}
	s.tasks = s.tasks[:0]
}

// popDue removes and returns the earliest due task, dropping canceled ones on the way.
func (s *Scheduler) popDue() *Task {
	best := -1
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.canceled {
			continue
		}
		live = append(live, t)
	}
	s.tasks = live
	for i, t := range s.tasks {
		if t.due > s.now {
			continue
		}
		if best < 0 || t.due < s.tasks[best].due || (t.due == s.tasks[best].due && t.seq < s.tasks[best].seq) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	t := s.tasks[best]
	s.tasks = append(s.tasks[:best], s.tasks[best+1:]...)
	return t
}
