package game

import (
	"testing"
)

func TestSchedulerRunsInDueOrder(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.After(ms(30), func() { order = append(order, "c") })
	s.After(ms(10), func() { order = append(order, "a") })
	s.After(ms(10), func() { order = append(order, "b") })

	if n := s.Advance(ms(9)); n != 0 {
		t.Fatalf("expected nothing due at 9ms, ran %d", n)
	}
	if n := s.Advance(ms(1)); n != 2 {
		t.Fatalf("expected 2 tasks at 10ms, ran %d", n)
	}
	s.Advance(ms(100))

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected %v, got %v", want, order)
			break
		}
	}
	if s.Now() != ms(110) {
		t.Errorf("expected Now=110ms, got %v", s.Now())
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	ran := false
	task := s.After(ms(5), func() { ran = true })
	task.Cancel()
	task.Cancel()

	s.Advance(ms(10))
	if ran {
		t.Error("canceled task ran")
	}
	if s.Pending() != 0 {
		t.Errorf("expected 0 pending, got %d", s.Pending())
	}

	var nilTask *Task
	nilTask.Cancel()
}

func TestSchedulerTaskScheduledFromCallback(t *testing.T) {
	s := NewScheduler()
	var order []int
	s.After(ms(10), func() {
		order = append(order, 1)
		s.After(0, func() { order = append(order, 2) })
		s.After(ms(10), func() { order = append(order, 3) })
	})

	s.Advance(ms(15))
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected [1 2] after 15ms, got %v", order)
	}
	if s.Pending() != 1 {
		t.Errorf("expected 1 pending task, got %d", s.Pending())
	}
	s.Advance(ms(10))
	if len(order) != 3 {
		t.Errorf("expected follow-up task at 25ms, got %v", order)
	}
}

func TestSchedulerCancelAll(t *testing.T) {
	s := NewScheduler()
	count := 0
	for i := 1; i <= 3; i++ {
		s.After(ms(i), func() { count++ })
	}
	s.CancelAll()
	s.Advance(ms(10))
	if count != 0 {
		t.Errorf("expected no callbacks after CancelAll, got %d", count)
	}
}
