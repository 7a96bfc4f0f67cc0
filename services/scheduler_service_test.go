package services

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func testScheduler() *SchedulerService {
	s := NewSchedulerService()
	s.immediateDelay = 20 * time.Millisecond
	return s
}

func TestScheduleUpsertIsIdempotent(t *testing.T) {
	s := testScheduler()
	fireAt := time.Now().Add(time.Hour)

	if err := s.Schedule("job-a", fireAt, time.Hour, func() {}); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	if err := s.Schedule("job-a", fireAt, time.Hour, func() {}); err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	if err := s.Schedule("job-b", fireAt, time.Hour, func() {}); err != nil {
		t.Fatalf("schedule job-b: %v", err)
	}

	if got := len(s.Pending()); got != 2 {
		t.Fatalf("pending = %d, want 2 (upsert must not duplicate)", got)
	}
}

func TestCancelRemovesPendingJob(t *testing.T) {
	s := testScheduler()
	fireAt := time.Now().Add(time.Hour)

	if err := s.Schedule("job-a", fireAt, time.Hour, func() {}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	s.Cancel("job-a")
	s.Cancel("job-missing") // no-op

	if got := len(s.Pending()); got != 0 {
		t.Fatalf("pending = %d, want 0", got)
	}
}

func TestMisfireBeyondGraceIsDropped(t *testing.T) {
	s := testScheduler()
	base := time.Now()
	s.now = func() time.Time { return base }

	// 2 hours late on a 1-hour-grace job: must not fire at all.
	err := s.Schedule("stale", base.Add(-2*time.Hour), time.Hour, func() {
		t.Error("dropped job must not run")
	})
	if !errors.Is(err, ErrMisfireExpired) {
		t.Fatalf("err = %v, want ErrMisfireExpired", err)
	}
	if got := len(s.Pending()); got != 0 {
		t.Fatalf("pending = %d, want 0", got)
	}
}

func TestMisfireWithinGraceFiresOnce(t *testing.T) {
	s := testScheduler()
	s.Start()
	defer s.Shutdown(time.Second)

	fired := make(chan struct{}, 1)
	// 30 minutes late with a 1-hour grace: fires as soon as possible.
	err := s.Schedule("late", time.Now().Add(-30*time.Minute), time.Hour, func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("within-grace misfire did not fire")
	}
}

func TestReplacedJobFiresOnce(t *testing.T) {
	s := testScheduler()
	s.Start()
	defer s.Shutdown(time.Second)

	var count int32
	fireAt := time.Now().Add(200 * time.Millisecond)
	for i := 0; i < 2; i++ {
		err := s.Schedule("job-a", fireAt, time.Hour, func() {
			atomic.AddInt32(&count, 1)
		})
		if err != nil {
			t.Fatalf("schedule %d: %v", i, err)
		}
	}

	time.Sleep(1500 * time.Millisecond)
	if got := atomic.LoadInt32(&count); got != 1 {
		t.Fatalf("job ran %d times, want exactly 1", got)
	}
	if got := len(s.Pending()); got != 0 {
		t.Fatalf("pending = %d after firing, want 0", got)
	}
}

func TestShutdownRejectsNewJobs(t *testing.T) {
	s := testScheduler()
	s.Start()
	s.Shutdown(time.Second)

	err := s.Schedule("after-stop", time.Now().Add(time.Hour), time.Hour, func() {})
	if !errors.Is(err, ErrSchedulerStopped) {
		t.Fatalf("err = %v, want ErrSchedulerStopped", err)
	}
}

func TestShutdownDrainsInFlightCallback(t *testing.T) {
	s := testScheduler()
	s.Start()

	started := make(chan struct{})
	done := make(chan struct{})
	err := s.Schedule("slow", time.Now().Add(100*time.Millisecond), time.Hour, func() {
		close(started)
		time.Sleep(300 * time.Millisecond)
		close(done)
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	<-started
	s.Shutdown(5 * time.Second)

	select {
	case <-done:
	default:
		t.Fatal("shutdown returned before the in-flight callback finished")
	}
}
