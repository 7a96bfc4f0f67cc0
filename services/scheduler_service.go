// services/scheduler_service.go
package services

import (
	"errors"
	"sync"
	"time"

	"telecare-backend/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrMisfireExpired reports a fire time that passed beyond its grace window.
// The job must be dropped, never fired hours late.
var ErrMisfireExpired = errors.New("fire time past its grace window")

// ErrSchedulerStopped reports a schedule attempt after shutdown began.
var ErrSchedulerStopped = errors.New("scheduler is shut down")

// SchedulerService wraps the cron runner with one-shot date jobs keyed by an
// idempotent job id: scheduling an existing id replaces the pending entry,
// canceling an absent id is a no-op. Schedule and Cancel are fast-path
// operations; callbacks run on cron worker goroutines, never on the timer
// loop.
type SchedulerService struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
	stopped bool

	now func() time.Time
	// delay applied when firing a within-grace misfire "as soon as possible"
	immediateDelay time.Duration
}

func NewSchedulerService() *SchedulerService {
	return &SchedulerService{
		cron:           cron.New(),
		entries:        make(map[string]cron.EntryID),
		now:            time.Now,
		immediateDelay: time.Second,
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
	utils.GetLogger().Info("reminder scheduler started")
}

// onceAt fires exactly once at the given time, then never again.
type onceAt struct {
	at time.Time
}

func (o onceAt) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

// Schedule registers run to execute once at fireAt. If jobID is already
// pending the old entry is replaced. A fireAt in the past fires immediately
// when still inside grace, otherwise ErrMisfireExpired is returned and
// nothing is registered.
func (s *SchedulerService) Schedule(jobID string, fireAt time.Time, grace time.Duration, run func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}

	if old, ok := s.entries[jobID]; ok {
		s.cron.Remove(old)
		delete(s.entries, jobID)
	}

	now := s.now()
	effective := fireAt
	if !fireAt.After(now) {
		late := now.Sub(fireAt)
		if late > grace {
			return ErrMisfireExpired
		}
		utils.GetLogger().Warn("misfired job within grace, firing now",
			zap.String("job_id", jobID),
			zap.Duration("late_by", late),
		)
		effective = now.Add(s.immediateDelay)
	}

	var entryID cron.EntryID
	entryID = s.cron.Schedule(onceAt{at: effective}, cron.FuncJob(func() {
		defer s.finish(jobID, entryID)
		run()
	}))
	s.entries[jobID] = entryID

	return nil
}

// finish retires a fired entry unless it was replaced while running.
func (s *SchedulerService) finish(jobID string, entryID cron.EntryID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[jobID]; ok && cur == entryID {
		s.cron.Remove(cur)
		delete(s.entries, jobID)
	}
}

// Cancel removes a pending job. It does not interrupt a callback that has
// already started running.
func (s *SchedulerService) Cancel(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[jobID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, jobID)
	}
}

// Pending returns the ids of jobs still waiting to fire.
func (s *SchedulerService) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown stops accepting fires and waits for in-flight callbacks up to
// timeout; past that they are abandoned and logged.
func (s *SchedulerService) Shutdown(timeout time.Duration) {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		utils.GetLogger().Info("reminder scheduler drained")
	case <-time.After(timeout):
		utils.GetLogger().Error("reminder scheduler drain timed out, abandoning in-flight jobs",
			zap.Duration("timeout", timeout))
	}
}
