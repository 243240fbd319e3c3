// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/wordhoard/internal/tasks"
)

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule reports whether schedule is a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// AuditCleanupScheduler triggers audit retention cleanup on a cron schedule.
// With a queue the cleanup runs as a backlite task; without one it runs
// inline on the cron goroutine.
type AuditCleanupScheduler struct {
	queue         Enqueuer
	pruner        tasks.AuditPruner
	schedule      string
	retentionDays int

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a scheduler. queue may be nil when the
// task queue is disabled.
func NewAuditCleanupScheduler(queue Enqueuer, pruner tasks.AuditPruner, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		queue:         queue,
		pruner:        pruner,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the cleanup job and stops it again when ctx is done.
// An empty schedule disables the scheduler.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		log.Printf("Audit cleanup scheduler: disabled")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.RunNow)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Audit cleanup scheduler: started with schedule '%s', keeping %d days", s.schedule, s.retentionDays)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow triggers one cleanup immediately.
func (s *AuditCleanupScheduler) RunNow() {
	task := tasks.AuditCleanupTask{RetentionDays: s.retentionDays}

	if s.queue != nil {
		id, err := s.queue.Enqueue(task)
		if err != nil {
			log.Printf("Audit cleanup: failed to enqueue: %v", err)
			return
		}
		log.Printf("Audit cleanup: enqueued task %s", id)
		return
	}

	if err := tasks.AuditCleanupProcessor(s.pruner)(context.Background(), task); err != nil {
		log.Printf("Audit cleanup: %v", err)
	}
}

// IsRunning returns whether the scheduler is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next cleanup will fire, or nil when stopped.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if entry.ID == 0 {
		return nil
	}
	next := entry.Next
	return &next
}
