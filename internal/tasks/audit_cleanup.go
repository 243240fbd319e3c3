package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 30

// AuditPruner deletes audit events older than a retention window.
type AuditPruner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// AuditCleanupTask removes audit events (uploads, deletions, vocabulary
// edits, logins) older than RetentionDays.
type AuditCleanupTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks. Cleanup
// is a single DELETE, so it gets a shorter timeout and a longer backoff
// than the defaults.
func (t AuditCleanupTask) Config() backlite.QueueConfig {
	defaults := DefaultConfig()
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: defaults.MaxRetries,
		Backoff:     5 * defaults.RetryDelay,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: defaults.RetentionDuration,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Retention is the age beyond which events are removed.
func (t AuditCleanupTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// AuditCleanupProcessor runs AuditCleanupTask against pruner.
func AuditCleanupProcessor(pruner AuditPruner) backlite.QueueProcessor[AuditCleanupTask] {
	return func(ctx context.Context, task AuditCleanupTask) error {
		if pruner == nil {
			return errors.New("audit pruner not configured")
		}

		deleted, err := pruner.DeleteOldEvents(task.Retention())
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		log.Printf("[TASK] Removed %d audit events older than %s", deleted, task.Retention())
		return nil
	}
}

// NewAuditCleanupQueue creates the backlite queue for audit cleanup tasks.
func NewAuditCleanupQueue(pruner AuditPruner) backlite.Queue {
	return backlite.NewQueue(AuditCleanupProcessor(pruner))
}
