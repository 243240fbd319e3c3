package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordhoard/internal/tasks"
)

type fakeQueue struct {
	tasks []backlite.Task
	err   error
}

func (f *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return "task-1", nil
}

type fakePruner struct {
	calls []time.Duration
}

func (f *fakePruner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.calls = append(f.calls, retention)
	return 0, nil
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("every night"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"))
}

func TestAuditCleanupScheduler_RunNowEnqueues(t *testing.T) {
	queue := &fakeQueue{}
	pruner := &fakePruner{}
	s := NewAuditCleanupScheduler(queue, pruner, "0 3 * * *", 14)

	s.RunNow()

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, tasks.AuditCleanupTask{RetentionDays: 14}, queue.tasks[0])
	assert.Empty(t, pruner.calls)
}

func TestAuditCleanupScheduler_RunNowInlineWithoutQueue(t *testing.T) {
	pruner := &fakePruner{}
	s := NewAuditCleanupScheduler(nil, pruner, "0 3 * * *", 2)

	s.RunNow()

	assert.Equal(t, []time.Duration{48 * time.Hour}, pruner.calls)
}

func TestAuditCleanupScheduler_EnqueueFailureIsLogged(t *testing.T) {
	queue := &fakeQueue{err: errors.New("queue closed")}
	s := NewAuditCleanupScheduler(queue, &fakePruner{}, "0 3 * * *", 1)

	assert.NotPanics(t, s.RunNow)
}

func TestAuditCleanupScheduler_StartStop(t *testing.T) {
	s := NewAuditCleanupScheduler(&fakeQueue{}, &fakePruner{}, "0 3 * * *", 30)
	assert.Nil(t, s.NextRun())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Zero(t, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestAuditCleanupScheduler_StopsWithContext(t *testing.T) {
	s := NewAuditCleanupScheduler(&fakeQueue{}, &fakePruner{}, "0 3 * * *", 30)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestAuditCleanupScheduler_StartErrors(t *testing.T) {
	s := NewAuditCleanupScheduler(nil, &fakePruner{}, "not a schedule", 30)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())

	disabled := NewAuditCleanupScheduler(nil, &fakePruner{}, "", 30)
	assert.NoError(t, disabled.Start(context.Background()))
	assert.False(t, disabled.IsRunning())
}
