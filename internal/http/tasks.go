package http

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/wordhoard/internal/tasks"
)

const taskStatusTimeout = 5 * time.Second

// TaskQueue is the part of tasks.Client the controller uses.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// NextRunner reports when a scheduled task fires next, or nil when it is
// not scheduled. *scheduler.AuditCleanupScheduler implements it.
type NextRunner interface {
	NextRun() *time.Time
}

// TaskTypeInfo describes a task that can be run from the UI or API.
type TaskTypeInfo struct {
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Queue       string     `json:"queue"`
	NextRun     *time.Time `json:"next_run,omitempty"`
}

type runnableTask struct {
	info     TaskTypeInfo
	make     func() backlite.Task
	schedule NextRunner
}

var taskStatusNames = map[backlite.TaskStatus]string{
	backlite.TaskStatusPending:  "pending",
	backlite.TaskStatusRunning:  "running",
	backlite.TaskStatusSuccess:  "success",
	backlite.TaskStatusFailure:  "failure",
	backlite.TaskStatusNotFound: "not_found",
}

// TasksController lets admins trigger background jobs by name.
type TasksController struct {
	queue    TaskQueue
	runnable map[string]runnableTask
	order    []string
}

// NewTasksController wires the runnable tasks. retentionDays is passed to
// manually triggered audit cleanups; cleanupSchedule may be nil.
func NewTasksController(queue TaskQueue, retentionDays int, cleanupSchedule NextRunner) *TasksController {
	tc := &TasksController{queue: queue, runnable: map[string]runnableTask{}}

	cleanup := tasks.AuditCleanupTask{}.Config().Name
	tc.add(runnableTask{
		info: TaskTypeInfo{
			Type:        cleanup,
			Description: fmt.Sprintf("Delete audit events older than %d days", retentionDays),
			Queue:       cleanup,
		},
		make:     func() backlite.Task { return tasks.AuditCleanupTask{RetentionDays: retentionDays} },
		schedule: cleanupSchedule,
	})
	return tc
}

func (tc *TasksController) add(t runnableTask) {
	tc.runnable[t.info.Type] = t
	tc.order = append(tc.order, t.info.Type)
}

// ListTaskTypes returns the tasks RunTask accepts.
// GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := make([]TaskTypeInfo, 0, len(tc.order))
	for _, name := range tc.order {
		t := tc.runnable[name]
		info := t.info
		if t.schedule != nil {
			info.NextRun = t.schedule.NextRun()
		}
		types = append(types, info)
	}
	c.JSON(http.StatusOK, gin.H{"task_types": types})
}

// GetTaskStatus reports the state of an enqueued task.
// GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), taskStatusTimeout)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	name, ok := taskStatusNames[status]
	if !ok {
		name = "unknown"
	}
	c.JSON(http.StatusOK, gin.H{"id": taskID, "status": name})
}

// RunTask enqueues one task of the given type. HTMX callers get an HTML
// fragment, everyone else JSON.
// POST /api/tasks/:type/run
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")
	runnable, ok := tc.runnable[taskType]
	if !ok {
		tc.taskFailed(c, "unknown task type: "+taskType)
		return
	}

	id, err := tc.queue.Enqueue(runnable.make())
	if err != nil {
		tc.taskFailed(c, err.Error())
		return
	}

	if isHTMXRequest(c) {
		c.Header("Content-Type", "text/html")
		c.String(http.StatusOK, `<div class="task-result task-success"><span>Task enqueued</span> <code>%s</code></div>`,
			html.EscapeString(id))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}

func (tc *TasksController) taskFailed(c *gin.Context, msg string) {
	if isHTMXRequest(c) {
		c.Header("Content-Type", "text/html")
		c.String(http.StatusOK, `<div class="task-result task-error"><span>Failed</span> %s</div>`,
			html.EscapeString(msg))
		return
	}
	respondBadRequest(c, msg)
}
