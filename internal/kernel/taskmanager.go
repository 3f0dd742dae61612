package kernel

import (
	"fmt"
	"strings"

	"github.com/crewos/crewos/pkg/models"
)

// TaskManager owns task state transitions, dependency readiness, and context
// aggregation for the loaded crew.
type TaskManager struct {
	crew *models.Crew
}

// NewTaskManager creates a task manager over the crew's task table.
func NewTaskManager(crew *models.Crew) *TaskManager {
	return &TaskManager{crew: crew}
}

// GetTask returns the task with the given ID, or nil.
func (tm *TaskManager) GetTask(id string) *models.Task {
	return tm.crew.GetTask(id)
}

// UpdateState moves a task to a new state. Setting the current state again
// is a no-op. Unknown task IDs are reported, never silently ignored.
func (tm *TaskManager) UpdateState(id string, newState models.TaskState) error {
	task := tm.crew.GetTask(id)
	if task == nil {
		return fmt.Errorf("%w: task %s", ErrTaskNotFound, id)
	}
	if task.State == newState {
		return nil
	}
	debugLog("[taskmanager] task %s state %s -> %s", id, task.State, newState)
	task.State = newState
	return nil
}

// AddResult stores a task's final output.
func (tm *TaskManager) AddResult(id, result string) error {
	task := tm.crew.GetTask(id)
	if task == nil {
		return fmt.Errorf("%w: task %s", ErrTaskNotFound, id)
	}
	task.Result = &result
	debugLog("[taskmanager] result recorded for task %s", id)
	return nil
}

// CheckAndUpdateReadiness scans every pending task and promotes it to ready
// iff all its dependencies exist and are completed. Tasks without
// dependencies are promoted on the first check. Returns the number of tasks
// promoted. Readiness is pull-based: callers invoke this after completions.
func (tm *TaskManager) CheckAndUpdateReadiness() int {
	promoted := 0
	for _, id := range tm.crew.TaskOrder {
		task := tm.crew.GetTask(id)
		if task == nil || task.State != models.TaskPending {
			continue
		}

		depsMet := true
		for _, depID := range task.DependsOn {
			dep := tm.crew.GetTask(depID)
			if dep == nil || dep.State != models.TaskCompleted {
				depsMet = false
				break
			}
		}
		if depsMet {
			task.State = models.TaskReady
			promoted++
			debugLog("[taskmanager] task %s promoted to ready", id)
		}
	}
	return promoted
}

// BuildContext aggregates dependency results into the task's context, in
// declared dependency order regardless of completion order. Each part is
// delimited with markers naming the source task. If any dependency is not
// completed or lacks a result, the context is left undefined and an error
// is returned; no partial context is ever produced. A task with no
// dependencies gets an explicit empty context.
func (tm *TaskManager) BuildContext(task *models.Task) (string, error) {
	if len(task.DependsOn) == 0 {
		empty := ""
		task.Context = &empty
		return "", nil
	}

	parts := make([]string, 0, len(task.DependsOn))
	for _, depID := range task.DependsOn {
		dep := tm.crew.GetTask(depID)
		if dep == nil {
			task.Context = nil
			return "", fmt.Errorf("%w: dependency %s of task %s", ErrTaskNotFound, depID, task.ID)
		}
		if dep.State != models.TaskCompleted || !dep.HasResult() {
			task.Context = nil
			return "", fmt.Errorf("dependency %s of task %s is not completed (state %s)", depID, task.ID, dep.State)
		}
		parts = append(parts, fmt.Sprintf("--- Output from Task %s (%s) ---\n%s\n--- End Task %s ---",
			depID, truncate(dep.Description, 30), *dep.Result, depID))
	}

	full := strings.Join(parts, "\n\n")
	task.Context = &full
	debugLog("[taskmanager] context built for task %s from %d dependencies", task.ID, len(task.DependsOn))
	return full, nil
}

// truncate shortens s for log and delimiter display.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
