package kernel

import (
	"errors"
	"strings"
	"testing"

	"github.com/crewos/crewos/pkg/models"
)

func testAgent(id string, tools ...string) *models.Agent {
	return &models.Agent{
		ID:        id,
		Role:      "role-" + id,
		Goal:      "goal",
		Backstory: "backstory",
		Tools:     tools,
		State:     models.AgentIdle,
	}
}

func testTask(id string, deps ...string) *models.Task {
	return &models.Task{
		ID:             id,
		Description:    "work for " + id,
		ExpectedOutput: "output of " + id,
		DependsOn:      deps,
		State:          models.TaskPending,
	}
}

func testCrew(agents []*models.Agent, tasks []*models.Task) *models.Crew {
	return models.NewCrew(agents, tasks, models.ProcessSequential)
}

func TestTaskManager_UpdateState(t *testing.T) {
	crew := testCrew(nil, []*models.Task{testTask("t0")})
	tm := NewTaskManager(crew)

	if err := tm.UpdateState("t0", models.TaskReady); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if got := crew.GetTask("t0").State; got != models.TaskReady {
		t.Errorf("state = %s, want %s", got, models.TaskReady)
	}

	// Same-state update is a no-op, not an error.
	if err := tm.UpdateState("t0", models.TaskReady); err != nil {
		t.Errorf("same-state update: %v", err)
	}

	err := tm.UpdateState("missing", models.TaskReady)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("unknown task error = %v, want ErrTaskNotFound", err)
	}
}

func TestTaskManager_AddResult(t *testing.T) {
	crew := testCrew(nil, []*models.Task{testTask("t0")})
	tm := NewTaskManager(crew)

	if err := tm.AddResult("t0", "done"); err != nil {
		t.Fatalf("AddResult: %v", err)
	}
	task := crew.GetTask("t0")
	if !task.HasResult() || *task.Result != "done" {
		t.Errorf("result not stored: %+v", task.Result)
	}

	if err := tm.AddResult("missing", "x"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("unknown task error = %v, want ErrTaskNotFound", err)
	}
}

func TestTaskManager_CheckAndUpdateReadiness(t *testing.T) {
	crew := testCrew(nil, []*models.Task{
		testTask("t0"),
		testTask("t1"),
		testTask("t2", "t0", "t1"),
	})
	tm := NewTaskManager(crew)

	// Tasks without dependencies are promoted on the first check.
	if got := tm.CheckAndUpdateReadiness(); got != 2 {
		t.Fatalf("first check promoted %d, want 2", got)
	}
	if got := crew.GetTask("t2").State; got != models.TaskPending {
		t.Errorf("t2 = %s, want pending while deps incomplete", got)
	}

	// One completed dependency is not enough.
	crew.GetTask("t0").State = models.TaskCompleted
	if got := tm.CheckAndUpdateReadiness(); got != 0 {
		t.Errorf("partial deps promoted %d, want 0", got)
	}

	crew.GetTask("t1").State = models.TaskCompleted
	if got := tm.CheckAndUpdateReadiness(); got != 1 {
		t.Errorf("full deps promoted %d, want 1", got)
	}
	if got := crew.GetTask("t2").State; got != models.TaskReady {
		t.Errorf("t2 = %s, want ready", got)
	}
}

func TestTaskManager_ReadinessUnknownDependency(t *testing.T) {
	crew := testCrew(nil, []*models.Task{testTask("t0", "ghost")})
	tm := NewTaskManager(crew)

	if got := tm.CheckAndUpdateReadiness(); got != 0 {
		t.Errorf("promoted %d, want 0 for unknown dependency", got)
	}
	if got := crew.GetTask("t0").State; got != models.TaskPending {
		t.Errorf("t0 = %s, want pending", got)
	}
}

func TestTaskManager_BuildContextNoDeps(t *testing.T) {
	crew := testCrew(nil, []*models.Task{testTask("t0")})
	tm := NewTaskManager(crew)
	task := crew.GetTask("t0")

	got, err := tm.BuildContext(task)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	if got != "" {
		t.Errorf("context = %q, want empty", got)
	}
	// Explicitly empty, not undefined.
	if !task.HasContext() {
		t.Error("context should be set to the empty string")
	}
}

func TestTaskManager_BuildContextDeclaredOrder(t *testing.T) {
	crew := testCrew(nil, []*models.Task{
		testTask("t0"),
		testTask("t1"),
		testTask("t2", "t0", "t1"),
	})
	tm := NewTaskManager(crew)

	// Complete t1 before t0; context must still list t0 first.
	crew.GetTask("t1").State = models.TaskCompleted
	tm.AddResult("t1", "second result")
	crew.GetTask("t0").State = models.TaskCompleted
	tm.AddResult("t0", "first result")

	got, err := tm.BuildContext(crew.GetTask("t2"))
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}

	i0 := strings.Index(got, "--- Output from Task t0")
	i1 := strings.Index(got, "--- Output from Task t1")
	if i0 < 0 || i1 < 0 {
		t.Fatalf("context missing dependency markers:\n%s", got)
	}
	if i0 > i1 {
		t.Errorf("t0 output should precede t1 output regardless of completion order:\n%s", got)
	}
	if !strings.Contains(got, "first result") || !strings.Contains(got, "second result") {
		t.Errorf("context missing dependency results:\n%s", got)
	}
}

func TestTaskManager_BuildContextIncompleteDep(t *testing.T) {
	crew := testCrew(nil, []*models.Task{
		testTask("t0"),
		testTask("t1", "t0"),
	})
	tm := NewTaskManager(crew)
	task := crew.GetTask("t1")

	if _, err := tm.BuildContext(task); err == nil {
		t.Fatal("expected error for incomplete dependency")
	}
	// No partial context is ever produced.
	if task.HasContext() {
		t.Error("context should stay undefined after a failed build")
	}

	crew.GetTask("t0").State = models.TaskCompleted
	if _, err := tm.BuildContext(task); err == nil {
		t.Fatal("expected error for completed dependency without result")
	}
	if task.HasContext() {
		t.Error("context should stay undefined when a dependency has no result")
	}
}
