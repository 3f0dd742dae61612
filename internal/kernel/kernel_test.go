package kernel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crewos/crewos/internal/graph"
	"github.com/crewos/crewos/internal/oracle"
	"github.com/crewos/crewos/internal/tool"
	"github.com/crewos/crewos/pkg/models"
)

// failingOracle always returns an error, exercising the retry path.
type failingOracle struct{}

func (failingOracle) Decide(ctx context.Context, req oracle.Request) (oracle.Consultation, error) {
	return oracle.Consultation{}, errors.New("model unavailable")
}

// pipelineCrew is the standard three-task fixture: t0 and t1 are
// independent, t2 aggregates both, two agents share the work.
func pipelineCrew() *models.Crew {
	return testCrew(
		[]*models.Agent{testAgent("a0", "calculator"), testAgent("a1")},
		[]*models.Task{testTask("t0"), testTask("t1"), testTask("t2", "t0", "t1")},
	)
}

func TestKernel_LoadCrewValidation(t *testing.T) {
	k := New(oracle.NewScriptedOracle(), tool.DefaultRegistry())

	tests := []struct {
		name    string
		crew    *models.Crew
		wantErr error
	}{
		{
			name: "dependency cycle",
			crew: testCrew(nil, []*models.Task{
				testTask("t0", "t1"),
				testTask("t1", "t0"),
			}),
			wantErr: graph.ErrDependencyCycle,
		},
		{
			name: "order before dependency",
			crew: func() *models.Crew {
				c := testCrew(nil, []*models.Task{testTask("t1"), testTask("t0", "t1")})
				c.TaskOrder = []string{"t0", "t1"}
				return c
			}(),
			wantErr: graph.ErrOrderViolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := k.LoadCrew(tt.crew)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadCrew() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	bad := pipelineCrew()
	bad.Process = models.Process("parallel")
	if err := k.LoadCrew(bad); err == nil {
		t.Error("LoadCrew() accepted an unknown process")
	}

	if err := k.LoadCrew(pipelineCrew()); err != nil {
		t.Errorf("LoadCrew() rejected a valid crew: %v", err)
	}
}

func TestKernel_TickWithoutCrew(t *testing.T) {
	k := New(oracle.NewScriptedOracle(), tool.DefaultRegistry())
	if k.Tick(context.Background()) {
		t.Error("Tick() = true with no crew loaded, want false")
	}
	if k.TickCount() != 0 {
		t.Errorf("TickCount() = %d, want 0", k.TickCount())
	}
	if err := k.Run(context.Background(), 10, 0); !errors.Is(err, ErrNoCrew) {
		t.Errorf("Run() error = %v, want ErrNoCrew", err)
	}
}

func TestKernel_PipelineRun(t *testing.T) {
	script := oracle.NewScriptedOracle().
		Script("t0",
			oracle.Decision{Action: oracle.ActionUseTool, ToolName: "calculator",
				Arguments: map[string]any{"expression": "2+3"}},
			oracle.Decision{Action: oracle.ActionFinalAnswer, Content: "the sum is 5"},
		).
		Script("t1", oracle.Decision{Action: oracle.ActionFinalAnswer, Content: "survey done"})

	k := New(script, tool.DefaultRegistry())
	crew := pipelineCrew()
	if err := k.LoadCrew(crew); err != nil {
		t.Fatalf("LoadCrew: %v", err)
	}

	ctx := context.Background()

	// Tick 1: t0 assigned to a0, nothing running yet.
	if !k.Tick(ctx) {
		t.Fatal("tick 1 reported done")
	}
	if got := crew.GetTask("t0").State; got != models.TaskAssigned {
		t.Fatalf("after tick 1: t0 = %s, want assigned", got)
	}

	// Tick 2: t0 runs (tool use then final answer), t1 assigned to a1.
	k.Tick(ctx)
	if got := crew.GetTask("t0").State; got != models.TaskCompleted {
		t.Fatalf("after tick 2: t0 = %s, want completed", got)
	}
	if got := crew.GetTask("t1").State; got != models.TaskAssigned {
		t.Fatalf("after tick 2: t1 = %s, want assigned", got)
	}
	if got := crew.GetAgent("a0").State; got != models.AgentIdle {
		t.Errorf("after tick 2: a0 = %s, want idle", got)
	}

	// Tick 3: t1 runs and completes, unblocking t2.
	k.Tick(ctx)
	if got := crew.GetTask("t1").State; got != models.TaskCompleted {
		t.Fatalf("after tick 3: t1 = %s, want completed", got)
	}

	// Ticks 4 and 5: t2 is assigned, then runs on aggregated context.
	k.Tick(ctx)
	if got := crew.GetTask("t2").State; got != models.TaskAssigned {
		t.Fatalf("after tick 4: t2 = %s, want assigned", got)
	}
	done := k.Tick(ctx)
	if done {
		t.Error("tick 5 should report the run finished")
	}
	if !k.AllTasksDone() {
		t.Fatal("not all tasks terminal after tick 5")
	}

	t2 := crew.GetTask("t2")
	if !t2.HasContext() {
		t.Fatal("t2 has no context")
	}
	i0 := strings.Index(*t2.Context, "--- Output from Task t0")
	i1 := strings.Index(*t2.Context, "--- Output from Task t1")
	if i0 < 0 || i1 < 0 || i0 > i1 {
		t.Errorf("t2 context should list t0 before t1:\n%s", *t2.Context)
	}
	if !strings.Contains(*t2.Context, "the sum is 5") {
		t.Errorf("t2 context missing t0 result:\n%s", *t2.Context)
	}

	// Four consultations at the 100-token estimate plus the calculator's
	// cost of 1, charged exactly once.
	report := k.Report()
	if report.TotalToolCalls != 1 {
		t.Errorf("TotalToolCalls = %d, want 1", report.TotalToolCalls)
	}
	if report.TotalTokens != 401 {
		t.Errorf("TotalTokens = %d, want 401", report.TotalTokens)
	}
	if got := crew.GetAgent("a0").Usage.ToolCalls; got != 1 {
		t.Errorf("a0 tool calls = %d, want 1", got)
	}
	if k.TickCount() != 5 {
		t.Errorf("TickCount() = %d, want 5", k.TickCount())
	}
}

func TestKernel_RunDriver(t *testing.T) {
	k := New(oracle.NewScriptedOracle(), tool.DefaultRegistry())
	if err := k.LoadCrew(pipelineCrew()); err != nil {
		t.Fatalf("LoadCrew: %v", err)
	}

	if err := k.Run(context.Background(), 50, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !k.AllTasksDone() {
		t.Error("run finished without completing all tasks")
	}
	if k.TickCount() >= 50 {
		t.Errorf("run needed %d ticks, should finish well under the cap", k.TickCount())
	}
}

func TestKernel_RunHonorsMaxTicks(t *testing.T) {
	k := New(failingOracle{}, tool.DefaultRegistry())
	if err := k.LoadCrew(pipelineCrew()); err != nil {
		t.Fatalf("LoadCrew: %v", err)
	}

	if err := k.Run(context.Background(), 3, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if k.TickCount() != 3 {
		t.Errorf("TickCount() = %d, want 3", k.TickCount())
	}
	if k.AllTasksDone() {
		t.Error("tasks completed under a permanently failing oracle")
	}
}

func TestKernel_RetryLimitFailsTask(t *testing.T) {
	k := New(failingOracle{}, tool.DefaultRegistry(), WithDecisionRetryLimit(2))
	crew := testCrew([]*models.Agent{testAgent("a0")}, []*models.Task{testTask("t0")})
	if err := k.LoadCrew(crew); err != nil {
		t.Fatalf("LoadCrew: %v", err)
	}

	ctx := context.Background()
	k.Tick(ctx) // assign
	k.Tick(ctx) // first failed work step
	if got := crew.GetTask("t0").State; got != models.TaskRunning {
		t.Fatalf("after first retry: t0 = %s, want still running", got)
	}

	done := k.Tick(ctx) // second failed step hits the limit
	if got := crew.GetTask("t0").State; got != models.TaskFailed {
		t.Fatalf("t0 = %s, want failed after retry limit", got)
	}
	if got := crew.GetAgent("a0").State; got != models.AgentIdle {
		t.Errorf("a0 = %s, want released to idle", got)
	}
	if done {
		t.Error("tick should report done once the only task failed")
	}
	// Each consultation attempt still costs the estimate.
	if got := k.Report().TotalTokens; got != 200 {
		t.Errorf("TotalTokens = %d, want 200", got)
	}
}

func TestKernel_UnboundedRetriesByDefault(t *testing.T) {
	k := New(failingOracle{}, tool.DefaultRegistry())
	crew := testCrew([]*models.Agent{testAgent("a0")}, []*models.Task{testTask("t0")})
	if err := k.LoadCrew(crew); err != nil {
		t.Fatalf("LoadCrew: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		k.Tick(ctx)
	}
	if got := crew.GetTask("t0").State; got != models.TaskRunning {
		t.Errorf("t0 = %s, want still running with no retry limit", got)
	}
}

func TestKernel_SecondToolRequestDeferredToNextTick(t *testing.T) {
	script := oracle.NewScriptedOracle().
		Script("t0",
			oracle.Decision{Action: oracle.ActionUseTool, ToolName: "calculator",
				Arguments: map[string]any{"expression": "1+1"}},
			oracle.Decision{Action: oracle.ActionUseTool, ToolName: "calculator",
				Arguments: map[string]any{"expression": "2+2"}},
		)

	k := New(script, tool.DefaultRegistry())
	crew := testCrew([]*models.Agent{testAgent("a0", "calculator")}, []*models.Task{testTask("t0")})
	if err := k.LoadCrew(crew); err != nil {
		t.Fatalf("LoadCrew: %v", err)
	}

	ctx := context.Background()
	k.Tick(ctx) // assign
	k.Tick(ctx) // tool use, then a second tool request that is deferred
	if got := crew.GetTask("t0").State; got != models.TaskRunning {
		t.Fatalf("t0 = %s, want still running after deferred tool chain", got)
	}
	// Only the first request was dispatched.
	if got := k.Report().TotalToolCalls; got != 1 {
		t.Errorf("TotalToolCalls = %d, want 1", got)
	}

	k.Tick(ctx) // script exhausted, fallback final answer completes it
	if got := crew.GetTask("t0").State; got != models.TaskCompleted {
		t.Errorf("t0 = %s, want completed on the next tick", got)
	}
}

func TestKernel_ResetReproducesRun(t *testing.T) {
	k := New(oracle.NewScriptedOracle(), tool.DefaultRegistry())
	crew := pipelineCrew()
	if err := k.LoadCrew(crew); err != nil {
		t.Fatalf("LoadCrew: %v", err)
	}

	if err := k.Run(context.Background(), 50, 0); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstTicks := k.TickCount()
	firstReport := k.Report()
	firstRunID := k.RunID()

	if err := k.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if k.TickCount() != 0 {
		t.Errorf("TickCount() = %d after reset, want 0", k.TickCount())
	}
	if k.RunID() == firstRunID {
		t.Error("reset should mint a new run ID")
	}
	for _, id := range crew.TaskOrder {
		if got := crew.GetTask(id).State; got != models.TaskPending {
			t.Errorf("task %s = %s after reset, want pending", id, got)
		}
	}

	if err := k.Run(context.Background(), 50, 0); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if k.TickCount() != firstTicks {
		t.Errorf("second run took %d ticks, first took %d", k.TickCount(), firstTicks)
	}
	if got := k.Report(); got != firstReport {
		t.Errorf("second run report %+v differs from first %+v", got, firstReport)
	}
}
