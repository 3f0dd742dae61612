// Package crewfile loads crew declarations from YAML files and turns them
// into validated workspaces with kernel-assigned IDs.
package crewfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crewos/crewos/internal/graph"
	"github.com/crewos/crewos/pkg/models"
)

// File is the on-disk crew declaration. Agents and tasks are referenced by
// declared name; IDs are minted at load time.
type File struct {
	// Name labels the crew for display.
	Name string `yaml:"name"`
	// Process selects the scheduling policy, sequential if empty.
	Process string `yaml:"process"`
	// Agents lists agent declarations in order.
	Agents []AgentDecl `yaml:"agents"`
	// Tasks lists task declarations in order. The file order is the
	// declared task order the sequential scheduler follows.
	Tasks []TaskDecl `yaml:"tasks"`
}

// AgentDecl declares one agent.
type AgentDecl struct {
	Name      string   `yaml:"name"`
	Role      string   `yaml:"role"`
	Goal      string   `yaml:"goal"`
	Backstory string   `yaml:"backstory"`
	Tools     []string `yaml:"tools"`
}

// TaskDecl declares one task. DependsOn names other tasks in the same file.
type TaskDecl struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	ExpectedOutput string   `yaml:"expected_output"`
	DependsOn      []string `yaml:"depends_on"`
}

// Load reads and parses a crew declaration from disk.
func Load(path string) (*models.Crew, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crew file: %w", err)
	}
	crew, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("crew file %s: %w", path, err)
	}
	return crew, nil
}

// Parse builds a crew from YAML. Agent IDs are minted a0, a1, ... and task
// IDs t0, t1, ... in declaration order; dependency names are resolved to
// task IDs. The resulting declaration is validated against the dependency
// graph, so cycles, unknown dependencies, and orders that list a task
// before its dependency are rejected here rather than at run time.
func Parse(data []byte) (*models.Crew, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	process := models.Process(f.Process)
	if f.Process == "" {
		process = models.ProcessSequential
	}
	if !process.Valid() {
		return nil, fmt.Errorf("unknown process %q", f.Process)
	}
	if len(f.Agents) == 0 {
		return nil, fmt.Errorf("crew declares no agents")
	}
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("crew declares no tasks")
	}

	agents := make([]*models.Agent, 0, len(f.Agents))
	agentNames := make(map[string]bool, len(f.Agents))
	for i, decl := range f.Agents {
		if decl.Name == "" {
			return nil, fmt.Errorf("agent %d has no name", i)
		}
		if agentNames[decl.Name] {
			return nil, fmt.Errorf("duplicate agent name %q", decl.Name)
		}
		agentNames[decl.Name] = true
		if decl.Role == "" {
			return nil, fmt.Errorf("agent %q has no role", decl.Name)
		}
		agents = append(agents, &models.Agent{
			ID:        fmt.Sprintf("a%d", i),
			Role:      decl.Role,
			Goal:      decl.Goal,
			Backstory: decl.Backstory,
			Tools:     decl.Tools,
			State:     models.AgentIdle,
		})
	}

	// First pass mints task IDs so forward dependency references resolve.
	taskIDs := make(map[string]string, len(f.Tasks))
	for i, decl := range f.Tasks {
		if decl.Name == "" {
			return nil, fmt.Errorf("task %d has no name", i)
		}
		if _, dup := taskIDs[decl.Name]; dup {
			return nil, fmt.Errorf("duplicate task name %q", decl.Name)
		}
		taskIDs[decl.Name] = fmt.Sprintf("t%d", i)
	}

	tasks := make([]*models.Task, 0, len(f.Tasks))
	for i, decl := range f.Tasks {
		if decl.Description == "" {
			return nil, fmt.Errorf("task %q has no description", decl.Name)
		}
		deps := make([]string, 0, len(decl.DependsOn))
		for _, depName := range decl.DependsOn {
			depID, ok := taskIDs[depName]
			if !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", decl.Name, depName)
			}
			deps = append(deps, depID)
		}
		tasks = append(tasks, &models.Task{
			ID:             fmt.Sprintf("t%d", i),
			Description:    decl.Description,
			ExpectedOutput: decl.ExpectedOutput,
			DependsOn:      deps,
			State:          models.TaskPending,
		})
	}

	crew := models.NewCrew(agents, tasks, process)

	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}
	if err := g.CheckOrder(crew.TaskOrder); err != nil {
		return nil, err
	}

	return crew, nil
}
