// Package graph validates task dependency declarations.
package graph

import (
	"errors"
	"fmt"

	"github.com/crewos/crewos/pkg/models"
)

// ErrDependencyCycle indicates a circular dependency in the task declaration.
var ErrDependencyCycle = errors.New("dependency cycle detected")

// ErrOrderViolation indicates the declared task order lists a task before one
// of its dependencies. The sequential scheduler is head-of-line blocking, so
// such a declaration would stall forever.
var ErrOrderViolation = errors.New("declared order violates dependencies")

// DependencyGraph is a directed acyclic graph of task dependencies, built
// once when a crew declaration is loaded. Edges point from a task to the
// tasks it depends on.
type DependencyGraph struct {
	// nodes maps task ID to the task itself.
	nodes map[string]*models.Task
	// edges maps task ID to the IDs of tasks it depends on.
	edges map[string][]string
}

// Build constructs and validates a dependency graph from declared tasks.
// It rejects self-dependencies, dependencies on unknown tasks, and cycles.
func Build(tasks []*models.Task) (*DependencyGraph, error) {
	g := &DependencyGraph{
		nodes: make(map[string]*models.Task, len(tasks)),
		edges: make(map[string][]string, len(tasks)),
	}

	for _, task := range tasks {
		if _, dup := g.nodes[task.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %s", task.ID)
		}
		g.nodes[task.ID] = task
		g.edges[task.ID] = nil
	}

	for _, task := range tasks {
		for _, depID := range task.DependsOn {
			if depID == task.ID {
				return nil, fmt.Errorf("task %s depends on itself", task.ID)
			}
			if _, exists := g.nodes[depID]; !exists {
				return nil, fmt.Errorf("task %s depends on unknown task %s", task.ID, depID)
			}
			g.edges[task.ID] = append(g.edges[task.ID], depID)
		}
	}

	if cycle := g.findCycleMember(); cycle != "" {
		return nil, fmt.Errorf("%w involving task %s", ErrDependencyCycle, cycle)
	}

	return g, nil
}

// findCycleMember runs a depth-first search with coloring and returns the ID
// of a task on a back edge, or "" if the graph is acyclic.
func (g *DependencyGraph) findCycleMember() string {
	// Color states: 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(g.nodes))

	var member string
	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		for _, depID := range g.edges[id] {
			switch colors[depID] {
			case 1:
				member = depID
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for id := range g.nodes {
		if colors[id] == 0 && visit(id) {
			return member
		}
	}
	return ""
}

// CheckOrder verifies that the declared order is compatible with the graph:
// every task must appear after all of its dependencies. Returns an
// ErrOrderViolation-wrapped error naming the first offending pair.
func (g *DependencyGraph) CheckOrder(order []string) error {
	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	for _, id := range order {
		for _, depID := range g.edges[id] {
			depPos, listed := position[depID]
			if !listed || depPos > position[id] {
				return fmt.Errorf("%w: task %s is ordered before its dependency %s", ErrOrderViolation, id, depID)
			}
		}
	}
	return nil
}

// TopologicalSort returns task IDs in an order where every dependency comes
// before the tasks that depend on it. The relative order of independent
// tasks follows the given declaration order.
func (g *DependencyGraph) TopologicalSort(order []string) []string {
	visited := make(map[string]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, depID := range g.edges[id] {
			visit(depID)
		}
		result = append(result, id)
	}

	for _, id := range order {
		visit(id)
	}
	return result
}

// Dependencies returns the declared dependency IDs for a task.
func (g *DependencyGraph) Dependencies(taskID string) []string {
	return g.edges[taskID]
}

// Dependents returns the IDs of tasks that depend on the given task.
func (g *DependencyGraph) Dependents(taskID string) []string {
	var dependents []string
	for id, deps := range g.edges {
		for _, depID := range deps {
			if depID == taskID {
				dependents = append(dependents, id)
				break
			}
		}
	}
	return dependents
}

// Size returns the number of tasks in the graph.
func (g *DependencyGraph) Size() int {
	return len(g.nodes)
}
