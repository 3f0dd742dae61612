// Package tool defines the tool capability interface and the name-keyed
// registry the dispatcher resolves tools from.
package tool

import (
	"fmt"
	"sort"
	"strings"
)

// Tool is a capability an agent can invoke through the dispatcher.
// Implementations must tolerate missing or malformed arguments and report
// problems through the returned error rather than panicking; the dispatcher
// additionally recovers panics at its boundary.
type Tool interface {
	// Name is the registry key agents request the tool by.
	Name() string
	// Description tells the decision oracle what the tool does and which
	// arguments it requires.
	Description() string
	// Cost is the token charge recorded per dispatch.
	Cost() int64
	// Execute runs the tool with named arguments.
	Execute(args map[string]any) (string, error)
}

// Registry is a name-keyed tool table. Registering an existing name
// overwrites the previous tool.
type Registry struct {
	tools map[string]Tool
	// warnf is called when a registration overwrites an existing tool.
	warnf func(format string, args ...interface{})
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		warnf: func(format string, args ...interface{}) {},
	}
}

// SetWarnLog sets the function used to report overwrites.
func (r *Registry) SetWarnLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		r.warnf = fn
	}
}

// Register adds a tool, overwriting any tool already using the name.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; exists {
		r.warnf("tool %q already registered, overwriting", t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns the tool with the given name, or nil.
func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns all registered tools, sorted by name.
func (r *Registry) List() []Tool {
	names := r.Names()
	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		tools = append(tools, r.tools[name])
	}
	return tools
}

// Describe returns a human-readable listing of the registered tools for the
// decision oracle's consumption.
func (r *Registry) Describe() string {
	if len(r.tools) == 0 {
		return "No tools available."
	}
	var b strings.Builder
	b.WriteString("Available Tools:\n")
	for _, t := range r.List() {
		fmt.Fprintf(&b, "- %s: %s (Cost: %d)\n", t.Name(), t.Description(), t.Cost())
	}
	return b.String()
}
