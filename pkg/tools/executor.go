package tools

import (
	"context"
	"fmt"
)

// Executor dispatches tool calls against a registry. When readOnly is set,
// tools that mutate CRM data are refused before execution.
type Executor struct {
	registry *Registry
	readOnly bool
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, readOnly bool) *Executor {
	return &Executor{registry: registry, readOnly: readOnly}
}

// Execute runs a tool by name.
func (e *Executor) Execute(ctx context.Context, name string, input map[string]any) (*Result, error) {
	tool := e.registry.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if e.readOnly && !tool.ReadOnly {
		return nil, fmt.Errorf("tool %s is disabled: server is in read-only mode", name)
	}
	if tool.Execute == nil {
		return nil, fmt.Errorf("tool %s has no executor", name)
	}
	return tool.Execute(ctx, input)
}

// CanExecute checks if a tool exists and is permitted.
func (e *Executor) CanExecute(name string) bool {
	tool := e.registry.Get(name)
	if tool == nil {
		return false
	}
	return !e.readOnly || tool.ReadOnly
}

// AllowedTools returns the tools this executor will run.
func (e *Executor) AllowedTools() []*Tool {
	var allowed []*Tool
	for _, tool := range e.registry.All() {
		if !e.readOnly || tool.ReadOnly {
			allowed = append(allowed, tool)
		}
	}
	return allowed
}

// Registry returns the underlying registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}
