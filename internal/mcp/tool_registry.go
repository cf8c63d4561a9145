package mcp

import (
	"fmt"
	"sort"
	"strings"
)

type registeredTool struct {
	executor   ToolExecutor
	descriptor ToolDescriptor
}

// ToolRegistry maps tool names to the executor that owns them. Registration
// happens once at startup; afterwards the registry is read-only.
type ToolRegistry struct {
	byName map[string]registeredTool
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{byName: map[string]registeredTool{}}
}

// Register adds a tool under its trimmed name. Nameless descriptors,
// executor-less tools and duplicate names are rejected; a missing input
// schema is defaulted to an empty object schema.
func (r *ToolRegistry) Register(executor ToolExecutor, tool ToolDescriptor) error {
	if executor == nil {
		return fmt.Errorf("tool executor is required")
	}
	tool.Name = strings.TrimSpace(tool.Name)
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.byName[tool.Name]; exists {
		return fmt.Errorf("tool already registered: %s", tool.Name)
	}
	if tool.InputSchema == nil {
		tool.InputSchema = map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}
	r.byName[tool.Name] = registeredTool{executor: executor, descriptor: tool}
	return nil
}

func (r *ToolRegistry) Lookup(name string) (ToolExecutor, ToolDescriptor, bool) {
	item, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, ToolDescriptor{}, false
	}
	return item.executor, item.descriptor, true
}

// List returns every registered descriptor sorted by tool name.
func (r *ToolRegistry) List() []ToolDescriptor {
	tools := make([]ToolDescriptor, 0, len(r.byName))
	for _, item := range r.byName {
		tools = append(tools, item.descriptor)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}
