// Package tools holds the fixed catalog of task operations exposed to the
// reasoning capability. The catalog is closed: the model selects a tool name,
// the orchestrator only ever dispatches to the declared handlers, and every
// handler is scoped by the user id the orchestrator injects — never by an id
// inside the model-supplied arguments.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskpilot/taskpilot/internal/llm"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
)

// Handler executes one tool call against the task store.
type Handler func(ctx context.Context, userID string, args json.RawMessage) (interface{}, error)

type tool struct {
	name        string
	description string
	parameters  json.RawMessage
	handler     Handler
}

// Catalog maps tool names to their schemas and handlers.
type Catalog struct {
	tools map[string]tool
	order []string
}

// NewCatalog builds the task-management catalog over the given store.
func NewCatalog(s store.Store) *Catalog {
	c := &Catalog{tools: make(map[string]tool)}
	h := taskHandlers{store: s}

	c.register("add_task", "Create a new task for the user", addTaskSchema, h.addTask)
	c.register("list_tasks", "Retrieve tasks from the list", listTasksSchema, h.listTasks)
	c.register("complete_task", "Mark a task as complete", completeTaskSchema, h.completeTask)
	c.register("update_task", "Modify task title or description", updateTaskSchema, h.updateTask)
	c.register("delete_task", "Remove a task from the list", deleteTaskSchema, h.deleteTask)
	return c
}

func (c *Catalog) register(name, description string, parameters json.RawMessage, handler Handler) {
	c.tools[name] = tool{name: name, description: description, parameters: parameters, handler: handler}
	c.order = append(c.order, name)
}

// Definitions returns the declared schemas in registration order, for
// exposure to the reasoning capability.
func (c *Catalog) Definitions() []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, 0, len(c.order))
	for _, name := range c.order {
		t := c.tools[name]
		out = append(out, llm.ToolDefinition{
			Name:        t.name,
			Description: t.description,
			Parameters:  t.parameters,
		})
	}
	return out
}

// Execute validates and runs one tool call. Unknown tool names and schema
// violations fail with model.ErrValidation before any store access.
func (c *Catalog) Execute(ctx context.Context, userID, name string, args json.RawMessage) (interface{}, error) {
	t, ok := c.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q: %w", name, model.ErrValidation)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return t.handler(ctx, userID, args)
}
