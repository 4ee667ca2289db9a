package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
)

// Argument schemas declared to the model, mirroring the store contracts.
var (
	addTaskSchema = json.RawMessage(`{
        "type": "object",
        "properties": {
            "title": {"type": "string", "description": "Task title"},
            "description": {"type": "string", "description": "Task description (optional)"}
        },
        "required": ["title"]
    }`)

	listTasksSchema = json.RawMessage(`{
        "type": "object",
        "properties": {
            "status": {
                "type": "string",
                "enum": ["all", "pending", "completed"],
                "description": "Filter by task status"
            }
        },
        "required": []
    }`)

	completeTaskSchema = json.RawMessage(`{
        "type": "object",
        "properties": {
            "task_id": {"type": "integer", "description": "Task ID to complete"}
        },
        "required": ["task_id"]
    }`)

	updateTaskSchema = json.RawMessage(`{
        "type": "object",
        "properties": {
            "task_id": {"type": "integer", "description": "Task ID to update"},
            "title": {"type": "string", "description": "New task title (optional)"},
            "description": {"type": "string", "description": "New task description (optional)"}
        },
        "required": ["task_id"]
    }`)

	deleteTaskSchema = json.RawMessage(`{
        "type": "object",
        "properties": {
            "task_id": {"type": "integer", "description": "Task ID to delete"}
        },
        "required": ["task_id"]
    }`)
)

type taskHandlers struct {
	store store.Store
}

// taskView is the tool-facing shape of a task record.
type taskView struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
}

func viewOf(t *model.Task) taskView {
	return taskView{
		ID:          t.TaskID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreationTime.Format(time.RFC3339),
	}
}

// statusResult is the common mutation result shape.
type statusResult struct {
	TaskID int64  `json:"task_id"`
	Status string `json:"status"`
	Title  string `json:"title,omitempty"`
}

func (h taskHandlers) addTask(ctx context.Context, userID string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("add_task arguments: %v: %w", err, model.ErrValidation)
	}
	args.Title = strings.TrimSpace(args.Title)
	if args.Title == "" {
		return nil, fmt.Errorf("add_task: title is required: %w", model.ErrValidation)
	}

	task, err := h.store.Tasks().Create(ctx, &model.Task{UserID: userID, Title: args.Title, Description: args.Description})
	if err != nil {
		return nil, err
	}
	return statusResult{TaskID: task.TaskID, Status: "created", Title: task.Title}, nil
}

func (h taskHandlers) listTasks(ctx context.Context, userID string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("list_tasks arguments: %v: %w", err, model.ErrValidation)
	}
	filter := model.TaskFilter(args.Status)
	switch filter {
	case "":
		filter = model.FilterAll
	case model.FilterAll, model.FilterPending, model.FilterCompleted:
	default:
		return nil, fmt.Errorf("list_tasks: invalid status %q: %w", args.Status, model.ErrValidation)
	}

	tasks, err := h.store.Tasks().List(ctx, model.ListTasksRequest{UserID: userID, Filter: filter})
	if err != nil {
		return nil, err
	}
	// An empty list is a valid, non-error outcome.
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, viewOf(t))
	}
	return out, nil
}

func (h taskHandlers) completeTask(ctx context.Context, userID string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		TaskID *int64 `json:"task_id"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("complete_task arguments: %v: %w", err, model.ErrValidation)
	}
	if args.TaskID == nil {
		return nil, fmt.Errorf("complete_task: task_id is required: %w", model.ErrValidation)
	}

	// Load first so a repeated completion can be reported rather than
	// silently absorbed; the final state is identical either way.
	existing, err := h.store.Tasks().GetByID(ctx, userID, *args.TaskID)
	if err != nil {
		return nil, err
	}
	if existing.Completed {
		return statusResult{TaskID: existing.TaskID, Status: "already completed", Title: existing.Title}, nil
	}

	task, err := h.store.Tasks().SetCompleted(ctx, userID, *args.TaskID, true)
	if err != nil {
		return nil, err
	}
	return statusResult{TaskID: task.TaskID, Status: "completed", Title: task.Title}, nil
}

func (h taskHandlers) updateTask(ctx context.Context, userID string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		TaskID      *int64  `json:"task_id"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("update_task arguments: %v: %w", err, model.ErrValidation)
	}
	if args.TaskID == nil {
		return nil, fmt.Errorf("update_task: task_id is required: %w", model.ErrValidation)
	}
	if args.Title != nil {
		trimmed := strings.TrimSpace(*args.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("update_task: title must not be empty: %w", model.ErrValidation)
		}
		args.Title = &trimmed
	}
	upd := model.TaskUpdate{Title: args.Title, Description: args.Description}
	if upd.IsEmpty() {
		return nil, fmt.Errorf("update_task: at least one of title or description is required: %w", model.ErrValidation)
	}

	task, err := h.store.Tasks().Update(ctx, userID, *args.TaskID, upd)
	if err != nil {
		return nil, err
	}
	return statusResult{TaskID: task.TaskID, Status: "updated", Title: task.Title}, nil
}

func (h taskHandlers) deleteTask(ctx context.Context, userID string, raw json.RawMessage) (interface{}, error) {
	var args struct {
		TaskID *int64 `json:"task_id"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("delete_task arguments: %v: %w", err, model.ErrValidation)
	}
	if args.TaskID == nil {
		return nil, fmt.Errorf("delete_task: task_id is required: %w", model.ErrValidation)
	}

	existing, err := h.store.Tasks().GetByID(ctx, userID, *args.TaskID)
	if err != nil {
		return nil, err
	}
	if err := h.store.Tasks().Delete(ctx, userID, *args.TaskID); err != nil {
		return nil, err
	}
	return statusResult{TaskID: existing.TaskID, Status: "deleted", Title: existing.Title}, nil
}
