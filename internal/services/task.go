package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
)

// TaskService exposes direct task CRUD for the REST surface. The same store
// contracts back the tool catalog, so chat-driven and direct mutations are
// interchangeable.
type TaskService struct {
	store store.Store
}

func NewTaskService(s store.Store) *TaskService { return &TaskService{store: s} }

func (s *TaskService) CreateTask(ctx context.Context, userID, title string, description *string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", model.ErrValidation)
	}
	return s.store.Tasks().Create(ctx, &model.Task{UserID: userID, Title: title, Description: description})
}

func (s *TaskService) GetTask(ctx context.Context, userID string, taskID int64) (*model.Task, error) {
	return s.store.Tasks().GetByID(ctx, userID, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, userID string, filter model.TaskFilter) ([]*model.Task, error) {
	switch filter {
	case "":
		filter = model.FilterAll
	case model.FilterAll, model.FilterPending, model.FilterCompleted:
	default:
		return nil, fmt.Errorf("invalid filter %q: %w", filter, model.ErrValidation)
	}
	return s.store.Tasks().List(ctx, model.ListTasksRequest{UserID: userID, Filter: filter})
}

func (s *TaskService) UpdateTask(ctx context.Context, userID string, taskID int64, upd model.TaskUpdate) (*model.Task, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("at least one of title or description is required: %w", model.ErrValidation)
	}
	if upd.Title != nil {
		trimmed := strings.TrimSpace(*upd.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("title must not be empty: %w", model.ErrValidation)
		}
		upd.Title = &trimmed
	}
	return s.store.Tasks().Update(ctx, userID, taskID, upd)
}

func (s *TaskService) CompleteTask(ctx context.Context, userID string, taskID int64) (*model.Task, error) {
	return s.store.Tasks().SetCompleted(ctx, userID, taskID, true)
}

func (s *TaskService) DeleteTask(ctx context.Context, userID string, taskID int64) error {
	return s.store.Tasks().Delete(ctx, userID, taskID)
}
