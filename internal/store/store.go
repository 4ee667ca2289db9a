package store

import (
	"context"

	"github.com/taskpilot/taskpilot/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., postgres, sqlite).
type Store interface {
	Users() Users
	Tasks() Tasks
	Conversations() Conversations
	Messages() Messages
}

type Users interface {
	// Ensure creates the user when absent and returns the stored record.
	// A user that already exists is a successful no-op, never a conflict.
	Ensure(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

type Tasks interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, userID string, taskID int64) (*model.Task, error)
	List(ctx context.Context, req model.ListTasksRequest) ([]*model.Task, error)
	Update(ctx context.Context, userID string, taskID int64, upd model.TaskUpdate) (*model.Task, error)
	SetCompleted(ctx context.Context, userID string, taskID int64, completed bool) (*model.Task, error)
	Delete(ctx context.Context, userID string, taskID int64) error
}

type Conversations interface {
	Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	// Get loads a conversation by id regardless of owner; callers check
	// ownership so a foreign conversation can be rejected as unauthorized
	// rather than reported missing.
	Get(ctx context.Context, conversationID string) (*model.Conversation, error)
	List(ctx context.Context, userID string) ([]*model.Conversation, error)
}

// Messages is the conversation log accessor. The log is append-only: no
// update or delete operations exist on this interface.
type Messages interface {
	Append(ctx context.Context, m *model.Message) (*model.Message, error)
	// History returns the most recent limit messages in chronological order.
	// limit <= 0 returns the full log.
	History(ctx context.Context, conversationID string, limit int) ([]*model.Message, error)
}
