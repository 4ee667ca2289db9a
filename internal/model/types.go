package model

import (
	"encoding/json"
	"time"
)

// TaskFilter selects which tasks a listing returns.
type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterPending   TaskFilter = "pending"
	FilterCompleted TaskFilter = "completed"
)

// Message roles. The log tolerates any role sequence; these are the ones
// this service writes.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents an account in the system. Users are auto-provisioned on
// first contact and never deleted by this service.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"displayName,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// Task is a single todo item owned by exactly one user.
type Task struct {
	TaskID       int64     `json:"taskId"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	Completed    bool      `json:"completed"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// Conversation groups messages under a user. Created lazily when a turn
// arrives without a conversation id.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	CreationTime   time.Time `json:"creationTime"`
	UpdateTime     time.Time `json:"updateTime"`
}

// Message is one append-only record in the conversation log. MessageID is
// assigned by the store in append order and is never reused.
type Message struct {
	MessageID      int64     `json:"messageId"`
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreationTime   time.Time `json:"creationTime"`
}

// ToolInvocation records one tool call executed during a turn. It is returned
// to the caller for transparency and never persisted.
type ToolInvocation struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
	Result    interface{}     `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ListTasksRequest captures filters used when listing tasks.
type ListTasksRequest struct {
	UserID string
	Filter TaskFilter
}

// TaskUpdate carries a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
}

// IsEmpty reports whether the update would change nothing.
func (u TaskUpdate) IsEmpty() bool { return u.Title == nil && u.Description == nil }
