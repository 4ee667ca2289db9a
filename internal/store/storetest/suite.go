package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique test identifiers
	userID := "u-" + uuid.New().String()
	email := userID + "@example.test"

	// Users: Ensure is idempotent
	u := &model.User{UserID: userID, Email: email}
	if _, err := s.Users().Ensure(ctx, u); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if _, err := s.Users().Ensure(ctx, u); err != nil {
		t.Fatalf("EnsureUser second call must not error: %v", err)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "u-"+uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}

	// Tasks
	task, err := s.Tasks().Create(ctx, &model.Task{UserID: userID, Title: "buy milk"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.TaskID == 0 || task.Completed {
		t.Fatalf("CreateTask: unexpected record %+v", task)
	}
	if got, err := s.Tasks().GetByID(ctx, userID, task.TaskID); err != nil || got.Title != "buy milk" {
		t.Fatalf("GetTask: got=%v err=%v", got, err)
	}

	// Ownership scoping: another user must never see this task
	otherID := "u-" + uuid.New().String()
	if _, err := s.Users().Ensure(ctx, &model.User{UserID: otherID, Email: otherID + "@example.test"}); err != nil {
		t.Fatalf("EnsureUser other: %v", err)
	}
	if _, err := s.Tasks().GetByID(ctx, otherID, task.TaskID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("cross-user GetTask: want ErrNotFound, got %v", err)
	}
	if lst, err := s.Tasks().List(ctx, model.ListTasksRequest{UserID: otherID, Filter: model.FilterAll}); err != nil || len(lst) != 0 {
		t.Fatalf("cross-user ListTasks: n=%d err=%v", len(lst), err)
	}

	// Partial update leaves unspecified fields unchanged
	desc := "two litres"
	if upd, err := s.Tasks().Update(ctx, userID, task.TaskID, model.TaskUpdate{Description: &desc}); err != nil || upd.Title != "buy milk" || upd.Description == nil || *upd.Description != desc {
		t.Fatalf("UpdateTask: got=%+v err=%v", upd, err)
	}

	// Completion is idempotent in effect
	if done, err := s.Tasks().SetCompleted(ctx, userID, task.TaskID, true); err != nil || !done.Completed {
		t.Fatalf("SetCompleted: got=%+v err=%v", done, err)
	}
	if done, err := s.Tasks().SetCompleted(ctx, userID, task.TaskID, true); err != nil || !done.Completed {
		t.Fatalf("SetCompleted twice: got=%+v err=%v", done, err)
	}

	// Filters
	if _, err := s.Tasks().Create(ctx, &model.Task{UserID: userID, Title: "walk dog"}); err != nil {
		t.Fatalf("CreateTask second: %v", err)
	}
	if lst, err := s.Tasks().List(ctx, model.ListTasksRequest{UserID: userID, Filter: model.FilterPending}); err != nil || len(lst) != 1 {
		t.Fatalf("ListTasks pending: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Tasks().List(ctx, model.ListTasksRequest{UserID: userID, Filter: model.FilterCompleted}); err != nil || len(lst) != 1 {
		t.Fatalf("ListTasks completed: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Tasks().List(ctx, model.ListTasksRequest{UserID: userID, Filter: model.FilterAll}); err != nil || len(lst) != 2 {
		t.Fatalf("ListTasks all: n=%d err=%v", len(lst), err)
	}

	// Delete
	if err := s.Tasks().Delete(ctx, userID, task.TaskID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := s.Tasks().Delete(ctx, userID, task.TaskID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteTask twice: want ErrNotFound, got %v", err)
	}

	// Conversations
	conv, err := s.Conversations().Create(ctx, &model.Conversation{ConversationID: uuid.New().String(), UserID: userID})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if got, err := s.Conversations().Get(ctx, conv.ConversationID); err != nil || got.UserID != userID {
		t.Fatalf("GetConversation: got=%v err=%v", got, err)
	}
	if _, err := s.Conversations().Get(ctx, uuid.New().String()); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetConversation missing: want ErrNotFound, got %v", err)
	}
	if lst, err := s.Conversations().List(ctx, userID); err != nil || len(lst) != 1 {
		t.Fatalf("ListConversations: n=%d err=%v", len(lst), err)
	}

	// Conversation log: append N, read back in order
	contents := []string{"first", "second", "third", "fourth"}
	roles := []string{model.RoleUser, model.RoleAssistant, model.RoleUser, model.RoleAssistant}
	for i, c := range contents {
		if _, err := s.Messages().Append(ctx, &model.Message{ConversationID: conv.ConversationID, UserID: userID, Role: roles[i], Content: c}); err != nil {
			t.Fatalf("AppendMessage %d: %v", i, err)
		}
	}
	hist, err := s.Messages().History(ctx, conv.ConversationID, 10)
	if err != nil || len(hist) != len(contents) {
		t.Fatalf("History: n=%d err=%v", len(hist), err)
	}
	for i, m := range hist {
		if m.Content != contents[i] {
			t.Fatalf("History order: idx=%d got=%q want=%q", i, m.Content, contents[i])
		}
	}

	// Bounded window keeps the most recent messages, chronological order
	tail, err := s.Messages().History(ctx, conv.ConversationID, 2)
	if err != nil || len(tail) != 2 {
		t.Fatalf("History limit: n=%d err=%v", len(tail), err)
	}
	if tail[0].Content != "third" || tail[1].Content != "fourth" {
		t.Fatalf("History limit order: got %q, %q", tail[0].Content, tail[1].Content)
	}

	// Message ids must be monotonically increasing in append order
	for i := 1; i < len(hist); i++ {
		if hist[i].MessageID <= hist[i-1].MessageID {
			t.Fatalf("message ids not monotonic: %d then %d", hist[i-1].MessageID, hist[i].MessageID)
		}
	}
}
