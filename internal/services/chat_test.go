package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/llm"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
	"github.com/taskpilot/taskpilot/internal/store/sqlite"
	"github.com/taskpilot/taskpilot/internal/tools"
)

// scriptedProvider replays canned completions and records what it was asked.
type scriptedProvider struct {
	steps []func(msgs []llm.Message) (*llm.Completion, error)
	calls int
	seen  [][]llm.Message
	tools []llm.ToolDefinition
}

func (p *scriptedProvider) Complete(_ context.Context, msgs []llm.Message, defs []llm.ToolDefinition) (*llm.Completion, error) {
	p.seen = append(p.seen, msgs)
	p.tools = defs
	if p.calls >= len(p.steps) {
		return nil, errors.New("scripted provider exhausted")
	}
	step := p.steps[p.calls]
	p.calls++
	return step(msgs)
}

func reply(text string) func([]llm.Message) (*llm.Completion, error) {
	return func([]llm.Message) (*llm.Completion, error) {
		return &llm.Completion{Reply: text}, nil
	}
}

func toolCall(id, name, args string) func([]llm.Message) (*llm.Completion, error) {
	return func([]llm.Message) (*llm.Completion, error) {
		return &llm.Completion{ToolCalls: []llm.ToolCall{
			{ID: id, Name: name, Arguments: json.RawMessage(args)},
		}}, nil
	}
}

func newChatFixture(t *testing.T, provider llm.Provider) (*ChatService, store.Store) {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	svc := NewChatService(st, provider, tools.NewCatalog(st), 20, 3, zerolog.Nop())
	return svc, st
}

func TestHandleTurn_PlainReply(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		reply("Hello! How can I help?"),
	}}
	svc, st := newChatFixture(t, p)

	out, err := svc.HandleTurn(context.Background(), "alice", "", "hi there")
	require.NoError(t, err)
	assert.NotEmpty(t, out.ConversationID)
	assert.Equal(t, "Hello! How can I help?", out.Reply)
	assert.Empty(t, out.Invocations)

	// first message the model sees is the system prompt, then the user turn
	require.Len(t, p.seen, 1)
	require.GreaterOrEqual(t, len(p.seen[0]), 2)
	assert.Equal(t, llm.RoleSystem, p.seen[0][0].Role)
	assert.Equal(t, "hi there", p.seen[0][len(p.seen[0])-1].Content)
	assert.Len(t, p.tools, 5)

	// user auto-provisioned, both turns durably logged
	_, err = st.Users().Get(context.Background(), "alice")
	require.NoError(t, err)
	msgs, err := st.Messages().History(context.Background(), out.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hello! How can I help?", msgs[1].Content)
}

func TestHandleTurn_AddTaskToolCall(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		toolCall("call-1", "add_task", `{"title":"Buy groceries"}`),
		reply("Added \"Buy groceries\" to your list."),
	}}
	svc, st := newChatFixture(t, p)

	out, err := svc.HandleTurn(context.Background(), "alice", "", "remember to buy groceries")
	require.NoError(t, err)
	assert.Equal(t, "Added \"Buy groceries\" to your list.", out.Reply)

	require.Len(t, out.Invocations, 1)
	assert.Equal(t, "add_task", out.Invocations[0].Tool)
	assert.Empty(t, out.Invocations[0].Error)

	tasks, err := st.Tasks().List(context.Background(), model.ListTasksRequest{UserID: "alice", Filter: model.FilterAll})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy groceries", tasks[0].Title)

	// the second round must carry the tool result back to the model
	require.Len(t, p.seen, 2)
	last := p.seen[1][len(p.seen[1])-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Equal(t, "call-1", last.ToolCallID)
	assert.Contains(t, last.Content, "created")

	// tool traffic is never persisted; only user and assistant turns are
	msgs, err := st.Messages().History(context.Background(), out.ConversationID, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestHandleTurn_FailedToolCallContinuesTurn(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		toolCall("call-1", "delete_task", `{"task_id":999}`),
		reply("I could not find task 999."),
	}}
	svc, _ := newChatFixture(t, p)

	out, err := svc.HandleTurn(context.Background(), "alice", "", "delete task 999")
	require.NoError(t, err)
	assert.Equal(t, "I could not find task 999.", out.Reply)

	require.Len(t, out.Invocations, 1)
	assert.Equal(t, "delete_task", out.Invocations[0].Tool)
	assert.Contains(t, out.Invocations[0].Error, "not found")

	// the error is surfaced to the model as the tool result
	last := p.seen[1][len(p.seen[1])-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Contains(t, last.Content, "error")
}

func TestHandleTurn_ProviderFailureFallsBack(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		func([]llm.Message) (*llm.Completion, error) { return nil, errors.New("upstream timeout") },
	}}
	svc, st := newChatFixture(t, p)

	out, err := svc.HandleTurn(context.Background(), "alice", "", "hello?")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, out.Reply)
	assert.Empty(t, out.Invocations)

	// the fallback is still appended so the log stays well-formed
	msgs, err := st.Messages().History(context.Background(), out.ConversationID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, fallbackReply, msgs[1].Content)
}

func TestHandleTurn_EmptyCompletionFallsBack(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		reply(""),
	}}
	svc, _ := newChatFixture(t, p)

	out, err := svc.HandleTurn(context.Background(), "alice", "", "hello?")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, out.Reply)
}

func TestHandleTurn_ToolRoundsExhausted(t *testing.T) {
	loop := toolCall("call-n", "list_tasks", `{}`)
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){loop, loop, loop, loop}}
	svc, _ := newChatFixture(t, p)

	out, err := svc.HandleTurn(context.Background(), "alice", "", "what's on my list?")
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, out.Reply)
	assert.Equal(t, 3, p.calls)
	assert.Len(t, out.Invocations, 3)
}

func TestHandleTurn_EmptyMessageRejected(t *testing.T) {
	svc, _ := newChatFixture(t, &scriptedProvider{})

	_, err := svc.HandleTurn(context.Background(), "alice", "", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestHandleTurn_UnknownConversation(t *testing.T) {
	svc, _ := newChatFixture(t, &scriptedProvider{})

	_, err := svc.HandleTurn(context.Background(), "alice", "00000000-0000-0000-0000-000000000000", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestHandleTurn_ForeignConversationRejected(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		reply("hi alice"),
	}}
	svc, _ := newChatFixture(t, p)

	out, err := svc.HandleTurn(context.Background(), "alice", "", "hi")
	require.NoError(t, err)

	_, err = svc.HandleTurn(context.Background(), "bob", out.ConversationID, "let me in")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestHandleTurn_SecondTurnSeesHistory(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		reply("Nice to meet you, Alice."),
		reply("Your name is Alice."),
	}}
	svc, _ := newChatFixture(t, p)

	first, err := svc.HandleTurn(context.Background(), "alice", "", "my name is Alice")
	require.NoError(t, err)

	second, err := svc.HandleTurn(context.Background(), "alice", first.ConversationID, "what's my name?")
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	// second call must include both prior turns plus the new message
	require.Len(t, p.seen, 2)
	window := p.seen[1]
	require.Len(t, window, 4) // system + 3 logged messages
	assert.Equal(t, "my name is Alice", window[1].Content)
	assert.Equal(t, "Nice to meet you, Alice.", window[2].Content)
	assert.Equal(t, "what's my name?", window[3].Content)
}

func TestHandleTurn_HistoryWindowBounded(t *testing.T) {
	p := &scriptedProvider{steps: []func([]llm.Message) (*llm.Completion, error){
		reply("r1"), reply("r2"), reply("r3"),
	}}
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	svc := NewChatService(st, p, tools.NewCatalog(st), 2, 3, zerolog.Nop())

	first, err := svc.HandleTurn(context.Background(), "alice", "", "one")
	require.NoError(t, err)
	_, err = svc.HandleTurn(context.Background(), "alice", first.ConversationID, "two")
	require.NoError(t, err)
	_, err = svc.HandleTurn(context.Background(), "alice", first.ConversationID, "three")
	require.NoError(t, err)

	// limit 2: system prompt plus the two newest log entries
	window := p.seen[2]
	require.Len(t, window, 3)
	assert.Equal(t, llm.RoleSystem, window[0].Role)
	assert.Equal(t, "r2", window[1].Content)
	assert.Equal(t, "three", window[2].Content)
}
