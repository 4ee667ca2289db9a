package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/llm"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/store"
	"github.com/taskpilot/taskpilot/internal/tools"
)

const systemPrompt = `You are a helpful task management assistant. You help users manage their todo list through natural language.

When users ask you to:
- Add/create/remember tasks -> use add_task
- Show/list tasks -> use list_tasks
- Mark tasks complete/done -> use complete_task
- Delete/remove tasks -> use delete_task
- Update/change tasks -> use update_task

Always confirm actions with friendly responses. Handle errors gracefully.

Examples:
- "Add a task to buy groceries" -> add_task with title "Buy groceries"
- "Show me all my tasks" -> list_tasks with status "all"
- "Mark task 3 as done" -> complete_task with task_id 3
- "Delete the meeting task" -> First list tasks to find it, then delete`

// fallbackReply is appended to the log when the reasoning capability fails,
// so the conversation stays well-formed even under upstream failure.
const fallbackReply = "Sorry, I could not process that request."

// ChatService is the turn orchestrator: it owns the full
// message-in/reply-out cycle and holds no state between turns. All
// continuity is reconstructed from the conversation log on each call.
type ChatService struct {
	store         store.Store
	provider      llm.Provider
	catalog       *tools.Catalog
	users         *UserService
	historyLimit  int
	maxToolRounds int
	log           zerolog.Logger
}

func NewChatService(s store.Store, p llm.Provider, c *tools.Catalog, historyLimit, maxToolRounds int, log zerolog.Logger) *ChatService {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	if maxToolRounds <= 0 {
		maxToolRounds = 5
	}
	return &ChatService{
		store:         s,
		provider:      p,
		catalog:       c,
		users:         NewUserService(s),
		historyLimit:  historyLimit,
		maxToolRounds: maxToolRounds,
		log:           log,
	}
}

// TurnResult is what one completed turn returns to the caller.
type TurnResult struct {
	ConversationID string
	Reply          string
	Invocations    []model.ToolInvocation
}

// HandleTurn runs one complete turn:
//
//  1. auto-provision the user
//  2. resolve or lazily create the conversation (ownership enforced)
//  3. durably append the user message before any reasoning
//  4. rebuild the bounded history window from the log
//  5. invoke the reasoning capability with the tool catalog
//  6. execute requested tool calls in emission order, scoped to userID
//  7. append the final assistant reply
//  8. return reply plus invocation records
//
// Partial tool application is accepted and reported, never rolled back.
func (s *ChatService) HandleTurn(ctx context.Context, userID, conversationID, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("message must not be empty: %w", model.ErrValidation)
	}

	if _, err := s.users.EnsureUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	conv, err := s.resolveConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	// The user message must be durable before the reasoning call begins.
	if _, err := s.store.Messages().Append(ctx, &model.Message{
		ConversationID: conv.ConversationID,
		UserID:         userID,
		Role:           model.RoleUser,
		Content:        text,
	}); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	history, err := s.store.Messages().History(ctx, conv.ConversationID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}

	reply, invocations := s.converse(ctx, userID, msgs)

	if _, err := s.store.Messages().Append(ctx, &model.Message{
		ConversationID: conv.ConversationID,
		UserID:         userID,
		Role:           model.RoleAssistant,
		Content:        reply,
	}); err != nil {
		return nil, fmt.Errorf("append assistant message: %w", err)
	}

	return &TurnResult{
		ConversationID: conv.ConversationID,
		Reply:          reply,
		Invocations:    invocations,
	}, nil
}

func (s *ChatService) resolveConversation(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	if conversationID == "" {
		conv, err := s.store.Conversations().Create(ctx, &model.Conversation{
			ConversationID: uuid.NewString(),
			UserID:         userID,
		})
		if err != nil {
			return nil, fmt.Errorf("create conversation: %w", err)
		}
		s.log.Info().Str("conversation_id", conv.ConversationID).Str("user_id", userID).Msg("conversation created")
		return conv, nil
	}

	conv, err := s.store.Conversations().Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.UserID != userID {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, model.ErrUnauthorized)
	}
	return conv, nil
}

// converse runs the reasoning/tool loop. Any provider failure degrades to the
// fallback reply; tool failures are recorded per invocation and fed back to
// the model so its final reply can reflect them.
func (s *ChatService) converse(ctx context.Context, userID string, msgs []llm.Message) (string, []model.ToolInvocation) {
	defs := s.catalog.Definitions()
	invocations := make([]model.ToolInvocation, 0, 4)

	for round := 0; round < s.maxToolRounds; round++ {
		comp, err := s.provider.Complete(ctx, msgs, defs)
		if err != nil {
			s.log.Error().Err(err).Int("round", round).Msg("reasoning call failed")
			return fallbackReply, invocations
		}

		if len(comp.ToolCalls) == 0 {
			if strings.TrimSpace(comp.Reply) == "" {
				s.log.Error().Int("round", round).Msg("reasoning returned empty completion")
				return fallbackReply, invocations
			}
			return comp.Reply, invocations
		}

		msgs = append(msgs, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   comp.Reply,
			ToolCalls: comp.ToolCalls,
		})

		for _, call := range comp.ToolCalls {
			inv := model.ToolInvocation{Tool: call.Name, Arguments: call.Arguments}

			result, err := s.catalog.Execute(ctx, userID, call.Name, call.Arguments)
			var payload []byte
			if err != nil {
				// A failed call aborts only itself; the turn continues and
				// the model sees the error during reflection.
				inv.Error = err.Error()
				payload, _ = json.Marshal(map[string]string{"error": err.Error()})
				s.log.Warn().Err(err).Str("tool", call.Name).Str("user_id", userID).Msg("tool execution failed")
			} else {
				inv.Result = result
				payload, _ = json.Marshal(result)
			}
			invocations = append(invocations, inv)

			msgs = append(msgs, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Content:    string(payload),
			})
		}
	}

	s.log.Error().Int("max_rounds", s.maxToolRounds).Msg("tool rounds exhausted without final reply")
	return fallbackReply, invocations
}
