package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/llm"
	"github.com/taskpilot/taskpilot/internal/services"
	"github.com/taskpilot/taskpilot/internal/store/sqlite"
	"github.com/taskpilot/taskpilot/internal/tools"
)

// queuedProvider replays canned completions in order.
type queuedProvider struct {
	queue []*llm.Completion
	fail  bool
}

func (p *queuedProvider) Complete(_ context.Context, _ []llm.Message, _ []llm.ToolDefinition) (*llm.Completion, error) {
	if p.fail {
		return nil, errors.New("upstream unavailable")
	}
	if len(p.queue) == 0 {
		return nil, errors.New("no scripted completion left")
	}
	out := p.queue[0]
	p.queue = p.queue[1:]
	return out, nil
}

func newTestServer(t *testing.T, provider llm.Provider) *httptest.Server {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)

	catalog := tools.NewCatalog(st)
	chatSvc := services.NewChatService(st, provider, catalog, 20, 3, zerolog.Nop())
	taskSvc := services.NewTaskService(st)
	userSvc := services.NewUserService(st)
	convSvc := services.NewConversationService(st)

	router := NewRouter(auth.NewDevAuthorizer(), chatSvc, taskSvc, userSvc, convSvc, func() bool { return true })
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestChatEndpoint_ToolCallTurn(t *testing.T) {
	provider := &queuedProvider{queue: []*llm.Completion{
		{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "add_task", Arguments: json.RawMessage(`{"title":"Buy milk"}`)}}},
		{Reply: "Added Buy milk to your list."},
	}}
	srv := newTestServer(t, provider)

	resp, body := doJSON(t, "POST", srv.URL+"/api/users/alice/chat", `{"message":"remember to buy milk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["conversationId"])
	assert.Equal(t, "Added Buy milk to your list.", body["response"])
	calls, ok := body["toolCalls"].([]interface{})
	require.True(t, ok)
	require.Len(t, calls, 1)

	// the task is now visible on the REST surface too
	resp, body = doJSON(t, "GET", srv.URL+"/api/users/alice/tasks?status=pending", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])
}

func TestChatEndpoint_ContinuesConversation(t *testing.T) {
	provider := &queuedProvider{queue: []*llm.Completion{
		{Reply: "Hi Alice."},
		{Reply: "Still here."},
	}}
	srv := newTestServer(t, provider)

	resp, body := doJSON(t, "POST", srv.URL+"/api/users/alice/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convID := body["conversationId"].(string)

	resp, body = doJSON(t, "POST", srv.URL+"/api/users/alice/chat",
		fmt.Sprintf(`{"conversationId":%q,"message":"you there?"}`, convID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, convID, body["conversationId"])

	// history shows all four messages in order
	resp, body = doJSON(t, "GET", srv.URL+"/api/users/alice/conversations/"+convID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 4, body["count"])
}

func TestChatEndpoint_UpstreamFailureStays200(t *testing.T) {
	srv := newTestServer(t, &queuedProvider{fail: true})

	resp, body := doJSON(t, "POST", srv.URL+"/api/users/alice/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["response"], "Sorry")
}

func TestChatEndpoint_Validation(t *testing.T) {
	srv := newTestServer(t, &queuedProvider{})

	cases := []struct {
		name string
		url  string
		body string
	}{
		{"invalid json", srv.URL + "/api/users/alice/chat", `{"message":`},
		{"empty message", srv.URL + "/api/users/alice/chat", `{"message":"  "}`},
		{"oversized message", srv.URL + "/api/users/alice/chat", fmt.Sprintf(`{"message":%q}`, strings.Repeat("a", 4001))},
		{"bad user id", srv.URL + "/api/users/ALICE/chat", `{"message":"hi"}`},
		{"bad conversation id", srv.URL + "/api/users/alice/chat", `{"conversationId":"nope","message":"hi"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := doJSON(t, "POST", tc.url, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestChatEndpoint_ConversationOwnership(t *testing.T) {
	provider := &queuedProvider{queue: []*llm.Completion{{Reply: "hi"}}}
	srv := newTestServer(t, provider)

	resp, body := doJSON(t, "POST", srv.URL+"/api/users/alice/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convID := body["conversationId"].(string)

	// another user referencing alice's conversation is forbidden, not missing
	resp, _ = doJSON(t, "POST", srv.URL+"/api/users/bob/chat",
		fmt.Sprintf(`{"conversationId":%q,"message":"let me in"}`, convID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// a stale id is missing
	resp, _ = doJSON(t, "POST", srv.URL+"/api/users/alice/chat",
		`{"conversationId":"550e8400-e29b-41d4-a716-446655440000","message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskEndpoints_CRUD(t *testing.T) {
	srv := newTestServer(t, &queuedProvider{})

	resp, body := doJSON(t, "POST", srv.URL+"/api/users/alice/tasks", `{"title":"Write report","description":"quarterly"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := int64(body["taskId"].(float64))

	resp, body = doJSON(t, "GET", fmt.Sprintf("%s/api/users/alice/tasks/%d", srv.URL, taskID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Write report", body["title"])
	assert.Equal(t, false, body["completed"])

	resp, body = doJSON(t, "PATCH", fmt.Sprintf("%s/api/users/alice/tasks/%d", srv.URL, taskID), `{"title":"Write Q3 report"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Write Q3 report", body["title"])

	resp, body = doJSON(t, "POST", fmt.Sprintf("%s/api/users/alice/tasks/%d/complete", srv.URL, taskID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["completed"])

	resp, body = doJSON(t, "GET", srv.URL+"/api/users/alice/tasks?status=completed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, _ = doJSON(t, "DELETE", fmt.Sprintf("%s/api/users/alice/tasks/%d", srv.URL, taskID), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, "GET", fmt.Sprintf("%s/api/users/alice/tasks/%d", srv.URL, taskID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTaskEndpoints_Validation(t *testing.T) {
	srv := newTestServer(t, &queuedProvider{})

	resp, _ := doJSON(t, "POST", srv.URL+"/api/users/alice/tasks", `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, "GET", srv.URL+"/api/users/alice/tasks?status=done", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, "GET", srv.URL+"/api/users/alice/tasks/999", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConversationEndpoints(t *testing.T) {
	provider := &queuedProvider{queue: []*llm.Completion{{Reply: "hello there"}}}
	srv := newTestServer(t, provider)

	resp, body := doJSON(t, "POST", srv.URL+"/api/users/alice/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convID := body["conversationId"].(string)

	resp, body = doJSON(t, "GET", srv.URL+"/api/users/alice/conversations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, body = doJSON(t, "GET", srv.URL+"/api/users/alice/conversations/"+convID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgs := body["messages"].([]interface{})
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]interface{})
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "hi", first["content"])

	// another user's view of the same conversation is forbidden
	resp, _ = doJSON(t, "GET", srv.URL+"/api/users/bob/conversations/"+convID, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, "GET", srv.URL+"/api/users/alice/conversations/550e8400-e29b-41d4-a716-446655440000", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &queuedProvider{})

	resp, body := doJSON(t, "GET", srv.URL+"/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}
