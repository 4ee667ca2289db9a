package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/taskpilot/taskpilot/internal/api/respond"
	"github.com/taskpilot/taskpilot/internal/api/validate"
	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/services"
)

type ChatHandler struct {
	svc        *services.ChatService
	authorizer auth.Authorizer
}

func NewChatHandler(svc *services.ChatService, authorizer auth.Authorizer) *ChatHandler {
	return &ChatHandler{svc: svc, authorizer: authorizer}
}

type chatRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message"`
}

type chatResponse struct {
	ConversationID string                 `json:"conversationId"`
	Response       string                 `json:"response"`
	ToolCalls      []model.ToolInvocation `json:"toolCalls"`
}

// HandleChat POST /api/users/{userId}/chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	credential := auth.ExtractCredential(r)
	userID := mux.Vars(r)["userId"]

	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	actorInfo, err := h.authorizer.Authorize(r.Context(), credential, userID)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ConversationID(req.ConversationID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.Message(req.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.svc.HandleTurn(r.Context(), actorInfo.ActorID, req.ConversationID, req.Message)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out.Invocations == nil {
		out.Invocations = []model.ToolInvocation{}
	}
	respond.WriteJSON(w, http.StatusOK, chatResponse{
		ConversationID: out.ConversationID,
		Response:       out.Reply,
		ToolCalls:      out.Invocations,
	})
}
