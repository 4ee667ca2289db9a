package api

import (
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/taskpilot/taskpilot/internal/api/respond"
	"github.com/taskpilot/taskpilot/internal/api/validate"
	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/services"
)

type ConversationHandler struct {
	svc        *services.ConversationService
	authorizer auth.Authorizer
}

func NewConversationHandler(svc *services.ConversationService, authorizer auth.Authorizer) *ConversationHandler {
	return &ConversationHandler{svc: svc, authorizer: authorizer}
}

func (h *ConversationHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	credential := auth.ExtractCredential(r)
	userID := mux.Vars(r)["userId"]

	if err := validate.UserID(userID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return "", false
	}
	actorInfo, err := h.authorizer.Authorize(r.Context(), credential, userID)
	if err != nil {
		respond.WriteError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
		return "", false
	}
	return actorInfo.ActorID, true
}

// ListConversations GET /api/users/{userId}/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	out, err := h.svc.ListConversations(r.Context(), actorID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Conversation{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": out, "count": len(out)})
}

// GetConversation GET /api/users/{userId}/conversations/{conversationId}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	conversationID := mux.Vars(r)["conversationId"]
	conv, msgs, err := h.svc.GetConversation(r.Context(), actorID, conversationID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"conversation": conv,
		"messages":     msgs,
		"count":        len(msgs),
	})
}
