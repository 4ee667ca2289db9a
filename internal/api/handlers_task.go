package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	respond "github.com/taskpilot/taskpilot/internal/api/respond"
	"github.com/taskpilot/taskpilot/internal/api/validate"
	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/services"
)

// TaskHandler exposes the direct task surface. It shares the task service
// with the tool catalog, so anything the assistant can do a plain REST
// client can do too.
type TaskHandler struct {
	svc        *services.TaskService
	users      *services.UserService
	authorizer auth.Authorizer
}

func NewTaskHandler(svc *services.TaskService, users *services.UserService, authorizer auth.Authorizer) *TaskHandler {
	return &TaskHandler{svc: svc, users: users, authorizer: authorizer}
}

// authorize resolves the caller for the path user, or writes the error response.
func (h *TaskHandler) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
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

func taskIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["taskId"], 10, 64)
	if err != nil {
		respond.WriteBadRequest(w, "taskId must be an integer")
		return 0, false
	}
	return id, true
}

// CreateTask POST /api/users/{userId}/tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Title(req.Title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.MaxLen("description", req.Description, 2000); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if _, err := h.users.EnsureUser(r.Context(), actorID); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	out, err := h.svc.CreateTask(r.Context(), actorID, req.Title, req.Description)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListTasks GET /api/users/{userId}/tasks?status=pending|completed|all
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	filter := model.TaskFilter(r.URL.Query().Get("status"))
	out, err := h.svc.ListTasks(r.Context(), actorID, filter)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Task{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tasks": out, "count": len(out)})
}

// GetTask GET /api/users/{userId}/tasks/{taskId}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDVar(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GetTask(r.Context(), actorID, taskID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// UpdateTask PATCH /api/users/{userId}/tasks/{taskId}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDVar(w, r)
	if !ok {
		return
	}
	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.MaxLen("description", req.Description, 2000); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.UpdateTask(r.Context(), actorID, taskID, model.TaskUpdate{Title: req.Title, Description: req.Description})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// CompleteTask POST /api/users/{userId}/tasks/{taskId}/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDVar(w, r)
	if !ok {
		return
	}
	out, err := h.svc.CompleteTask(r.Context(), actorID, taskID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteTask DELETE /api/users/{userId}/tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.authorize(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDVar(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(r.Context(), actorID, taskID); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
