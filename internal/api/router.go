package api

import (
	"github.com/gorilla/mux"

	"github.com/taskpilot/taskpilot/internal/api/recovery"
	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/services"
)

// NewRouter wires every HTTP route. Handlers stay thin; all semantics live
// in the services layer.
func NewRouter(
	authorizer auth.Authorizer,
	chatSvc *services.ChatService,
	taskSvc *services.TaskService,
	userSvc *services.UserService,
	convSvc *services.ConversationService,
	isHealthy func() bool,
) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	chatHandler := NewChatHandler(chatSvc, authorizer)
	taskHandler := NewTaskHandler(taskSvc, userSvc, authorizer)
	convHandler := NewConversationHandler(convSvc, authorizer)
	healthHandler := NewHealthHandler(isHealthy)

	// Health endpoint
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Chat endpoint
	router.HandleFunc("/api/users/{userId}/chat", chatHandler.HandleChat).Methods("POST")

	// Task endpoints
	router.HandleFunc("/api/users/{userId}/tasks", taskHandler.CreateTask).Methods("POST")
	router.HandleFunc("/api/users/{userId}/tasks", taskHandler.ListTasks).Methods("GET")
	router.HandleFunc("/api/users/{userId}/tasks/{taskId:[0-9]+}", taskHandler.GetTask).Methods("GET")
	router.HandleFunc("/api/users/{userId}/tasks/{taskId:[0-9]+}", taskHandler.UpdateTask).Methods("PATCH")
	router.HandleFunc("/api/users/{userId}/tasks/{taskId:[0-9]+}/complete", taskHandler.CompleteTask).Methods("POST")
	router.HandleFunc("/api/users/{userId}/tasks/{taskId:[0-9]+}", taskHandler.DeleteTask).Methods("DELETE")

	// Conversation endpoints (read-only; turns are the only writers)
	router.HandleFunc("/api/users/{userId}/conversations", convHandler.ListConversations).Methods("GET")
	router.HandleFunc("/api/users/{userId}/conversations/{conversationId:[0-9a-fA-F-]{36}}", convHandler.GetConversation).Methods("GET")

	return router
}
