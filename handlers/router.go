package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/database"
	"github.com/CrowderSoup/taskboard/services"
)

// Deps is everything the dashboard routes are served from.
type Deps struct {
	Auth      *services.AuthService
	Identity  *services.IdentityStore
	Workspace *services.WorkspaceService
	Tasks     *services.TaskService
	Board     *board.Model
	Data      *database.DataService
	Hub       *services.Hub
	Log       *zap.Logger

	// CheckOrigin filters websocket handshakes, nil accepts all.
	CheckOrigin func(r *http.Request) bool
}

func NewRouter(d Deps) *mux.Router {
	log := d.Log
	if log == nil {
		log = zap.L()
	}

	authHandler := NewAuthHandler(d.Auth, d.Identity, log)
	dataHandler := NewDataHandler(d.Data, log)
	workspaceHandler := NewWorkspaceHandler(d.Workspace)
	boardHandler := NewBoardHandler(d.Board, d.Workspace, d.Data, log)
	taskHandler := NewTaskHandler(d.Tasks)
	feedHandler := NewFeedHandler(d.Hub, d.CheckOrigin, log)
	authMiddleware := NewAuthMiddleware(d.Auth)

	r := mux.NewRouter()
	r.Use(RequestLogger(log))

	// Auth routes
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")

	// Everything else needs a dashboard token
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware.Auth)

	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/preferences", dataHandler.GetPreferences).Methods("GET")
	api.HandleFunc("/preferences", dataHandler.SavePreferences).Methods("PUT")

	api.HandleFunc("/projects", workspaceHandler.Projects).Methods("GET")
	api.Handle("/projects", ManagerOnly(http.HandlerFunc(workspaceHandler.CreateProject))).Methods("POST")
	api.HandleFunc("/projects/{id:[0-9]+}", workspaceHandler.Project).Methods("GET")
	api.Handle("/projects/{id:[0-9]+}/invite", ManagerOnly(http.HandlerFunc(workspaceHandler.Invite))).Methods("POST")
	api.Handle("/users", ManagerOnly(http.HandlerFunc(workspaceHandler.Users))).Methods("GET")

	api.HandleFunc("/board", boardHandler.Get).Methods("GET")
	api.HandleFunc("/board/select", boardHandler.Select).Methods("POST")
	api.HandleFunc("/board/reload", boardHandler.Reload).Methods("POST")
	api.HandleFunc("/board/move", boardHandler.Move).Methods("POST")
	api.HandleFunc("/board/page", boardHandler.Page).Methods("POST")
	api.Handle("/board/cards", ManagerOnly(http.HandlerFunc(boardHandler.CreateCard))).Methods("POST")
	api.Handle("/board/cards/{id:[0-9]+}", ManagerOnly(http.HandlerFunc(boardHandler.DeleteCard))).Methods("DELETE")

	api.HandleFunc("/tasks/{id:[0-9]+}", taskHandler.Get).Methods("GET")
	api.HandleFunc("/tasks/{id:[0-9]+}/description", taskHandler.UpdateDescription).Methods("PATCH")
	api.HandleFunc("/tasks/{id:[0-9]+}/priority", taskHandler.UpdatePriority).Methods("PATCH")
	api.HandleFunc("/tasks/{id:[0-9]+}/estimated-time", taskHandler.UpdateEstimate).Methods("PATCH")
	api.Handle("/tasks/{id:[0-9]+}/assign", ManagerOnly(http.HandlerFunc(taskHandler.Assign))).Methods("POST")
	api.Handle("/tasks/{id:[0-9]+}/unassign", ManagerOnly(http.HandlerFunc(taskHandler.Unassign))).Methods("POST")
	api.HandleFunc("/tasks/{id:[0-9]+}/comments", taskHandler.Comments).Methods("GET")
	api.HandleFunc("/tasks/{id:[0-9]+}/comments", taskHandler.AddComment).Methods("POST")
	api.HandleFunc("/comments/{id:[0-9]+}", taskHandler.EditComment).Methods("PATCH")
	api.HandleFunc("/comments/{id:[0-9]+}", taskHandler.DeleteComment).Methods("DELETE")

	// WebSocket route for the view feed
	api.Handle("/ws", feedHandler).Methods("GET")

	return r
}
