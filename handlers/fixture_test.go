package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/database"
	"github.com/CrowderSoup/taskboard/notice"
	"github.com/CrowderSoup/taskboard/services"
)

// fakeBackend plays the task-tracker API.
type fakeBackend struct {
	role string

	mu            sync.Mutex
	statusUpdates []string
	deleted       []string
}

func (b *fakeBackend) handler() http.Handler {
	r := mux.NewRouter()
	reply := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}

	r.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "pw" {
			reply(w, http.StatusUnauthorized, `{"message":"Unauthorized"}`)
			return
		}
		reply(w, http.StatusOK, `{"authorization":{"access_token":"remote-token"}}`)
	}).Methods("POST")
	r.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"message":"Successfully logged out"}`)
	}).Methods("POST")
	r.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, fmt.Sprintf(`{"data":{"id":1,"name":"Maya","email":"maya@example.com","role":%q}}`, b.role))
	}).Methods("GET")

	projects := func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{"data":[{"id":4,"title":"Ops","description":null},{"id":6,"title":"Web"}]}`)
	}
	r.HandleFunc("/projects/index", projects).Methods("GET")
	r.HandleFunc("/users/projects", projects).Methods("GET")

	r.HandleFunc("/users/tasks/created/{project}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{
			"grouped_tasks": {
				"todo": {"tasks": [{"id": 1, "title": "one", "priority": "3"}, {"id": 2, "title": "two"}]},
				"in-progress": {"tasks": [{"id": 3, "title": "three", "estimated_time": ""}]},
				"completed": {"tasks": []}
			},
			"pagination": {"current_page": 1, "last_page": 1, "next_page_url": null, "prev_page_url": null}
		}`)
	}).Methods("POST")
	r.HandleFunc("/users/tasks/edit/status/{task}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.statusUpdates = append(b.statusUpdates, mux.Vars(r)["task"]+":"+body.Status)
		b.mu.Unlock()
		reply(w, http.StatusOK, `{"message":"Status updated"}`)
	}).Methods("PATCH")
	r.HandleFunc("/dashboard/managers/tasks/create/{project}", func(w http.ResponseWriter, r *http.Request) {
		var body api.NewTask
		json.NewDecoder(r.Body).Decode(&body)
		reply(w, http.StatusCreated, fmt.Sprintf(`{"data":{"id":30,"title":%q,"status":%q}}`, body.Title, body.Status))
	}).Methods("POST")
	r.HandleFunc("/dashboard/managers/tasks/delete/{task}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deleted = append(b.deleted, mux.Vars(r)["task"])
		b.mu.Unlock()
		reply(w, http.StatusOK, `{"message":"Task deleted successfully"}`)
	}).Methods("DELETE")
	r.HandleFunc("/dashboard/managers/tasks/edit/priority/{task}", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, `{}`)
	}).Methods("PATCH")

	return r
}

func (b *fakeBackend) StatusUpdates() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.statusUpdates...)
}

type fixture struct {
	t       *testing.T
	server  *httptest.Server
	backend *fakeBackend
	board   *board.Model
	hub     *services.Hub
	notices *notice.Recorder
}

func newFixture(t *testing.T, role string) *fixture {
	t.Helper()

	backend := &fakeBackend{role: role}
	remote := httptest.NewServer(backend.handler())
	t.Cleanup(remote.Close)

	db, err := database.InitDB(filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	sessions := database.NewSessionStore(db)
	client := api.NewClient(remote.URL, sessions, api.WithLogger(log))

	hub := services.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	rec := new(notice.Recorder)
	notifier := notice.Multi{rec, hub}

	identity := services.NewIdentityStore(client, sessions, sessions, log)
	model := board.New(client, notifier,
		board.WithDebounce(time.Hour),
		board.WithLogger(log),
		board.WithObserver(hub.PublishBoard),
	)
	t.Cleanup(model.Close)

	router := NewRouter(Deps{
		Auth:      services.NewAuthService(client, sessions, identity, notifier, "secret", time.Hour, log),
		Identity:  identity,
		Workspace: services.NewWorkspaceService(client, identity, notifier, log),
		Tasks:     services.NewTaskService(client, model, identity, notifier, log),
		Board:     model,
		Data:      database.NewDataService(db),
		Hub:       hub,
		Log:       log,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{t: t, server: server, backend: backend, board: model, hub: hub, notices: rec}
}

// do sends a request to the dashboard and decodes the JSON answer into out
// when out is not nil.
func (f *fixture) do(method, path, token string, body any, out any) int {
	f.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(f.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *fixture) login() string {
	f.t.Helper()

	var out loginResponse
	status := f.do("POST", "/api/auth/login", "", api.Credentials{Email: "maya@example.com", Password: "pw"}, &out)
	require.Equal(f.t, http.StatusOK, status)
	require.NotEmpty(f.t, out.Token)
	return out.Token
}

func (f *fixture) selectDefault(token string) board.Snapshot {
	f.t.Helper()

	var snap board.Snapshot
	status := f.do("POST", "/api/board/select", token, selectRequest{}, &snap)
	require.Equal(f.t, http.StatusOK, status)
	return snap
}
