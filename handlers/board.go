package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/database"
	"github.com/CrowderSoup/taskboard/services"
)

// BoardHandler drives the board model on behalf of the view.
type BoardHandler struct {
	board     *board.Model
	workspace *services.WorkspaceService
	data      *database.DataService
	log       *zap.Logger
}

func NewBoardHandler(model *board.Model, workspace *services.WorkspaceService, data *database.DataService, log *zap.Logger) *BoardHandler {
	return &BoardHandler{board: model, workspace: workspace, data: data, log: log}
}

func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

type selectRequest struct {
	ProjectID int64          `json:"project_id"`
	Filters   *board.Filters `json:"filters"`
}

// Select loads a project. Missing fields fall back to the saved preferences,
// and a missing project to the user's first project.
func (h *BoardHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	claims, _ := ClaimsFrom(ctx)
	prefs := &database.Preferences{Filters: board.DefaultFilters()}
	if claims != nil {
		saved, err := h.data.GetUserData(ctx, claims.Email)
		if err != nil {
			h.log.Warn("failed to read preferences", zap.Error(err))
		} else {
			prefs = saved
		}
	}

	filters := prefs.Filters
	if req.Filters != nil {
		filters = *req.Filters
	}
	selected := req.ProjectID
	if selected == 0 {
		selected = prefs.SelectedProject
	}
	projectID, err := h.workspace.DefaultProject(ctx, selected)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.board.Select(ctx, projectID, filters); err != nil {
		writeError(w, err)
		return
	}

	if claims != nil {
		prefs.SelectedProject = projectID
		prefs.Filters = filters
		if err := h.data.SaveUserData(ctx, claims.Email, prefs); err != nil {
			h.log.Warn("failed to save preferences", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// Reload fetches the current page of the current selection again.
func (h *BoardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	projectID, filters := h.board.Selection()
	if err := h.board.Reload(r.Context(), projectID, filters, 0); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

type moveRequest struct {
	CardID   int64          `json:"card_id"`
	From     board.ColumnID `json:"from"`
	To       board.ColumnID `json:"to"`
	Position *int           `json:"position"`
}

func (h *BoardHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	position := -1
	if req.Position != nil {
		position = *req.Position
	}

	if err := h.board.MoveCard(req.CardID, req.From, req.To, position); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

type pageRequest struct {
	Direction string `json:"direction"`
	Page      int    `json:"page"`
}

type pageResponse struct {
	Moved bool           `json:"moved"`
	Board board.Snapshot `json:"board"`
}

// Page moves the cursor: "next", "prev" or an explicit page.
func (h *BoardHandler) Page(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		moved bool
		err   error
	)
	switch {
	case req.Direction == "next":
		moved, err = h.board.NextPage(r.Context())
	case req.Direction == "prev":
		moved, err = h.board.PrevPage(r.Context())
	case req.Direction == "" && req.Page > 0:
		moved, err = h.board.GoToPage(r.Context(), req.Page)
	default:
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "direction must be next or prev, or a page given")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{Moved: moved, Board: h.board.Snapshot()})
}

type createCardRequest struct {
	Column board.ColumnID `json:"column"`
	board.NewCard
}

func (h *BoardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Column == 0 {
		req.Column = board.ColumnTodo
	}

	card, err := h.board.CreateCard(r.Context(), req.Column, req.NewCard)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *BoardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.board.DeleteCard(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
