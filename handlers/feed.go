package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/services"
)

// FeedHandler upgrades a view's connection to the websocket feed of board
// snapshots and notices.
type FeedHandler struct {
	hub      *services.Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewFeedHandler builds the feed handler. checkOrigin may be nil to accept
// every origin.
func NewFeedHandler(hub *services.Hub, checkOrigin func(r *http.Request) bool, log *zap.Logger) *FeedHandler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &FeedHandler{
		hub:      hub,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		log:      log,
	}
}

func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	email := ""
	if claims, ok := ClaimsFrom(r.Context()); ok {
		email = claims.Email
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("failed to upgrade to websocket", zap.Error(err))
		return
	}

	client := services.NewClient(h.hub, conn, email)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
