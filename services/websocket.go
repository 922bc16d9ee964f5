package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/notice"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Views only send pings
	maxMessageSize = 4096

	sendBuffer      = 256
	broadcastBuffer = 256
)

// Message types on the view feed.
const (
	MessageBoard  = "board"
	MessageNotice = "notice"
	MessagePing   = "ping"
	MessagePong   = "pong"
)

// WebSocketMessage is the standard message format for WebSocket communication
type WebSocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client represents a connected view
type Client struct {
	ID    string
	Hub   *Hub
	Conn  *websocket.Conn
	Send  chan []byte
	Email string
}

func NewClient(hub *Hub, conn *websocket.Conn, email string) *Client {
	return &Client{
		ID:    uuid.NewString(),
		Hub:   hub,
		Conn:  conn,
		Send:  make(chan []byte, sendBuffer),
		Email: email,
	}
}

// ReadPump reads from the connection until it fails. Pings are answered on
// this client only; anything else a view sends is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket error", zap.String("client", c.ID), zap.Error(err))
			}
			return
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			c.Hub.log.Debug("malformed websocket message", zap.String("client", c.ID), zap.Error(err))
			continue
		}
		if wsMessage.Type != MessagePing {
			continue
		}

		pong, err := json.Marshal(WebSocketMessage{
			Type: MessagePong,
			Data: map[string]string{"timestamp": time.Now().Format(time.RFC3339)},
		})
		if err == nil {
			select {
			case c.Send <- pong:
			default:
			}
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one frame per message, views parse each frame as json
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type outbound struct {
	board   bool
	payload []byte
}

// Hub fans board snapshots and notices out to every connected view. It is a
// notice.Notifier, and PublishBoard is meant to be the board observer.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	count      chan chan int
	done       chan struct{}
	log        *zap.Logger

	// last board snapshot, sent to views as they connect
	lastBoard []byte
}

var _ notice.Notifier = (*Hub)(nil)

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.L()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Register adds a client. After the hub stopped, the client is closed
// right away.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Clients returns how many views are connected.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Notify implements notice.Notifier.
func (h *Hub) Notify(n notice.Notice) {
	h.send(WebSocketMessage{Type: MessageNotice, Data: n}, false)
}

// PublishBoard sends a board snapshot to every view.
func (h *Hub) PublishBoard(s board.Snapshot) {
	h.send(WebSocketMessage{Type: MessageBoard, Data: s}, true)
}

func (h *Hub) send(message WebSocketMessage, isBoard bool) {
	payload, err := json.Marshal(message)
	if err != nil {
		h.log.Error("failed to marshal websocket message", zap.String("type", message.Type), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- outbound{board: isBoard, payload: payload}:
	default:
		h.log.Warn("websocket broadcast queue full, dropping message", zap.String("type", message.Type))
	}
}

// Run starts the hub's main loop. It returns when ctx is done, after
// closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			close(client.Send)
			delete(h.clients, client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("client connected", zap.String("client", client.ID), zap.String("email", client.Email))
			if h.lastBoard != nil {
				select {
				case client.Send <- h.lastBoard:
				default:
				}
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Info("client disconnected", zap.String("client", client.ID))
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case message := <-h.broadcast:
			if message.board {
				h.lastBoard = message.payload
			}
			for client := range h.clients {
				select {
				case client.Send <- message.payload:
				default:
					// Client's send buffer is full, assume disconnected
					h.log.Warn("client send buffer full, removing client", zap.String("client", client.ID))
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}
