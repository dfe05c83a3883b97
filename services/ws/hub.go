// Package ws serves the subscription streams over plain websockets for
// clients that do not speak socket.io. Frames are JSON:
//
//	client -> {"type":"subscribe","stream":"game-added","variables":{...}}
//	client -> {"type":"update","id":"...","variables":{...}}
//	client -> {"type":"unsubscribe","id":"..."}
//	server -> {"type":"ack","id":"...","request":"subscribe"}
//	server -> {"type":"error","error":"...","reason":"..."}
//	server -> {"type":"event","subscription":"...","stream":"...","topic":"...","payload":{...}}
package ws

import (
	"Recit/middleware"
	"Recit/services/subscriptions"
	"Recit/utils/apperrors"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	maxFrameSize = 4096
	sendQueue    = 256
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(raw string) (uint, error)
}

type Hub struct {
	manager  *subscriptions.Manager
	upgrader websocket.Upgrader
	clients  map[*Client]bool
	mutex    sync.RWMutex
}

func NewHub(manager *subscriptions.Manager) *Hub {
	return &Hub{
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*Client]bool),
	}
}

// Handler upgrades the request. Browsers cannot set headers on a websocket,
// so a "token" query parameter is accepted next to the usual
// authentication.
func (h *Hub) Handler(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUser(c)
		if token := c.Query("token"); userID == 0 && token != "" {
			id, err := tokens.Verify(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "reason": "Unauthenticated"})
				return
			}
			userID = id
		}
		h.HandleConnection(c.Writer, c.Request, userID)
	}
}

func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS-ERROR] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendQueue),
	}
	client.session = h.manager.NewSession(userID, client.deliver)

	h.mutex.Lock()
	h.clients[client] = true
	h.mutex.Unlock()
	log.Printf("[WS] Client connected, user %d", userID)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) unregister(c *Client) {
	h.mutex.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mutex.Unlock()
	if !ok {
		return
	}
	c.session.Close()
	c.close()
	log.Printf("[WS] Client of user %d disconnected", c.session.UserID())
}

// Count returns how many clients are connected.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.RUnlock()
	for _, c := range clients {
		h.unregister(c)
	}
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *subscriptions.Session

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

type frame struct {
	Type         string                 `json:"type"`
	ID           string                 `json:"id,omitempty"`
	Request      string                 `json:"request,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Reason       string                 `json:"reason,omitempty"`
	Fields       []apperrors.FieldError `json:"fields,omitempty"`
	Subscription string                 `json:"subscription,omitempty"`
	Stream       subscriptions.Stream   `json:"stream,omitempty"`
	Topic        string                 `json:"topic,omitempty"`
	Payload      interface{}            `json:"payload,omitempty"`
}

// enqueue never blocks: a client that does not keep up loses frames.
func (c *Client) enqueue(f frame) {
	data, err := json.Marshal(f)
	if err != nil {
		log.Printf("[WS-ERROR] Could not marshal %s frame: %v", f.Type, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Send queue full for user %d, dropping %s frame", c.session.UserID(), f.Type)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) deliver(d subscriptions.Delivery) {
	c.enqueue(frame{
		Type:         "event",
		Subscription: d.Subscription,
		Stream:       d.Stream,
		Topic:        string(d.Topic),
		Payload:      d.Payload,
	})
}

func (c *Client) handle(raw []byte) {
	req, err := subscriptions.DecodeRequest(raw)
	var id string
	if err == nil {
		id, err = c.session.Apply(req)
	}
	if err != nil {
		f := frame{Type: "error", ID: req.ID, Request: req.Type, Error: err.Error()}
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			f.Reason = appErr.Kind.String()
			if appErr.Reason != "" {
				f.Reason = appErr.Reason
			}
			f.Fields = appErr.Fields
		}
		c.enqueue(f)
		return
	}
	c.enqueue(frame{Type: "ack", ID: id, Request: req.Type})
}

func (c *Client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS-ERROR] Read failed: %v", err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
