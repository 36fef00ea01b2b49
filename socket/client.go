package socket

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"simplenotes/internal/note/repository"
	"simplenotes/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// ServeWs checks the origin against the hub before upgrading.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// checkOrigin accepts requests without an Origin header, same-origin pages, and
// the hub's allowed cross-origin page.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.AllowedOrigin == "*" {
		return true
	}
	if h.AllowedOrigin != "" && strings.EqualFold(origin, h.AllowedOrigin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	NoteID    int64
	UserID    string
	SessionID string
	Send      chan []byte
}

// ServeWs opens a drawing session on the note named by the noteId query parameter.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	noteID, err := strconv.ParseInt(r.URL.Query().Get("noteId"), 10, 64)
	if err != nil || noteID <= 0 {
		http.Error(w, "Missing or invalid noteId parameter", http.StatusBadRequest)
		return
	}

	// Drafts have no canvas until they are saved.
	if _, err := hub.notes.Get(noteID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			logger.Sugar.Warnf("Connection rejected: note %d not found", noteID)
			http.Error(w, "Note not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load note", http.StatusInternalServerError)
		return
	}

	if !hub.checkOrigin(r) {
		logger.Sugar.Warnf("Connection rejected: origin %q not allowed", r.Header.Get("Origin"))
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	// One editor per note: the session owns the note's drawing layer.
	if err := hub.reserve(noteID); err != nil {
		if errors.Is(err, ErrNoteBusy) {
			logger.Sugar.Warnf("Connection rejected: note %d is already being edited", noteID)
			http.Error(w, "Note is already open in another editor", http.StatusConflict)
			return
		}
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.release(noteID)
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:       hub,
		Conn:      conn,
		NoteID:    noteID,
		UserID:    userID,
		SessionID: uuid.NewString(),
		Send:      make(chan []byte, 256),
	}
	select {
	case client.Hub.Register <- client:
	case <-client.Hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}

		// Set server-authoritative fields to prevent spoofing.
		msg.NoteID = c.NoteID
		msg.SessionID = c.SessionID

		select {
		case c.Hub.Events <- msg:
		case <-c.Hub.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Send ping every 30s
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		}
	}
}
