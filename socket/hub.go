package socket

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"

	"simplenotes/internal/canvas"
	"simplenotes/internal/note/model"
	"simplenotes/pkg/logger"
)

const (
	// Client -> server pointer and tool events.
	PressType   = "PRESS"
	DragType    = "DRAG"
	ReleaseType = "RELEASE"
	ToolType    = "TOOL"
	ColorType   = "COLOR"
	BrushType   = "BRUSH"
	ResizeType  = "RESIZE"
	ClearType   = "CLEAR"

	// Server -> client notifications.
	RedrawType         = "REDRAW"          // A region of the canvas changed
	PresenceUpdateType = "PRESENCE_UPDATE" // The session now owning the note
	ErrorType          = "ERROR"           // The sender's last event was rejected
)

var (
	// ErrNoCanvas is returned when a note has no open drawing session.
	ErrNoCanvas = errors.New("no open canvas for note")
	// ErrNoteBusy is returned when a note already has an editor session.
	ErrNoteBusy = errors.New("note is already open in another editor")
	// ErrHubStopped is returned once the hub has shut down.
	ErrHubStopped = errors.New("canvas hub stopped")
)

type WSMessage struct {
	Type      string          `json:"type"`
	NoteID    int64           `json:"note_id"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type PointerPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

type ColorPayload struct {
	Color string `json:"color"`
}

type BrushPayload struct {
	Size int `json:"size"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type RedrawPayload struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NoteFinder is the part of the note repository the hub needs.
type NoteFinder interface {
	Get(id int64) (model.Note, error)
}

// Hub owns every open canvas. A note has at most one editor session, and that
// session exclusively owns the note's controller. All canvas mutation happens on
// the goroutine running Run, so events are applied one at a time in arrival order.
type Hub struct {
	Sessions   map[int64]*Client
	Canvases   map[int64]*canvas.Controller
	Events     chan WSMessage
	Register   chan *Client
	Unregister chan *Client

	// AllowedOrigin is the cross-origin page allowed to open sessions, or "*".
	// Empty allows same-origin pages only.
	AllowedOrigin string

	notes      NoteFinder
	reserved   map[int64]bool
	requests   chan func()
	done       chan struct{}
	width      int
	height     int
	background color.NRGBA
}

func NewHub(notes NoteFinder, width, height int, background color.NRGBA) *Hub {
	return &Hub{
		Sessions:   make(map[int64]*Client),
		Canvases:   make(map[int64]*canvas.Controller),
		Events:     make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		notes:      notes,
		reserved:   make(map[int64]bool),
		requests:   make(chan func()),
		done:       make(chan struct{}),
		width:      width,
		height:     height,
		background: background,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			delete(h.reserved, client.NoteID)
			// The session opens the note's editor and its drawing layer.
			h.Sessions[client.NoteID] = client
			h.Canvases[client.NoteID] = canvas.NewController(h.width, h.height, h.background)
			logger.Sugar.Infof("Opened canvas for note %d (session %s)", client.NoteID, client.SessionID)
			h.sendPresence(client)

		case client := <-h.Unregister:
			h.drop(client)

		case msg := <-h.Events:
			h.handleEvent(msg)

		case fn := <-h.requests:
			fn()

		case <-h.done:
			for noteID := range h.Sessions {
				h.closeNote(noteID)
			}
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	close(h.done)
}

// do runs fn on the hub goroutine and waits for it to finish.
// It reports false, without running fn, once the hub has stopped.
func (h *Hub) do(fn func()) bool {
	finished := make(chan struct{})
	select {
	case h.requests <- func() {
		defer close(finished)
		fn()
	}:
	case <-h.done:
		return false
	}
	<-finished
	return true
}

// reserve claims a note for a session that is about to be upgraded.
// The claim is turned into a session by Register or given back with release.
func (h *Hub) reserve(noteID int64) (err error) {
	if !h.do(func() {
		if h.Sessions[noteID] != nil || h.reserved[noteID] {
			err = ErrNoteBusy
			return
		}
		h.reserved[noteID] = true
	}) {
		return ErrHubStopped
	}
	return err
}

func (h *Hub) release(noteID int64) {
	h.do(func() { delete(h.reserved, noteID) })
}

// Export writes the note's current drawing to path and returns the normalised path.
func (h *Hub) Export(noteID int64, path string, f canvas.Format) (written string, err error) {
	if !h.do(func() {
		c, ok := h.Canvases[noteID]
		if !ok {
			err = ErrNoCanvas
			return
		}
		written, err = c.Export(path, f)
	}) {
		return "", ErrNoCanvas
	}
	return written, err
}

// Snapshot returns the note's current drawing encoded in format f.
func (h *Hub) Snapshot(noteID int64, f canvas.Format) (data []byte, err error) {
	if !h.do(func() {
		c, ok := h.Canvases[noteID]
		if !ok {
			err = ErrNoCanvas
			return
		}
		data, err = c.ToImage(f)
	}) {
		return nil, ErrNoCanvas
	}
	return data, err
}

// PlaceImage draws img centred on the note's canvas and asks the session to repaint.
func (h *Hub) PlaceImage(noteID int64, img image.Image) (damage image.Rectangle, err error) {
	if !h.do(func() {
		c, ok := h.Canvases[noteID]
		if !ok {
			err = ErrNoCanvas
			return
		}
		damage = c.PlaceImage(img)
		h.sendRedraw(h.Sessions[noteID], damage)
	}) {
		return image.Rectangle{}, ErrNoCanvas
	}
	return damage, err
}

// RemoveNote disconnects the session of a deleted note and destroys its canvas.
func (h *Hub) RemoveNote(noteID int64) {
	h.do(func() { h.closeNote(noteID) })
}

func (h *Hub) closeNote(noteID int64) {
	if client, ok := h.Sessions[noteID]; ok {
		close(client.Send)
		// Closing the connection makes readPump exit; its unregister is then a no-op.
		client.Conn.Close()
		delete(h.Sessions, noteID)
	}
	if c, ok := h.Canvases[noteID]; ok {
		c.Close()
		delete(h.Canvases, noteID)
		logger.Sugar.Infof("Closed canvas for note %d", noteID)
	}
}

// drop ends a client's session. The editor is closed, so its drawing layer goes with it.
func (h *Hub) drop(client *Client) {
	if h.Sessions[client.NoteID] != client {
		return
	}
	delete(h.Sessions, client.NoteID)
	close(client.Send)
	h.Canvases[client.NoteID].Close()
	delete(h.Canvases, client.NoteID)
	logger.Sugar.Infof("Closed and cleaned up canvas for note %d", client.NoteID)
}

func (h *Hub) handleEvent(msg WSMessage) {
	client, ok := h.Sessions[msg.NoteID]
	if !ok || client.SessionID != msg.SessionID {
		// Late event from a session that no longer owns the note.
		return
	}
	c := h.Canvases[msg.NoteID]

	damage, err := apply(c, msg)
	if err != nil {
		logger.Sugar.Warnf("Rejected %s from session %s on note %d: %v", msg.Type, msg.SessionID, msg.NoteID, err)
		h.sendError(client, msg, err)
		return
	}
	h.sendRedraw(client, damage)
}

func (h *Hub) sendRedraw(client *Client, damage image.Rectangle) {
	if damage.Empty() {
		return
	}
	payload, _ := json.Marshal(RedrawPayload{X: damage.Min.X, Y: damage.Min.Y, Width: damage.Dx(), Height: damage.Dy()})
	h.send(client, WSMessage{Type: RedrawType, NoteID: client.NoteID, SessionID: client.SessionID, Payload: payload})
}

// apply routes one client event to the controller and returns the damaged area.
func apply(c *canvas.Controller, msg WSMessage) (image.Rectangle, error) {
	switch msg.Type {
	case PressType:
		p, err := decode[PointerPayload](msg.Payload)
		if err != nil {
			return image.Rectangle{}, err
		}
		return c.Press(p.X, p.Y), nil

	case DragType:
		p, err := decode[PointerPayload](msg.Payload)
		if err != nil {
			return image.Rectangle{}, err
		}
		return c.Drag(p.X, p.Y), nil

	case ReleaseType:
		c.Release()

	case ToolType:
		p, err := decode[ToolPayload](msg.Payload)
		if err != nil {
			return image.Rectangle{}, err
		}
		tool, err := canvas.ParseTool(p.Tool)
		if err != nil {
			return image.Rectangle{}, err
		}
		c.SetTool(tool)

	case ColorType:
		p, err := decode[ColorPayload](msg.Payload)
		if err != nil {
			return image.Rectangle{}, err
		}
		col, err := canvas.ParseHex(p.Color)
		if err != nil {
			return image.Rectangle{}, err
		}
		c.SetColor(col)

	case BrushType:
		p, err := decode[BrushPayload](msg.Payload)
		if err != nil {
			return image.Rectangle{}, err
		}
		c.SetBrushSize(p.Size)

	case ResizeType:
		p, err := decode[ResizePayload](msg.Payload)
		if err != nil {
			return image.Rectangle{}, err
		}
		c.Resize(p.Width, p.Height)
		if s := c.Surface(); s != nil {
			return s.Bounds(), nil
		}

	case ClearType:
		return c.Clear(), nil

	default:
		return image.Rectangle{}, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return image.Rectangle{}, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("invalid payload: %w", err)
	}
	return v, nil
}

func (h *Hub) sendError(client *Client, msg WSMessage, cause error) {
	payload, _ := json.Marshal(ErrorPayload{Message: cause.Error()})
	h.send(client, WSMessage{Type: ErrorType, NoteID: msg.NoteID, SessionID: msg.SessionID, Payload: payload})
}

// send queues msg for the client. A client whose buffer is full is lagging and
// gets disconnected.
func (h *Hub) send(client *Client, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s message: %v", msg.Type, err)
		return
	}
	select {
	case client.Send <- data:
	default:
		logger.Sugar.Warnf("Session %s's send buffer is full. Unregistering.", client.SessionID)
		h.drop(client)
		client.Conn.Close()
	}
}

// sendPresence tells a new session which session now edits the note.
func (h *Hub) sendPresence(client *Client) {
	payload, err := json.Marshal([]string{client.SessionID})
	if err != nil {
		logger.Sugar.Errorf("Error marshalling presence update: %v", err)
		return
	}
	h.send(client, WSMessage{Type: PresenceUpdateType, NoteID: client.NoteID, SessionID: client.SessionID, Payload: payload})
}
