package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"simplenotes/internal/canvas"
	"simplenotes/internal/note/model"
	"simplenotes/internal/note/repository"
	"simplenotes/internal/note/service"
	"simplenotes/pkg/logger"
	"simplenotes/socket"
)

// DefaultMaxImageBytes caps image uploads.
const DefaultMaxImageBytes = 10 << 20

type NoteHandler struct {
	Service       *service.NoteService
	MaxImageBytes int64
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{Service: service, MaxImageBytes: DefaultMaxImageBytes}
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreateNoteRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // Ignore error, default to empty

	note, err := h.Service.CreateNote(req)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, note)
}

func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	notes, err := h.Service.ListNotes()
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, notes)
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID, ok := noteIDParam(w, r)
	if !ok {
		return
	}

	note, err := h.Service.GetNote(noteID)
	if err != nil {
		writeError(w, "fetch note", err)
		return
	}
	writeJSON(w, note)
}

func (h *NoteHandler) SaveNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	note, err := h.Service.SaveNote(req)
	if err != nil {
		writeError(w, "save note", err)
		return
	}
	writeJSON(w, note)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID, ok := noteIDParam(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteNote(noteID); err != nil {
		writeError(w, "delete note", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Note deleted successfully"))
}

func (h *NoteHandler) ExportCanvas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req model.ExportCanvasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	written, err := h.Service.ExportCanvas(req)
	if err != nil {
		writeError(w, "export canvas", err)
		return
	}
	writeJSON(w, model.ExportCanvasResponse{Path: written})
}

// InsertImage accepts a raw image body and draws it onto the note's open canvas.
func (h *NoteHandler) InsertImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID, ok := noteIDParam(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxImageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("Image exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	damage, err := h.Service.InsertImage(noteID, bytes.NewReader(body))
	if err != nil {
		writeError(w, "insert image", err)
		return
	}
	writeJSON(w, socket.RedrawPayload{X: damage.Min.X, Y: damage.Min.Y, Width: damage.Dx(), Height: damage.Dy()})
}

func (h *NoteHandler) CanvasImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID, ok := noteIDParam(w, r)
	if !ok {
		return
	}

	data, err := h.Service.CanvasImage(noteID)
	if err != nil {
		writeError(w, "render canvas", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (h *NoteHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.Service.Status())
}

func noteIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	noteID, err := strconv.ParseInt(r.URL.Query().Get("noteId"), 10, 64)
	if err != nil || noteID <= 0 {
		http.Error(w, "Missing or invalid noteId parameter", http.StatusBadRequest)
		return 0, false
	}
	return noteID, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP status codes.
func writeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, repository.ErrNoteNotFound), errors.Is(err, socket.ErrNoCanvas):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidNoteID), errors.Is(err, service.ErrExportPath), errors.Is(err, canvas.ErrUnknownFormat),
		errors.Is(err, canvas.ErrUnsupportedImage), errors.Is(err, repository.ErrNotDraft):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Sugar.Errorf("Handler: Failed to %s: %v", action, err)
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}
