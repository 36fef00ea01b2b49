package router

import (
	"net/http"

	"simplenotes/config"
	noteHandler "simplenotes/internal/note"
	"simplenotes/internal/note/service"
	"simplenotes/middleware"
	"simplenotes/socket"
)

func Setup(cfg config.Config, svc *service.NoteService, hub *socket.Hub) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r, middleware.UserID(r))
	})
	mux.Handle("/ws", auth(wsHandler))

	// REST API
	notes := noteHandler.NewNoteHandler(svc)

	mux.Handle("/api/notes/create", auth(http.HandlerFunc(notes.CreateNote)))
	mux.Handle("/api/notes", auth(http.HandlerFunc(notes.GetNotes)))
	mux.Handle("/api/notes/get", auth(http.HandlerFunc(notes.GetNote)))
	mux.Handle("/api/notes/save", auth(http.HandlerFunc(notes.SaveNote)))
	mux.Handle("/api/notes/delete", auth(http.HandlerFunc(notes.DeleteNote)))
	mux.Handle("/api/notes/canvas/export", auth(http.HandlerFunc(notes.ExportCanvas)))
	mux.Handle("/api/notes/canvas/image", auth(http.HandlerFunc(notes.InsertImage)))
	mux.Handle("/api/notes/canvas.png", auth(http.HandlerFunc(notes.CanvasImage)))
	mux.Handle("/api/status", auth(http.HandlerFunc(notes.Status)))

	return middleware.CORSMiddleware(cfg.CORSOrigin)(mux)
}
