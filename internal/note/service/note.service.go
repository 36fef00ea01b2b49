package service

import (
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"simplenotes/internal/canvas"
	"simplenotes/internal/note/model"
	"simplenotes/internal/note/repository"
	"simplenotes/pkg/logger"
)

var (
	// ErrInvalidNoteID is returned for a missing or non-positive note id.
	ErrInvalidNoteID = errors.New("invalid note id")
	// ErrExportPath is returned for an export path that resolves outside ExportDir.
	ErrExportPath = errors.New("export path outside export directory")
)

const snippetLength = 100

// CanvasSessions is the part of the socket hub the service drives.
type CanvasSessions interface {
	Export(noteID int64, path string, f canvas.Format) (string, error)
	Snapshot(noteID int64, f canvas.Format) ([]byte, error)
	PlaceImage(noteID int64, img image.Image) (image.Rectangle, error)
	RemoveNote(noteID int64)
}

type NoteService struct {
	Repo      *repository.NoteRepository
	Canvases  CanvasSessions
	ExportDir string
	now       func() time.Time
}

func NewNoteService(repo *repository.NoteRepository, canvases CanvasSessions, exportDir string) *NoteService {
	return &NoteService{Repo: repo, Canvases: canvases, ExportDir: exportDir, now: time.Now}
}

// CreateNote stores a fresh draft and returns it with its assigned id.
func (s *NoteService) CreateNote(req model.CreateNoteRequest) (model.Note, error) {
	note := model.Note{
		Title:           titleOrDefault(req.Title),
		LastModified:    s.now(),
		BackgroundColor: req.BackgroundColor,
		FontFamily:      req.FontFamily,
		Category:        req.Category,
	}.WithDefaults()

	id, err := s.Repo.Add(note)
	if err != nil {
		return model.Note{}, err
	}
	logger.Sugar.Infof("Created note %d (%s backend)", id, s.Repo.Backend())
	return note.WithID(id), nil
}

// SaveNote inserts a draft (id 0) or updates an existing note, returning the stored record.
func (s *NoteService) SaveNote(req model.SaveNoteRequest) (model.Note, error) {
	if req.ID < 0 {
		return model.Note{}, ErrInvalidNoteID
	}
	note := model.Note{
		ID:              req.ID,
		Title:           titleOrDefault(req.Title),
		Content:         req.Content,
		BackgroundColor: req.BackgroundColor,
		FontFamily:      req.FontFamily,
		Category:        req.Category,
	}.WithDefaults()

	if note.IsDraft() {
		note.LastModified = s.now()
		id, err := s.Repo.Add(note)
		if err != nil {
			return model.Note{}, err
		}
		return note.WithID(id), nil
	}
	return s.Repo.Update(note)
}

func (s *NoteService) GetNote(id int64) (model.Note, error) {
	if id <= 0 {
		return model.Note{}, ErrInvalidNoteID
	}
	return s.Repo.Get(id)
}

// ListNotes returns every note, most recently modified first.
func (s *NoteService) ListNotes() ([]model.NoteSummary, error) {
	notes, err := s.Repo.GetAll()
	if err != nil {
		return nil, err
	}
	summaries := make([]model.NoteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, model.NoteSummary{
			ID:              n.ID,
			Title:           n.Title,
			LastModified:    n.LastModified,
			Snippet:         getSnippetFromContent(n.Content),
			BackgroundColor: n.BackgroundColor,
			FontFamily:      n.FontFamily,
			Category:        n.Category,
		})
	}
	return summaries, nil
}

// DeleteNote removes the note and closes any drawing sessions open on it.
func (s *NoteService) DeleteNote(id int64) error {
	if id <= 0 {
		return ErrInvalidNoteID
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.Canvases.RemoveNote(id)
	return nil
}

// ExportCanvas writes the note's drawing to disk. Relative paths resolve against
// ExportDir; an empty path becomes note-<id>.
func (s *NoteService) ExportCanvas(req model.ExportCanvasRequest) (string, error) {
	if req.NoteID <= 0 {
		return "", ErrInvalidNoteID
	}
	format, err := canvas.ParseFormat(req.Format)
	if err != nil {
		return "", err
	}

	path, err := s.exportPath(req.NoteID, req.Path)
	if err != nil {
		return "", err
	}

	written, err := s.Canvases.Export(req.NoteID, path, format)
	if err != nil {
		return "", err
	}
	logger.Sugar.Infof("Exported canvas of note %d to %s", req.NoteID, written)
	return written, nil
}

// exportPath resolves a requested path under ExportDir. Relative paths are joined to
// it; absolute paths are accepted only when they already lie inside it.
func (s *NoteService) exportPath(noteID int64, requested string) (string, error) {
	base, err := filepath.Abs(s.ExportDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportPath, err)
	}

	path := strings.TrimSpace(requested)
	if path == "" {
		path = fmt.Sprintf("note-%d", noteID)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrExportPath, requested)
	}
	return path, nil
}

// InsertImage decodes an image and draws it centred on the note's open canvas.
func (s *NoteService) InsertImage(noteID int64, r io.Reader) (image.Rectangle, error) {
	if noteID <= 0 {
		return image.Rectangle{}, ErrInvalidNoteID
	}
	img, err := canvas.Decode(r)
	if err != nil {
		return image.Rectangle{}, err
	}
	return s.Canvases.PlaceImage(noteID, img)
}

// CanvasImage returns the note's current drawing as PNG.
func (s *NoteService) CanvasImage(id int64) ([]byte, error) {
	if id <= 0 {
		return nil, ErrInvalidNoteID
	}
	return s.Canvases.Snapshot(id, canvas.PNG)
}

func (s *NoteService) Status() model.StatusResponse {
	return model.StatusResponse{Backend: string(s.Repo.Backend())}
}

func titleOrDefault(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return model.DefaultTitle
}

// getSnippetFromContent flattens note text to a single line of at most snippetLength runes.
func getSnippetFromContent(content string) string {
	res := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(res) > snippetLength {
		return string([]rune(res)[:snippetLength]) + "..."
	}
	return res
}
