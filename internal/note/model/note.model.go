package model

import (
	"strings"
	"time"
)

const (
	DefaultTitle           = "New Note"
	DefaultBackgroundColor = "#121212"
	DefaultFontFamily      = "Arial"
	DefaultCategory        = "General"
)

// Note is a single note record. ID 0 marks a draft that has not been stored yet;
// the store assigns the ID on first insert and it never changes afterwards.
type Note struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	LastModified    time.Time `json:"last_modified"`
	BackgroundColor string    `json:"background_color"`
	FontFamily      string    `json:"font_family"`
	Category        string    `json:"category"`
}

// IsDraft reports whether the note has not been persisted yet.
func (n Note) IsDraft() bool {
	return n.ID == 0
}

// WithDefaults fills empty presentation fields with their defaults.
func (n Note) WithDefaults() Note {
	if strings.TrimSpace(n.BackgroundColor) == "" {
		n.BackgroundColor = DefaultBackgroundColor
	}
	if strings.TrimSpace(n.FontFamily) == "" {
		n.FontFamily = DefaultFontFamily
	}
	if strings.TrimSpace(n.Category) == "" {
		n.Category = DefaultCategory
	}
	return n
}

// WithID returns a copy of n carrying the store-assigned id.
func (n Note) WithID(id int64) Note {
	n.ID = id
	return n
}

type CreateNoteRequest struct {
	Title           string `json:"title"`
	BackgroundColor string `json:"background_color"`
	FontFamily      string `json:"font_family"`
	Category        string `json:"category"`
}

type SaveNoteRequest struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	BackgroundColor string `json:"background_color"`
	FontFamily      string `json:"font_family"`
	Category        string `json:"category"`
}

type NoteSummary struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	LastModified    time.Time `json:"last_modified"`
	Snippet         string    `json:"snippet"`
	BackgroundColor string    `json:"background_color"`
	FontFamily      string    `json:"font_family"`
	Category        string    `json:"category"`
}

type ExportCanvasRequest struct {
	NoteID int64  `json:"note_id"`
	Path   string `json:"path"`
	Format string `json:"format"`
}

type ExportCanvasResponse struct {
	Path string `json:"path"`
}

type StatusResponse struct {
	Backend string `json:"backend"`
}
