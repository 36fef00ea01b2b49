package repository

import (
	"errors"

	"simplenotes/internal/note/model"
)

var (
	// ErrSchemaInit means the durable table could not be created. It is fatal at startup.
	ErrSchemaInit = errors.New("note schema initialization failed")
	// ErrRecordOperation wraps a failed single-record operation against a store.
	ErrRecordOperation = errors.New("note record operation failed")
	// ErrNoteNotFound is returned when no note has the requested id.
	ErrNoteNotFound = errors.New("note not found")
	// ErrNotDraft is returned when inserting a note that already has an id.
	ErrNotDraft = errors.New("note already has an id")
)

// NoteStore is the CRUD contract shared by the durable and transient backends.
type NoteStore interface {
	// InitializeSchema prepares the backend. It is called once before any other method.
	InitializeSchema() error
	// Insert stores a draft and returns the id assigned to it.
	Insert(note model.Note) (int64, error)
	FetchByID(id int64) (model.Note, error)
	// FetchAll returns every note, most recently modified first.
	FetchAll() ([]model.Note, error)
	// Update overwrites the stored note with the same id, stamping the save instant
	// as its last modification, and returns the stored record.
	Update(note model.Note) (model.Note, error)
	// Delete removes the note. Deleting an unknown id is not an error.
	Delete(id int64) error
}
