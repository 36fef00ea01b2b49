package repository

import (
	"database/sql"
	"io"

	"simplenotes/config"
	"simplenotes/config/database"
	"simplenotes/internal/note/model"
	"simplenotes/pkg/logger"
)

// Backend names the store a repository was built on.
type Backend string

const (
	Durable   Backend = "durable"
	Transient Backend = "transient"
)

// Connector opens the durable database. database.Connect is the production connector.
type Connector func(cfg config.Database) (*sql.DB, database.Dialect, error)

// NoteRepository is the single CRUD surface over whichever store was chosen at startup.
// The choice never changes for the lifetime of the repository.
type NoteRepository struct {
	store   NoteStore
	backend Backend
}

func NewNoteRepository(store NoteStore, backend Backend) *NoteRepository {
	return &NoteRepository{store: store, backend: backend}
}

// Open uses the durable store when connect succeeds and otherwise falls back to memory.
// The fallback is permanent: nothing retries the durable store later.
func Open(cfg config.Database, connect Connector) *NoteRepository {
	db, dialect, err := connect(cfg)
	if err != nil {
		logger.Sugar.Warnf("Durable backend unavailable, using in-memory mode: %v", err)
		return NewNoteRepository(NewTransientStore(), Transient)
	}
	return NewNoteRepository(NewDurableStore(db, dialect), Durable)
}

func (r *NoteRepository) Backend() Backend {
	return r.backend
}

// Setup prepares the backend. An error here leaves no usable note storage.
func (r *NoteRepository) Setup() error {
	return r.store.InitializeSchema()
}

// Add stores a draft and returns its assigned id. Callers rebuild their value with
// note.WithID(id) rather than expecting the argument to change.
func (r *NoteRepository) Add(note model.Note) (int64, error) {
	if !note.IsDraft() {
		return 0, ErrNotDraft
	}
	return r.store.Insert(note)
}

func (r *NoteRepository) Get(id int64) (model.Note, error) {
	return r.store.FetchByID(id)
}

func (r *NoteRepository) GetAll() ([]model.Note, error) {
	return r.store.FetchAll()
}

func (r *NoteRepository) Update(note model.Note) (model.Note, error) {
	return r.store.Update(note)
}

func (r *NoteRepository) Delete(id int64) error {
	return r.store.Delete(id)
}

// Close releases the backend's resources, if it holds any.
func (r *NoteRepository) Close() error {
	if c, ok := r.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
