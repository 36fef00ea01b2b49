package repository

import (
	"slices"
	"sync"
	"time"

	"simplenotes/internal/note/model"
	"simplenotes/pkg/logger"
)

// TransientStore keeps notes in process memory. Ids come from a counter starting at 1.
type TransientStore struct {
	mu     sync.RWMutex
	notes  []model.Note
	nextID int64
	now    func() time.Time
}

func NewTransientStore() *TransientStore {
	return &TransientStore{nextID: 1, now: time.Now}
}

func (s *TransientStore) InitializeSchema() error {
	logger.Sugar.Info("Database setup skipped (in-memory mode)")
	return nil
}

func (s *TransientStore) Insert(note model.Note) (int64, error) {
	note = note.WithDefaults()
	if note.LastModified.IsZero() {
		note.LastModified = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	note.ID = s.nextID
	s.nextID++
	s.notes = append(s.notes, note)
	logger.Sugar.Infof("Note added (in-memory): %d %q", note.ID, note.Title)
	return note.ID, nil
}

func (s *TransientStore) FetchByID(id int64) (model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.notes[i], nil
	}
	return model.Note{}, ErrNoteNotFound
}

// FetchAll sorts by LastModified descending. Equal timestamps come back in no particular order.
func (s *TransientStore) FetchAll() ([]model.Note, error) {
	s.mu.RLock()
	notes := slices.Clone(s.notes)
	s.mu.RUnlock()

	if notes == nil {
		notes = []model.Note{}
	}
	slices.SortFunc(notes, func(a, b model.Note) int {
		return b.LastModified.Compare(a.LastModified)
	})
	return notes, nil
}

func (s *TransientStore) Update(note model.Note) (model.Note, error) {
	note = note.WithDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(note.ID)
	if i < 0 {
		return model.Note{}, ErrNoteNotFound
	}
	note.LastModified = s.now()
	s.notes[i] = note
	logger.Sugar.Infof("Note updated (in-memory): %d %q", note.ID, note.Title)
	return note, nil
}

func (s *TransientStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = slices.DeleteFunc(s.notes, func(n model.Note) bool { return n.ID == id })
	logger.Sugar.Infof("Note deleted (in-memory): %d", id)
	return nil
}

// indexOf must be called with s.mu held.
func (s *TransientStore) indexOf(id int64) int {
	return slices.IndexFunc(s.notes, func(n model.Note) bool { return n.ID == id })
}
