package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"simplenotes/config/database"
	"simplenotes/internal/note/model"
	"simplenotes/pkg/logger"
)

// Columns added after the first release. Each is applied to existing tables on
// startup; the error for a column that already exists is ignored.
var migrations = []struct {
	column     string
	definition string
}{
	{"background_color", "TEXT DEFAULT '" + model.DefaultBackgroundColor + "'"},
	{"font_family", "TEXT DEFAULT '" + model.DefaultFontFamily + "'"},
	{"category", "TEXT DEFAULT '" + model.DefaultCategory + "'"},
}

const noteColumns = "id, title, content, last_modified, background_color, font_family, category"

var placeholder = regexp.MustCompile(`\$\d+`)

// DurableStore keeps notes in a relational table.
type DurableStore struct {
	DB      *sql.DB
	Dialect database.Dialect
	now     func() time.Time
}

func NewDurableStore(db *sql.DB, dialect database.Dialect) *DurableStore {
	return &DurableStore{DB: db, Dialect: dialect, now: time.Now}
}

// rebind rewrites $N placeholders into the form the dialect expects.
func (s *DurableStore) rebind(query string) string {
	if s.Dialect == database.SQLite {
		return placeholder.ReplaceAllString(query, "?")
	}
	return query
}

func (s *DurableStore) createTable() string {
	id, stamp := "SERIAL PRIMARY KEY", "BIGINT"
	if s.Dialect == database.SQLite {
		id, stamp = "INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS notes (
		id %s,
		title TEXT NOT NULL,
		content TEXT,
		last_modified %s NOT NULL,
		background_color TEXT DEFAULT '%s',
		font_family TEXT DEFAULT '%s',
		category TEXT DEFAULT '%s'
	)`, id, stamp, model.DefaultBackgroundColor, model.DefaultFontFamily, model.DefaultCategory)
}

func (s *DurableStore) InitializeSchema() error {
	if _, err := s.DB.Exec(s.createTable()); err != nil {
		logger.Sugar.Errorf("Failed to create notes table: %v", err)
		return fmt.Errorf("%w: %v", ErrSchemaInit, err)
	}
	for _, m := range migrations {
		if _, err := s.DB.Exec(fmt.Sprintf("ALTER TABLE notes ADD COLUMN %s %s", m.column, m.definition)); err != nil {
			logger.Sugar.Debugf("Column %s not added (already present?): %v", m.column, err)
		}
	}
	logger.Sugar.Infof("Database setup completed (%s)", s.Dialect)
	return nil
}

func (s *DurableStore) Insert(note model.Note) (int64, error) {
	note = note.WithDefaults()
	if note.LastModified.IsZero() {
		note.LastModified = s.now()
	}

	var id int64
	err := s.DB.QueryRow(s.rebind(`INSERT INTO notes (title, content, last_modified, background_color, font_family, category)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`),
		note.Title, note.Content, note.LastModified.UnixMilli(), note.BackgroundColor, note.FontFamily, note.Category,
	).Scan(&id)
	if err != nil {
		logger.Sugar.Errorf("Failed to add note %q: %v", note.Title, err)
		return 0, fmt.Errorf("%w: insert: %v", ErrRecordOperation, err)
	}
	logger.Sugar.Infof("Note added: %d %q", id, note.Title)
	return id, nil
}

func (s *DurableStore) FetchByID(id int64) (model.Note, error) {
	row := s.DB.QueryRow(s.rebind("SELECT "+noteColumns+" FROM notes WHERE id = $1"), id)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, ErrNoteNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get note %d: %v", id, err)
		return model.Note{}, fmt.Errorf("%w: fetch: %v", ErrRecordOperation, err)
	}
	return note, nil
}

func (s *DurableStore) FetchAll() ([]model.Note, error) {
	rows, err := s.DB.Query("SELECT " + noteColumns + " FROM notes ORDER BY last_modified DESC")
	if err != nil {
		logger.Sugar.Errorf("Failed to load notes: %v", err)
		return nil, fmt.Errorf("%w: fetch all: %v", ErrRecordOperation, err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to read note row: %v", err)
			return nil, fmt.Errorf("%w: fetch all: %v", ErrRecordOperation, err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		logger.Sugar.Errorf("Failed to load notes: %v", err)
		return nil, fmt.Errorf("%w: fetch all: %v", ErrRecordOperation, err)
	}
	return notes, nil
}

// Update ignores the caller's LastModified: the stored value is always the save instant.
func (s *DurableStore) Update(note model.Note) (model.Note, error) {
	note = note.WithDefaults()
	note.LastModified = time.UnixMilli(s.now().UnixMilli())

	result, err := s.DB.Exec(s.rebind(`UPDATE notes SET title = $1, content = $2, last_modified = $3,
		background_color = $4, font_family = $5, category = $6 WHERE id = $7`),
		note.Title, note.Content, note.LastModified.UnixMilli(), note.BackgroundColor, note.FontFamily, note.Category, note.ID,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to update note %d: %v", note.ID, err)
		return model.Note{}, fmt.Errorf("%w: update: %v", ErrRecordOperation, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		logger.Sugar.Errorf("Failed to update note %d: %v", note.ID, err)
		return model.Note{}, fmt.Errorf("%w: update: %v", ErrRecordOperation, err)
	}
	if rowsAffected == 0 {
		return model.Note{}, ErrNoteNotFound
	}
	logger.Sugar.Infof("Note updated: %d %q", note.ID, note.Title)
	return note, nil
}

func (s *DurableStore) Delete(id int64) error {
	if _, err := s.DB.Exec(s.rebind("DELETE FROM notes WHERE id = $1"), id); err != nil {
		logger.Sugar.Errorf("Failed to delete note %d: %v", id, err)
		return fmt.Errorf("%w: delete: %v", ErrRecordOperation, err)
	}
	logger.Sugar.Infof("Note deleted with ID: %d", id)
	return nil
}

func (s *DurableStore) Close() error {
	return s.DB.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanNote reads one row in noteColumns order. NULL columns take the note defaults.
func scanNote(row scanner) (model.Note, error) {
	var (
		note                        model.Note
		millis                      int64
		content, bg, font, category sql.NullString
	)
	if err := row.Scan(&note.ID, &note.Title, &content, &millis, &bg, &font, &category); err != nil {
		return model.Note{}, err
	}
	note.Content = content.String
	note.LastModified = time.UnixMilli(millis)
	note.BackgroundColor = bg.String
	note.FontFamily = font.String
	note.Category = category.String
	return note.WithDefaults(), nil
}
