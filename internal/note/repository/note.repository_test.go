package repository

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"simplenotes/config"
	"simplenotes/config/database"
	"simplenotes/internal/note/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unavailable(config.Database) (*sql.DB, database.Dialect, error) {
	return nil, "", fmt.Errorf("%w: driver missing", database.ErrBackendUnavailable)
}

func TestOpenFallsBackToTransient(t *testing.T) {
	repo := Open(config.Database{Driver: "sqlite"}, unavailable)
	assert.Equal(t, Transient, repo.Backend())
	require.NoError(t, repo.Setup())

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.Add(model.Note{Title: fmt.Sprintf("note %d", i), LastModified: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	notes, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, notes, 3)
	for i := 1; i < len(notes); i++ {
		assert.True(t, notes[i-1].LastModified.After(notes[i].LastModified))
	}
	assert.Equal(t, ids[2], notes[0].ID)
	assert.NoError(t, repo.Close())
}

func TestOpenUsesDurableWhenAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := Open(config.Database{}, func(config.Database) (*sql.DB, database.Dialect, error) {
		return db, database.Postgres, nil
	})
	assert.Equal(t, Durable, repo.Backend())

	mock.ExpectClose()
	assert.NoError(t, repo.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewNoteRepository(NewTransientStore(), Transient)
	require.NoError(t, repo.Setup())

	draft := model.Note{Title: "Trip", Content: "pack bags", Category: "Travel", LastModified: time.Now()}
	id, err := repo.Add(draft)
	require.NoError(t, err)
	assert.NotZero(t, id)

	got, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, draft.Title, got.Title)
	assert.Equal(t, draft.Content, got.Content)
	assert.Equal(t, draft.Category, got.Category)
	assert.Equal(t, id, got.ID)

	updated, err := repo.Update(got.WithID(id))
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)

	require.NoError(t, repo.Delete(id))
	_, err = repo.Get(id)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestRepositoryAddRejectsPersistedNote(t *testing.T) {
	repo := NewNoteRepository(NewTransientStore(), Transient)
	_, err := repo.Add(model.Note{ID: 3, Title: "x"})
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestRepositoryDurableRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewNoteRepository(NewDurableStore(db, database.Postgres), Durable)

	created := time.UnixMilli(1710000000000)
	mock.ExpectQuery("INSERT INTO notes").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT (.+) FROM notes WHERE id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(noteRowColumns).
			AddRow(int64(1), "Trip", "pack bags", created.UnixMilli(), nil, nil, "Travel"))

	id, err := repo.Add(model.Note{Title: "Trip", Content: "pack bags", Category: "Travel", LastModified: created})
	require.NoError(t, err)
	got, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Trip", got.Title)
	assert.Equal(t, "pack bags", got.Content)
	assert.Equal(t, "Travel", got.Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}
