package store

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockStore(t *testing.T) (*RoomStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestEnsureSchema(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS rooms`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(t.Context()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAll(t *testing.T) {
	s, mock := mockStore(t)
	rows := sqlmock.NewRows([]string{"room_id", "content"}).
		AddRow("general", "").
		AddRow("notes", "last line")
	mock.ExpectQuery(`SELECT room_id, content FROM rooms`).WillReturnRows(rows)

	out, err := s.LoadAll(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"general": "", "notes": "last line"}, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPassesArgs(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs("notes", "hello").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Upsert(t.Context(), "notes", "hello"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPropagatesError(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs("notes", "hello").
		WillReturnError(errors.New("connection refused"))

	assert.Error(t, s.Upsert(t.Context(), "notes", "hello"))
}

func TestDelete(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec(`DELETE FROM rooms WHERE room_id`).
		WithArgs("notes").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(t.Context(), "notes"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
