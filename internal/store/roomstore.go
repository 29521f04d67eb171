// Package store persists room content in Postgres: one row per room,
// upserted by the per-room persister and read back only at process startup.
package store

import (
	"context"
	"database/sql"
)

type RoomStore struct {
	db *sql.DB
}

func New(db *sql.DB) *RoomStore { return &RoomStore{db: db} }

// EnsureSchema creates the rooms table if it is missing. Idempotent, run
// once at startup.
func (s *RoomStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS rooms (
	    room_id TEXT PRIMARY KEY,
	    content TEXT NOT NULL DEFAULT ''
	)`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// LoadAll returns every persisted room keyed by id.
func (s *RoomStore) LoadAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT room_id, content FROM rooms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return nil, err
		}
		out[id] = content
	}
	return out, rows.Err()
}

// Upsert replaces the stored content for a room, creating the row on first
// write.
func (s *RoomStore) Upsert(ctx context.Context, roomID, content string) error {
	const q = `
	INSERT INTO rooms (room_id, content)
	     VALUES ($1, $2)
	ON CONFLICT (room_id) DO UPDATE
	        SET content = EXCLUDED.content`
	_, err := s.db.ExecContext(ctx, q, roomID, content)
	return err
}

// Delete drops a room's row. Missing rows are not an error.
func (s *RoomStore) Delete(ctx context.Context, roomID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = $1`, roomID)
	return err
}
