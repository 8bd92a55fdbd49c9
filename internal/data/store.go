package data

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoomStore is the capability the room model needs from the backing store:
// per-record reads and optimistically-versioned writes, nothing transactional
// across records. Tests substitute an in-memory implementation.
type RoomStore interface {
	Get(ctx context.Context, id string) (*Room, error)
	ListFree(ctx context.Context, category string) ([]*Room, error)
	// ConditionalUpdate persists room only if the stored version still equals
	// expectedVersion, and on success sets room.Version to the new value.
	// ErrVersionConflict means the write did not happen.
	ConditionalUpdate(ctx context.Context, room *Room, expectedVersion int64) error
	Upsert(ctx context.Context, room *Room) error
	EnsureTable(ctx context.Context) error
}

// PostgresRoomStore keeps one row per room with a version column that bumps
// on every write, standing in for the store's opaque concurrency token.
type PostgresRoomStore struct {
	Pool *pgxpool.Pool
}

func (s *PostgresRoomStore) EnsureTable(ctx context.Context) error {
	stmt := `
		CREATE TABLE IF NOT EXISTS rooms(
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			version BIGINT NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'Free',
			link TEXT NOT NULL DEFAULT '',
			assigned_participant_id TEXT NOT NULL DEFAULT '',
			assigned_participant_name TEXT NOT NULL DEFAULT '',
			organizer_present BOOLEAN NOT NULL DEFAULT FALSE,
			participant_present BOOLEAN NOT NULL DEFAULT FALSE
		)
	`
	_, err := s.Pool.Exec(ctx, stmt)
	if err != nil {
		return err
	}

	_, err = s.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS rooms_category_status_idx ON rooms(category, status)`)
	return err
}

func (s *PostgresRoomStore) Get(ctx context.Context, id string) (*Room, error) {
	stmt := `
		SELECT id, category, version, status, link, assigned_participant_id,
		  assigned_participant_name, organizer_present, participant_present
		FROM rooms WHERE id = $1
	`
	var room Room
	err := s.Pool.QueryRow(ctx, stmt, id).Scan(
		&room.ID, &room.Category, &room.Version, &room.Status, &room.Link,
		&room.AssignedParticipantID, &room.AssignedParticipantName,
		&room.OrganizerPresent, &room.ParticipantPresent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *PostgresRoomStore) ListFree(ctx context.Context, category string) ([]*Room, error) {
	stmt := `
		SELECT id, category, version, status, link, assigned_participant_id,
		  assigned_participant_name, organizer_present, participant_present
		FROM rooms WHERE category = $1 AND status = $2 ORDER BY id
	`
	rows, err := s.Pool.Query(ctx, stmt, category, StatusFree)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*Room, 0)
	for rows.Next() {
		var room Room
		err := rows.Scan(
			&room.ID, &room.Category, &room.Version, &room.Status, &room.Link,
			&room.AssignedParticipantID, &room.AssignedParticipantName,
			&room.OrganizerPresent, &room.ParticipantPresent,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, &room)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return rooms, nil
}

func (s *PostgresRoomStore) ConditionalUpdate(ctx context.Context, room *Room, expectedVersion int64) error {
	stmt := `
		UPDATE rooms SET
			status = $1,
			assigned_participant_id = $2,
			assigned_participant_name = $3,
			organizer_present = $4,
			participant_present = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`
	args := []any{
		room.Status, room.AssignedParticipantID, room.AssignedParticipantName,
		room.OrganizerPresent, room.ParticipantPresent, room.ID, expectedVersion,
	}
	err := s.Pool.QueryRow(ctx, stmt, args...).Scan(&room.Version)
	if err != nil {
		// No matching row: either the version moved on or the pool was reset
		// underneath us. Both mean this write did not happen.
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVersionConflict
		}
		return err
	}
	return nil
}

func (s *PostgresRoomStore) Upsert(ctx context.Context, room *Room) error {
	stmt := `
		INSERT INTO rooms(id, category, status, link, assigned_participant_id,
			assigned_participant_name, organizer_present, participant_present)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			category = excluded.category,
			status = excluded.status,
			link = excluded.link,
			assigned_participant_id = excluded.assigned_participant_id,
			assigned_participant_name = excluded.assigned_participant_name,
			organizer_present = excluded.organizer_present,
			participant_present = excluded.participant_present,
			version = rooms.version + 1
		RETURNING version
	`
	args := []any{
		room.ID, room.Category, room.Status, room.Link,
		room.AssignedParticipantID, room.AssignedParticipantName,
		room.OrganizerPresent, room.ParticipantPresent,
	}
	return s.Pool.QueryRow(ctx, stmt, args...).Scan(&room.Version)
}
