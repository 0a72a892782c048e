package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docmill/docgate/models"
)

const defaultRecentLimit = 50

type SQLiteAuthLogStore struct {
	db *sql.DB
}

func NewSQLiteAuthLogStore(db *sql.DB) *SQLiteAuthLogStore {
	return &SQLiteAuthLogStore{db: db}
}

func (s *SQLiteAuthLogStore) Record(ctx context.Context, event models.AuthEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_events (id, type, username, remote_addr, created_at)
		VALUES (@id, @type, @username, @remote_addr, @created_at)`,
		sql.Named("id", event.ID),
		sql.Named("type", string(event.Type)),
		sql.Named("username", event.Username),
		sql.Named("remote_addr", event.RemoteAddr),
		sql.Named("created_at", event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting auth event: %w", err)
	}
	return nil
}

func (s *SQLiteAuthLogStore) Recent(ctx context.Context, limit int) ([]models.AuthEvent, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, username, remote_addr, created_at FROM auth_events
		ORDER BY created_at DESC LIMIT @limit`,
		sql.Named("limit", limit),
	)
	if err != nil {
		return nil, fmt.Errorf("querying auth events: %w", err)
	}
	defer rows.Close()

	var events []models.AuthEvent
	for rows.Next() {
		var event models.AuthEvent
		var eventType string
		if err := rows.Scan(&event.ID, &eventType, &event.Username, &event.RemoteAddr, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning auth event: %w", err)
		}
		event.Type = models.AuthEventType(eventType)
		events = append(events, event)
	}

	return events, rows.Err()
}
