package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
)

// GestureEvent is one classified gesture as recorded in the log.
type GestureEvent struct {
	ID         string
	Kind       gesture.Kind
	DurationMs int64
	Distance   float64
	Direction  string
	Scale      float64
	Rotation   float64
	Touches    int
	CreatedAt  time.Time
}

// EventRepository provides access to the gesture event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert records one classified gesture. The ID is generated if empty.
func (r *EventRepository) Insert(e *GestureEvent) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, kind, duration_ms, distance, direction, scale, rotation, touches, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.DurationMs, e.Distance, e.Direction, e.Scale, e.Rotation, e.Touches, e.CreatedAt,
	)
	return err
}

// ListRecent retrieves the most recent events, newest first.
func (r *EventRepository) ListRecent(limit int) ([]*GestureEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, kind, duration_ms, distance, direction, scale, rotation, touches, created_at
		 FROM gesture_events ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*GestureEvent
	for rows.Next() {
		e := &GestureEvent{}
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.DurationMs, &e.Distance, &e.Direction, &e.Scale, &e.Rotation, &e.Touches, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = gesture.Kind(kind)
		events = append(events, e)
	}

	return events, rows.Err()
}

// Prune deletes events older than the cutoff and returns how many went.
func (r *EventRepository) Prune(olderThan time.Time) (int64, error) {
	res, err := r.db.Exec(
		`DELETE FROM gesture_events WHERE created_at < ?`, olderThan,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
