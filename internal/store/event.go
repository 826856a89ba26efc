package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wastenexus/wastenexus/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	err := scanner.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt,
		&e.MaxParticipants, &e.PointsReward, &e.Status, &e.ParticipantCount, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const eventCols = `e.id, e.title, e.description, e.location, e.starts_at,
	e.max_participants, e.points_reward, e.status,
	(SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id),
	e.created_at`

func (s *EventStore) Create(title, description, location string, startsAt time.Time, maxParticipants, pointsReward int) (*model.Event, error) {
	result, err := s.db.Exec(
		`INSERT INTO events (title, description, location, starts_at, max_participants, points_reward)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		title, description, location, startsAt.UTC(), maxParticipants, pointsReward,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events e WHERE e.id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// List returns events, optionally filtered by status, soonest first.
func (s *EventStore) List(status string) ([]model.Event, error) {
	query := `SELECT ` + eventCols + ` FROM events e`
	var args []any
	if status != "" {
		query += ` WHERE e.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY e.starts_at ASC, e.id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) UpdateStatus(id int64, status model.EventStatus) (*model.Event, error) {
	_, err := s.db.Exec(`UPDATE events SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// HasParticipant reports whether the user already joined the event.
func (s *EventStore) HasParticipant(eventID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM event_participants WHERE event_id = ? AND user_id = ?`,
		eventID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return n > 0, nil
}

func (s *EventStore) ListParticipants(eventID int64) ([]model.EventParticipant, error) {
	rows, err := s.db.Query(
		`SELECT event_id, user_id, joined_at FROM event_participants WHERE event_id = ? ORDER BY joined_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.EventParticipant
	for rows.Next() {
		var p model.EventParticipant
		if err := rows.Scan(&p.EventID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
