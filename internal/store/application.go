package store

import (
	"database/sql"
	"fmt"

	"github.com/wastenexus/wastenexus/internal/model"
)

type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func scanApplication(scanner interface{ Scan(...any) error }) (*model.WorkerApplication, error) {
	var a model.WorkerApplication
	var reviewedAt sql.NullTime

	err := scanner.Scan(&a.ID, &a.UserID, &a.Experience, &a.Availability, &a.Status, &a.CreatedAt, &reviewedAt)
	if err != nil {
		return nil, err
	}

	if reviewedAt.Valid {
		a.ReviewedAt = &reviewedAt.Time
	}
	return &a, nil
}

const applicationCols = `id, user_id, experience, availability, status, created_at, reviewed_at`

func (s *ApplicationStore) Create(userID int64, experience, availability string) (*model.WorkerApplication, error) {
	result, err := s.db.Exec(
		`INSERT INTO worker_applications (user_id, experience, availability) VALUES (?, ?, ?)`,
		userID, experience, availability,
	)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ApplicationStore) GetByID(id int64) (*model.WorkerApplication, error) {
	row := s.db.QueryRow(`SELECT `+applicationCols+` FROM worker_applications WHERE id = ?`, id)
	a, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

// HasPending reports whether the user already has an application awaiting review.
func (s *ApplicationStore) HasPending(userID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM worker_applications WHERE user_id = ? AND status = ?`,
		userID, model.ApplicationPending,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check pending application: %w", err)
	}
	return n > 0, nil
}

func (s *ApplicationStore) List(status string) ([]model.WorkerApplication, error) {
	query := `SELECT ` + applicationCols + ` FROM worker_applications`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []model.WorkerApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// Review transitions a pending application to approved or rejected. Returns
// false when the application was not pending.
func (s *ApplicationStore) Review(id int64, status model.ApplicationStatus) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE worker_applications SET status = ?, reviewed_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		status, id, model.ApplicationPending,
	)
	if err != nil {
		return false, fmt.Errorf("review application: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
