package store

import (
	"database/sql"
	"fmt"

	"github.com/wastenexus/wastenexus/internal/model"
)

type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

func scanReport(scanner interface{ Scan(...any) error }) (*model.Report, error) {
	var r model.Report
	var collectorID sql.NullInt64
	var analysis, photoKey sql.NullString

	err := scanner.Scan(
		&r.ID, &r.UserID, &r.Latitude, &r.Longitude, &r.WasteType, &r.Quantity,
		&r.Recyclability, &r.Status, &collectorID, &analysis, &photoKey,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if collectorID.Valid {
		r.CollectorID = &collectorID.Int64
	}
	if analysis.Valid {
		r.AIAnalysis = &analysis.String
	}
	if photoKey.Valid {
		r.PhotoKey = &photoKey.String
	}
	return &r, nil
}

const reportCols = `id, user_id, latitude, longitude, waste_type, quantity,
	recyclability, status, collector_id, ai_analysis, photo_key, created_at, updated_at`

func (s *ReportStore) Create(userID int64, lat, lng float64, wasteType, quantity string, recyclability float64, analysis, photoKey *string) (*model.Report, error) {
	var a, p sql.NullString
	if analysis != nil {
		a = sql.NullString{String: *analysis, Valid: true}
	}
	if photoKey != nil {
		p = sql.NullString{String: *photoKey, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO reports (user_id, latitude, longitude, waste_type, quantity, recyclability, ai_analysis, photo_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, lat, lng, wasteType, quantity, recyclability, a, p,
	)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ReportStore) GetByID(id int64) (*model.Report, error) {
	row := s.db.QueryRow(`SELECT `+reportCols+` FROM reports WHERE id = ?`, id)
	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return r, nil
}

// List returns reports, optionally filtered by status, newest first.
func (s *ReportStore) List(status string) ([]model.Report, error) {
	query := `SELECT ` + reportCols + ` FROM reports`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (s *ReportStore) ListByUser(userID int64) ([]model.Report, error) {
	rows, err := s.db.Query(
		`SELECT `+reportCols+` FROM reports WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports by user: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

// Claim moves a pending report to in_progress and records the collector.
// Returns false when the report was not pending (already claimed or missing).
func (s *ReportStore) Claim(id, collectorID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE reports SET status = ?, collector_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		model.ReportInProgress, collectorID, id, model.ReportPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
