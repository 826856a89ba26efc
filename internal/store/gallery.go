package store

import (
	"database/sql"
	"fmt"

	"github.com/wastenexus/wastenexus/internal/model"
)

type GalleryStore struct {
	db *sql.DB
}

func NewGalleryStore(db *sql.DB) *GalleryStore {
	return &GalleryStore{db: db}
}

const galleryCols = `id, user_id, caption, photo_key, status, created_at`

func scanGalleryItem(scanner interface{ Scan(...any) error }) (*model.GalleryItem, error) {
	var g model.GalleryItem
	err := scanner.Scan(&g.ID, &g.UserID, &g.Caption, &g.PhotoKey, &g.Status, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GalleryStore) Create(userID int64, caption, photoKey string) (*model.GalleryItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO gallery_items (user_id, caption, photo_key) VALUES (?, ?, ?)`,
		userID, caption, photoKey,
	)
	if err != nil {
		return nil, fmt.Errorf("insert gallery item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GalleryStore) GetByID(id int64) (*model.GalleryItem, error) {
	row := s.db.QueryRow(`SELECT `+galleryCols+` FROM gallery_items WHERE id = ?`, id)
	g, err := scanGalleryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gallery item: %w", err)
	}
	return g, nil
}

// ListApproved returns the public gallery, newest first.
func (s *GalleryStore) ListApproved() ([]model.GalleryItem, error) {
	return s.list(`WHERE status = 'approved'`)
}

// ListPending returns items awaiting admin review, oldest first.
func (s *GalleryStore) ListPending() ([]model.GalleryItem, error) {
	rows, err := s.db.Query(`SELECT ` + galleryCols + ` FROM gallery_items WHERE status = 'pending' ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending gallery items: %w", err)
	}
	defer rows.Close()
	return collectGalleryItems(rows)
}

func (s *GalleryStore) list(where string) ([]model.GalleryItem, error) {
	rows, err := s.db.Query(`SELECT ` + galleryCols + ` FROM gallery_items ` + where + ` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list gallery items: %w", err)
	}
	defer rows.Close()
	return collectGalleryItems(rows)
}

func collectGalleryItems(rows *sql.Rows) ([]model.GalleryItem, error) {
	var items []model.GalleryItem
	for rows.Next() {
		g, err := scanGalleryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery item: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

// Review transitions a pending item to approved or rejected. Returns false
// when the item was not pending.
func (s *GalleryStore) Review(id int64, status model.GalleryStatus) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE gallery_items SET status = ? WHERE id = ? AND status = 'pending'`,
		status, id,
	)
	if err != nil {
		return false, fmt.Errorf("review gallery item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
