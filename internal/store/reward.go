package store

import (
	"database/sql"
	"fmt"

	"github.com/wastenexus/wastenexus/internal/model"
)

type RewardStore struct {
	db *sql.DB
}

func NewRewardStore(db *sql.DB) *RewardStore {
	return &RewardStore{db: db}
}

// --- Reward item methods ---

func scanRewardItem(scanner interface{ Scan(...any) error }) (*model.RewardItem, error) {
	var r model.RewardItem
	var active int

	err := scanner.Scan(&r.ID, &r.Title, &r.Description, &r.PointsCost, &r.Stock, &r.Category, &active, &r.CreatedAt)
	if err != nil {
		return nil, err
	}

	r.Active = active != 0
	return &r, nil
}

const rewardItemCols = `id, title, description, points_cost, stock, category, active, created_at`

func (s *RewardStore) Create(title, description string, pointsCost, stock int, category model.RewardCategory, active bool) (*model.RewardItem, error) {
	var a int
	if active {
		a = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO reward_items (title, description, points_cost, stock, category, active) VALUES (?, ?, ?, ?, ?, ?)`,
		title, description, pointsCost, stock, category, a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reward item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RewardStore) GetByID(id int64) (*model.RewardItem, error) {
	row := s.db.QueryRow(`SELECT `+rewardItemCols+` FROM reward_items WHERE id = ?`, id)
	r, err := scanRewardItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reward item: %w", err)
	}
	return r, nil
}

// List returns all reward items, active first, then by ascending cost.
func (s *RewardStore) List() ([]model.RewardItem, error) {
	rows, err := s.db.Query(`SELECT ` + rewardItemCols + ` FROM reward_items ORDER BY active DESC, points_cost ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list reward items: %w", err)
	}
	defer rows.Close()

	var items []model.RewardItem
	for rows.Next() {
		r, err := scanRewardItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward item: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// ListActive returns the catalog: active items only, ascending cost.
func (s *RewardStore) ListActive() ([]model.RewardItem, error) {
	rows, err := s.db.Query(`SELECT ` + rewardItemCols + ` FROM reward_items WHERE active = 1 ORDER BY points_cost ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active reward items: %w", err)
	}
	defer rows.Close()

	var items []model.RewardItem
	for rows.Next() {
		r, err := scanRewardItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward item: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

func (s *RewardStore) Update(id int64, title, description string, pointsCost, stock int, category model.RewardCategory, active bool) (*model.RewardItem, error) {
	var a int
	if active {
		a = 1
	}

	_, err := s.db.Exec(
		`UPDATE reward_items SET title = ?, description = ?, points_cost = ?, stock = ?, category = ?, active = ? WHERE id = ?`,
		title, description, pointsCost, stock, category, a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update reward item: %w", err)
	}
	return s.GetByID(id)
}

// Deactivate soft-deletes an item. Redemptions reference items, so items are
// never removed from the table.
func (s *RewardStore) Deactivate(id int64) error {
	_, err := s.db.Exec(`UPDATE reward_items SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate reward item: %w", err)
	}
	return nil
}

// --- Redemption methods ---

func scanRedemption(scanner interface{ Scan(...any) error }) (*model.RewardRedemption, error) {
	var r model.RewardRedemption
	var code sql.NullString

	err := scanner.Scan(&r.ID, &r.RewardID, &r.UserID, &r.PointsSpent, &r.Status, &code, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if code.Valid {
		r.RedemptionCode = &code.String
	}
	return &r, nil
}

const redemptionCols = `id, reward_id, user_id, points_spent, status, redemption_code, created_at, updated_at`

func (s *RewardStore) GetRedemption(id int64) (*model.RewardRedemption, error) {
	row := s.db.QueryRow(`SELECT `+redemptionCols+` FROM reward_redemptions WHERE id = ?`, id)
	r, err := scanRedemption(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	return r, nil
}

func (s *RewardStore) ListRedemptionsByUser(userID int64) ([]model.RewardRedemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+` FROM reward_redemptions WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions by user: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, *r)
	}
	return redemptions, rows.Err()
}

// ListRedemptionsByStatus supports the admin review queue.
func (s *RewardStore) ListRedemptionsByStatus(status model.RedemptionStatus) ([]model.RewardRedemption, error) {
	rows, err := s.db.Query(
		`SELECT `+redemptionCols+` FROM reward_redemptions WHERE status = ? ORDER BY created_at ASC, id ASC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("list redemptions by status: %w", err)
	}
	defer rows.Close()

	var redemptions []model.RewardRedemption
	for rows.Next() {
		r, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		redemptions = append(redemptions, *r)
	}
	return redemptions, rows.Err()
}
