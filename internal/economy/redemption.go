package economy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/wastenexus/wastenexus/internal/model"
)

// RequestRedemption exchanges points for a reward item. The balance
// deduction, the stock decrement, and the redemption insert are one
// transaction: two concurrent requests against the last unit of stock cannot
// both succeed.
func (s *Service) RequestRedemption(ctx context.Context, userID, rewardID int64) (*model.RewardRedemption, error) {
	var redemptionID int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var title string
		var pointsCost, stock, active int
		err := tx.QueryRow(
			`SELECT title, points_cost, stock, active FROM reward_items WHERE id = ?`,
			rewardID,
		).Scan(&title, &pointsCost, &stock, &active)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get reward item: %w", err)
		}

		if active == 0 {
			return ErrInactive
		}
		if stock == 0 {
			return ErrOutOfStock
		}

		if err := deduct(tx, userID, pointsCost, model.TxRedemption, "Redeemed "+title); err != nil {
			return err
		}

		if stock != model.UnlimitedStock {
			result, err := tx.Exec(
				`UPDATE reward_items SET stock = stock - 1 WHERE id = ? AND stock > 0`,
				rewardID,
			)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			if n == 0 {
				// Lost the race for the last unit; roll everything back.
				return ErrOutOfStock
			}
		}

		insert, err := tx.Exec(
			`INSERT INTO reward_redemptions (reward_id, user_id, points_spent) VALUES (?, ?, ?)`,
			rewardID, userID, pointsCost,
		)
		if err != nil {
			return fmt.Errorf("insert redemption: %w", err)
		}
		redemptionID, err = insert.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("redemption requested", "user_id", userID, "reward_id", rewardID, "redemption_id", redemptionID)
	return s.getRedemption(redemptionID)
}

// ApproveRedemption moves a pending redemption to approved and issues a
// redemption code.
func (s *Service) ApproveRedemption(ctx context.Context, id int64) (*model.RewardRedemption, error) {
	code := uuid.NewString()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return transitionRedemption(tx, id, model.RedemptionPending, model.RedemptionApproved, &code)
	})
	if err != nil {
		return nil, err
	}
	return s.getRedemption(id)
}

// DeliverRedemption moves an approved redemption to its terminal delivered state.
func (s *Service) DeliverRedemption(ctx context.Context, id int64) (*model.RewardRedemption, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return transitionRedemption(tx, id, model.RedemptionApproved, model.RedemptionDelivered, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.getRedemption(id)
}

// RejectRedemption moves a pending redemption to rejected and refunds the
// snapshotted points, both in one transaction. Rejected is terminal.
func (s *Service) RejectRedemption(ctx context.Context, id int64) (*model.RewardRedemption, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var userID int64
		var pointsSpent int
		var status model.RedemptionStatus
		err := tx.QueryRow(
			`SELECT user_id, points_spent, status FROM reward_redemptions WHERE id = ?`, id,
		).Scan(&userID, &pointsSpent, &status)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get redemption: %w", err)
		}
		if status != model.RedemptionPending {
			return ErrInvalidTransition
		}

		if err := transitionRedemption(tx, id, model.RedemptionPending, model.RedemptionRejected, nil); err != nil {
			return err
		}
		return award(tx, userID, pointsSpent, model.TxRefund, "Redemption rejected, points refunded")
	})
	if err != nil {
		return nil, err
	}
	return s.getRedemption(id)
}

// transitionRedemption performs a guarded status update. The status check and
// the update are one statement, so the lifecycle is forward-only even under
// concurrent admin actions.
func transitionRedemption(tx *sql.Tx, id int64, from, to model.RedemptionStatus, code *string) error {
	var result sql.Result
	var err error
	if code != nil {
		result, err = tx.Exec(
			`UPDATE reward_redemptions SET status = ?, redemption_code = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			to, *code, id, from,
		)
	} else {
		result, err = tx.Exec(
			`UPDATE reward_redemptions SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			to, id, from,
		)
	}
	if err != nil {
		return fmt.Errorf("transition redemption: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM reward_redemptions WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check redemption: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

func (s *Service) getRedemption(id int64) (*model.RewardRedemption, error) {
	var r model.RewardRedemption
	var code sql.NullString
	err := s.db.QueryRow(
		`SELECT id, reward_id, user_id, points_spent, status, redemption_code, created_at, updated_at
		 FROM reward_redemptions WHERE id = ?`, id,
	).Scan(&r.ID, &r.RewardID, &r.UserID, &r.PointsSpent, &r.Status, &code, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get redemption: %w", err)
	}
	if code.Valid {
		r.RedemptionCode = &code.String
	}
	return &r, nil
}
