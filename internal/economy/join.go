package economy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wastenexus/wastenexus/internal/model"
)

// JoinEvent adds the user to the event and awards its points reward. The
// membership check, the capacity check, the participant insert, and the award
// are one transaction: two simultaneous joins for the last open slot cannot
// both succeed. A max_participants of zero or below means no capacity bound.
func (s *Service) JoinEvent(ctx context.Context, eventID, userID int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var title string
		var maxParticipants, pointsReward int
		err := tx.QueryRow(
			`SELECT title, max_participants, points_reward FROM events WHERE id = ?`,
			eventID,
		).Scan(&title, &maxParticipants, &pointsReward)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		var joined int
		err = tx.QueryRow(
			`SELECT COUNT(*) FROM event_participants WHERE event_id = ? AND user_id = ?`,
			eventID, userID,
		).Scan(&joined)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if joined > 0 {
			return ErrAlreadyJoined
		}

		if maxParticipants > 0 {
			var count int
			err = tx.QueryRow(
				`SELECT COUNT(*) FROM event_participants WHERE event_id = ?`,
				eventID,
			).Scan(&count)
			if err != nil {
				return fmt.Errorf("count participants: %w", err)
			}
			if count >= maxParticipants {
				return ErrEventFull
			}
		}

		if _, err := tx.Exec(
			`INSERT INTO event_participants (event_id, user_id) VALUES (?, ?)`,
			eventID, userID,
		); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}

		if pointsReward > 0 {
			if err := award(tx, userID, pointsReward, model.TxEventJoin, "Joined event: "+title); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("event joined", "event_id", eventID, "user_id", userID)
	return nil
}
