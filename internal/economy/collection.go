package economy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wastenexus/wastenexus/internal/model"
)

// Default points awarded when a report's collection is verified.
const (
	DefaultReportReward     = 10
	DefaultCollectionReward = 20
)

// CompleteReport verifies a collection: the report moves from in_progress to
// completed, the reporter earns the report reward, and the collector earns
// the collection reward — all one transaction. Only the collector that
// claimed the report may complete it.
func (s *Service) CompleteReport(ctx context.Context, reportID, collectorID int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var reporterID int64
		var claimedBy sql.NullInt64
		var status model.ReportStatus
		err := tx.QueryRow(
			`SELECT user_id, collector_id, status FROM reports WHERE id = ?`,
			reportID,
		).Scan(&reporterID, &claimedBy, &status)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get report: %w", err)
		}

		if status != model.ReportInProgress || !claimedBy.Valid || claimedBy.Int64 != collectorID {
			return ErrInvalidTransition
		}

		result, err := tx.Exec(
			`UPDATE reports SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ? AND collector_id = ?`,
			model.ReportCompleted, reportID, model.ReportInProgress, collectorID,
		)
		if err != nil {
			return fmt.Errorf("complete report: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return ErrInvalidTransition
		}

		if err := award(tx, reporterID, DefaultReportReward, model.TxReportReward, "Waste report verified"); err != nil {
			return err
		}
		return award(tx, collectorID, DefaultCollectionReward, model.TxCollectionReward, "Waste collection verified")
	})
	if err != nil {
		return err
	}

	s.logger.Info("report completed", "report_id", reportID, "collector_id", collectorID)
	return nil
}
