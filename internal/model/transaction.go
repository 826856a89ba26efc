package model

import "time"

type TransactionType string

const (
	TxEventJoin        TransactionType = "event_join"
	TxReportReward     TransactionType = "report_reward"
	TxCollectionReward TransactionType = "collection_reward"
	TxRedemption       TransactionType = "redemption"
	TxRefund           TransactionType = "refund"
)

// Transaction is an append-only audit record of a points-balance change.
// Amount is signed: positive for awards, negative for deductions.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}
