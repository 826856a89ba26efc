package model

import "time"

// UnlimitedStock marks a reward item as having unlimited inventory.
const UnlimitedStock = -1

type RewardCategory string

const (
	CategoryBillDiscount RewardCategory = "bill_discount"
	CategoryTransport    RewardCategory = "transport"
	CategoryEcoProducts  RewardCategory = "eco_products"
	CategoryOther        RewardCategory = "other"
)

func ValidRewardCategory(s string) bool {
	switch RewardCategory(s) {
	case CategoryBillDiscount, CategoryTransport, CategoryEcoProducts, CategoryOther:
		return true
	}
	return false
}

type RewardItem struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	PointsCost  int            `json:"points_cost"`
	Stock       int            `json:"stock"`
	Category    RewardCategory `json:"category"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
}

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionApproved  RedemptionStatus = "approved"
	RedemptionDelivered RedemptionStatus = "delivered"
	RedemptionRejected  RedemptionStatus = "rejected"
)

// RewardRedemption links a user to a reward item. PointsSpent snapshots the
// item cost at redemption time and does not follow later price changes.
// Redemptions are never deleted, only transitioned:
// pending -> approved -> delivered, or pending -> rejected.
type RewardRedemption struct {
	ID             int64            `json:"id"`
	RewardID       int64            `json:"reward_id"`
	UserID         int64            `json:"user_id"`
	PointsSpent    int              `json:"points_spent"`
	Status         RedemptionStatus `json:"status"`
	RedemptionCode *string          `json:"redemption_code,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
