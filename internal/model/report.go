package model

import "time"

type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportInProgress ReportStatus = "in_progress"
	ReportCompleted  ReportStatus = "completed"
)

type Report struct {
	ID            int64        `json:"id"`
	UserID        int64        `json:"user_id"`
	Latitude      float64      `json:"latitude"`
	Longitude     float64      `json:"longitude"`
	WasteType     string       `json:"waste_type"`
	Quantity      string       `json:"quantity"`
	Recyclability float64      `json:"recyclability"`
	Status        ReportStatus `json:"status"`
	CollectorID   *int64       `json:"collector_id"`
	AIAnalysis    *string      `json:"ai_analysis"`
	PhotoKey      *string      `json:"photo_key,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
