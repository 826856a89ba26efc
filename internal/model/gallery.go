package model

import "time"

type GalleryStatus string

const (
	GalleryPending  GalleryStatus = "pending"
	GalleryApproved GalleryStatus = "approved"
	GalleryRejected GalleryStatus = "rejected"
)

type GalleryItem struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	Caption   string        `json:"caption"`
	PhotoKey  string        `json:"photo_key"`
	Status    GalleryStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
