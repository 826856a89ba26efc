package model

import "time"

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
)

func ValidEventStatus(s string) bool {
	switch EventStatus(s) {
	case EventStatusUpcoming, EventStatusActive, EventStatusCompleted:
		return true
	}
	return false
}

type Event struct {
	ID               int64       `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Location         string      `json:"location"`
	StartsAt         time.Time   `json:"starts_at"`
	MaxParticipants  int         `json:"max_participants"`
	PointsReward     int         `json:"points_reward"`
	Status           EventStatus `json:"status"`
	ParticipantCount int         `json:"participant_count"`
	CreatedAt        time.Time   `json:"created_at"`
}

type EventParticipant struct {
	EventID  int64     `json:"event_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
