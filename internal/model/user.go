package model

import "time"

type Role string

const (
	RoleCitizen Role = "citizen"
	RoleWorker  Role = "worker"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether s is one of the enumerated roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleCitizen, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Points       int       `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LeaderboardEntry is a ranked projection over citizen users.
// Rank is positional (1-indexed); ties get consecutive ranks.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}
