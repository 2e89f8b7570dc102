package models

import "time"

// Manager is a human operator controlling one team.
type Manager struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	TeamID       int       `json:"team_id" db:"team_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
