package models

import "time"

// Admin is a dashboard account. Only the bcrypt hash is ever stored.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
