package model

import "time"

// User is an account known to the API.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	FullName         string    `json:"full_name"`
	Tier             string    `json:"tier"`
	StorageUsedBytes int64     `json:"storage_used_bytes"`
	EmailVerified    bool      `json:"email_verified"`
	CreatedAt        time.Time `json:"created_at"`
}
