package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can save favorite plans.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SavedPlan is one favorited plan reference. Plans live in per-city data
// files (or the plans table), so we store the city/plan key pair rather
// than a foreign key.
type SavedPlan struct {
	City    string    `json:"city"`
	PlanID  string    `json:"plan_id"`
	SavedAt time.Time `json:"saved_at"`
}
