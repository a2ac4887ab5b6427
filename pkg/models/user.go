package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier controls which engines a user's brands are run against and how often.
type PlanTier string

const (
	PlanFree   PlanTier = "free"
	PlanPro    PlanTier = "pro"
	PlanAgency PlanTier = "agency"
)

// User represents an account. Every brand belongs to a user.
type User struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Email     string    `db:"email"      json:"email"`
	PlanTier  PlanTier  `db:"plan_tier"  json:"plan_tier"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
