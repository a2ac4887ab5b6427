package models

import (
	"time"

	"github.com/google/uuid"
)

// MonitoredQuery is a free-text prompt run against every enabled engine on
// each collection run. Inactive queries are excluded from future runs but
// keep their historical results until the query itself is deleted.
type MonitoredQuery struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	BrandID   uuid.UUID `db:"brand_id"   json:"brand_id"`
	QueryText string    `db:"query_text" json:"query_text"`
	Category  *string   `db:"category"   json:"category,omitempty"`
	IsActive  bool      `db:"is_active"  json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
