package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand is the tracked entity whose visibility in AI answers is measured.
// Aliases are alternative spellings matched with the same word-boundary
// semantics as the name itself.
type Brand struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	UserID    uuid.UUID `db:"user_id"    json:"user_id"`
	Name      string    `db:"name"       json:"name"`
	Aliases   []string  `db:"aliases"    json:"aliases"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Competitor belongs to exactly one brand and is matched in responses with
// the same semantics as the brand.
type Competitor struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	BrandID   uuid.UUID `db:"brand_id"   json:"brand_id"`
	Name      string    `db:"name"       json:"name"`
	Aliases   []string  `db:"aliases"    json:"aliases"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AllNames returns the brand name followed by its aliases.
func (b *Brand) AllNames() []string {
	return append([]string{b.Name}, b.Aliases...)
}

// AllNames returns the competitor name followed by its aliases.
func (c *Competitor) AllNames() []string {
	return append([]string{c.Name}, c.Aliases...)
}
