package model

import (
	"time"

	"github.com/google/uuid"
)

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsID reports whether id has the shape of a stored identifier. Repositories
// treat anything else as missing without querying.
func IsID(id string) bool {
	return uuid.Validate(id) == nil
}
