package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every persisted entity has
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch sets UpdatedAt to the current time and returns it, so a state
// transition can stamp its other fields with the same instant.
func (e *BaseEntity) Touch() time.Time {
	now := time.Now()
	e.UpdatedAt = now
	return now
}
