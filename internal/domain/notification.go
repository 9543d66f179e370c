package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a transient, human-readable status-change message. Feeds
// are kept in memory only and capped per user; a restart loses them.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
