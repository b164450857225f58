package notification

import "time"

// Notification represents an in-app notification for a group member.
type Notification struct {
	ID         string    `json:"id"`
	MemberID   string    `json:"member_id"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"is_read"`
	EntityType *string   `json:"entity_type,omitempty"` // e.g. "EXPENSE", "SETTLEMENT"
	EntityID   *string   `json:"entity_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
