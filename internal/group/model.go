package group

import (
	"strings"
	"time"
)

// SelfMemberName is the reserved display name for the member representing
// the current user. Every group gets one at creation, and the group row
// keeps an explicit pointer to it so it is never re-derived by name
// matching afterwards.
const SelfMemberName = "Me"

// Group represents a group in the system.
type Group struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SelfMemberID *string   `json:"self_member_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// MemberCount is populated on list queries.
	MemberCount int `json:"member_count,omitempty"`
}

// Member represents a named participant in a group.
type Member struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// isReservedName reports whether a name collides with the self member token.
func isReservedName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), SelfMemberName)
}
