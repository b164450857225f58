package group

import (
	"divvy/internal/balance"
	"divvy/internal/expense"
)

// CreateGroupRequest represents the request to create a new group. The self
// member is added automatically; MemberNames lists any additional members.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	MemberNames []string `json:"member_names,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group.
type AddMemberRequest struct {
	Name string `json:"name"`
}

// SettlePairRequest asks to clear all debts between two members.
type SettlePairRequest struct {
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
}

// GroupResponse represents the response for a group.
type GroupResponse struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	SelfMemberID *string                    `json:"self_member_id,omitempty"`
	CreatedAt    string                     `json:"created_at"`
	MemberCount  int                        `json:"member_count,omitempty"`
	Members      []*MemberResponse          `json:"members,omitempty"`
	Expenses     []*expense.ExpenseResponse `json:"expenses,omitempty"`
}

// MemberResponse represents a member in a group response.
type MemberResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// BalancesResponse carries the derived balances and the suggested transfers
// that would settle them. Nothing in it is persisted.
type BalancesResponse struct {
	Balances    map[string]float64 `json:"balances"`
	Settlements []balance.Transfer `json:"settlements"`
}

// ToResponse converts a Group model to a GroupResponse DTO.
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		SelfMemberID: g.SelfMemberID,
		CreatedAt:    g.CreatedAt.Format("2006-01-02T15:04:05Z"),
		MemberCount:  g.MemberCount,
	}
}

// ToResponse converts a Member model to a MemberResponse DTO.
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
