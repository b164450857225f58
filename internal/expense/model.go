package expense

import (
	"time"

	"divvy/internal/balance"
)

// Expense represents a single charge paid by one member on behalf of
// several, divided via shares.
type Expense struct {
	ID              string    `json:"id"`
	GroupID         string    `json:"group_id"`
	PayerID         string    `json:"payer_id"`
	Description     string    `json:"description"`
	TotalAmount     float64   `json:"total_amount"`
	ReceiptImageURL *string   `json:"receipt_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Populated via JOIN
	PayerName string `json:"payer_name,omitempty"`

	Items  []*Item  `json:"items,omitempty"`
	Shares []*Share `json:"shares,omitempty"`
}

// Item is a persisted line item for receipt- or voice-derived expenses.
type Item struct {
	ID        string  `json:"id"`
	ExpenseID string  `json:"expense_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

// Share is one member's portion of an expense. Settlement flips IsSettled;
// everything else is immutable after creation.
type Share struct {
	ID         string  `json:"id"`
	ExpenseID  string  `json:"expense_id"`
	MemberID   string  `json:"member_id"`
	AmountOwed float64 `json:"amount_owed"`
	IsSettled  bool    `json:"is_settled"`

	// Populated via JOIN
	MemberName string `json:"member_name,omitempty"`
}

// ToBalanceExpense converts to the snapshot shape the balance derivation
// consumes.
func (e *Expense) ToBalanceExpense() balance.Expense {
	be := balance.Expense{PayerID: e.PayerID, Shares: make([]balance.Share, len(e.Shares))}
	for i, s := range e.Shares {
		be.Shares[i] = balance.Share{
			MemberID:   s.MemberID,
			AmountOwed: s.AmountOwed,
			IsSettled:  s.IsSettled,
		}
	}
	return be
}
