package expense

import (
	"divvy/internal/expense/split"
)

// CreateExpenseRequest represents the request to create an expense. For the
// equal/amount/percent modes, Participants lists the member ids splitting
// the expense and Inputs carries their raw form values. For the itemized
// mode, Items and Claims describe the receipt lines instead.
type CreateExpenseRequest struct {
	GroupID         string     `json:"group_id"`
	PayerID         string     `json:"payer_id"`
	Description     string     `json:"description"`
	TotalAmount     float64    `json:"total_amount"`
	Mode            split.Mode `json:"mode"`
	ReceiptImageURL *string    `json:"receipt_image_url,omitempty"`

	Participants []string          `json:"participants,omitempty"`
	Inputs       map[string]string `json:"inputs,omitempty"`

	Items  []split.Item     `json:"items,omitempty"`
	Claims map[int][]string `json:"claims,omitempty"`
}

// ParseTranscriptRequest carries a voice transcript to be turned into an
// itemized expense draft.
type ParseTranscriptRequest struct {
	GroupID    string `json:"group_id"`
	Transcript string `json:"transcript"`
}

// ExpenseDraftResponse is a parsed transcript with claimant names already
// resolved to member ids, ready to be reviewed and submitted as an
// itemized CreateExpenseRequest.
type ExpenseDraftResponse struct {
	GroupID     string           `json:"group_id"`
	Description string           `json:"description"`
	PayerID     string           `json:"payer_id"`
	TotalAmount float64          `json:"total_amount"`
	Mode        split.Mode       `json:"mode"`
	Items       []split.Item     `json:"items"`
	Claims      map[int][]string `json:"claims"`
}

// ReceiptCandidateResponse is the structured result of scanning a receipt
// image. Amounts the scanner could not find are null.
type ReceiptCandidateResponse struct {
	Description string   `json:"description"`
	Subtotal    *float64 `json:"subtotal"`
	Tax         *float64 `json:"tax"`
	Tip         *float64 `json:"tip"`
	Total       float64  `json:"total"`
}

// ExpenseResponse represents the response for an expense.
type ExpenseResponse struct {
	ID              string           `json:"id"`
	GroupID         string           `json:"group_id"`
	PayerID         string           `json:"payer_id"`
	PayerName       string           `json:"payer_name,omitempty"`
	Description     string           `json:"description"`
	TotalAmount     float64          `json:"total_amount"`
	ReceiptImageURL *string          `json:"receipt_image_url,omitempty"`
	CreatedAt       string           `json:"created_at"`
	Items           []*ItemResponse  `json:"items,omitempty"`
	Shares          []*ShareResponse `json:"shares,omitempty"`
}

// ItemResponse represents a line item in an expense response.
type ItemResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ShareResponse represents a share in an expense response.
type ShareResponse struct {
	ID         string  `json:"id"`
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name,omitempty"`
	AmountOwed float64 `json:"amount_owed"`
	IsSettled  bool    `json:"is_settled"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO.
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:              e.ID,
		GroupID:         e.GroupID,
		PayerID:         e.PayerID,
		PayerName:       e.PayerName,
		Description:     e.Description,
		TotalAmount:     e.TotalAmount,
		ReceiptImageURL: e.ReceiptImageURL,
		CreatedAt:       e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for _, item := range e.Items {
		resp.Items = append(resp.Items, &ItemResponse{ID: item.ID, Name: item.Name, Price: item.Price})
	}
	for _, share := range e.Shares {
		resp.Shares = append(resp.Shares, share.ToResponse())
	}
	return resp
}

// ToResponse converts a Share model to a ShareResponse DTO.
func (s *Share) ToResponse() *ShareResponse {
	return &ShareResponse{
		ID:         s.ID,
		MemberID:   s.MemberID,
		MemberName: s.MemberName,
		AmountOwed: s.AmountOwed,
		IsSettled:  s.IsSettled,
	}
}
