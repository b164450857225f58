package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"divvy/internal/expense/split"
)

// Repository handles expense, item and share data persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateFull inserts an expense with its items and shares in one
// transaction. Shares and the expense row live or die together, which is
// what lets the balance derivation trust every loaded snapshot.
func (r *Repository) CreateFull(ctx context.Context, req *CreateExpenseRequest, items []split.Item, shares []split.Share) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	e := &Expense{
		ID:              uuid.NewString(),
		GroupID:         req.GroupID,
		PayerID:         req.PayerID,
		Description:     req.Description,
		TotalAmount:     req.TotalAmount,
		ReceiptImageURL: req.ReceiptImageURL,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, description, total_amount, receipt_image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		e.ID, e.GroupID, e.PayerID, e.Description, e.TotalAmount, e.ReceiptImageURL,
	).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	for _, item := range items {
		row := &Item{ID: uuid.NewString(), ExpenseID: e.ID, Name: item.Name, Price: item.Price}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_items (id, expense_id, name, price) VALUES ($1, $2, $3, $4)`,
			row.ID, row.ExpenseID, row.Name, row.Price,
		); err != nil {
			return nil, fmt.Errorf("create expense item: %w", err)
		}
		e.Items = append(e.Items, row)
	}

	for _, share := range shares {
		row := &Share{
			ID:         uuid.NewString(),
			ExpenseID:  e.ID,
			MemberID:   share.MemberID,
			AmountOwed: share.AmountOwed,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO expense_shares (id, expense_id, member_id, amount_owed) VALUES ($1, $2, $3, $4)`,
			row.ID, row.ExpenseID, row.MemberID, row.AmountOwed,
		); err != nil {
			return nil, fmt.Errorf("create expense share: %w", err)
		}
		e.Shares = append(e.Shares, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit expense creation: %w", err)
	}

	return e, nil
}

// GetByID retrieves an expense with its items and shares. Returns nil when
// not found.
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	e := &Expense{}
	err := r.db.QueryRowContext(ctx,
		`SELECT e.id, e.group_id, e.payer_id, e.description, e.total_amount, e.receipt_image_url, e.created_at, m.name
		 FROM expenses e
		 JOIN members m ON e.payer_id = m.id
		 WHERE e.id = $1`,
		id,
	).Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.TotalAmount, &e.ReceiptImageURL, &e.CreatedAt, &e.PayerName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}

	if e.Items, err = r.getItems(ctx, id); err != nil {
		return nil, err
	}
	if e.Shares, err = r.getShares(ctx, id); err != nil {
		return nil, err
	}

	return e, nil
}

// ListByGroup retrieves all expenses for a group, newest first, each with
// its shares and items attached. This is the full snapshot the balance
// derivation runs on, so it never paginates.
func (r *Repository) ListByGroup(ctx context.Context, groupID string) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.id, e.group_id, e.payer_id, e.description, e.total_amount, e.receipt_image_url, e.created_at, m.name
		 FROM expenses e
		 JOIN members m ON e.payer_id = m.id
		 WHERE e.group_id = $1
		 ORDER BY e.created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	byID := make(map[string]*Expense)
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.TotalAmount, &e.ReceiptImageURL, &e.CreatedAt, &e.PayerName); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	shareRows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.expense_id, s.member_id, s.amount_owed, s.is_settled, m.name
		 FROM expense_shares s
		 JOIN expenses e ON s.expense_id = e.id
		 JOIN members m ON s.member_id = m.id
		 WHERE e.group_id = $1
		 ORDER BY s.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		s := &Share{}
		if err := shareRows.Scan(&s.ID, &s.ExpenseID, &s.MemberID, &s.AmountOwed, &s.IsSettled, &s.MemberName); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		if e, ok := byID[s.ExpenseID]; ok {
			e.Shares = append(e.Shares, s)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.db.QueryContext(ctx,
		`SELECT i.id, i.expense_id, i.name, i.price
		 FROM expense_items i
		 JOIN expenses e ON i.expense_id = e.id
		 WHERE e.group_id = $1
		 ORDER BY i.id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item := &Item{}
		if err := itemRows.Scan(&item.ID, &item.ExpenseID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if e, ok := byID[item.ExpenseID]; ok {
			e.Items = append(e.Items, item)
		}
	}

	return expenses, itemRows.Err()
}

// Delete removes an expense; its items and shares cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// GetShareByID retrieves a single share. Returns nil when not found.
func (r *Repository) GetShareByID(ctx context.Context, shareID string) (*Share, error) {
	s := &Share{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, expense_id, member_id, amount_owed, is_settled FROM expense_shares WHERE id = $1`,
		shareID,
	).Scan(&s.ID, &s.ExpenseID, &s.MemberID, &s.AmountOwed, &s.IsSettled)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get share: %w", err)
	}

	return s, nil
}

// SettleShare marks a single share as settled.
func (r *Repository) SettleShare(ctx context.Context, shareID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expense_shares SET is_settled = TRUE WHERE id = $1`, shareID,
	); err != nil {
		return fmt.Errorf("settle share: %w", err)
	}
	return nil
}

// SettlePair marks every unsettled share between the two members as
// settled, in both directions, so mutual debts clear together.
func (r *Repository) SettlePair(ctx context.Context, groupID, memberA, memberB string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expense_shares s
		 SET is_settled = TRUE
		 FROM expenses e
		 WHERE s.expense_id = e.id
		   AND e.group_id = $1
		   AND NOT s.is_settled
		   AND ((s.member_id = $2 AND e.payer_id = $3) OR (s.member_id = $3 AND e.payer_id = $2))`,
		groupID, memberA, memberB,
	)
	if err != nil {
		return fmt.Errorf("settle pair: %w", err)
	}
	return nil
}

// UnsettledBetween sums the unsettled share amounts the two members owe
// each other, one total per direction.
func (r *Repository) UnsettledBetween(ctx context.Context, groupID, memberA, memberB string) (owedByA, owedByB float64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT
		     COALESCE(SUM(s.amount_owed) FILTER (WHERE s.member_id = $2), 0),
		     COALESCE(SUM(s.amount_owed) FILTER (WHERE s.member_id = $3), 0)
		 FROM expense_shares s
		 JOIN expenses e ON s.expense_id = e.id
		 WHERE e.group_id = $1
		   AND NOT s.is_settled
		   AND ((s.member_id = $2 AND e.payer_id = $3) OR (s.member_id = $3 AND e.payer_id = $2))`,
		groupID, memberA, memberB,
	).Scan(&owedByA, &owedByB)
	if err != nil {
		return 0, 0, fmt.Errorf("sum unsettled between members: %w", err)
	}
	return owedByA, owedByB, nil
}

// CountUnsettledShares returns how many unsettled shares a member holds
// across all expenses.
func (r *Repository) CountUnsettledShares(ctx context.Context, memberID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expense_shares WHERE member_id = $1 AND NOT is_settled`,
		memberID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unsettled shares: %w", err)
	}
	return count, nil
}

// SettleAll marks every unsettled share in the group as settled.
func (r *Repository) SettleAll(ctx context.Context, groupID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE expense_shares s
		 SET is_settled = TRUE
		 FROM expenses e
		 WHERE s.expense_id = e.id AND e.group_id = $1 AND NOT s.is_settled`,
		groupID,
	)
	if err != nil {
		return fmt.Errorf("settle all: %w", err)
	}
	return nil
}

// PruneSettled deletes every expense in the group whose shares are all
// settled. Fully settled expenses carry no balance and only clutter
// history, so settlement operations sweep them away.
func (r *Repository) PruneSettled(ctx context.Context, groupID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses e
		 WHERE e.group_id = $1
		   AND NOT EXISTS (
		       SELECT 1 FROM expense_shares s
		       WHERE s.expense_id = e.id AND NOT s.is_settled
		   )`,
		groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("prune settled expenses: %w", err)
	}
	return res.RowsAffected()
}

// ListGroupMembers returns the group's members in creation order, in the
// shape the split allocator consumes.
func (r *Repository) ListGroupMembers(ctx context.Context, groupID string) ([]split.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM members WHERE group_id = $1 ORDER BY created_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	var members []split.Member
	for rows.Next() {
		var m split.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// SelfMemberID returns the group's self member pointer, or empty when the
// group does not exist.
func (r *Repository) SelfMemberID(ctx context.Context, groupID string) (string, error) {
	var selfID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT self_member_id FROM groups WHERE id = $1`, groupID,
	).Scan(&selfID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get self member: %w", err)
	}
	return selfID.String, nil
}

func (r *Repository) getItems(ctx context.Context, expenseID string) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, expense_id, name, price FROM expense_items WHERE expense_id = $1 ORDER BY id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ID, &item.ExpenseID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *Repository) getShares(ctx context.Context, expenseID string) ([]*Share, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.expense_id, s.member_id, s.amount_owed, s.is_settled, m.name
		 FROM expense_shares s
		 JOIN members m ON s.member_id = m.id
		 WHERE s.expense_id = $1
		 ORDER BY s.id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get shares: %w", err)
	}
	defer rows.Close()

	var shares []*Share
	for rows.Next() {
		s := &Share{}
		if err := rows.Scan(&s.ID, &s.ExpenseID, &s.MemberID, &s.AmountOwed, &s.IsSettled, &s.MemberName); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, s)
	}

	return shares, rows.Err()
}
