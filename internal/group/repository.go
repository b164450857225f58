package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Repository handles group and member data persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a group, its self member and any extra members in one
// transaction, and points the group at its self member.
func (r *Repository) Create(ctx context.Context, name string, memberNames []string) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	group := &Group{ID: uuid.NewString(), Name: name}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO groups (id, name) VALUES ($1, $2) RETURNING created_at`,
		group.ID, group.Name,
	).Scan(&group.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	selfID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO members (id, group_id, name) VALUES ($1, $2, $3)`,
		selfID, group.ID, SelfMemberName,
	); err != nil {
		return nil, fmt.Errorf("create self member: %w", err)
	}

	for _, name := range memberNames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO members (id, group_id, name) VALUES ($1, $2, $3)`,
			uuid.NewString(), group.ID, name,
		); err != nil {
			return nil, fmt.Errorf("create member %q: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE groups SET self_member_id = $1 WHERE id = $2`,
		selfID, group.ID,
	); err != nil {
		return nil, fmt.Errorf("set self member: %w", err)
	}
	group.SelfMemberID = &selfID

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit group creation: %w", err)
	}
	group.MemberCount = 1 + len(memberNames)

	return group, nil
}

// List retrieves all groups with their member counts, newest first.
func (r *Repository) List(ctx context.Context) ([]*Group, error) {
	query := `
		SELECT g.id, g.name, g.self_member_id, g.created_at, COUNT(m.id)
		FROM groups g
		LEFT JOIN members m ON m.group_id = g.id
		GROUP BY g.id
		ORDER BY g.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		g := &Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.SelfMemberID, &g.CreatedAt, &g.MemberCount); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// GetByID retrieves a group by its ID. Returns nil when not found.
func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	g := &Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, self_member_id, created_at FROM groups WHERE id = $1`,
		id,
	).Scan(&g.ID, &g.Name, &g.SelfMemberID, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}

	return g, nil
}

// Delete removes a group; members, expenses and shares cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// GetMembers retrieves all members of a group in creation order.
func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, group_id, name, created_at FROM members WHERE group_id = $1 ORDER BY created_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(&m.ID, &m.GroupID, &m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// GetMember retrieves a single member by id. Returns nil when not found.
func (r *Repository) GetMember(ctx context.Context, memberID string) (*Member, error) {
	m := &Member{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, created_at FROM members WHERE id = $1`,
		memberID,
	).Scan(&m.ID, &m.GroupID, &m.Name, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	return m, nil
}

// AddMember inserts a new member into a group.
func (r *Repository) AddMember(ctx context.Context, groupID, name string) (*Member, error) {
	m := &Member{ID: uuid.NewString(), GroupID: groupID, Name: name}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO members (id, group_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
		m.ID, m.GroupID, m.Name,
	).Scan(&m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrMemberAlreadyExists
		}
		return nil, fmt.Errorf("add member: %w", err)
	}

	return m, nil
}

// RemoveMember deletes a member together with their settled shares, which
// carry no balance but would otherwise trip the restrict foreign key. The
// same foreign key backstops the service's unsettled-share check.
func (r *Repository) RemoveMember(ctx context.Context, memberID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove member: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM expense_shares WHERE member_id = $1 AND is_settled`, memberID,
	); err != nil {
		return fmt.Errorf("clear settled shares: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, memberID); err != nil {
		if isForeignKeyViolation(err) {
			return ErrMemberHasOutstanding
		}
		return fmt.Errorf("remove member: %w", err)
	}

	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23503"
	}
	return false
}
