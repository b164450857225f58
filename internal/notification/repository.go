package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository handles notification data persistence.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification.
func (r *Repository) Create(ctx context.Context, memberID, message string, entityType, entityID *string) (*Notification, error) {
	n := &Notification{
		ID:         uuid.NewString(),
		MemberID:   memberID,
		Message:    message,
		EntityType: entityType,
		EntityID:   entityID,
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO notifications (id, member_id, message, entity_type, entity_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		n.ID, n.MemberID, n.Message, n.EntityType, n.EntityID,
	).Scan(&n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	return n, nil
}

// ListByMember retrieves a member's notifications, newest first.
func (r *Repository) ListByMember(ctx context.Context, memberID string, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, member_id, message, is_read, entity_type, entity_id, created_at
		FROM notifications
		WHERE member_id = $1
	`
	if unreadOnly {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.MemberID, &n.Message, &n.IsRead, &n.EntityType, &n.EntityID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// GetByID retrieves a notification. Returns nil when not found.
func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	n := &Notification{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, member_id, message, is_read, entity_type, entity_id, created_at
		 FROM notifications WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.MemberID, &n.Message, &n.IsRead, &n.EntityType, &n.EntityID, &n.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return n, nil
}

// MarkAsRead marks a single notification as read.
func (r *Repository) MarkAsRead(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks every notification for a member as read.
func (r *Repository) MarkAllAsRead(ctx context.Context, memberID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE member_id = $1 AND NOT is_read`, memberID,
	); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread notifications for a member.
func (r *Repository) CountUnread(ctx context.Context, memberID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE member_id = $1 AND NOT is_read`, memberID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
