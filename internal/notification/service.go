package notification

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var ErrNotificationNotFound = errors.New("notification not found")

// Service handles notification business logic.
type Service struct {
	repo *Repository
}

// NewService creates a new notification service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ListByMember retrieves a member's notifications.
func (s *Service) ListByMember(ctx context.Context, memberID string, unreadOnly bool) ([]*Notification, error) {
	return s.repo.ListByMember(ctx, memberID, unreadOnly)
}

// MarkAsRead marks a notification as read.
func (s *Service) MarkAsRead(ctx context.Context, id string) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all of a member's notifications as read.
func (s *Service) MarkAllAsRead(ctx context.Context, memberID string) error {
	return s.repo.MarkAllAsRead(ctx, memberID)
}

// CountUnread returns the number of unread notifications for a member.
func (s *Service) CountUnread(ctx context.Context, memberID string) (int, error) {
	return s.repo.CountUnread(ctx, memberID)
}

// NotifyExpenseAdded tells a debtor they owe a share of a new expense.
func (s *Service) NotifyExpenseAdded(ctx context.Context, memberID, payerName, description string, amount float64, expenseID string) error {
	message := fmt.Sprintf("%s added %q: you owe %.2f", payerName, description, amount)
	entityType := "EXPENSE"
	_, err := s.repo.Create(ctx, memberID, message, &entityType, &expenseID)
	return err
}

// NotifySettlement tells a creditor that a debtor's balance toward them
// was marked settled.
func (s *Service) NotifySettlement(ctx context.Context, memberID, fromName string, amount float64) error {
	message := fmt.Sprintf("%s settled up: %.2f marked as paid", fromName, amount)
	entityType := "SETTLEMENT"
	_, err := s.repo.Create(ctx, memberID, message, &entityType, nil)
	return err
}
