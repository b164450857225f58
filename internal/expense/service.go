package expense

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"divvy/internal/enrich"
	"divvy/internal/expense/split"
	"divvy/internal/notification"
)

// Common errors
var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrShareNotFound       = errors.New("share not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrUnknownParticipant  = errors.New("participant is not a member of this group")
	ErrUnknownPayer        = errors.New("payer is not a member of this group")
	ErrEmptyDescription    = errors.New("description is required")
	ErrShareAlreadySettled = errors.New("share is already settled")
	ErrEnrichmentDisabled  = errors.New("receipt and voice parsing are not configured")
)

// Service handles expense business logic.
type Service struct {
	repo     *Repository
	enricher *enrich.Service // nil when no API key is configured
	notifier *notification.Service
}

// NewService creates a new expense service with dependencies injected.
func NewService(repo *Repository, enricher *enrich.Service, notifier *notification.Service) *Service {
	return &Service{
		repo:     repo,
		enricher: enricher,
		notifier: notifier,
	}
}

// Create computes the shares for a new expense with the requested split
// strategy and persists the expense, items and shares atomically. The
// balance derivation never re-validates share sums, so this is the single
// gate for the total/share consistency invariant.
func (s *Service) Create(ctx context.Context, req *CreateExpenseRequest) (*Expense, error) {
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return nil, ErrEmptyDescription
	}

	groupMembers, err := s.repo.ListGroupMembers(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if len(groupMembers) == 0 {
		return nil, ErrGroupNotFound
	}

	byID := make(map[string]split.Member, len(groupMembers))
	for _, m := range groupMembers {
		byID[m.ID] = m
	}
	if _, ok := byID[req.PayerID]; !ok {
		return nil, ErrUnknownPayer
	}

	var strategy split.Strategy
	var participants []split.Member
	var items []split.Item

	if req.Mode == split.ModeItemized {
		strategy = split.NewItemized(req.Items, req.Claims)
		participants = groupMembers
		items = req.Items
	} else {
		strategy, err = split.ForMode(req.Mode, req.Inputs)
		if err != nil {
			return nil, err
		}
		// Request order is preserved: the first listed participant
		// absorbs any rounding remainder.
		participants = make([]split.Member, 0, len(req.Participants))
		for _, id := range req.Participants {
			m, ok := byID[id]
			if !ok {
				return nil, ErrUnknownParticipant
			}
			participants = append(participants, m)
		}
	}

	shares, err := strategy.Compute(req.TotalAmount, participants)
	if err != nil {
		return nil, err
	}

	expense, err := s.repo.CreateFull(ctx, req, items, shares)
	if err != nil {
		return nil, err
	}
	expense.PayerName = byID[req.PayerID].Name

	for _, share := range expense.Shares {
		if share.MemberID == req.PayerID {
			continue
		}
		if err := s.notifier.NotifyExpenseAdded(ctx, share.MemberID, expense.PayerName, expense.Description, share.AmountOwed, expense.ID); err != nil {
			slog.Warn("failed to notify debtor", "member_id", share.MemberID, "error", err)
		}
	}

	return expense, nil
}

// GetByID retrieves an expense with its items and shares.
func (s *Service) GetByID(ctx context.Context, id string) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

// ListByGroup retrieves all expenses for a group, newest first.
func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]*Expense, error) {
	return s.repo.ListByGroup(ctx, groupID)
}

// Delete removes an expense and, transitively, its items and shares.
func (s *Service) Delete(ctx context.Context, id string) error {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}
	return s.repo.Delete(ctx, id)
}

// SettleShare marks a single share as settled and sweeps the owning
// expense away once all of its shares are settled.
func (s *Service) SettleShare(ctx context.Context, shareID string) error {
	share, err := s.repo.GetShareByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share == nil {
		return ErrShareNotFound
	}
	if share.IsSettled {
		return ErrShareAlreadySettled
	}

	expense, err := s.repo.GetByID(ctx, share.ExpenseID)
	if err != nil {
		return err
	}

	if err := s.repo.SettleShare(ctx, shareID); err != nil {
		return err
	}

	if expense != nil {
		if _, err := s.repo.PruneSettled(ctx, expense.GroupID); err != nil {
			return err
		}
	}
	return nil
}

// ParseTranscript turns a spoken expense description into an itemized
// draft with claimant names resolved to member ids. The caller reviews the
// draft and submits it back as a regular itemized create request.
func (s *Service) ParseTranscript(ctx context.Context, req *ParseTranscriptRequest) (*ExpenseDraftResponse, error) {
	if s.enricher == nil {
		return nil, ErrEnrichmentDisabled
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, errors.New("transcript is required")
	}

	members, err := s.repo.ListGroupMembers(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrGroupNotFound
	}
	selfID, err := s.repo.SelfMemberID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	draft, err := s.enricher.ParseExpense(ctx, req.Transcript)
	if err != nil {
		return nil, err
	}

	resolved, err := enrich.Resolve(draft, members, selfID)
	if err != nil {
		return nil, err
	}

	return &ExpenseDraftResponse{
		GroupID:     req.GroupID,
		Description: draft.Description,
		PayerID:     resolved.PayerID,
		TotalAmount: resolved.TotalAmount,
		Mode:        split.ModeItemized,
		Items:       resolved.Items,
		Claims:      resolved.Claims,
	}, nil
}

// ScanReceipt extracts candidate totals from a receipt image. Line-item
// claiming happens client-side afterwards, so this returns raw candidates
// without touching member data.
func (s *Service) ScanReceipt(ctx context.Context, image []byte, mimeType string) (*ReceiptCandidateResponse, error) {
	if s.enricher == nil {
		return nil, ErrEnrichmentDisabled
	}

	candidate, err := s.enricher.ScanReceipt(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}

	return &ReceiptCandidateResponse{
		Description: candidate.Description,
		Subtotal:    candidate.Subtotal,
		Tax:         candidate.Tax,
		Tip:         candidate.Tip,
		Total:       candidate.Total,
	}, nil
}
