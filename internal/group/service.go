package group

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"divvy/internal/balance"
	"divvy/internal/expense"
	"divvy/internal/notification"
)

// Common errors
var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrMemberAlreadyExists  = errors.New("a member with this name already exists in the group")
	ErrEmptyName            = errors.New("name is required")
	ErrReservedName         = errors.New("this name is reserved for the group's own member")
	ErrMemberHasOutstanding = errors.New("member still has unsettled expense shares")
	ErrNothingToSettle      = errors.New("no outstanding balance between these members")
)

// Service handles group business logic, including the load-then-derive
// pipeline: balances and settlement suggestions are recomputed from a
// fresh snapshot on every call and never cached.
type Service struct {
	repo        *Repository
	expenseRepo *expense.Repository
	notifier    *notification.Service
}

// NewService creates a new group service.
func NewService(repo *Repository, expenseRepo *expense.Repository, notifier *notification.Service) *Service {
	return &Service{
		repo:        repo,
		expenseRepo: expenseRepo,
		notifier:    notifier,
	}
}

// Create creates a group with its self member plus any extra members.
// Duplicate and reserved names among the extras are dropped rather than
// rejected, matching the forgiving create-form behavior.
func (s *Service) Create(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	var extras []string
	seen := map[string]bool{}
	for _, n := range req.MemberNames {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || isReservedName(n) || seen[key] {
			continue
		}
		seen[key] = true
		extras = append(extras, n)
	}

	return s.repo.Create(ctx, name, extras)
}

// List retrieves all groups with member counts, newest first.
func (s *Service) List(ctx context.Context) ([]*Group, error) {
	return s.repo.List(ctx)
}

// GetFull loads a group with its members and expenses. Members and
// expenses are independent queries, so they run concurrently.
func (s *Service) GetFull(ctx context.Context, id string) (*Group, []*Member, []*expense.Expense, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if g == nil {
		return nil, nil, nil, ErrGroupNotFound
	}

	var (
		members  []*Member
		expenses []*expense.Expense
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		members, err = s.repo.GetMembers(egCtx, id)
		return err
	})
	eg.Go(func() error {
		var err error
		expenses, err = s.expenseRepo.ListByGroup(egCtx, id)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, nil, err
	}

	return g, members, expenses, nil
}

// ListMembers retrieves a group's members.
func (s *Service) ListMembers(ctx context.Context, groupID string) ([]*Member, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return s.repo.GetMembers(ctx, groupID)
}

// Delete removes a group and everything it owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGroupNotFound
	}
	return s.repo.Delete(ctx, id)
}

// AddMember adds a named member to a group. The reserved self name is
// rejected: the self member exists from creation and is never re-derived
// by name.
func (s *Service) AddMember(ctx context.Context, groupID string, req *AddMemberRequest) (*Member, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if isReservedName(name) {
		return nil, ErrReservedName
	}

	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	return s.repo.AddMember(ctx, groupID, name)
}

// RemoveMember removes a member unless they still carry an outstanding
// balance or unsettled shares. Settled shares and fully settled expenses
// don't count: they are swept away so a fully paid-up member can always
// leave. The database's restrict constraints catch anything that slips
// through.
func (s *Service) RemoveMember(ctx context.Context, groupID, memberID string) error {
	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil || member.GroupID != groupID {
		return ErrMemberNotFound
	}

	unsettled, err := s.expenseRepo.CountUnsettledShares(ctx, memberID)
	if err != nil {
		return err
	}
	balances, err := s.deriveBalances(ctx, groupID)
	if err != nil {
		return err
	}
	if err := removable(unsettled, balances, memberID); err != nil {
		return err
	}

	// Expenses the member paid that are fully settled would otherwise
	// block the delete on the payer foreign key.
	if _, err := s.expenseRepo.PruneSettled(ctx, groupID); err != nil {
		return err
	}

	return s.repo.RemoveMember(ctx, memberID)
}

// removable reports whether a member can leave the group: no unsettled
// shares of their own and a zero net balance. Settled shares carry no
// balance and never block removal.
func removable(unsettledShares int, balances map[string]float64, memberID string) error {
	if unsettledShares > 0 || balance.HasOutstanding(balances, memberID) {
		return ErrMemberHasOutstanding
	}
	return nil
}

// Balances derives the group's balance map and the greedy settlement
// suggestions from the current snapshot.
func (s *Service) Balances(ctx context.Context, groupID string) (*BalancesResponse, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	balances, err := s.deriveBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &BalancesResponse{
		Balances:    balances,
		Settlements: balance.MinimizeTransactions(balances),
	}, nil
}

// SettlePair clears every unsettled share between two members, in both
// directions, then sweeps away fully settled expenses and notifies
// whoever ended up on the receiving side of the net amount.
func (s *Service) SettlePair(ctx context.Context, groupID string, req *SettlePairRequest) error {
	from, err := s.repo.GetMember(ctx, req.FromMemberID)
	if err != nil {
		return err
	}
	to, err := s.repo.GetMember(ctx, req.ToMemberID)
	if err != nil {
		return err
	}
	if from == nil || to == nil || from.GroupID != groupID || to.GroupID != groupID {
		return ErrMemberNotFound
	}

	owedByFrom, owedByTo, err := s.expenseRepo.UnsettledBetween(ctx, groupID, from.ID, to.ID)
	if err != nil {
		return err
	}
	net, ok := pairOutcome(owedByFrom, owedByTo)
	if !ok {
		return ErrNothingToSettle
	}

	if err := s.expenseRepo.SettlePair(ctx, groupID, from.ID, to.ID); err != nil {
		return err
	}
	if _, err := s.expenseRepo.PruneSettled(ctx, groupID); err != nil {
		return err
	}

	switch {
	case net > 0:
		if err := s.notifier.NotifySettlement(ctx, to.ID, from.Name, net); err != nil {
			slog.Warn("failed to notify settlement", "member_id", to.ID, "error", err)
		}
	case net < 0:
		if err := s.notifier.NotifySettlement(ctx, from.ID, to.Name, -net); err != nil {
			slog.Warn("failed to notify settlement", "member_id", from.ID, "error", err)
		}
	}

	return nil
}

// pairOutcome reports whether two members have anything to settle and
// the net amount the from side owes once shares in both directions
// clear. A negative net means the to side was the one in debt; zero with
// ok still true means mutual debts that cancel exactly, which settle
// without a notification.
func pairOutcome(owedByFrom, owedByTo float64) (net float64, ok bool) {
	if owedByFrom == 0 && owedByTo == 0 {
		return 0, false
	}
	return round2(owedByFrom - owedByTo), true
}

// SettleAll clears every unsettled share in the group and removes the
// now fully settled expenses.
func (s *Service) SettleAll(ctx context.Context, groupID string) error {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGroupNotFound
	}

	if err := s.expenseRepo.SettleAll(ctx, groupID); err != nil {
		return err
	}
	_, err = s.expenseRepo.PruneSettled(ctx, groupID)
	return err
}

// deriveBalances loads a fresh snapshot and runs the balance derivation
// over it.
func (s *Service) deriveBalances(ctx context.Context, groupID string) (map[string]float64, error) {
	members, err := s.repo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	snapshot := balance.Group{MemberIDs: make([]string, len(members))}
	for i, m := range members {
		snapshot.MemberIDs[i] = m.ID
	}
	for _, e := range expenses {
		snapshot.Expenses = append(snapshot.Expenses, e.ToBalanceExpense())
	}

	return balance.ComputeBalances(snapshot), nil
}

// round2 rounds to cent precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
