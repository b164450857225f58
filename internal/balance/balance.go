// Package balance derives member balances and settlement suggestions for a
// group. Nothing here is persisted: balances are recomputed from the full
// group snapshot on every read, which keeps them consistent with the store
// at the cost of re-summing history each time.
package balance

import (
	"math"
	"sort"
)

// epsilon is the floor below which a remaining balance is treated as zero.
const epsilon = 0.01

// Share is the slice of an expense owed by a single member.
type Share struct {
	MemberID   string
	AmountOwed float64
	IsSettled  bool
}

// Expense carries the minimal expense data needed for balance derivation.
type Expense struct {
	PayerID string
	Shares  []Share
}

// Group is the input snapshot: member ids plus expenses with their shares.
type Group struct {
	MemberIDs []string
	Expenses  []Expense
}

// Transfer is a suggested payment: From pays To the given amount.
type Transfer struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// ComputeBalances returns each member's net position: positive means the
// member is owed money, negative means they owe. Settled shares and the
// payer's own share contribute nothing. The input is never mutated, and the
// sum of all returned balances is zero up to floating rounding.
//
// Shares referencing an id missing from MemberIDs are tolerated and start
// from zero rather than failing: every member in the snapshot is guaranteed
// an entry, which display callers rely on.
func ComputeBalances(g Group) map[string]float64 {
	balances := make(map[string]float64, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		balances[id] = 0
	}

	for _, e := range g.Expenses {
		for _, s := range e.Shares {
			if s.IsSettled {
				continue
			}
			if s.MemberID == e.PayerID {
				// Payer's own share, no net movement.
				continue
			}
			balances[s.MemberID] -= s.AmountOwed
			balances[e.PayerID] += s.AmountOwed
		}
	}

	return balances
}

// party is one side of the greedy matching with its remaining magnitude.
type party struct {
	id     string
	amount float64
}

// MinimizeTransactions turns a balance map into a short list of payments
// that clears every debt. It greedily matches the largest remaining creditor
// with the largest remaining debtor, so it emits at most
// creditors+debtors-1 transfers.
//
// This is a heuristic, not a provably minimal transaction count; an exact
// minimizer would need subset-sum matching, which this deliberately does
// not attempt.
func MinimizeTransactions(balances map[string]float64) []Transfer {
	var creditors, debtors []party

	for id, amount := range balances {
		rounded := round2(amount)
		if rounded > 0 {
			creditors = append(creditors, party{id: id, amount: rounded})
		} else if rounded < 0 {
			debtors = append(debtors, party{id: id, amount: -rounded})
		}
	}

	// Largest first, ties broken by id so output is deterministic.
	sortParties(creditors)
	sortParties(debtors)

	var transfers []Transfer
	ci, di := 0, 0

	for ci < len(creditors) && di < len(debtors) {
		credit := &creditors[ci]
		debt := &debtors[di]

		payment := math.Min(credit.amount, debt.amount)
		transfers = append(transfers, Transfer{
			From:   debt.id,
			To:     credit.id,
			Amount: round2(payment),
		})

		credit.amount -= payment
		debt.amount -= payment

		if credit.amount < epsilon {
			ci++
		}
		if debt.amount < epsilon {
			di++
		}
	}

	return transfers
}

// HasOutstanding reports whether a member carries a non-zero rounded balance.
// Callers use it to refuse member removal before the store's foreign key
// would reject it anyway.
func HasOutstanding(balances map[string]float64, memberID string) bool {
	return round2(balances[memberID]) != 0
}

func sortParties(ps []party) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].amount != ps[j].amount {
			return ps[i].amount > ps[j].amount
		}
		return ps[i].id < ps[j].id
	})
}

// round2 rounds to cent precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
