package balance

import (
	"math"
	"testing"
)

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name  string
		group Group
		want  map[string]float64
	}{
		{
			name: "simple debt between two members",
			group: Group{
				MemberIDs: []string{"a", "b"},
				Expenses: []Expense{
					{
						PayerID: "a",
						Shares: []Share{
							{MemberID: "a", AmountOwed: 10},
							{MemberID: "b", AmountOwed: 10},
						},
					},
				},
			},
			want: map[string]float64{"a": 10, "b": -10},
		},
		{
			name: "settled shares contribute nothing",
			group: Group{
				MemberIDs: []string{"a", "b"},
				Expenses: []Expense{
					{
						PayerID: "a",
						Shares: []Share{
							{MemberID: "a", AmountOwed: 10},
							{MemberID: "b", AmountOwed: 10, IsSettled: true},
						},
					},
				},
			},
			want: map[string]float64{"a": 0, "b": 0},
		},
		{
			name: "payer self-share is skipped even when unsettled",
			group: Group{
				MemberIDs: []string{"a"},
				Expenses: []Expense{
					{
						PayerID: "a",
						Shares:  []Share{{MemberID: "a", AmountOwed: 25}},
					},
				},
			},
			want: map[string]float64{"a": 0},
		},
		{
			name: "triangle of debts nets out",
			group: Group{
				MemberIDs: []string{"a", "b", "c"},
				Expenses: []Expense{
					{PayerID: "b", Shares: []Share{{MemberID: "a", AmountOwed: 10}}},
					{PayerID: "c", Shares: []Share{{MemberID: "b", AmountOwed: 10}}},
					{PayerID: "a", Shares: []Share{{MemberID: "c", AmountOwed: 5}}},
				},
			},
			want: map[string]float64{"a": -5, "b": 0, "c": 5},
		},
		{
			name: "share referencing unknown member defaults from zero",
			group: Group{
				MemberIDs: []string{"a"},
				Expenses: []Expense{
					{PayerID: "a", Shares: []Share{{MemberID: "ghost", AmountOwed: 7}}},
				},
			},
			want: map[string]float64{"a": 7, "ghost": -7},
		},
		{
			name:  "empty group",
			group: Group{MemberIDs: []string{"a", "b"}},
			want:  map[string]float64{"a": 0, "b": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.group)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			for id, want := range tt.want {
				if math.Abs(got[id]-want) > 1e-9 {
					t.Errorf("balance[%s] = %v, want %v", id, got[id], want)
				}
			}

			// Conservation: balances always sum to zero.
			var sum float64
			for _, v := range got {
				sum += v
			}
			if math.Abs(sum) > 1e-9 {
				t.Errorf("balances sum to %v, want 0", sum)
			}
		})
	}
}

func TestComputeBalancesIsPure(t *testing.T) {
	group := Group{
		MemberIDs: []string{"a", "b", "c"},
		Expenses: []Expense{
			{
				PayerID: "a",
				Shares: []Share{
					{MemberID: "b", AmountOwed: 12.34},
					{MemberID: "c", AmountOwed: 5.55},
				},
			},
		},
	}

	first := ComputeBalances(group)
	second := ComputeBalances(group)

	for id, v := range first {
		if second[id] != v {
			t.Errorf("recomputation diverged for %s: %v vs %v", id, v, second[id])
		}
	}
}

func TestMinimizeTransactions(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]float64
		want     []Transfer
	}{
		{
			name:     "single debtor pays single creditor",
			balances: map[string]float64{"a": 10, "b": -10},
			want:     []Transfer{{From: "b", To: "a", Amount: 10}},
		},
		{
			name:     "triangle collapses to one payment",
			balances: map[string]float64{"a": -5, "b": 0, "c": 5},
			want:     []Transfer{{From: "a", To: "c", Amount: 5}},
		},
		{
			name:     "all zero yields no transfers",
			balances: map[string]float64{"a": 0, "b": 0},
			want:     nil,
		},
		{
			name:     "sub-cent residue treated as settled",
			balances: map[string]float64{"a": 0.004, "b": -0.004},
			want:     nil,
		},
		{
			name:     "largest debtor matched with largest creditor first",
			balances: map[string]float64{"a": 30, "b": 10, "c": -25, "d": -15},
			want: []Transfer{
				{From: "c", To: "a", Amount: 25},
				{From: "d", To: "a", Amount: 5},
				{From: "d", To: "b", Amount: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MinimizeTransactions(tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transfers %v, want %d", len(got), got, len(tt.want))
			}
			for i, want := range tt.want {
				if got[i].From != want.From || got[i].To != want.To {
					t.Errorf("transfer %d = %s->%s, want %s->%s", i, got[i].From, got[i].To, want.From, want.To)
				}
				if math.Abs(got[i].Amount-want.Amount) > 1e-9 {
					t.Errorf("transfer %d amount = %v, want %v", i, got[i].Amount, want.Amount)
				}
			}
		})
	}
}

// Applying every suggested transfer must drive every balance to zero, and
// the transfer count must stay under the creditors+debtors-1 bound.
func TestMinimizeTransactionsSettlesEverything(t *testing.T) {
	balances := map[string]float64{
		"a": 120.37,
		"b": -40.12,
		"c": -60.25,
		"d": 15.00,
		"e": -35.00,
	}

	transfers := MinimizeTransactions(balances)

	creditors, debtors := 0, 0
	for _, v := range balances {
		if v > 0 {
			creditors++
		} else if v < 0 {
			debtors++
		}
	}
	if max := creditors + debtors - 1; len(transfers) > max {
		t.Fatalf("emitted %d transfers, bound is %d", len(transfers), max)
	}

	remaining := make(map[string]float64, len(balances))
	for id, v := range balances {
		remaining[id] = v
	}
	for _, tr := range transfers {
		if tr.Amount <= 0 {
			t.Fatalf("non-positive transfer amount: %+v", tr)
		}
		remaining[tr.From] += tr.Amount
		remaining[tr.To] -= tr.Amount
	}
	for id, v := range remaining {
		if math.Abs(v) >= 0.01 {
			t.Errorf("member %s left with residual balance %v", id, v)
		}
	}
}

func TestHasOutstanding(t *testing.T) {
	balances := map[string]float64{"a": 12.5, "b": -12.5, "c": 0, "d": 0.001}

	if !HasOutstanding(balances, "a") {
		t.Error("creditor should count as outstanding")
	}
	if !HasOutstanding(balances, "b") {
		t.Error("debtor should count as outstanding")
	}
	if HasOutstanding(balances, "c") {
		t.Error("zero balance should not count as outstanding")
	}
	if HasOutstanding(balances, "d") {
		t.Error("sub-cent residue should round away")
	}
	if HasOutstanding(balances, "missing") {
		t.Error("unknown member should default to zero")
	}
}
