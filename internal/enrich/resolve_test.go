package enrich

import (
	"errors"
	"testing"

	"divvy/internal/expense/split"
)

var groupMembers = []split.Member{
	{ID: "self-id", Name: "Me"},
	{ID: "alice-id", Name: "Alice"},
	{ID: "bob-id", Name: "Bob"},
}

func TestResolve(t *testing.T) {
	draft := &ExpenseDraft{
		Description: "Dinner",
		PayerName:   "me",
		TotalAmount: 44,
		Items: []DraftItem{
			{Name: "Ramen", Price: 30, Claimants: []string{"ALICE", "me"}},
			{Name: "Beer", Price: 10, Claimants: []string{"bob", "Bob"}},
		},
	}

	resolved, err := Resolve(draft, groupMembers, "self-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolved.PayerID != "self-id" {
		t.Errorf("payer = %q, want self-id", resolved.PayerID)
	}
	if resolved.TotalAmount != 44 {
		t.Errorf("total = %v, want 44", resolved.TotalAmount)
	}
	if len(resolved.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(resolved.Items))
	}

	ramen := resolved.Claims[0]
	if len(ramen) != 2 || ramen[0] != "alice-id" || ramen[1] != "self-id" {
		t.Errorf("ramen claimants = %v, want [alice-id self-id]", ramen)
	}
	// Duplicate claimant names collapse to one claim.
	if beer := resolved.Claims[1]; len(beer) != 1 || beer[0] != "bob-id" {
		t.Errorf("beer claimants = %v, want [bob-id]", beer)
	}
}

func TestResolveDefaultsTotalFromItems(t *testing.T) {
	draft := &ExpenseDraft{
		PayerName: "Alice",
		Items: []DraftItem{
			{Name: "Coffee", Price: 3.5, Claimants: []string{"Alice"}},
			{Name: "Cake", Price: 4.25, Claimants: []string{"Bob"}},
		},
	}

	resolved, err := Resolve(draft, groupMembers, "self-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.TotalAmount != 7.75 {
		t.Errorf("total = %v, want 7.75 (sum of items)", resolved.TotalAmount)
	}
}

func TestResolveUnknownName(t *testing.T) {
	draft := &ExpenseDraft{
		PayerName: "Alice",
		Items: []DraftItem{
			{Name: "Pizza", Price: 20, Claimants: []string{"Charlie"}},
		},
	}

	_, err := Resolve(draft, groupMembers, "self-id")
	if !errors.Is(err, ErrUnknownName) {
		t.Fatalf("got %v, want ErrUnknownName", err)
	}
}

func TestResolveSelfTokenWithoutSelfMember(t *testing.T) {
	draft := &ExpenseDraft{PayerName: "me"}

	_, err := Resolve(draft, groupMembers[1:], "")
	if !errors.Is(err, ErrUnknownName) {
		t.Fatalf("got %v, want ErrUnknownName", err)
	}
}
