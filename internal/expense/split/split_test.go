package split

import (
	"errors"
	"math"
	"testing"
)

var threeMembers = []Member{
	{ID: "a", Name: "Alice"},
	{ID: "b", Name: "Bob"},
	{ID: "c", Name: "Carol"},
}

func shareSum(shares []Share) float64 {
	var sum float64
	for _, s := range shares {
		sum += s.AmountOwed
	}
	return math.Round(sum*100) / 100
}

func TestEqualStrategy(t *testing.T) {
	t.Run("repeating decimal still sums exactly", func(t *testing.T) {
		shares, err := (&EqualStrategy{}).Compute(100, threeMembers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := shareSum(shares); got != 100 {
			t.Errorf("shares sum to %v, want exactly 100", got)
		}
		if shares[0].AmountOwed != 33.34 {
			t.Errorf("first member gets %v, want 33.34 (remainder)", shares[0].AmountOwed)
		}
		for _, s := range shares[1:] {
			if s.AmountOwed != 33.33 {
				t.Errorf("member %s gets %v, want 33.33", s.MemberID, s.AmountOwed)
			}
		}
	})

	t.Run("even division has no remainder", func(t *testing.T) {
		shares, err := (&EqualStrategy{}).Compute(20, threeMembers[:2])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, s := range shares {
			if s.AmountOwed != 10 {
				t.Errorf("member %s gets %v, want 10", s.MemberID, s.AmountOwed)
			}
		}
	})

	t.Run("no participants", func(t *testing.T) {
		if _, err := (&EqualStrategy{}).Compute(10, nil); !errors.Is(err, ErrNoParticipants) {
			t.Errorf("got %v, want ErrNoParticipants", err)
		}
	})

	t.Run("non-positive total", func(t *testing.T) {
		if _, err := (&EqualStrategy{}).Compute(0, threeMembers); !errors.Is(err, ErrNonPositiveTotal) {
			t.Errorf("got %v, want ErrNonPositiveTotal", err)
		}
	})
}

func TestAmountStrategy(t *testing.T) {
	t.Run("amounts matching the total", func(t *testing.T) {
		s := &AmountStrategy{Inputs: map[string]string{"a": "60", "b": "40"}}
		shares, err := s.Compute(100, threeMembers[:2])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shares[0].AmountOwed != 60 || shares[1].AmountOwed != 40 {
			t.Errorf("got %v, want 60/40", shares)
		}
	})

	t.Run("non-numeric input counts as zero", func(t *testing.T) {
		s := &AmountStrategy{Inputs: map[string]string{"a": "100", "b": "oops"}}
		shares, err := s.Compute(100, threeMembers[:2])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shares[1].AmountOwed != 0 {
			t.Errorf("unparseable input produced %v, want 0", shares[1].AmountOwed)
		}
	})

	t.Run("mismatched sum is rejected with both figures", func(t *testing.T) {
		s := &AmountStrategy{Inputs: map[string]string{"a": "60", "b": "30"}}
		_, err := s.Compute(100, threeMembers[:2])
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if want := "amounts must sum to 100.00 (currently 90.00)"; verr.Error() != want {
			t.Errorf("message = %q, want %q", verr.Error(), want)
		}
	})
}

func TestPercentStrategy(t *testing.T) {
	t.Run("percentages under 100 are rejected", func(t *testing.T) {
		s := &PercentStrategy{Inputs: map[string]string{"a": "60", "b": "30"}}
		_, err := s.Compute(100, threeMembers[:2])
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if want := "percentages must sum to 100% (currently 90%)"; verr.Error() != want {
			t.Errorf("message = %q, want %q", verr.Error(), want)
		}
	})

	t.Run("valid percentages convert to amounts", func(t *testing.T) {
		s := &PercentStrategy{Inputs: map[string]string{"a": "62.5", "b": "37.5"}}
		shares, err := s.Compute(80, threeMembers[:2])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if shares[0].AmountOwed != 50 || shares[1].AmountOwed != 30 {
			t.Errorf("got %v, want 50/30", shares)
		}
	})
}

func TestForMode(t *testing.T) {
	for _, mode := range []Mode{ModeEqual, ModeAmount, ModePercent} {
		if _, err := ForMode(mode, nil); err != nil {
			t.Errorf("ForMode(%s) failed: %v", mode, err)
		}
	}
	if _, err := ForMode("halvsies", nil); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("got %v, want ErrUnknownMode", err)
	}
}

func TestItemizedStrategy(t *testing.T) {
	t.Run("shared item with proportional tax", func(t *testing.T) {
		s := NewItemized(
			[]Item{{Name: "Pizza", Price: 20}},
			map[int][]string{0: {"a", "b"}},
		)
		shares, err := s.Compute(24, threeMembers[:2])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 10 each from the pizza plus half of the 4 in tax.
		for _, sh := range shares {
			if sh.AmountOwed != 12 {
				t.Errorf("member %s owes %v, want 12", sh.MemberID, sh.AmountOwed)
			}
		}
	})

	t.Run("residual follows claimed proportion", func(t *testing.T) {
		s := NewItemized(
			[]Item{
				{Name: "Steak", Price: 30},
				{Name: "Soup", Price: 10},
			},
			map[int][]string{0: {"a"}, 1: {"b"}},
		)
		shares, err := s.Compute(44, threeMembers[:2])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Residual 4 splits 3:1 along subtotals 30:10.
		if shares[0].AmountOwed != 33 {
			t.Errorf("a owes %v, want 33", shares[0].AmountOwed)
		}
		if shares[1].AmountOwed != 11 {
			t.Errorf("b owes %v, want 11", shares[1].AmountOwed)
		}
	})

	t.Run("rounding remainder pinned to first participant", func(t *testing.T) {
		s := NewItemized(
			[]Item{{Name: "Platter", Price: 10}},
			map[int][]string{0: {"a", "b", "c"}},
		)
		shares, err := s.Compute(10, threeMembers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := shareSum(shares); got != 10 {
			t.Errorf("shares sum to %v, want exactly 10", got)
		}
		if shares[0].AmountOwed != 3.34 {
			t.Errorf("first claimant owes %v, want 3.34", shares[0].AmountOwed)
		}
	})

	t.Run("member with no claims gets no share", func(t *testing.T) {
		s := NewItemized(
			[]Item{{Name: "Wine", Price: 18}},
			map[int][]string{0: {"a"}},
		)
		shares, err := s.Compute(18, threeMembers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(shares) != 1 || shares[0].MemberID != "a" {
			t.Errorf("got %v, want a single share for member a", shares)
		}
	})

	t.Run("claimant outside the member list is rejected", func(t *testing.T) {
		s := NewItemized(
			[]Item{
				{Name: "Pizza", Price: 20},
				{Name: "Wine", Price: 10},
			},
			map[int][]string{0: {"a"}, 1: {"x"}},
		)
		_, err := s.Compute(30, threeMembers[:2])
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if want := `claimant "x" is not a participant`; verr.Error() != want {
			t.Errorf("message = %q, want %q", verr.Error(), want)
		}
	})

	t.Run("unassigned items are rejected with the count", func(t *testing.T) {
		s := NewItemized(
			[]Item{
				{Name: "Pizza", Price: 20},
				{Name: "Beer", Price: 6},
			},
			map[int][]string{0: {"a"}},
		)
		_, err := s.Compute(26, threeMembers)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("got %v, want ValidationError", err)
		}
		if want := "1 item(s) have no one assigned"; verr.Error() != want {
			t.Errorf("message = %q, want %q", verr.Error(), want)
		}
	})

	t.Run("no items", func(t *testing.T) {
		s := NewItemized(nil, nil)
		var verr *ValidationError
		if _, err := s.Compute(10, threeMembers); !errors.As(err, &verr) {
			t.Errorf("got %v, want ValidationError", err)
		}
	})
}
