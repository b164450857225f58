package split

import "math"

// AmountStrategy takes an exact amount per member from raw form input.
// Missing or non-numeric input counts as zero, and the parsed amounts must
// sum to the expense total within a cent.
type AmountStrategy struct {
	// Inputs maps member id to the raw amount string entered for them.
	Inputs map[string]string
}

// Mode returns the mode identifier.
func (s *AmountStrategy) Mode() Mode {
	return ModeAmount
}

// Compute returns each member's entered amount, rounded to cents.
func (s *AmountStrategy) Compute(totalAmount float64, members []Member) ([]Share, error) {
	if err := validateCommon(totalAmount, members); err != nil {
		return nil, err
	}

	shares := make([]Share, len(members))
	var sum float64
	for i, m := range members {
		amount := round2(parseInput(s.Inputs[m.ID]))
		shares[i] = Share{MemberID: m.ID, AmountOwed: amount}
		sum += amount
	}
	sum = round2(sum)

	if math.Abs(sum-totalAmount) > 0.01 {
		return nil, validationf("amounts must sum to %.2f (currently %.2f)", totalAmount, sum)
	}

	return shares, nil
}
