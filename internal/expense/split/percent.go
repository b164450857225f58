package split

import "math"

// PercentStrategy takes a percentage per member from raw form input.
// Percentages must sum to 100 within 0.01; each member then owes their
// percentage of the total, rounded to cents.
type PercentStrategy struct {
	// Inputs maps member id to the raw percentage string entered for them.
	Inputs map[string]string
}

// Mode returns the mode identifier.
func (s *PercentStrategy) Mode() Mode {
	return ModePercent
}

// Compute converts each member's percentage into an owed amount.
func (s *PercentStrategy) Compute(totalAmount float64, members []Member) ([]Share, error) {
	if err := validateCommon(totalAmount, members); err != nil {
		return nil, err
	}

	percents := make([]float64, len(members))
	var totalPct float64
	for i, m := range members {
		percents[i] = parseInput(s.Inputs[m.ID])
		totalPct += percents[i]
	}
	totalPct = round2(totalPct)

	if math.Abs(totalPct-100) > 0.01 {
		return nil, validationf("percentages must sum to 100%% (currently %g%%)", totalPct)
	}

	shares := make([]Share, len(members))
	for i, m := range members {
		shares[i] = Share{
			MemberID:   m.ID,
			AmountOwed: round2(percents[i] / 100 * totalAmount),
		}
	}

	return shares, nil
}
