package split

// EqualStrategy divides the total evenly among all participants. The cent
// rounding remainder lands on the first member so the shares always sum to
// the total exactly, even for repeating decimals.
type EqualStrategy struct{}

// Mode returns the mode identifier.
func (s *EqualStrategy) Mode() Mode {
	return ModeEqual
}

// Compute assigns each member an even share of the total.
func (s *EqualStrategy) Compute(totalAmount float64, members []Member) ([]Share, error) {
	if err := validateCommon(totalAmount, members); err != nil {
		return nil, err
	}

	each := round2(totalAmount / float64(len(members)))
	remainder := round2(totalAmount - each*float64(len(members)))

	shares := make([]Share, len(members))
	for i, m := range members {
		amount := each
		if i == 0 {
			amount = round2(each + remainder)
		}
		shares[i] = Share{MemberID: m.ID, AmountOwed: amount}
	}

	return shares, nil
}
