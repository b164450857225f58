package split

// Item is a line item from a scanned receipt or a parsed voice transcript.
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ItemizedStrategy splits per line item instead of per member. Each item's
// price is divided evenly among the members who claimed it; any residual
// between the expense total and the item sum (tax, tip, fees) is then
// distributed in proportion to each member's claimed subtotal.
//
// When the stated total is below the item sum the residual is floored at
// zero, so shares sum to the item total rather than the stated one. Every
// item must have at least one claimant and every claimant must be one of
// the participating members before shares can be finalized; the validation
// happens here rather than at save time, so the proportional base always
// covers the full item sum and no claimed amount can land on the wrong
// member.
type ItemizedStrategy struct {
	Items []Item

	// Claims maps item index to the member ids who claimed that item.
	Claims map[int][]string
}

// NewItemized builds an itemized strategy from items and their claims.
func NewItemized(items []Item, claims map[int][]string) *ItemizedStrategy {
	return &ItemizedStrategy{Items: items, Claims: claims}
}

// Mode returns the mode identifier.
func (s *ItemizedStrategy) Mode() Mode {
	return ModeItemized
}

// Compute sums each member's item shares and allocates the residual
// proportionally. The cent rounding remainder lands on the first
// participating member so the shares sum exactly.
func (s *ItemizedStrategy) Compute(totalAmount float64, members []Member) ([]Share, error) {
	if err := validateCommon(totalAmount, members); err != nil {
		return nil, err
	}
	if len(s.Items) == 0 {
		return nil, validationf("at least one item is required")
	}

	unassigned := 0
	for i := range s.Items {
		if len(s.Claims[i]) == 0 {
			unassigned++
		}
	}
	if unassigned > 0 {
		return nil, validationf("%d item(s) have no one assigned", unassigned)
	}

	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}
	for i := range s.Items {
		for _, memberID := range s.Claims[i] {
			if !known[memberID] {
				return nil, validationf("claimant %q is not a participant", memberID)
			}
		}
	}

	subtotals := make(map[string]float64, len(members))
	var itemSum float64
	for i, item := range s.Items {
		claimants := s.Claims[i]
		perClaimant := item.Price / float64(len(claimants))
		for _, memberID := range claimants {
			subtotals[memberID] += perClaimant
		}
		itemSum += item.Price
	}

	residual := totalAmount - itemSum
	if residual < 0 {
		residual = 0
	}

	var shares []Share
	var sum float64
	for _, m := range members {
		subtotal := subtotals[m.ID]
		if subtotal == 0 {
			continue
		}
		amount := round2(subtotal + residual*subtotal/itemSum)
		shares = append(shares, Share{MemberID: m.ID, AmountOwed: amount})
		sum += amount
	}

	if len(shares) == 0 {
		return nil, validationf("no participant claimed any item")
	}

	// Pin the rounding remainder so the shares sum to what was allocated.
	allocated := round2(itemSum + residual)
	if remainder := round2(allocated - round2(sum)); remainder != 0 {
		shares[0].AmountOwed = round2(shares[0].AmountOwed + remainder)
	}

	return shares, nil
}
