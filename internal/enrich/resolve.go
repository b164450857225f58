package enrich

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"divvy/internal/expense/split"
)

// selfToken is how speakers refer to themselves in transcripts. It maps to
// the group's self member, never to a member who happens to share the name.
const selfToken = "me"

// ErrUnknownName reports a claimant or payer name that matches no group
// member. The caller must fix the transcript or add the member first.
var ErrUnknownName = errors.New("name does not match any group member")

// Resolved is an expense draft with every name replaced by a member id,
// ready for the itemized split path.
type Resolved struct {
	PayerID     string
	TotalAmount float64
	Items       []split.Item
	Claims      map[int][]string
}

// Resolve maps the draft's payer and claimant names onto group members.
// Matching is case-insensitive on the trimmed name; the first-person token
// resolves to the group's self member. When the draft states no total, the
// item prices are summed instead.
func Resolve(draft *ExpenseDraft, members []split.Member, selfMemberID string) (*Resolved, error) {
	index := make(map[string]string, len(members)+1)
	for _, m := range members {
		index[strings.ToLower(strings.TrimSpace(m.Name))] = m.ID
	}
	if selfMemberID != "" {
		index[selfToken] = selfMemberID
	}

	lookup := func(name string) (string, error) {
		id, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownName, name)
		}
		return id, nil
	}

	payerID, err := lookup(draft.PayerName)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		PayerID: payerID,
		Items:   make([]split.Item, len(draft.Items)),
		Claims:  make(map[int][]string, len(draft.Items)),
	}

	var itemSum float64
	for i, item := range draft.Items {
		resolved.Items[i] = split.Item{Name: item.Name, Price: item.Price}
		itemSum += item.Price

		seen := make(map[string]bool, len(item.Claimants))
		for _, name := range item.Claimants {
			id, err := lookup(name)
			if err != nil {
				return nil, err
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			resolved.Claims[i] = append(resolved.Claims[i], id)
		}
	}

	resolved.TotalAmount = draft.TotalAmount
	if resolved.TotalAmount <= 0 {
		resolved.TotalAmount = math.Round(itemSum*100) / 100
	}

	return resolved, nil
}
