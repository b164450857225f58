package group

import (
	"errors"
	"testing"
)

func TestPairOutcome(t *testing.T) {
	tests := []struct {
		name       string
		owedByFrom float64
		owedByTo   float64
		wantNet    float64
		wantOK     bool
	}{
		{
			name:   "nothing owed either way",
			wantOK: false,
		},
		{
			name:       "one-sided debt",
			owedByFrom: 10,
			wantNet:    10,
			wantOK:     true,
		},
		{
			// Mutual equal debts still settle; they just net to zero.
			name:       "mutual debts cancel exactly",
			owedByFrom: 10,
			owedByTo:   10,
			wantNet:    0,
			wantOK:     true,
		},
		{
			name:       "reverse direction nets negative",
			owedByFrom: 2,
			owedByTo:   5,
			wantNet:    -3,
			wantOK:     true,
		},
		{
			name:       "net is rounded to cents",
			owedByFrom: 10.105,
			owedByTo:   0.005,
			wantNet:    10.1,
			wantOK:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, ok := pairOutcome(tt.owedByFrom, tt.owedByTo)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if net != tt.wantNet {
				t.Errorf("net = %v, want %v", net, tt.wantNet)
			}
		})
	}
}

func TestRemovable(t *testing.T) {
	tests := []struct {
		name      string
		unsettled int
		balances  map[string]float64
		wantErr   bool
	}{
		{
			name:     "no shares at all",
			balances: map[string]float64{"m": 0},
		},
		{
			// Settled shares carry no balance and must not block leaving.
			name:     "only settled shares remain",
			balances: map[string]float64{"m": 0},
		},
		{
			name:      "unsettled share blocks",
			unsettled: 1,
			balances:  map[string]float64{"m": 0},
			wantErr:   true,
		},
		{
			name:     "positive balance blocks",
			balances: map[string]float64{"m": 12.5},
			wantErr:  true,
		},
		{
			name:     "sub-cent balance is treated as settled",
			balances: map[string]float64{"m": 0.004},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := removable(tt.unsettled, tt.balances, "m")
			if tt.wantErr {
				if !errors.Is(err, ErrMemberHasOutstanding) {
					t.Errorf("got %v, want ErrMemberHasOutstanding", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
