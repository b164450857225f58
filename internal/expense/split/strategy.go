// Package split computes each participant's owed amount for a new expense.
// It runs once at creation time; the persisted shares are what the balance
// derivation later reads back, so every strategy guarantees the shares sum
// to the expense total at cent precision (itemized splits excepted when the
// stated total is below the item sum, see ItemizedStrategy).
package split

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Mode identifies a split strategy.
type Mode string

const (
	ModeEqual    Mode = "equal"
	ModeAmount   Mode = "amount"
	ModePercent  Mode = "percent"
	ModeItemized Mode = "itemized"
)

// Member is a participant in the split.
type Member struct {
	ID   string
	Name string
}

// Share is one member's computed portion of the expense.
type Share struct {
	MemberID   string  `json:"member_id"`
	AmountOwed float64 `json:"amount_owed"`
}

// Strategy computes shares for one split mode.
type Strategy interface {
	// Compute returns the owed amount per participating member.
	Compute(totalAmount float64, members []Member) ([]Share, error)

	// Mode returns the mode identifier for this strategy.
	Mode() Mode
}

// ValidationError reports user-correctable input problems. It is surfaced
// verbatim to the caller and never retried.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Common validation failures shared by all strategies.
var (
	ErrNoParticipants   = &ValidationError{msg: "select at least one participant"}
	ErrNonPositiveTotal = &ValidationError{msg: "total must be greater than zero"}

	// ErrUnknownMode is a configuration error, not user input.
	ErrUnknownMode = errors.New("unknown split mode")
)

// ForMode builds the strategy for one of the per-member input modes. The
// inputs map carries each member's raw form value (an amount or a
// percentage, depending on the mode) and is ignored for equal splits.
// Itemized splits carry structured item data instead and are built with
// NewItemized.
func ForMode(mode Mode, inputs map[string]string) (Strategy, error) {
	switch mode {
	case ModeEqual:
		return &EqualStrategy{}, nil
	case ModeAmount:
		return &AmountStrategy{Inputs: inputs}, nil
	case ModePercent:
		return &PercentStrategy{Inputs: inputs}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func validateCommon(totalAmount float64, members []Member) error {
	if len(members) == 0 {
		return ErrNoParticipants
	}
	if totalAmount <= 0 {
		return ErrNonPositiveTotal
	}
	return nil
}

// parseInput parses a raw form value as a decimal, treating absent or
// non-numeric input as zero.
func parseInput(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

// round2 rounds to cent precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
