package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/calculate-change/pkg/amount"
)

type Outcome string

const (
	OutcomeChange    Outcome = "CHANGE"
	OutcomeShortfall Outcome = "SHORTFALL"
)

// Receipt is the result of settling one payment against the amount due.
type Receipt struct {
	ID       string
	Total    float64
	Paid     float64
	Outcome  Outcome
	Amount   float64
	IssuedAt time.Time
}

// NewReceipt compares paid with total. Anything that is not strictly
// underpaid, NaN comparisons included, settles as change.
func NewReceipt(total, paid float64) Receipt {
	r := Receipt{
		ID:       uuid.NewString(),
		Total:    total,
		Paid:     paid,
		IssuedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if paid < total {
		r.Outcome = OutcomeShortfall
		r.Amount = total - paid
		return r
	}

	r.Outcome = OutcomeChange
	r.Amount = paid - total
	return r
}

func (r Receipt) Insufficient() bool {
	return r.Outcome == OutcomeShortfall
}

// String returns the single output line without the trailing newline.
func (r Receipt) String() string {
	if r.Insufficient() {
		return fmt.Sprintf("Insufficient: need %s more", amount.Format(r.Amount))
	}
	return fmt.Sprintf("Change: %s", amount.Format(r.Amount))
}
