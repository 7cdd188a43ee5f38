package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/niksmo/calculate-change/internal/core/port"
	"github.com/niksmo/calculate-change/pkg/amount"
)

const Usage = "Usage: calculate_change total amount"

const (
	ExitOK           = 0
	ExitUsage        = 1
	ExitInsufficient = 2
)

// ExitError carries the exit status of the process. Message, when set, is
// written to stderr.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Message
}

type Calculator struct {
	out   io.Writer
	parse func(string) (float64, error)
}

// NewCalculator writes results to out. In strict mode amounts must be
// valid numbers, otherwise unparsable text counts as zero.
func NewCalculator(strict bool, out io.Writer) Calculator {
	parse := func(s string) (float64, error) {
		return amount.Parse(s), nil
	}
	if strict {
		parse = amount.ParseStrict
	}
	return Calculator{out: out, parse: parse}
}

// Amounts reads total and paid from the first two arguments. Extra
// arguments are ignored.
func (c Calculator) Amounts(args []string) (total, paid float64, err error) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, Usage)
		return 0, 0, &ExitError{Code: ExitUsage}
	}

	total, err = c.parse(args[0])
	if err != nil {
		return 0, 0, &ExitError{Code: ExitUsage, Message: "invalid total: " + err.Error()}
	}

	paid, err = c.parse(args[1])
	if err != nil {
		return 0, 0, &ExitError{Code: ExitUsage, Message: "invalid paid: " + err.Error()}
	}

	return total, paid, nil
}

// Settle prints the result line. A receipt that could not be published is
// logged and does not change the outcome.
func (c Calculator) Settle(
	ctx context.Context, settler port.ReceiptSettler, total, paid float64,
) error {
	const op = "Calculator.Settle"
	log := slog.With("op", op)

	r, err := settler.Settle(ctx, total, paid)
	if err != nil {
		log.Error("failed to publish receipt", "id", r.ID, "err", err)
	}

	fmt.Fprintln(c.out, r)

	if r.Insufficient() {
		return &ExitError{Code: ExitInsufficient}
	}
	return nil
}
