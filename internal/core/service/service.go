package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/calculate-change/internal/core/domain"
	"github.com/niksmo/calculate-change/internal/core/port"
)

var _ port.ReceiptSettler = Service{}

const defaultPublishTimeout = 5 * time.Second

type Service struct {
	producer       port.ReceiptProducer
	publishTimeout time.Duration
}

// New returns a Service that hands every receipt to producer. A
// non-positive timeout falls back to the default one.
func New(producer port.ReceiptProducer, publishTimeout time.Duration) Service {
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}
	return Service{producer, publishTimeout}
}

// Settle builds the receipt for total and paid and publishes it. The
// receipt is valid even when the returned error is not nil.
func (s Service) Settle(
	ctx context.Context, total, paid float64,
) (domain.Receipt, error) {
	const op = "Service.Settle"
	log := slog.With("op", op)

	r := domain.NewReceipt(total, paid)
	log.Debug(
		"receipt settled",
		"id", r.ID, "outcome", r.Outcome, "amount", r.Amount,
	)

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.producer.ProduceReceipt(ctx, r); err != nil {
		return r, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}
