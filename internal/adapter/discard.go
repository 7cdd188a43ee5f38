package adapter

import (
	"context"
	"log/slog"

	"github.com/niksmo/calculate-change/internal/core/domain"
	"github.com/niksmo/calculate-change/internal/core/port"
)

var _ port.ReceiptProducer = DiscardProducer{}

// DiscardProducer is used when no broker is configured.
type DiscardProducer struct{}

func (DiscardProducer) ProduceReceipt(
	_ context.Context, r domain.Receipt,
) error {
	const op = "DiscardProducer.ProduceReceipt"
	slog.With("op", op).Debug("receipt publishing disabled", "id", r.ID)
	return nil
}
