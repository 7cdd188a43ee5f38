package port

import (
	"context"

	"github.com/niksmo/calculate-change/internal/core/domain"
)

type ReceiptProducer interface {
	ProduceReceipt(context.Context, domain.Receipt) error
}

type ReceiptSettler interface {
	Settle(ctx context.Context, total, paid float64) (domain.Receipt, error)
}
