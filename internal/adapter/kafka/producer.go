package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/calculate-change/internal/core/domain"
	"github.com/niksmo/calculate-change/internal/core/port"
	"github.com/niksmo/calculate-change/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ReceiptProducer = (*Producer)(nil)

const OutcomeHeader = "outcome"

type ProducerClient interface {
	Close()
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// EncodeFn serializes a schema.ReceiptV1 into a record value.
type EncodeFn func(v any) ([]byte, error)

type Producer struct {
	cl     ProducerClient
	encode EncodeFn
}

func NewProducer(cl ProducerClient, encode EncodeFn) Producer {
	if cl == nil || encode == nil {
		panic("NewProducer: client and encode func are required") //develop mistake
	}
	return Producer{cl, encode}
}

func (p Producer) Close() {
	p.cl.Close()
	slog.Debug("producer is closed", "op", "Producer.Close")
}

// ProduceReceipt writes one record keyed by the receipt ID. The record
// timestamp is the issue time and the outcome travels as a header so that
// consumers can filter shortfalls without decoding the value.
func (p Producer) ProduceReceipt(
	ctx context.Context, receipt domain.Receipt,
) error {
	const op = "Producer.ProduceReceipt"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	v, err := p.encode(schema.ReceiptV1{
		ID:       receipt.ID,
		Total:    receipt.Total,
		Paid:     receipt.Paid,
		Outcome:  string(receipt.Outcome),
		Amount:   receipt.Amount,
		IssuedAt: receipt.IssuedAt,
	})
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	r := &kgo.Record{
		Key:       []byte(receipt.ID),
		Value:     v,
		Timestamp: receipt.IssuedAt,
		Headers: []kgo.RecordHeader{
			{Key: OutcomeHeader, Value: []byte(receipt.Outcome)},
		},
	}

	start := time.Now()
	if err := p.cl.ProduceSync(ctx, r).FirstErr(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info(
		"receipt produced",
		"id", receipt.ID, "procDurMs", time.Since(start).Milliseconds(),
	)
	return nil
}
