//go:build !integration

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/calculate-change/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	receipts []domain.Receipt
	deadline time.Time
	err      error
}

func (p *fakeProducer) ProduceReceipt(
	ctx context.Context, r domain.Receipt,
) error {
	p.receipts = append(p.receipts, r)
	p.deadline, _ = ctx.Deadline()
	return p.err
}

func TestService(t *testing.T) {
	t.Run("SettleProducesReceipt", func(t *testing.T) {
		p := &fakeProducer{}
		s := New(p, time.Second)

		r, err := s.Settle(context.Background(), 10, 7.5)
		require.NoError(t, err)
		require.Len(t, p.receipts, 1)
		assert.Equal(t, r, p.receipts[0])
		assert.Equal(t, domain.OutcomeShortfall, r.Outcome)
		assert.Equal(t, 2.5, r.Amount)
	})

	t.Run("PublishIsBounded", func(t *testing.T) {
		p := &fakeProducer{}
		s := New(p, 50*time.Millisecond)

		start := time.Now()
		_, err := s.Settle(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.WithinDuration(t, start.Add(50*time.Millisecond), p.deadline, time.Second)
	})

	t.Run("DefaultTimeout", func(t *testing.T) {
		s := New(&fakeProducer{}, 0)
		assert.Equal(t, defaultPublishTimeout, s.publishTimeout)
	})

	t.Run("ProduceErrorKeepsReceipt", func(t *testing.T) {
		produceErr := errors.New("broker down")
		p := &fakeProducer{err: produceErr}
		s := New(p, time.Second)

		r, err := s.Settle(context.Background(), 10, 15)
		require.ErrorIs(t, err, produceErr)
		assert.Contains(t, err.Error(), "Service.Settle")
		assert.Equal(t, "Change: 5.00", r.String())
	})
}
