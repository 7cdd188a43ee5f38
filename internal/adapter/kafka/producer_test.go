//go:build !integration

package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/niksmo/calculate-change/internal/core/domain"
	"github.com/niksmo/calculate-change/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeClient struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (c *fakeClient) Close() { c.closed = true }

func (c *fakeClient) ProduceSync(
	_ context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	var res kgo.ProduceResults
	for _, r := range rs {
		c.records = append(c.records, r)
		res = append(res, kgo.ProduceResult{Record: r, Err: c.err})
	}
	return res
}

func TestProducer(t *testing.T) {
	receipt := domain.NewReceipt(10, 15)

	t.Run("ProduceReceipt", func(t *testing.T) {
		cl := &fakeClient{}
		p := NewProducer(cl, schema.ReceiptV1AvroEncodeFn())

		require.NoError(t, p.ProduceReceipt(context.Background(), receipt))
		require.Len(t, cl.records, 1)
		rec := cl.records[0]
		assert.Equal(t, receipt.ID, string(rec.Key))
		assert.True(t, receipt.IssuedAt.Equal(rec.Timestamp))
		require.Len(t, rec.Headers, 1)
		assert.Equal(t, OutcomeHeader, rec.Headers[0].Key)
		assert.Equal(t, "CHANGE", string(rec.Headers[0].Value))

		var got schema.ReceiptV1
		require.NoError(t, schema.ReceiptV1AvroDecodeFn()(cl.records[0].Value, &got))
		assert.Equal(t, receipt.ID, got.ID)
		assert.Equal(t, "CHANGE", got.Outcome)
		assert.Equal(t, 5.0, got.Amount)
		assert.True(t, receipt.IssuedAt.Equal(got.IssuedAt))
	})

	t.Run("ProduceError", func(t *testing.T) {
		brokerErr := errors.New("not leader for partition")
		cl := &fakeClient{err: brokerErr}
		p := NewProducer(cl, schema.ReceiptV1AvroEncodeFn())

		err := p.ProduceReceipt(context.Background(), receipt)
		require.ErrorIs(t, err, brokerErr)
		assert.Contains(t, err.Error(), "Producer.ProduceReceipt")
	})

	t.Run("EncodeError", func(t *testing.T) {
		encodeErr := errors.New("schema mismatch")
		cl := &fakeClient{}
		p := NewProducer(cl, func(any) ([]byte, error) { return nil, encodeErr })

		err := p.ProduceReceipt(context.Background(), receipt)
		require.ErrorIs(t, err, encodeErr)
		assert.Contains(t, err.Error(), "encode")
		assert.Empty(t, cl.records)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		cl := &fakeClient{}
		p := NewProducer(cl, schema.ReceiptV1AvroEncodeFn())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := p.ProduceReceipt(ctx, receipt)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, cl.records)
	})

	t.Run("Close", func(t *testing.T) {
		cl := &fakeClient{}
		p := NewProducer(cl, schema.ReceiptV1AvroEncodeFn())
		p.Close()
		assert.True(t, cl.closed)
	})

	t.Run("ShortfallHeader", func(t *testing.T) {
		cl := &fakeClient{}
		p := NewProducer(cl, schema.ReceiptV1AvroEncodeFn())

		require.NoError(t, p.ProduceReceipt(
			context.Background(), domain.NewReceipt(10, 7.5),
		))
		require.Len(t, cl.records, 1)
		assert.Equal(t, "SHORTFALL", string(cl.records[0].Headers[0].Value))
	})

	t.Run("MissingDependencies", func(t *testing.T) {
		require.Panics(t, func() {
			NewProducer(nil, schema.ReceiptV1AvroEncodeFn())
		})
		require.Panics(t, func() {
			NewProducer(&fakeClient{}, nil)
		})
	})
}

func TestClientOpts(t *testing.T) {
	t.Run("Plain", func(t *testing.T) {
		opts, err := ClientOpts(ClientConfig{
			SeedBrokers: []string{"localhost:9092"},
			Topic:       "change-receipts",
		})
		require.NoError(t, err)
		assert.Len(t, opts, 3)
	})

	t.Run("SASL", func(t *testing.T) {
		opts, err := ClientOpts(ClientConfig{
			SeedBrokers: []string{"localhost:9092"},
			Topic:       "change-receipts",
			User:        "till",
			Pass:        "secret",
		})
		require.NoError(t, err)
		assert.Len(t, opts, 4)
	})

	t.Run("MissingBrokers", func(t *testing.T) {
		_, err := ClientOpts(ClientConfig{Topic: "change-receipts"})
		require.ErrorContains(t, err, "seed brokers not set")
	})

	t.Run("MissingTopic", func(t *testing.T) {
		_, err := ClientOpts(ClientConfig{SeedBrokers: []string{"localhost:9092"}})
		require.ErrorContains(t, err, "topic not set")
	})

	t.Run("BadCARoot", func(t *testing.T) {
		_, err := ClientOpts(ClientConfig{
			SeedBrokers: []string{"localhost:9092"},
			Topic:       "change-receipts",
			CARootCert:  "/nonexistent/ca.pem",
		})
		require.ErrorContains(t, err, "failed to read CARootPEMFile")
	})
}
