package schema

import (
	"fmt"
	"sync"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

const ReceiptSchemaTextV1 = `{
	"type": "record",
	"namespace": "transactions",
	"name": "change_receipt",
	"fields" : [
		{"name": "id", "type": "string"},
		{"name": "total", "type": "double"},
		{"name": "paid", "type": "double"},
		{"name": "outcome", "type": {
			"type": "enum",
			"name": "outcome",
			"symbols": ["CHANGE", "SHORTFALL"]
		}},
		{"name": "amount", "type": "double"},
		{"name": "issued_at", "type": {
			"type": "long",
			"logicalType": "timestamp-millis"
		}}
	]
}`

type ReceiptV1 struct {
	ID       string    `avro:"id"`
	Total    float64   `avro:"total"`
	Paid     float64   `avro:"paid"`
	Outcome  string    `avro:"outcome"`
	Amount   float64   `avro:"amount"`
	IssuedAt time.Time `avro:"issued_at"`
}

var ReceiptSchemaV1 = sr.Schema{
	Type:   sr.TypeAvro,
	Schema: ReceiptSchemaTextV1,
}

var receiptV1Avro = sync.OnceValue(func() avro.Schema {
	s, err := avro.Parse(ReceiptSchemaTextV1)
	if err != nil {
		err = fmt.Errorf(
			"failed to parse ReceiptSchemaTextV1, contact with package dev team: %w",
			err,
		)
		panic(err)
	}
	return s
})

func ReceiptV1Avro() avro.Schema {
	return receiptV1Avro()
}

func ReceiptV1AvroEncodeFn() func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(ReceiptV1Avro(), v)
	}
}

func ReceiptV1AvroDecodeFn() func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(ReceiptV1Avro(), data, v)
	}
}
