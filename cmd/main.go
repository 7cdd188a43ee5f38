package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/niksmo/calculate-change/config"
	"github.com/niksmo/calculate-change/internal/adapter"
	"github.com/niksmo/calculate-change/internal/adapter/kafka"
	"github.com/niksmo/calculate-change/internal/cli"
	"github.com/niksmo/calculate-change/internal/core/port"
	"github.com/niksmo/calculate-change/internal/core/service"
	"github.com/niksmo/calculate-change/pkg/dialer"
	"github.com/niksmo/calculate-change/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sr"
)

func main() {
	sigCtx, cancel := signalContext()
	err := run(sigCtx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(exitCode(err, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(args, stdout, stderr)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return nil
		}
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}

	initLogger(stderr, cfg.LogLevel)
	slog.Debug("application is started")

	calc := cli.NewCalculator(cfg.Strict, stdout)
	total, paid, err := calc.Amounts(cfg.Args)
	if err != nil {
		return err
	}

	producer, closeProducer := createProducer(ctx, cfg)
	defer closeProducer()

	svc := service.New(producer, cfg.Broker.PublishTimeout)
	err = calc.Settle(ctx, svc, total, paid)
	slog.Debug("application is stopped")
	return err
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return cli.ExitOK
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(stderr, exitErr.Message)
		}
		return exitErr.Code
	}

	fmt.Fprintln(stderr, err)
	return cli.ExitUsage
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(
		context.Background(),
		syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
}

func initLogger(w io.Writer, level slog.Leveler) {
	opts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
}

// createProducer falls back to discarding receipts when publishing is off
// or cannot be set up, the calculation never depends on the broker.
func createProducer(
	ctx context.Context, cfg config.Config,
) (port.ReceiptProducer, func()) {
	const op = "Main.createProducer"
	log := slog.With("op", op)

	discard := func() (port.ReceiptProducer, func()) {
		return adapter.DiscardProducer{}, func() {}
	}

	if !cfg.PublishEnabled() {
		return discard()
	}

	cl, err := createKafkaClient(cfg)
	if err != nil {
		log.Error("receipt publishing disabled", "err", err)
		return discard()
	}

	encodeFn, err := createEncodeFn(ctx, cfg)
	if err != nil {
		cl.Close()
		log.Error("receipt publishing disabled", "err", err)
		return discard()
	}

	producer := kafka.NewProducer(cl, encodeFn)
	return producer, producer.Close
}

func createKafkaClient(cfg config.Config) (*kgo.Client, error) {
	const op = "Main.createKafkaClient"

	opts, err := kafka.ClientOpts(kafka.ClientConfig{
		SeedBrokers: cfg.Broker.SeedBrokers,
		Topic:       cfg.Broker.Topic,
		CARootCert:  cfg.Broker.CARootCert,
		User:        cfg.Broker.User,
		Pass:        cfg.Broker.Pass,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cl, nil
}

// createEncodeFn uses the schema registry wire format when a registry is
// configured and bare avro otherwise.
func createEncodeFn(
	ctx context.Context, cfg config.Config,
) (func(v any) ([]byte, error), error) {
	if len(cfg.Broker.SchemaRegistryURLs) == 0 {
		return schema.ReceiptV1AvroEncodeFn(), nil
	}

	serde, err := createSerdeSR(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return serde.Encode, nil
}

func createSerdeSR(
	ctx context.Context, cfg config.Config,
) (*sr.Serde, error) {
	const op = "Main.createSerdeSR"

	opts := []sr.ClientOpt{sr.URLs(cfg.Broker.SchemaRegistryURLs...)}

	if cfg.Broker.CARootCert != "" {
		tlsConfig, err := dialer.TLSConfig(cfg.Broker.CARootCert)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, sr.DialTLSConfig(tlsConfig))
	}

	if cfg.Broker.User != "" {
		opts = append(opts, sr.BasicAuth(cfg.Broker.User, cfg.Broker.Pass))
	}

	cl, err := sr.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Broker.PublishTimeout)
	defer cancel()

	ss, err := cl.CreateSchema(
		ctx, cfg.Broker.Topic+"-value", schema.ReceiptSchemaV1,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serde := new(sr.Serde)
	serde.Register(
		ss.ID,
		schema.ReceiptV1{},
		sr.EncodeFn(schema.ReceiptV1AvroEncodeFn()),
		sr.DecodeFn(schema.ReceiptV1AvroDecodeFn()),
	)
	return serde, nil
}
