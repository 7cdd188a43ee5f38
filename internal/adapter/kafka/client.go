package kafka

import (
	"errors"
	"fmt"

	"github.com/niksmo/calculate-change/pkg/dialer"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/scram"
)

type ClientConfig struct {
	SeedBrokers []string
	Topic       string
	CARootCert  string
	User        string
	Pass        string
}

// ClientOpts returns producer options for kgo.NewClient. TLS is enabled by
// CARootCert and SCRAM-SHA-512 by User.
func ClientOpts(cfg ClientConfig) ([]kgo.Opt, error) {
	const op = "kafka.ClientOpts"

	if len(cfg.SeedBrokers) == 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.New("seed brokers not set"))
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("topic not set"))
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.SeedBrokers...),
		kgo.DefaultProduceTopicAlways(),
		kgo.DefaultProduceTopic(cfg.Topic),
	}

	if cfg.CARootCert != "" {
		d, err := dialer.TLS(cfg.CARootCert)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		opts = append(opts, kgo.Dialer(d.DialContext))
	}

	if cfg.User != "" {
		auth := scram.Auth{
			User: cfg.User,
			Pass: cfg.Pass,
		}
		opts = append(opts, kgo.SASL(auth.AsSha512Mechanism()))
	}

	return opts, nil
}
