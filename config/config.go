package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	programName = "calculate_change"
	envPrefix   = "CHANGE"

	helpFlag = "help"

	logLevelFlag        = "log"
	logLevelFlagDefault = "warn"

	strictFlag = "strict"

	brokersFlag        = "brokers"
	topicFlag          = "topic"
	topicFlagDefault   = "change-receipts"
	userFlag           = "user"
	passFlag           = "pass"
	caCertFlag         = "ca-cert"
	schemaRegistryFlag = "schema-registry"

	publishTimeoutFlag        = "publish-timeout"
	publishTimeoutFlagDefault = 5 * time.Second
)

// ErrHelp is returned by Load after the help text has been printed.
var ErrHelp = pflag.ErrHelp

type Broker struct {
	SeedBrokers        []string
	Topic              string
	User               string
	Pass               string
	CARootCert         string
	SchemaRegistryURLs []string
	PublishTimeout     time.Duration
}

type Config struct {
	LogLevel slog.Level
	Strict   bool
	Broker   Broker
	// Args holds the positional arguments in order.
	Args []string
}

func (c Config) PublishEnabled() bool {
	return len(c.Broker.SeedBrokers) != 0
}

// Load merges flags from args with CHANGE_* environment variables, flags
// winning. Help goes to stdout, usage after a flag error to stderr.
func Load(args []string, stdout, stderr io.Writer) (Config, error) {
	const op = "config.Load"

	cmdLine := newFlagSet()
	flagArgs, positional := splitArgs(cmdLine, args)

	if err := cmdLine.Parse(flagArgs); err != nil {
		printUsage(stderr, cmdLine)
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	if help, _ := cmdLine.GetBool(helpFlag); help {
		printUsage(stdout, cmdLine)
		return Config{}, ErrHelp
	}

	v := viper.New()
	if err := v.BindPFlags(cmdLine); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := bindEnv(v); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(logLevelFlag))); err != nil {
		return Config{}, fmt.Errorf("%s: invalid log level: %w", op, err)
	}

	publishTimeout := v.GetDuration(publishTimeoutFlag)
	if publishTimeout <= 0 {
		return Config{}, fmt.Errorf("%s: %s must be positive", op, publishTimeoutFlag)
	}

	return Config{
		LogLevel: level,
		Strict:   v.GetBool(strictFlag),
		Broker: Broker{
			SeedBrokers:        splitList(v.GetStringSlice(brokersFlag)),
			Topic:              v.GetString(topicFlag),
			User:               v.GetString(userFlag),
			Pass:               v.GetString(passFlag),
			CARootCert:         v.GetString(caCertFlag),
			SchemaRegistryURLs: splitList(v.GetStringSlice(schemaRegistryFlag)),
			PublishTimeout:     publishTimeout,
		},
		Args: positional,
	}, nil
}

func newFlagSet() *pflag.FlagSet {
	cmdLine := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	cmdLine.SetOutput(io.Discard)
	cmdLine.SortFlags = false

	cmdLine.BoolP(helpFlag, "h", false, "show this help")
	cmdLine.String(logLevelFlag, logLevelFlagDefault, "log level: debug, info, warn or error")
	cmdLine.Bool(strictFlag, false, "reject amounts that are not valid numbers")
	cmdLine.StringSlice(brokersFlag, nil, "kafka seed brokers, receipts are not published when empty")
	cmdLine.String(topicFlag, topicFlagDefault, "kafka topic for receipts")
	cmdLine.String(userFlag, "", "SASL SCRAM-SHA-512 user")
	cmdLine.String(passFlag, "", "SASL SCRAM-SHA-512 password")
	cmdLine.String(caCertFlag, "", "PEM file with CA root certificates, enables TLS")
	cmdLine.StringSlice(schemaRegistryFlag, nil, "schema registry URLs")
	cmdLine.Duration(publishTimeoutFlag, publishTimeoutFlagDefault, "receipt publish timeout")

	return cmdLine
}

func printUsage(w io.Writer, cmdLine *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] total amount\n\nFlags:\n", programName)
	fmt.Fprint(w, cmdLine.FlagUsages())
}

// splitArgs separates leading flags from the amounts. Flags are only
// recognised before the first positional argument, and only when they are
// registered, so -5, -inf, --5 or a trailing -h stay amounts. "--" ends
// flags explicitly.
func splitArgs(cmdLine *pflag.FlagSet, args []string) (flags, positional []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return flags, args[i+1:]
		case strings.HasPrefix(arg, "--") && cmdLine.Lookup(longName(arg)) != nil:
			flags = append(flags, arg)
			if !strings.Contains(arg, "=") && takesValue(cmdLine.Lookup(longName(arg))) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		case len(arg) == 2 && arg[0] == '-' && cmdLine.ShorthandLookup(arg[1:]) != nil:
			flags = append(flags, arg)
		default:
			return flags, args[i:]
		}
	}
	return flags, nil
}

func longName(arg string) string {
	name, _, _ := strings.Cut(arg[2:], "=")
	return name
}

func takesValue(f *pflag.Flag) bool {
	return f != nil && f.NoOptDefVal == ""
}

func bindEnv(v *viper.Viper) error {
	names := []string{
		logLevelFlag, strictFlag,
		brokersFlag, topicFlag, userFlag, passFlag, caCertFlag,
		schemaRegistryFlag, publishTimeoutFlag,
	}
	var errs []error
	for _, name := range names {
		errs = append(errs, v.BindEnv(name, getEnvVar(name)))
	}
	return errors.Join(errs...)
}

func getEnvVar(input string) string {
	res := []string{envPrefix}
	for s := range strings.SplitSeq(input, "-") {
		res = append(res, strings.ToUpper(s))
	}
	return strings.Join(res, "_")
}

// splitList accepts both repeated values and comma separated ones, which
// is what a list from the environment looks like.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for s := range strings.SplitSeq(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
