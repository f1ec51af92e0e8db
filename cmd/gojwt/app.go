package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	goJWT "github.com/MrEthical07/goJWT"
)

const (
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "GOJWT_LOG_LEVEL"
	logLevelFlagUsage = "Log level: debug, info, warn or error. Defaults to warn." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	redisAddrFlagName  = "redis-addr"
	redisAddrEnvKey    = "GOJWT_REDIS_ADDR"
	redisAddrFlagUsage = "Redis address holding named key sets (optional)." +
		" Alternatively, this can be set with the following environment variable: " + redisAddrEnvKey

	keySetPrefixFlagName  = "key-set-prefix"
	keySetPrefixEnvKey    = "GOJWT_KEY_SET_PREFIX"
	keySetPrefixFlagUsage = "Redis key prefix for named key sets." +
		" Alternatively, this can be set with the following environment variable: " + keySetPrefixEnvKey

	iterationsFlagName  = "default-iterations"
	iterationsEnvKey    = "GOJWT_DEFAULT_ITERATIONS"
	iterationsFlagUsage = "PBKDF2 iteration count used when none is given." +
		" Alternatively, this can be set with the following environment variable: " + iterationsEnvKey
)

// app carries the process-wide dependencies of every command.
type app struct {
	out    io.Writer
	in     io.Reader
	logger *zap.Logger
	// redis overrides --redis-addr when set.
	redis redis.UniversalClient
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "gojwt",
		Short:         "Encode, decode and generate JSON Web Tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.logger != nil {
				return nil
			}
			level, err := getUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
			if err != nil {
				return err
			}
			a.logger, err = newLogger(level)
			return err
		},
	}

	root.PersistentFlags().String(logLevelFlagName, "", logLevelFlagUsage)
	root.PersistentFlags().String(redisAddrFlagName, "", redisAddrFlagUsage)
	root.PersistentFlags().String(keySetPrefixFlagName, "", keySetPrefixFlagUsage)
	root.PersistentFlags().Int(iterationsFlagName, 0, iterationsFlagUsage)

	root.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newGenerateCmd(a),
		newKeySetCmd(a),
	)
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level '%s' : %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// engine builds an Engine from the persistent flags. The returned func releases it
// together with any Redis client it opened.
func (a *app) engine(cmd *cobra.Command) (*goJWT.Engine, func(), error) {
	cfg := goJWT.DefaultConfig()

	prefix, err := getUserSetVar(cmd, keySetPrefixFlagName, keySetPrefixEnvKey, true)
	if err != nil {
		return nil, nil, err
	}
	if prefix != "" {
		cfg.KeySets.RedisPrefix = prefix
	}
	if cmd.Flags().Changed(iterationsFlagName) {
		cfg.Defaults.IterationCount, _ = cmd.Flags().GetInt(iterationsFlagName)
	} else if v, ok := os.LookupEnv(iterationsEnvKey); ok {
		if _, err := fmt.Sscan(v, &cfg.Defaults.IterationCount); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", iterationsEnvKey, err)
		}
	}

	for _, w := range cfg.Lint() {
		field := zap.String("code", w.Code)
		if w.Severity >= goJWT.LintWarn {
			a.logger.Warn(w.Message, field, zap.Stringer("severity", w.Severity))
		} else {
			a.logger.Debug(w.Message, field)
		}
	}

	b := goJWT.New().WithConfig(cfg).WithLogger(a.logger)
	release := func() {}

	client := a.redis
	if client == nil {
		addr, err := getUserSetVar(cmd, redisAddrFlagName, redisAddrEnvKey, true)
		if err != nil {
			return nil, nil, err
		}
		if addr != "" {
			opened := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
			client = opened
			release = func() { _ = opened.Close() }
		}
	}
	if client != nil {
		b = b.WithRedis(client)
	}

	e, err := b.Build()
	if err != nil {
		release()
		return nil, nil, err
	}
	return e, func() { e.Close(); release() }, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}
		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)
	if isOptional || isSet {
		return value, nil
	}
	return "", fmt.Errorf("neither %s (command line flag) nor %s (environment variable) have been set", flagName, envKey)
}

// readText returns value, the contents of the file named after a leading "@", or
// all of stdin for "-".
func (a *app) readText(value string) (string, error) {
	switch {
	case value == "-":
		raw, err := io.ReadAll(a.in)
		return string(raw), err
	case strings.HasPrefix(value, "@"):
		raw, err := os.ReadFile(value[1:])
		return string(raw), err
	default:
		return value, nil
	}
}
