package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "vaultd",
		Short:        "Share vault accounting engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an operation journal through an in-memory vault",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("in", "", "input operations JSONL")
	replayCmd.Flags().String("out", "./data/vault_events.jsonl", "output events JSONL path")
	replayCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for event storage")
	replayCmd.Flags().String("run", "default", "run name for Postgres event keys")
	replayCmd.Flags().String("asset", "", "underlying asset address")
	replayCmd.Flags().String("vault", "", "vault address")
	replayCmd.Flags().String("owner", "", "vault owner address")
	replayCmd.Flags().String("name", "Pooled Token Vault", "vault display name")
	replayCmd.Flags().String("symbol", "pTOK", "vault display symbol")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow Deposit/Withdraw logs of deployed vaults",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("rpc", "", "RPC URL")
	watchCmd.Flags().StringSlice("vault", nil, "vault addresses (comma-separated)")
	watchCmd.Flags().String("asset", "", "underlying asset address; when set, pooled balances are logged at startup")
	watchCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	watchCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	watchCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	watchCmd.Flags().String("out", "./data/chain_events.jsonl", "output JSONL path")
	watchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for event storage")
	watchCmd.Flags().String("checkpoint", "./data/watch_checkpoint.json", "checkpoint file path")
	watchCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
