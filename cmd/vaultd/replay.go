package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sharevault/internal/config"
	"sharevault/internal/model"
	"sharevault/internal/replay"
	"sharevault/internal/storage"
	"sharevault/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input journal is required")
	}
	assetAddr, err := requireAddress(cfg.AssetAddr, "asset")
	if err != nil {
		return err
	}
	vaultAddr, err := requireAddress(cfg.VaultAddr, "vault")
	if err != nil {
		return err
	}
	ownerAddr, err := requireAddress(cfg.OwnerAddr, "owner")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer in.Close()

	sinks := []storage.Sink{storage.NewJsonlSink(cfg.Out)}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, &pgEventSink{store: store, run: cfg.Run})
	}

	runner, err := replay.NewRunner(assetAddr, vaultAddr, ownerAddr, cfg.Name, cfg.Symbol, logger)
	if err != nil {
		return err
	}

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("asset", assetAddr.Hex()),
		zap.String("vault", vaultAddr.Hex()),
		zap.String("owner", ownerAddr.Hex()),
	)

	stats, err := runner.Run(ctx, in, multiSink(sinks))
	if err != nil {
		return err
	}

	totalAssets, terr := runner.Vault.TotalAssets(ctx)
	if terr != nil {
		return terr
	}
	logger.Info("replay complete",
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.String("total_shares", runner.Vault.TotalShares().String()),
		zap.String("total_assets", totalAssets.String()),
	)
	return nil
}

func requireAddress(input, name string) (common.Address, error) {
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%s address is required and must be hex, got %q", name, input)
	}
	return common.HexToAddress(input), nil
}

// pgEventSink adapts the Postgres store to the event sink interface.
type pgEventSink struct {
	store *postgres.Store
	run   string
}

func (s *pgEventSink) AppendEvents(ctx context.Context, events []model.Event) error {
	return s.store.InsertEvents(ctx, s.run, events)
}

// multiSink fans events out to every sink.
type multiSink []storage.Sink

func (m multiSink) AppendEvents(ctx context.Context, events []model.Event) error {
	for _, sink := range m {
		if err := sink.AppendEvents(ctx, events); err != nil {
			return err
		}
	}
	return nil
}
