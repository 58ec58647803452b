package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sharevault/internal/chain"
	"sharevault/internal/config"
	"sharevault/internal/model"
	"sharevault/internal/storage"
	"sharevault/internal/storage/postgres"
	"sharevault/internal/token"
	"sharevault/internal/watch"
)

const watchCursorName = "vault_watch"

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	vaults, err := watch.ParseAddresses(cfg.Vaults)
	if err != nil {
		return err
	}
	if len(vaults) == 0 {
		return fmt.Errorf("at least one vault address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	sinks := []watch.ChainSink{storage.NewChainJsonlSink(cfg.Out)}
	var cursor watch.Cursor = watch.NewFileCursor(cfg.Checkpoint, cfg.CheckpointEnabled)
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, &pgChainSink{store: store})
		cursor = &pgCursor{store: store, name: watchCursorName}
	}

	if cfg.AssetAddr != "" {
		assetAddr, err := requireAddress(cfg.AssetAddr, "asset")
		if err != nil {
			return err
		}
		asset := token.NewERC20(chainClient, assetAddr)
		for _, vaultAddr := range vaults {
			pooled, err := asset.BalanceOf(ctx, vaultAddr)
			if err != nil {
				return fmt.Errorf("read pooled assets for %s: %w", vaultAddr.Hex(), err)
			}
			logger.Info("pooled assets",
				zap.String("vault", vaultAddr.Hex()),
				zap.String("asset", assetAddr.Hex()),
				zap.String("balance", pooled.String()),
			)
		}
	}

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.Int("vaults", len(vaults)),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("batch_size", cfg.BatchSize),
	)

	watcher := watch.NewWatcher(watch.Config{
		Vaults:       vaults,
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, chainClient, multiChainSink(sinks), cursor, logger)

	return watcher.Run(ctx)
}

// pgChainSink adapts the Postgres store to the chain sink interface.
type pgChainSink struct {
	store *postgres.Store
}

func (s *pgChainSink) AppendChainEvents(ctx context.Context, events []model.ChainEvent) error {
	return s.store.InsertChainEvents(ctx, events)
}

// pgCursor stores watch progress in Postgres instead of a local file.
type pgCursor struct {
	store *postgres.Store
	name  string
}

func (c *pgCursor) Load(ctx context.Context) (uint64, bool, error) {
	return c.store.LoadCursor(ctx, c.name)
}

func (c *pgCursor) Save(ctx context.Context, lastBlock uint64) error {
	return c.store.SaveCursor(ctx, c.name, lastBlock)
}

// multiChainSink fans decoded events out to every sink.
type multiChainSink []watch.ChainSink

func (m multiChainSink) AppendChainEvents(ctx context.Context, events []model.ChainEvent) error {
	for _, sink := range m {
		if err := sink.AppendChainEvents(ctx, events); err != nil {
			return err
		}
	}
	return nil
}
