package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"sharevault/internal/chain"
	"sharevault/internal/model"
)

// Config holds runtime settings for the watcher.
type Config struct {
	Vaults       []common.Address
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// ChainSink receives decoded on-chain vault events.
type ChainSink interface {
	AppendChainEvents(ctx context.Context, events []model.ChainEvent) error
}

// Cursor persists watch progress so a restart resumes where it left off.
type Cursor interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, lastBlock uint64) error
}

// Watcher streams vault logs from the chain, decodes them, and writes them
// to a sink.
type Watcher struct {
	cfg    Config
	chain  *chain.Client
	sink   ChainSink
	cursor Cursor
	logger *zap.Logger
	seen   map[string]struct{}
}

func NewWatcher(cfg Config, chainClient *chain.Client, sink ChainSink, cursor Cursor, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}
	return &Watcher{
		cfg:    cfg,
		chain:  chainClient,
		sink:   sink,
		cursor: cursor,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Run executes the watch loop over the configured block range.
func (w *Watcher) Run(ctx context.Context) error {
	if w.chain == nil {
		return fmt.Errorf("chain client is nil")
	}
	if w.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if w.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if len(w.cfg.Vaults) == 0 {
		return fmt.Errorf("at least one vault address is required")
	}

	chainID, err := w.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	chainIDValue := chainID.Uint64()

	from := w.cfg.FromBlock
	to := w.cfg.ToBlock
	if to == 0 {
		latest, err := w.chain.LatestBlockNumber(ctx)
		if err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
		to = latest
	}

	if w.cursor != nil {
		lastBlock, ok, err := w.cursor.Load(ctx)
		if err != nil {
			return err
		}
		if ok && lastBlock >= from {
			from = lastBlock + 1
			w.logger.Info("resume from cursor", zap.Uint64("last_block", lastBlock), zap.Uint64("from", from))
		}
	}

	if from > to {
		w.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, w.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		w.logger.Info("fetch vault logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))

		logs, err := w.filterLogsWithRetry(ctx, blockRange.From, blockRange.To)
		if err != nil {
			return fmt.Errorf("filter logs: %w", err)
		}

		events := make([]model.ChainEvent, 0, len(logs))
		for _, log := range logs {
			if w.isDuplicate(log) {
				continue
			}

			ts, err := w.blockTimestampWithRetry(ctx, log.BlockNumber)
			if err != nil {
				return fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
			}

			event, err := DecodeLog(chainIDValue, log, ts)
			if err != nil {
				w.logger.Warn("decode log failed",
					zap.Error(err),
					zap.String("tx", log.TxHash.Hex()),
					zap.Uint64("block", log.BlockNumber),
				)
				continue
			}
			if event == nil {
				continue
			}
			events = append(events, *event)
		}

		if err := w.sink.AppendChainEvents(ctx, events); err != nil {
			return fmt.Errorf("store events: %w", err)
		}

		if w.cursor != nil {
			if err := w.cursor.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		w.logger.Info("batch complete", zap.Int("events", len(events)), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}

	return nil
}

func (w *Watcher) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	var logs []types.Log
	err := w.retry(ctx, func(ctx context.Context) error {
		var err error
		logs, err = w.chain.FilterLogs(ctx, fromBlock, toBlock, w.cfg.Vaults, nil)
		if err != nil {
			w.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (w *Watcher) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := w.retry(ctx, func(ctx context.Context) error {
		var err error
		ts, err = w.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			w.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (w *Watcher) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
	if _, ok := w.seen[id]; ok {
		return true
	}
	w.seen[id] = struct{}{}
	return false
}
