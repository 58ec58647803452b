package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sharevault/internal/model"
)

// Store persists vault events and watcher cursors in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents upserts a batch of vault journal events keyed by (run, seq).
func (s *Store) InsertEvents(ctx context.Context, run string, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		batch.Queue(`
			INSERT INTO vault_events (run, seq, name, payload, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (run, seq) DO UPDATE SET
				name = EXCLUDED.name,
				payload = EXCLUDED.payload
		`,
			run,
			int64(event.Seq),
			event.Name,
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertChainEvents upserts decoded on-chain vault events keyed by
// (chain_id, tx_hash, log_index).
func (s *Store) InsertChainEvents(ctx context.Context, events []model.ChainEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("marshal chain event payload: %w", err)
		}
		batch.Queue(`
			INSERT INTO vault_chain_events (
				chain_id, block_number, tx_hash, log_index, vault, name, payload, block_ts, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (chain_id, tx_hash, log_index) DO UPDATE SET
				block_number = EXCLUDED.block_number,
				vault = EXCLUDED.vault,
				name = EXCLUDED.name,
				payload = EXCLUDED.payload,
				block_ts = EXCLUDED.block_ts
		`,
			int64(event.ChainID),
			int64(event.BlockNumber),
			event.TxHash,
			int64(event.LogIndex),
			event.Vault,
			event.Name,
			payload,
			int64(event.Timestamp),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadCursor returns the last processed block for a named watcher.
func (s *Store) LoadCursor(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("cursor name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM watch_cursors WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveCursor upserts the last processed block for a named watcher.
func (s *Store) SaveCursor(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("cursor name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO watch_cursors (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, block)
	return err
}
