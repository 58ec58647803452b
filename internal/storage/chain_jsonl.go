package storage

import (
	"context"
	"sync"

	"sharevault/internal/model"
)

// ChainJsonlSink appends decoded on-chain vault events to a JSONL file.
type ChainJsonlSink struct {
	path string
	mu   sync.Mutex
}

func NewChainJsonlSink(path string) *ChainJsonlSink {
	return &ChainJsonlSink{path: path}
}

// AppendChainEvents writes a batch of chain events as JSON lines.
func (s *ChainJsonlSink) AppendChainEvents(_ context.Context, events []model.ChainEvent) error {
	if len(events) == 0 {
		return nil
	}
	items := make([]any, 0, len(events))
	for _, event := range events {
		items = append(items, event)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return appendJSONLines(s.path, items)
}
