package storage

import (
	"context"

	"sharevault/internal/model"
)

// Sink receives batches of vault journal events.
type Sink interface {
	AppendEvents(ctx context.Context, events []model.Event) error
}
