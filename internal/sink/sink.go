package sink

import (
	"context"

	"github.com/wilsharo/lead-filter-api/internal/lead"
)

type Sink interface {
	Start(ctx context.Context) error
	Enqueue(rec lead.Record) error
	Close() error
	Name() string // Returns the sink name for metrics and logging
}
