package sink

import (
	"context"
	"encoding/json"
	"log"

	"github.com/wilsharo/lead-filter-api/internal/lead"
)

// LogSink writes one JSON line per verdict record.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (s *LogSink) Start(ctx context.Context) error { return nil }

func (s *LogSink) Enqueue(rec lead.Record) error {
	b, _ := json.Marshal(rec)
	log.Printf("verdict %s", string(b))
	return nil
}

func (s *LogSink) Close() error { return nil }

func (s *LogSink) Name() string { return "log" }
