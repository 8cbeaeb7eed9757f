package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	"github.com/wilsharo/lead-filter-api/internal/lead"
)

// Postgres identifier rules, 63-byte limit included.
var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName rejects anything that could smuggle SQL through the
// table identifier, which cannot be parameterized.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name must not be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("table name exceeds 63 characters")
	}
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// PGSink persists verdict records to Postgres through a buffered channel and
// a single background writer.
type PGSink struct {
	dsn   string
	table string

	db     *sql.DB
	buf    chan lead.Record
	done   chan struct{}
	cancel context.CancelFunc
}

// NewPGSinkFromEnv creates a PGSink from PG_DSN and PG_TABLE.
func NewPGSinkFromEnv() *PGSink {
	return NewPGSink(
		os.Getenv("PG_DSN"),
		getEnvOr("PG_TABLE", "lead_verdicts"),
	)
}

func NewPGSink(dsn, table string) *PGSink {
	return &PGSink{
		dsn:   dsn,
		table: table,
		buf:   make(chan lead.Record, 1024),
		done:  make(chan struct{}),
	}
}

func (s *PGSink) Start(ctx context.Context) error {
	if err := validateTableName(s.table); err != nil {
		return fmt.Errorf("pg sink: %w", err)
	}

	db, err := sql.Open("postgres", s.dsn)
	if err != nil {
		return fmt.Errorf("pg sink: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pg sink: ping: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	s.db = db

	writerCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.writeLoop(writerCtx)
	return nil
}

func (s *PGSink) Enqueue(rec lead.Record) error {
	select {
	case s.buf <- rec:
		return nil
	default:
		return fmt.Errorf("pg sink: buffer full, dropping record %s", rec.RecordID)
	}
}

func (s *PGSink) Close() error {
	if s.cancel != nil {
		close(s.buf)
		<-s.done
		s.cancel()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PGSink) Name() string { return "postgres" }

func (s *PGSink) writeLoop(ctx context.Context) {
	defer close(s.done)
	for rec := range s.buf {
		if err := s.insert(ctx, rec); err != nil {
			log.Printf("pg sink: insert failed for %s: %v", rec.RecordID, err)
		}
	}
}

func (s *PGSink) insert(ctx context.Context, rec lead.Record) error {
	// Table name validated at Start; everything else is parameterized.
	query := fmt.Sprintf(`INSERT INTO %s
		(record_id, ts, client_ip, submitted_state, time_on_page, user_agent,
		 is_genuine, reason, fraud_score, country_code, region, proxy, vpn, tor, cache_hit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, s.table)

	_, err := s.db.ExecContext(ctx, query,
		rec.RecordID, rec.TS, rec.ClientIP, rec.SubmittedState, rec.TimeOnPage, rec.UserAgent,
		rec.IsGenuine, rec.Reason, rec.FraudScore, rec.CountryCode, rec.Region,
		rec.Proxy, rec.VPN, rec.Tor, rec.CacheHit,
	)
	return err
}
