package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/callsense-ai/callsense/agent/contract"
)

type PostgresConfig struct {
	DSN   string `envconfig:"DSN" split_words:"true"`
	Limit int    `envconfig:"LIMIT" split_words:"true" default:"100"`
}

type callRow struct {
	bun.BaseModel `bun:"table:calls,alias:c"`

	CallID     string `bun:"call_id,pk"`
	Transcript string `bun:"transcript"`
}

// PostgresSource reads transcripts from a calls table.
type PostgresSource struct {
	db    *bun.DB
	limit int
}

var _ contract.TranscriptSource = (*PostgresSource)(nil)

func NewPostgres(cfg PostgresConfig) (*PostgresSource, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = 100
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresSource{db: db, limit: limit}, nil
}

func (s *PostgresSource) Load(ctx context.Context) ([]contract.Transcript, error) {
	var rows []callRow
	if err := s.db.NewSelect().
		Model(&rows).
		Order("call_id ASC").
		Limit(s.limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select calls: %w", err)
	}

	out := make([]contract.Transcript, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Transcript) == "" {
			continue
		}
		out = append(out, contract.Transcript{ID: r.CallID, Text: r.Transcript})
	}
	return out, nil
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}
