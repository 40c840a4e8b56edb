package output

import (
	"context"
	"fmt"
	"regexp"
	"time"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/platform/logger"
	"hamfinder/internal/platform/store"
	ptime "hamfinder/internal/platform/time"
	"hamfinder/internal/services/ingest/domain"
)

const chSchema = `
CREATE TABLE IF NOT EXISTS %s (
	run_date       Date,
	callsign       LowCardinality(String),
	fullname       String,
	firstname      String,
	lastname       String,
	address        String,
	city           LowCardinality(String),
	state          LowCardinality(String),
	zipcode        String,
	ingestion_date Date
) ENGINE = MergeTree
ORDER BY (run_date, zipcode, callsign)`

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ClickHouse appends each run's records to a MergeTree table
type ClickHouse struct {
	ch    store.Clickhouse
	table string
}

var _ domain.Sink = (*ClickHouse)(nil)

// NewClickHouse ensures table exists and returns the sink
func NewClickHouse(ctx context.Context, ch store.Clickhouse, table string) (*ClickHouse, error) {
	if ch == nil {
		return nil, perr.Persistencef("clickhouse output enabled but no clickhouse configured")
	}
	if !tableName.MatchString(table) {
		return nil, perr.InvalidArgf("clickhouse table %q is not a plain identifier", table)
	}
	if err := ch.Exec(ctx, fmt.Sprintf(chSchema, table)); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodePersistence, "ensure clickhouse table %s", table)
	}
	return &ClickHouse{ch: ch, table: table}, nil
}

// Name implements domain.Sink
func (*ClickHouse) Name() string { return "clickhouse" }

// Persist implements domain.Sink
func (c *ClickHouse) Persist(ctx context.Context, runDate string, rs domain.ResultSet) (string, error) {
	rows, err := Rows(runDate, rs)
	if err != nil {
		return "", err
	}
	if err := c.ch.Insert(ctx, c.table, rows); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodePersistence, "insert into %s", c.table)
	}
	logger.C(ctx).Info().Str("table", c.table).Int("records", len(rows)).Msg("result set inserted")
	return "clickhouse://" + c.table, nil
}

// Rows renders rs in table column order
func Rows(runDate string, rs domain.ResultSet) ([][]any, error) {
	day, err := ptime.ParseDate(runDate)
	if err != nil {
		return nil, perr.InvalidArgf("run date %q is not YYYY-MM-DD", runDate)
	}
	out := make([][]any, 0, len(rs))
	for _, r := range rs {
		ing, err := ptime.ParseDate(r.IngestionDate)
		if err != nil {
			ing = time.Time{}
		}
		out = append(out, []any{day, r.Callsign, r.FullName, r.FirstName, r.LastName, r.Address, r.City, r.State, r.ZipCode, ing})
	}
	return out, nil
}
