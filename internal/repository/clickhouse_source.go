package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	pkgch "RiskRegime/pkg/clickhouse"
	"RiskRegime/pkg/logger"
	"RiskRegime/pkg/util"
)

var _ domrepo.TimeSeriesSource = (*ClickHouseSource)(nil)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// DailyBarsDDL creates the bars table read by ClickHouseSource.
func DailyBarsDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    symbol LowCardinality(String),
    day    Date,
    open   Nullable(Float64),
    high   Nullable(Float64),
    low    Nullable(Float64),
    close  Nullable(Float64),
    volume Nullable(Float64)
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, day)`, table)
}

// ClickHouseSource reads bars from a warehouse table keyed by (symbol, day).
type ClickHouseSource struct {
	db    *sql.DB
	table string
	now   func() time.Time
	l     *logger.Logger
}

// NewClickHouseSource creates a source over table.
func NewClickHouseSource(ch *pkgch.Client, table string, l *logger.Logger) (*ClickHouseSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table %q", table)
	}
	return &ClickHouseSource{
		db:    ch.DB(),
		table: table,
		now:   time.Now,
		l:     l.Component("clickhouse_source"),
	}, nil
}

func (s *ClickHouseSource) Name() string { return "clickhouse" }

func (s *ClickHouseSource) Fetch(ctx context.Context, symbol, period string, interval domrepo.Interval) ([]models.RawBar, error) {
	start := time.Now()
	from, err := util.PeriodStart(period, s.now().UTC())
	if err != nil {
		return nil, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	q := barsQuery(s.table, interval)
	rows, err := s.db.QueryContext(ctx, q, symbol, from)
	if err != nil {
		s.l.Error("clickhouse bars query error",
			logger.String("table", s.table),
			logger.String("symbol", symbol),
			logger.Error(err),
		)
		return nil, fmt.Errorf("clickhouse bars %s: %w", symbol, err)
	}
	defer rows.Close()

	out := make([]models.RawBar, 0, 512)
	for rows.Next() {
		var (
			day              time.Time
			o, h, lo, c, vol sql.NullFloat64
		)
		if err := rows.Scan(&day, &o, &h, &lo, &c, &vol); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, models.RawBar{
			Time:   day,
			Open:   nullable(o),
			High:   nullable(h),
			Low:    nullable(lo),
			Close:  nullable(c),
			Volume: nullable(vol),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("clickhouse %s: %w", symbol, models.ErrNoDataFound)
	}

	s.l.Debug("clickhouse bars ok",
		logger.String("symbol", symbol),
		logger.String("period", period),
		logger.Int("rows", len(out)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// barsQuery returns daily rows, or weekly rows rolled up from them.
func barsQuery(table string, interval domrepo.Interval) string {
	if interval == domrepo.Interval1wk {
		return fmt.Sprintf(`
        SELECT toStartOfWeek(day, 1) AS wk,
               argMin(open, day), max(high), min(low), argMax(close, day), sum(volume)
        FROM %s FINAL
        WHERE symbol = ? AND day >= ?
        GROUP BY wk
        ORDER BY wk ASC`, table)
	}
	return fmt.Sprintf(`
        SELECT day, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND day >= ?
        ORDER BY day ASC`, table)
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}
