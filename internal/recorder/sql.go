package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"vibe-stock-dashboard/internal/interfaces"
	"vibe-stock-dashboard/internal/logger"
	"vibe-stock-dashboard/internal/types"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLRecorder persists classified headlines to SQLite or Postgres.
type SQLRecorder struct {
	db     *sql.DB
	driver string
	// SQLite allows a single writer.
	mu sync.Mutex
}

var _ interfaces.Recorder = (*SQLRecorder)(nil)

// Open connects, applies the driver's pragmas and runs migrations.
func Open(ctx context.Context, driver, dsn string) (*SQLRecorder, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported recorder driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s recorder needs a DSN", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	r := &SQLRecorder{db: db, driver: driver}
	if err := r.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(ctx, "News recorder opened", "driver", driver)
	return r, nil
}

func (r *SQLRecorder) migrate(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if r.driver == DriverPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS news_items (
			` + idColumn + `,
			ticker       TEXT NOT NULL,
			title        TEXT NOT NULL,
			body         TEXT,
			url          TEXT NOT NULL,
			source       TEXT,
			published_at BIGINT,
			sentiment    TEXT NOT NULL,
			summary      TEXT,
			strategy     TEXT,
			recorded_at  BIGINT NOT NULL,
			UNIQUE (ticker, url)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_ticker_published ON news_items(ticker, published_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(s), err)
		}
	}
	return nil
}

// RecordNews upserts items keyed on (ticker, url); a re-classified headline
// replaces the earlier verdict.
func (r *SQLRecorder) RecordNews(ctx context.Context, ticker string, items []types.NewsItem) error {
	if len(items) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.rebind(`INSERT INTO news_items
		(ticker, title, body, url, source, published_at, sentiment, summary, strategy, recorded_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (ticker, url) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			sentiment = excluded.sentiment,
			summary = excluded.summary,
			strategy = excluded.strategy,
			recorded_at = excluded.recorded_at`))
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, it := range items {
		if _, err := stmt.ExecContext(ctx,
			ticker, it.Title, it.Body, it.URL, it.Source, unixOrZero(it.PublishedAt),
			string(it.Sentiment), it.Summary, it.Strategy, now,
		); err != nil {
			return fmt.Errorf("insert %q: %w", it.URL, err)
		}
	}
	return tx.Commit()
}

// RecentNews returns up to limit items for ticker, newest first.
func (r *SQLRecorder) RecentNews(ctx context.Context, ticker string, limit int) ([]types.NewsItem, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT title, body, url, source, published_at, sentiment, summary, strategy
		FROM news_items
		WHERE ticker = ?
		ORDER BY published_at DESC, id DESC
		LIMIT ?`), ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []types.NewsItem{}
	for rows.Next() {
		var (
			it                           types.NewsItem
			body, source, summary, strat sql.NullString
			published                    sql.NullInt64
			sentiment                    string
		)
		if err := rows.Scan(&it.Title, &body, &it.URL, &source, &published, &sentiment, &summary, &strat); err != nil {
			return nil, err
		}
		it.Body, it.Source, it.Summary, it.Strategy = body.String, source.String, summary.String, strat.String
		it.Sentiment = types.Sentiment(sentiment)
		if published.Valid && published.Int64 > 0 {
			it.PublishedAt = time.Unix(published.Int64, 0).UTC()
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *SQLRecorder) Close() error {
	return r.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (r *SQLRecorder) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i > 0 {
		return s[:i]
	}
	return s
}
