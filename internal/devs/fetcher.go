package devs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/angeloszaimis/devboard/config"
)

const (
	// Query is the only statement the fetcher ever issues.
	Query = "SELECT name FROM devs"

	// ErrorSentinel is shown in place of the names when the store is unavailable.
	ErrorSentinel = "DB Error"

	OutcomeSuccess = "success"
	OutcomeError   = "error"

	closeTimeout = 3 * time.Second
)

// ErrUnavailable is the single failure kind: connecting, authenticating,
// querying or scanning the store went wrong.
var ErrUnavailable = errors.New("data source unavailable")

// Conn is the subset of *pgx.Conn the fetcher needs.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Connector opens a new connection for a DSN.
type Connector func(ctx context.Context, dsn string) (Conn, error)

// Connect is the default Connector backed by pgx.
func Connect(ctx context.Context, dsn string) (Conn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Observer is told about every fetch.
type Observer interface {
	ObserveFetch(outcome string, duration time.Duration)
}

// Result is the outcome of one fetch. Err is nil on success and wraps
// ErrUnavailable otherwise.
type Result struct {
	Names []string
	Err   error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Display returns the names, or a single ErrorSentinel entry on failure.
func (r Result) Display() []string {
	if r.Failed() {
		return []string{ErrorSentinel}
	}
	return r.Names
}

// Fetcher reads developer names from the devs table. Every call opens and
// closes its own connection; nothing is shared between calls.
type Fetcher struct {
	logger   *slog.Logger
	dsn      string
	timeout  time.Duration
	connect  Connector
	observer Observer
}

type Option func(*Fetcher)

func WithConnector(connect Connector) Option {
	return func(f *Fetcher) {
		f.connect = connect
	}
}

func WithObserver(observer Observer) Option {
	return func(f *Fetcher) {
		f.observer = observer
	}
}

// NewFetcher builds a fetcher from the database section of the config.
// A zero timeout leaves calls bounded only by the caller's context.
func NewFetcher(logger *slog.Logger, cfg config.DatabaseConfig, opts ...Option) (*Fetcher, error) {
	var timeout time.Duration
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse db timeout: %w", err)
		}
		timeout = d
	}

	f := &Fetcher{
		logger:  logger,
		dsn:     cfg.DSN(),
		timeout: timeout,
		connect: Connect,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Fetch runs Query and returns the first column of every row in database
// order. Failures are logged and reported through Result.Err, never returned
// as a Go error.
func (f *Fetcher) Fetch(ctx context.Context) Result {
	start := time.Now()

	names, err := f.fetch(ctx)
	if err != nil {
		f.logger.Error("Database error",
			slog.String("query", Query),
			slog.Any("err", err))
		f.observe(OutcomeError, time.Since(start))
		return Result{Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}

	f.logger.Debug("Fetched names", slog.Int("count", len(names)))
	f.observe(OutcomeSuccess, time.Since(start))
	return Result{Names: names}
}

// FetchNames is Fetch projected onto the page data: the names, or
// ["DB Error"] on failure.
func (f *Fetcher) FetchNames(ctx context.Context) []string {
	return f.Fetch(ctx).Display()
}

// Ping checks that a connection can be opened and answers.
func (f *Fetcher) Ping(ctx context.Context) error {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	conn, err := f.connect(ctx, f.dsn)
	if err != nil {
		return fmt.Errorf("%w: connect: %w", ErrUnavailable, err)
	}
	defer f.release(conn)

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrUnavailable, err)
	}

	return nil
}

func (f *Fetcher) fetch(ctx context.Context) ([]string, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	conn, err := f.connect(ctx, f.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer f.release(conn)

	rows, err := conn.Query(ctx, Query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	// CollectRows closes rows on every path.
	names, err := pgx.CollectRows(rows, scanName)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	if names == nil {
		names = []string{}
	}

	return names, nil
}

// scanName reads the first column of a row. A NULL name reads as "".
func scanName(row pgx.CollectableRow) (string, error) {
	name, err := pgx.RowTo[pgtype.Text](row)
	if err != nil {
		return "", err
	}
	return name.String, nil
}

// release closes conn on a context detached from the request so a cancelled
// request still gives its connection back.
func (f *Fetcher) release(conn Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := conn.Close(ctx); err != nil {
		f.logger.Warn("Failed to close database connection", slog.Any("err", err))
	}
}

func (f *Fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *Fetcher) observe(outcome string, d time.Duration) {
	if f.observer == nil {
		return
	}
	f.observer.ObserveFetch(outcome, d)
}
