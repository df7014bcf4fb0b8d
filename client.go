package supaq

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver

	"github.com/syssam/supaq/config"
	"github.com/syssam/supaq/dialect"
	"github.com/syssam/supaq/dialect/sql"
	"github.com/syssam/supaq/logx"
)

// Client is the connection façade. It executes builder output against a
// single logical connection, timing and logging every call and translating
// driver failures into the supaq error taxonomy. It performs no query
// construction itself.
//
// A Client is not safe for concurrent use: the transaction state is a plain
// field. Callers needing concurrency must use one Client per goroutine or
// add external synchronization.
type Client struct {
	drv     dialect.Driver
	db      *stdsql.DB // nil when the driver was injected without one
	log     *slog.Logger
	session string
	stats   *sql.QueryStats

	tx           dialect.Tx
	closed       bool
	lastInsertID string
	affectedRows int64
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	useStats  bool
	statsOpts []sql.StatsOption
}

// WithLogger sets the structured logger the client reports through.
// Without it, log output is discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithStats wraps the driver with execution statistics collection and
// slow-query detection. Read the counters through Client.Stats.
func WithStats(opts ...sql.StatsOption) Option {
	return func(o *options) {
		o.useStats = true
		o.statsOpts = append(o.statsOpts, opts...)
	}
}

// Open establishes a connection described by cfg and returns a Client bound
// to it. The connection is verified with a ping before the client is
// returned; a dial or ping failure surfaces as a *ConnectionError.
func Open(cfg *config.Config, opts ...Option) (*Client, error) {
	drv, err := sql.Open(dialect.Postgres, cfg.DSN())
	if err != nil {
		return nil, NewConnectionError(cfg.Addr(), err)
	}
	db := drv.DB()
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	ctx := context.Background()
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewConnectionError(cfg.Addr(), err)
	}
	c := NewClient(drv, opts...)
	c.db = db
	c.log.Info("connection established", "addr", cfg.Addr(), "database", cfg.Database, "session", c.session)
	return c, nil
}

// NewClient returns a Client over an already-open driver. Used directly in
// tests and by callers that manage the underlying connection themselves.
func NewClient(drv dialect.Driver, opts ...Option) *Client {
	o := &options{logger: logx.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	c := &Client{
		drv:     drv,
		log:     o.logger,
		session: uuid.NewString(),
	}
	if o.useStats {
		if d, ok := drv.(*sql.Driver); ok {
			sd := sql.NewStatsDriver(d, o.statsOpts...)
			c.drv = sd
			c.stats = sd.QueryStats()
		}
	}
	if d, ok := c.drv.(*sql.Driver); ok {
		c.db = d.DB()
	}
	return c
}

// Session returns the client's session id, attached to every log entry.
func (c *Client) Session() string {
	return c.session
}

// Stats returns a snapshot of execution statistics. The zero snapshot is
// returned when the client was not opened with WithStats.
func (c *Client) Stats() sql.StatsSnapshot {
	if c.stats == nil {
		return sql.StatsSnapshot{}
	}
	return c.stats.Stats()
}

// IsConnected reports whether the client can still reach the database.
func (c *Client) IsConnected() bool {
	if c.closed {
		return false
	}
	if c.db == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.db.PingContext(ctx) == nil
}

// Close rolls back any active transaction and closes the underlying
// connection.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	if c.tx != nil {
		if err := c.Rollback(); err != nil {
			c.log.Error("rollback on close failed", "error", err, "session", c.session)
		}
	}
	c.closed = true
	err := c.drv.Close()
	c.log.Info("connection closed", "session", c.session)
	return err
}

// conn returns the active transaction when one is open, the driver
// otherwise.
func (c *Client) conn() dialect.ExecQuerier {
	if c.tx != nil {
		return c.tx
	}
	return c.drv
}

// Read executes a rows-returning statement and decodes every row into a
// column→value map.
func (c *Client) Read(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	rows, err := c.query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, NewQueryError(query, err)
	}
	return out, nil
}

// Write executes a mutating statement and returns the affected row count.
// When the statement carries a RETURNING clause it is executed as a query;
// the first returned column of the first row is retained as the last insert
// id (Postgres has no LastInsertId).
func (c *Client) Write(ctx context.Context, query string, params map[string]any) (int64, error) {
	if hasReturning(query) {
		rows, err := c.query(ctx, query, params)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		cols, err := rows.Columns()
		if err != nil {
			return 0, NewQueryError(query, err)
		}
		out, err := sql.ScanMaps(rows)
		if err != nil {
			return 0, NewQueryError(query, err)
		}
		if len(out) > 0 && len(cols) > 0 {
			c.lastInsertID = fmt.Sprint(out[0][cols[0]])
		}
		c.affectedRows = int64(len(out))
		return c.affectedRows, nil
	}
	return c.execAffected(ctx, query, params)
}

// Update executes an UPDATE statement and returns the affected row count.
func (c *Client) Update(ctx context.Context, query string, params map[string]any) (int64, error) {
	return c.execAffected(ctx, query, params)
}

// Delete executes a DELETE statement and returns the affected row count.
func (c *Client) Delete(ctx context.Context, query string, params map[string]any) (int64, error) {
	return c.execAffected(ctx, query, params)
}

// Execute runs a statement and returns the raw database/sql result.
func (c *Client) Execute(ctx context.Context, query string, params map[string]any) (sql.Result, error) {
	return c.exec(ctx, query, params)
}

// CallProcedure invokes a stored procedure (a Postgres function, the shape
// Supabase RPC endpoints take) with positional arguments and returns its
// rows as column→value maps.
func (c *Client) CallProcedure(ctx context.Context, name string, args ...any) ([]map[string]any, error) {
	proc, err := sql.Ident(name)
	if err != nil {
		return nil, err
	}
	params := make(map[string]any, len(args))
	phs := make([]string, len(args))
	for i, a := range args {
		ph := "p" + strconv.Itoa(i)
		phs[i] = ":" + ph
		params[ph] = a
	}
	query := "SELECT * FROM " + proc + "(" + strings.Join(phs, ", ") + ")"
	rows, err := c.query(ctx, query, params)
	if err != nil {
		return nil, NewProcedureError(proc, err)
	}
	defer rows.Close()
	out, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, NewProcedureError(proc, err)
	}
	return out, nil
}

// LastInsertID returns the value captured from the most recent Write with a
// RETURNING clause, as text. Empty until such a statement has run.
func (c *Client) LastInsertID() string {
	return c.lastInsertID
}

// AffectedRows returns the row count of the most recent mutating statement.
func (c *Client) AffectedRows() int64 {
	return c.affectedRows
}

func (c *Client) query(ctx context.Context, query string, params map[string]any) (*sql.Rows, error) {
	if c.closed {
		return nil, ErrNoConnection
	}
	if params == nil {
		params = map[string]any{}
	}
	start := time.Now()
	rows := &sql.Rows{}
	err := c.conn().Query(ctx, query, params, rows)
	c.logCall(query, params, time.Since(start), err)
	if err != nil {
		return nil, NewQueryError(query, wrapConstraint(err))
	}
	return rows, nil
}

func (c *Client) exec(ctx context.Context, query string, params map[string]any) (sql.Result, error) {
	if c.closed {
		return nil, ErrNoConnection
	}
	if params == nil {
		params = map[string]any{}
	}
	start := time.Now()
	var res sql.Result
	err := c.conn().Exec(ctx, query, params, &res)
	c.logCall(query, params, time.Since(start), err)
	if err != nil {
		return nil, NewQueryError(query, wrapConstraint(err))
	}
	return res, nil
}

func (c *Client) execAffected(ctx context.Context, query string, params map[string]any) (int64, error) {
	res, err := c.exec(ctx, query, params)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, NewQueryError(query, err)
	}
	c.affectedRows = affected
	return affected, nil
}

func (c *Client) logCall(query string, params map[string]any, elapsed time.Duration, err error) {
	if err != nil {
		c.log.Error("query failed", "sql", query, "params", params, "elapsed", elapsed, "error", err, "session", c.session)
		return
	}
	c.log.Debug("query executed", "sql", query, "params", params, "elapsed", elapsed, "session", c.session)
}

// hasReturning reports whether the statement ends in a RETURNING clause.
func hasReturning(query string) bool {
	return strings.Contains(strings.ToUpper(query), " RETURNING ")
}
