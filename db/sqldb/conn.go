package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
)

// Conn is one open database session, owned by the caller.
// Release it with Close, db.CloseAll or a db.Scope.
type Conn struct {
	conf   *Conf
	dbType string
	db     *sql.DB
	conn   *sql.Conn

	mu     sync.Mutex
	closed bool
}

// Ensure Conn can be handed to the closers in package db
var _ io.Closer = (*Conn)(nil)

func (c *Conn) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	c.trace("exec", query, args)
	result, err := c.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QueryRows - the caller must close the returned Rows
func (c *Conn) QueryRows(ctx context.Context, query string, args ...any) (Rows, error) {
	c.trace("query", query, args)
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryRow is lazy. Errors surface at Scan()
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) Row {
	c.trace("query row", query, args)
	return &row{row: c.conn.QueryRowContext(ctx, query, args...)}
}

// Prepare - the caller must close the returned statement
func (c *Conn) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	c.trace("prepare", query, nil)
	return c.conn.PrepareContext(ctx, query)
}

// Ping failures are KindConnect errors
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return &Error{Kind: KindConnect, DBType: c.dbType, Err: err}
	}
	return nil
}

// Raw returns the underlying session
func (c *Conn) Raw() *sql.Conn {
	return c.conn
}

func (c *Conn) DB() *sql.DB {
	return c.db
}

func (c *Conn) Conf() *Conf {
	return c.conf
}

func (c *Conn) DBType() string {
	return c.dbType
}

// Close ends the session, then its pool. Calling it again is a no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var errs []error
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &Error{Kind: KindClose, DBType: c.dbType, Err: errors.Join(errs...)}
	}
	return nil
}

type row struct {
	row *sql.Row
}

// Ensure row implements Row interface
var _ Row = (*row)(nil)

func (r *row) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRows
	}
	return err
}
