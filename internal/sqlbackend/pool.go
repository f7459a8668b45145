// Package sqlbackend wraps pgxpool to execute the parameterized SELECT
// queries the gateway compiles from LDAP searches, and to shape the
// resulting rows for the entry projector.
package sqlbackend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sql2ldap/sql2ldap/pkg/config"
)

// Backend executes read-only queries against the configured PostgreSQL
// table on behalf of the gateway.
type Backend struct {
	pool  *pgxpool.Pool
	table string
	debug bool
}

// Open builds a connection pool from cfg and verifies it can reach the
// server. The caller must call Close when done.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	pool, err := pgxpool.New(ctx, dsn(cfg.SQL))
	if err != nil {
		return nil, fmt.Errorf("sqlbackend: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlbackend: ping: %w", err)
	}
	slog.Info("connected to sql backend", "database", cfg.SQL.Database, "table", cfg.SQL.Table)
	return &Backend{pool: pool, table: cfg.SQL.Table, debug: cfg.Server.Debug}, nil
}

// Close releases the pool's connections.
func (b *Backend) Close() {
	b.pool.Close()
}

// Table returns the configured source table name, trusted config-time
// input interpolated directly into generated SQL (never user input).
func (b *Backend) Table() string {
	return b.table
}

// dsn builds a pgx connection string, honoring a unix-domain-socket host
// the same way the original's ConfigSql::socket() does. A socket path is
// passed unescaped in the "host" query parameter, since a path in the URL's
// host part would be percent-encoded into a form that does not parse.
func dsn(c config.SQLConfig) string {
	host := c.Host
	socket, isSocket := c.Socket()
	if isSocket {
		host = ""
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Pass),
		Host:   host,
		Path:   "/" + c.Database,
	}
	if c.Port != 0 {
		u.Host = fmt.Sprintf("%s:%d", host, c.Port)
	}
	if isSocket {
		u.RawQuery = "host=" + socket
	}
	return u.String()
}
