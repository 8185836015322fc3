// Package pg implementa repository.UserStore sobre PostgreSQL.
//
// El pool es pgxpool; los repos hablan database/sql (vía pgx/stdlib) a través
// de DBTX para poder usarse con *sql.DB, *sql.Tx o sqlmock en tests.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// DBTX es el subconjunto de database/sql que usan los repos.
// *sql.DB y *sql.Tx lo implementan.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PoolConfig ajusta el pool. Campos en cero usan los defaults de pgxpool.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

// DB agrupa el pool nativo y su vista database/sql.
type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

// Open crea el pool, verifica la conexión y expone un *sql.DB sobre el mismo pool.
func Open(ctx context.Context, dsn string, cfg PoolConfig) (*DB, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &DB{Pool: pool, SQL: stdlib.OpenDBFromPool(pool)}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close cierra la vista database/sql y el pool (idempotente).
func (d *DB) Close() {
	if d == nil {
		return
	}
	if d.SQL != nil {
		_ = d.SQL.Close()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
}

// WithTx corre fn dentro de una transacción: commit si fn devuelve nil,
// rollback si devuelve error o entra en pánico.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(ctx, tx)
}
