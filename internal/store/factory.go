// Package store abre el backend de usuarios configurado.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/store/memory"
	"github.com/dropDatabas3/efedauth/internal/store/pg"
)

type Config struct {
	Driver   string
	DSN      string
	Migrate  bool
	Postgres struct {
		MaxOpenConns, MaxIdleConns int
		ConnMaxLifetime            string
	}
}

// Stores expone el UserStore y, si el driver es Postgres, la DB subyacente.
type Stores struct {
	Users repository.UserStore
	DB    *pg.DB // nil para memory
	Close func() error
}

// Open devuelve el store según cfg.Driver ("postgres" | "memory").
func Open(ctx context.Context, cfg Config, c clock.Clock) (*Stores, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "postgres", "pg", "postgresql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("store: postgres requires a DSN")
		}
		db, err := pg.Open(ctx, cfg.DSN, poolConfig(cfg))
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := pg.Migrate(ctx, db.SQL); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &Stores{
			Users: pg.NewUserRepo(db.SQL),
			DB:    db,
			Close: func() error { db.Close(); return nil },
		}, nil

	case "memory", "mem", "":
		return &Stores{
			Users: memory.NewUserStore(c),
			Close: func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}

// poolConfig mapea la config estilo database/sql a pgxpool:
// MaxOpenConns → MaxConns, MaxIdleConns → MinConns.
func poolConfig(cfg Config) pg.PoolConfig {
	pc := pg.PoolConfig{
		MaxConns: int32(cfg.Postgres.MaxOpenConns),
		MinConns: int32(cfg.Postgres.MaxIdleConns),
	}
	if cfg.Postgres.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.Postgres.ConnMaxLifetime); err == nil {
			pc.ConnMaxLifetime = d
		}
	}
	return pc
}
