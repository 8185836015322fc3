package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dropDatabas3/efedauth/migrations/postgres"
)

// gooseUpContext es un seam para tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate aplica las migraciones embebidas en migrations/postgres.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(postgres.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("pg: goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("pg: migrate: %w", err)
	}
	return nil
}
