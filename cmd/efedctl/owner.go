package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/efedauth/internal/auth"
	"github.com/dropDatabas3/efedauth/internal/bootstrap"
	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/config"
	"github.com/dropDatabas3/efedauth/internal/security/password"
	"github.com/dropDatabas3/efedauth/internal/store"
	"github.com/dropDatabas3/efedauth/internal/store/pg"
)

func openStore(ctx context.Context, cfg *config.Config) (*store.Stores, error) {
	sc := store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN, Migrate: cfg.Storage.Migrate}
	sc.Postgres.MaxOpenConns = 2
	sc.Postgres.MaxIdleConns = 1
	sc.Postgres.ConnMaxLifetime = cfg.Storage.Postgres.ConnMaxLifetime
	return store.Open(ctx, sc, clock.System{})
}

func newSeedOwnerCmd(g *globals) *cobra.Command {
	var email, pass string
	cmd := &cobra.Command{
		Use:   "seed-owner",
		Short: "Crear el owner inicial (interactivo o con --email/--password)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if strings.EqualFold(cfg.Storage.Driver, "memory") {
				return errors.New("seed-owner needs a persistent storage driver (STORAGE_DRIVER=postgres)")
			}
			ctx := cmd.Context()
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			hasher := password.NewHasher()
			hasher.Algorithm = password.Algorithm(cfg.Security.PasswordHash)
			m := auth.NewManager(auth.Deps{Users: st.Users, Hasher: hasher})

			u, err := bootstrap.CheckAndCreateOwner(ctx, bootstrap.OwnerBootstrapConfig{
				Users:         st.Users,
				Seeder:        m,
				SkipPrompt:    email != "" && pass != "",
				OwnerEmail:    email,
				OwnerPassword: pass,
				In:            cmd.InOrStdin(),
				Out:           cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if u == nil {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "role=%s 2fa=%t\n", u.RoleName, u.Has2FA)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email del owner")
	cmd.Flags().StringVar(&pass, "password", "", "password del owner (evitar en shells compartidas)")
	return cmd
}

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar migraciones embebidas de Postgres (goose)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.DSN == "" {
				return errors.New("migrate requires STORAGE_DSN")
			}
			ctx := cmd.Context()
			db, err := pg.Open(ctx, cfg.Storage.DSN, pg.PoolConfig{MaxConns: 2})
			if err != nil {
				return err
			}
			defer db.Close()
			if err := pg.Migrate(ctx, db.SQL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
