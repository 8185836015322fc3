package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/efedauth/internal/app"
	"github.com/dropDatabas3/efedauth/internal/bootstrap"
	"github.com/dropDatabas3/efedauth/internal/config"
	httpserver "github.com/dropDatabas3/efedauth/internal/http"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

var (
	version = "dev"
	commit  = ""
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "ruta al config.yaml (opcional)")
		envFile    = flag.String("env-file", ".env", "archivo .env a cargar si existe")
		seedOwner  = flag.Bool("bootstrap", false, "pedir credenciales del owner si no existe ninguno")
	)
	flag.Parse()

	// .env es opcional: en prod las variables vienen del entorno
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Version == "" {
		cfg.App.Version = version
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "efedauth", Version: cfg.App.Version})
	defer logger.Sync()
	log := logger.L()

	if err := run(cfg, *seedOwner); err != nil {
		log.Error("service stopped with error", logger.Err(err))
		logger.Sync()
		os.Exit(1)
	}
	log.Info("service stopped")
}

func run(cfg *config.Config, seedOwner bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.L()

	c, err := app.New(logger.ToContext(ctx, log), cfg, app.Options{Commit: commit})
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn("close resources", logger.Err(err))
		}
	}()

	if seedOwner {
		if _, err := bootstrap.CheckAndCreateOwner(ctx, bootstrap.OwnerBootstrapConfig{
			Users:  c.Stores.Users,
			Seeder: c.Auth,
		}); err != nil {
			log.Warn("owner bootstrap failed; use `efedctl seed-owner` later", logger.Err(err))
		}
	}

	srv := httpserver.NewServer(httpserver.ServerConfig{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 10*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 15*time.Second),
		IdleTimeout:  config.Duration(cfg.Server.IdleTimeout, 60*time.Second),
	}, c.Handler)
	grace := config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", cfg.Server.Addr), logger.String("env", cfg.App.Env))
		return httpserver.Serve(gctx, srv, grace)
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			log.Info("shutdown signal received")
		}
		return nil
	})
	return g.Wait()
}
