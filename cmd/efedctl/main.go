// efedctl es la CLI operativa: owner inicial, migraciones, TOTP, hashes y APP_KEY.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/efedauth/internal/config"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
)

type globals struct {
	configPath string
	envFile    string
}

func (g *globals) loadConfig() (*config.Config, error) {
	_ = godotenv.Load(g.envFile)
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: "warn", ServiceName: "efedctl"})
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "efedctl",
		Short:         "CLI operativa de efedauth",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("CONFIG_PATH"), "ruta al config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "archivo .env a cargar si existe")

	root.AddCommand(
		newSeedOwnerCmd(g),
		newMigrateCmd(g),
		newTOTPCmd(),
		newHashPasswordCmd(),
		newKeyCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
