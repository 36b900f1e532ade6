// Command idryos es la CLI de operación: migraciones y alta de clientes OAuth.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/idryos/idryos-auth/internal/config"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/store"
)

type cli struct {
	configPath string
	dsn        string
}

// openStore resuelve el DSN (flag > config/env) y abre el store migrado.
func (c *cli) openStore(ctx context.Context) (repo.Store, error) {
	dsn := c.dsn
	if dsn == "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return nil, err
		}
		dsn = cfg.Storage.DSN
	}
	if d, _, err := store.ParseDSN(dsn); err == nil && d == store.DriverMemory {
		return nil, fmt.Errorf("dsn %q: memory store does not persist between commands", dsn)
	}
	return store.Open(ctx, dsn, store.Options{MaxConns: 2})
}

func newRootCmd() *cobra.Command {
	c := &cli{configPath: envOr("CONFIG_PATH", "config.yaml")}

	root := &cobra.Command{
		Use:           "idryos",
		Short:         "CLI de operación de idryos-auth",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "YAML de configuración (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.dsn, "dsn", "", "DSN del store; pisa DATABASE_URL")

	root.AddCommand(c.migrateCmd())
	root.AddCommand(c.clientsCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
