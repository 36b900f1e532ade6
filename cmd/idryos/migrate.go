package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idryos/idryos-auth/internal/store"
	"github.com/idryos/idryos-auth/internal/store/migrate"
)

// Abrir el store ya deja el esquema al día, así que "up" solo confirma la
// versión. "down" revierte una migración sobre el mismo handle.
func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Migraciones del esquema (goose)"}

	run := func(name string, fn func(cmd *cobra.Command, h sqlHandle) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: "migrate " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()
				st, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()

				db, dialect, closeDB, err := store.SQL(st)
				if err != nil {
					return err
				}
				defer closeDB()
				return fn(cmd, sqlHandle{db: db, dialect: dialect})
			},
		}
	}

	cmd.AddCommand(run("up", func(cmd *cobra.Command, h sqlHandle) error {
		if err := migrate.Up(cmd.Context(), h.db, h.dialect); err != nil {
			return err
		}
		return h.printVersion(cmd)
	}))
	cmd.AddCommand(run("down", func(cmd *cobra.Command, h sqlHandle) error {
		if err := migrate.Down(cmd.Context(), h.db, h.dialect); err != nil {
			return err
		}
		return h.printVersion(cmd)
	}))
	cmd.AddCommand(run("version", func(cmd *cobra.Command, h sqlHandle) error {
		return h.printVersion(cmd)
	}))
	return cmd
}

type sqlHandle struct {
	db      *sql.DB
	dialect migrate.Dialect
}

func (h sqlHandle) printVersion(cmd *cobra.Command) error {
	v, err := migrate.Version(cmd.Context(), h.db, h.dialect)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema version %d\n", h.dialect, v)
	return nil
}
