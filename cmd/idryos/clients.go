package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/idryos/idryos-auth/internal/cache"
	"github.com/idryos/idryos-auth/internal/config"
	repo "github.com/idryos/idryos-auth/internal/domain/repository"
	"github.com/idryos/idryos-auth/internal/http/services/oauth"
	"github.com/idryos/idryos-auth/internal/security/password"
	tokens "github.com/idryos/idryos-auth/internal/security/token"
	"github.com/idryos/idryos-auth/internal/validation"
)

var defaultScopes = []string{"openid", "profile", "email"}

func (c *cli) clientsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "clients", Short: "Clientes OAuth registrados"}
	cmd.AddCommand(c.clientsCreateCmd(), c.clientsListCmd(), c.clientsDisableCmd())
	return cmd
}

func (c *cli) clientsCreateCmd() *cobra.Command {
	var (
		name      string
		redirects []string
		scopes    []string
		public    bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Registrar un cliente; el secreto se muestra una sola vez",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return errors.New("--name is required")
			}
			if len(redirects) == 0 {
				return errors.New("at least one --redirect-uri is required")
			}
			for _, u := range redirects {
				if !validation.ValidRedirectURI(u) {
					return fmt.Errorf("invalid redirect uri %q", u)
				}
			}
			if len(scopes) == 0 {
				return errors.New("at least one --scope is required")
			}
			for _, sc := range scopes {
				if !validation.ValidScopeName(sc) {
					return fmt.Errorf("invalid scope %q", sc)
				}
			}

			cl := repo.Client{
				ID:           uuid.NewString(),
				Name:         name,
				RedirectURIs: redirects,
				Scopes:       scopes,
				IsActive:     true,
				CreatedAt:    time.Now().UTC(),
			}
			var secret string
			if !public {
				var err error
				if secret, err = tokens.GenerateOpaqueToken(tokens.OpaqueBytes); err != nil {
					return err
				}
				if cl.SecretHash, err = password.NewHasher(password.Default).Hash(secret); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Clients().Create(ctx, cl); err != nil {
				return fmt.Errorf("create client: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "client_id:     %s\n", cl.ID)
			if secret != "" {
				fmt.Fprintf(out, "client_secret: %s\n", secret)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "nombre visible")
	cmd.Flags().StringArrayVar(&redirects, "redirect-uri", nil, "redirect URI permitida (repetible)")
	cmd.Flags().StringSliceVar(&scopes, "scope", defaultScopes, "scopes permitidos (repetible)")
	cmd.Flags().BoolVar(&public, "public", false, "cliente público, sin secreto")
	return cmd
}

func (c *cli) clientsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Listar clientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.Clients().List(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tACTIVE\tSCOPES\tREDIRECT_URIS")
			for _, cl := range list {
				kind := "public"
				if cl.IsConfidential() {
					kind = "confidential"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
					cl.ID, cl.Name, kind, cl.IsActive,
					strings.Join(cl.Scopes, " "), strings.Join(cl.RedirectURIs, ","))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) clientsDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <client_id>",
		Short: "Deshabilitar un cliente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Clients().SetActive(ctx, args[0], false); err != nil {
				if repo.IsNotFound(err) {
					return fmt.Errorf("client %s not found", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client %s disabled\n", args[0])
			return c.evictClient(cmd, args[0])
		},
	}
}

// evictClient saca al cliente del cache de Redis que comparten las instancias.
// Sin Redis cada instancia tiene su cache en memoria y solo queda esperar el TTL.
func (c *cli) evictClient(cmd *cobra.Command, id string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.Cache.RedisAddr == "" {
		fmt.Fprintf(out, "note: without REDIS_ADDR running instances pick this up within %s (CACHE_CLIENT_TTL)\n", cfg.Cache.ClientTTL)
		return nil
	}

	ctx := cmd.Context()
	rdb, err := cache.DialRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	if err != nil {
		return fmt.Errorf("client disabled but cache not invalidated: %w", err)
	}
	defer rdb.Close()
	if err := oauth.EvictClient(ctx, cache.NewRedis(rdb, cfg.Cache.Prefix), id); err != nil {
		return fmt.Errorf("client disabled but cache not invalidated: %w", err)
	}
	fmt.Fprintln(out, "client cache invalidated")
	return nil
}
