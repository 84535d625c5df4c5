package cli

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/carson-networks/banking-core/api"
	"github.com/carson-networks/banking-core/internal/sandbox"
	"github.com/carson-networks/banking-core/internal/storage"
)

var (
	serveMigrate bool

	tokenOwner string
	tokenTTL   time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)

	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending migrations before serving")

	tokenCmd.Flags().StringVar(&tokenOwner, "owner", "", "Owner to mint the token for, defaults to SESSION_OWNER_ID")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sandbox backend",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the sandbox database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a sandbox bearer token",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func runServe(cmd *cobra.Command, _ []string) error {
	store, err := storage.NewStorage(env)
	if err != nil {
		return err
	}
	defer store.Close()

	if serveMigrate {
		if err := store.Migrate(env.MigrationsPath, logger); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rest := api.Rest{
		Logger:   logger,
		Port:     env.SandboxPort,
		Storage:  store,
		Bank:     sandbox.NewBank(sandbox.NewPostgresStore(store), sandbox.OptionsFromConfig(env), logger),
		Tokens:   sandbox.NewTokenIssuer(env.JWTSecret),
		Registry: registry,
	}
	logger.Info("banking-sandbox starting")
	return rest.Serve(cmd.Context())
}

func runMigrate(_ *cobra.Command, _ []string) error {
	store, err := storage.NewStorage(env)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Migrate(env.MigrationsPath, logger)
}

func runToken(cmd *cobra.Command, _ []string) error {
	owner := tokenOwner
	if owner == "" {
		owner = env.SessionOwnerID
	}
	if owner == "" {
		return fmt.Errorf("--owner or SESSION_OWNER_ID is required")
	}

	token, err := sandbox.NewTokenIssuer(env.JWTSecret).Mint(owner, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
