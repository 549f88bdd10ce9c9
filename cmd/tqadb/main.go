package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dvreeze/tqa-db/internal/adapter/postgres"
	"github.com/dvreeze/tqa-db/internal/domain"
	"github.com/dvreeze/tqa-db/internal/platform/config"
	"github.com/dvreeze/tqa-db/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tqadb",
		Short:         "Read tooling for the taxonomy entrypoint store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newFindByDocsCmd())
	return root
}

func setupConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func setupDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return postgres.Connect(ctx, cfg.DatabaseURL)
}

// withRepo wires config, pool, and a repository running under read-only
// transactions, then hands the repository to fn.
func withRepo(ctx context.Context, fn func(ctx context.Context, repo *postgres.EntrypointRepo) error) error {
	cfg, err := setupConfig()
	if err != nil {
		return err
	}

	pool, err := setupDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := postgres.NewEntrypointRepo(postgres.NewReadOnlyTxRunner(pool))
	return fn(ctx, repo)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the entrypoint store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setupConfig()
			if err != nil {
				return err
			}

			pool, err := setupDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return postgres.RunMigrationsWithLock(cmd.Context(), pool)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all entrypoints with their document URIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, repo *postgres.EntrypointRepo) error {
				entrypoints, err := repo.FindAll(ctx)
				if err != nil {
					return err
				}

				sort.Slice(entrypoints, func(i, j int) bool {
					return entrypoints[i].Name < entrypoints[j].Name
				})
				for _, ep := range entrypoints {
					printEntrypoint(ep)
				}
				return nil
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one entrypoint by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd.Context(), func(ctx context.Context, repo *postgres.EntrypointRepo) error {
				ep, ok, err := repo.FindByName(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("entrypoint %q not found", args[0])
				}

				printEntrypoint(*ep)
				return nil
			})
		},
	}
}

func newFindByDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find-by-docs <uri>...",
		Short: "Find the entrypoint whose document URI set exactly matches the given URIs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docURIs, err := domain.ParseURISet(args...)
			if err != nil {
				return fmt.Errorf("invalid doc URI: %w", err)
			}

			return withRepo(cmd.Context(), func(ctx context.Context, repo *postgres.EntrypointRepo) error {
				ep, ok, err := repo.FindByDocURIs(ctx, docURIs)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no entrypoint has exactly this doc URI set")
				}

				printEntrypoint(*ep)
				return nil
			})
		},
	}
}

func printEntrypoint(ep domain.Entrypoint) {
	fmt.Println(ep.Name)
	for _, uri := range ep.DocURIs.Strings() {
		fmt.Printf("  %s\n", uri)
	}
}
