package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"schemabrowser/internal/config"
	"schemabrowser/internal/database"
	"schemabrowser/internal/server"
)

var (
	driverFlag     string
	sqlitePathFlag string
	policyFlag     string
	resolvedFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "dbctl",
	Short: "Browse and inspect a relational schema from the terminal",
	Long: `dbctl reads the live catalog of the configured database and prints its
tables, columns, foreign-key dependencies and rows. Connection settings come
from the same environment variables and .env file as the API server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Usage is for flag errors only.
		cmd.SilenceUsage = true
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Database driver (postgres or sqlite), overrides DB_DRIVER")
	rootCmd.PersistentFlags().StringVar(&sqlitePathFlag, "sqlite", "", "SQLite database file, implies --driver sqlite")
	rootCmd.PersistentFlags().StringVar(&policyFlag, "classification", "", "Classification YAML file, overrides CLASSIFICATION_FILE")

	rowsCmd.Flags().BoolVar(&resolvedFlag, "resolved", false, "Show the label of each referenced row next to its foreign key")

	rootCmd.AddCommand(tablesCmd, describeCmd, depsCmd, rowsCmd, diagramCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	getenv := os.Getenv
	if driverFlag != "" || sqlitePathFlag != "" {
		getenv = func(key string) string {
			switch {
			case key == "DB_DRIVER" && sqlitePathFlag != "":
				return database.DriverSQLite
			case key == "DB_DRIVER" && driverFlag != "":
				return driverFlag
			case key == "SQLITE_PATH" && sqlitePathFlag != "":
				return sqlitePathFlag
			}
			return os.Getenv(key)
		}
	}

	cfg, err := config.LoadWith(getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if policyFlag != "" {
		cfg.ClassificationFile = policyFlag
	}
	return cfg, nil
}

func withCore(ctx context.Context, fn func(core *server.Core) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	core, err := server.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()
	return fn(core)
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables with row counts, categories and unsatisfied dependencies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(core *server.Core) error {
			summaries, err := core.Tables.Overview(cmd.Context())
			if err != nil {
				return err
			}
			renderOverview(cmd.OutOrStdout(), summaries)
			return nil
		})
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Show the columns and foreign keys of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(core *server.Core) error {
			desc, err := core.Tables.DescribeTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderDescriptor(cmd.OutOrStdout(), desc)
			return nil
		})
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps <table>",
	Short: "Check whether the tables a table references hold data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(core *server.Core) error {
			info, err := core.Analyzer.AnalyzeDependencies(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderDependencies(cmd.OutOrStdout(), info)
			return nil
		})
	},
}

var rowsCmd = &cobra.Command{
	Use:   "rows <table>",
	Short: "Print every row of a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(core *server.Core) error {
			list := core.Tables.ListRows
			if resolvedFlag {
				list = core.Tables.ResolvedRows
			}
			view, err := list(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderRows(cmd.OutOrStdout(), view)
			return nil
		})
	},
}

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Print the schema as a Mermaid ER diagram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(core *server.Core) error {
			out, err := core.Diagram.Render(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo waste-management schema and its lookup rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.SeedDemoSchema(cmd.Context(), db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Demo schema ready")
		return nil
	},
}
