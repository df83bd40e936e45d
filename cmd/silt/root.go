package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/silt"
	"github.com/aretw0/silt/internal/platform"
	"github.com/spf13/cobra"
)

var (
	verbose  bool
	dataDir  string
	database string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "silt",
	Short: "An embedded JSON document store with accounts and connections",
	Long: `Silt stores schema-free records as plain JSON files, one per collection.
It adds filtered queries, a $set/$inc update algebra with upsert, and a
user account repository with case-insensitive uniqueness.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := platform.LoadConfig()
		if err != nil {
			return err
		}

		if dataDir == "" {
			dataDir = cfg.DataDir
		}
		if database == "" {
			database = cfg.Database
		}

		level := slog.LevelInfo
		if verbose || cfg.LogLevel == "debug" {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
}

// openDB assembles the store handle from the resolved configuration.
func openDB() (*silt.DB, error) {
	return silt.Open(dataDir,
		silt.WithDatabase(database),
		silt.WithLogger(slog.Default()),
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data root directory (default from silt.yaml or \"data\")")
	rootCmd.PersistentFlags().StringVar(&database, "database", "", "Database name (default from silt.yaml or \""+platform.DefaultDatabase+"\")")
}
