//-------------------------------------------------------------------------
//
// InkWave Publishing Data Warehouse
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for inkwave-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/inkwave-data/inkwave-warehouse/internal/config"
	"github.com/inkwave-data/inkwave-warehouse/internal/logging"
	"github.com/inkwave-data/inkwave-warehouse/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "inkwave-etl",
		Short: "Dimensional warehouse ETL for InkWave Publishing",
		Long: `inkwave-etl maintains the InkWave Publishing star-schema warehouse:
it creates the dimensional schema, generates the calendar dimension, seeds
synthetic reference and staging data, and loads validated staging records
into the sales and daily-operations fact tables with checkpointed batches.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./inkwave-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
