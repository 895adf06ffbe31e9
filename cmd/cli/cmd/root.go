// Package cmd implements the pagerank command line interface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pagerank-analysis/pkg/config"
	"github.com/pagerank-analysis/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pagerank-analysis",
	Short: "A parallel PageRank tool for Matrix-Market graphs",
	Long: `pagerank-analysis computes PageRank over directed graphs stored in the
Matrix-Market coordinate format: https://math.nist.gov/MatrixMarket/formats.html#MMformat

Ingestion and the power iteration both run on a worker pool; it is suggested
to use a worker count that matches (or is close to) the CPU core count.
Graphs can be read from the local filesystem or staged from object storage,
and finished runs can be recorded in a history database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logLevel := utils.ParseLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewTextLogger(logLevel, os.Stderr)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	binName := BinName()
	rootCmd.Example = `  # Rank a local graph, reporting the top 3 nodes
  ` + binName + ` rank ./web-graph.mtx

  # Ten top nodes, eight workers, tighter tolerance
  ` + binName + ` rank ./web-graph.mtx -k 10 -t 8 -e 1e-9

  # Enable the signal reporter (SIGUSR1 prints live progress)
  ` + binName + ` rank ./web-graph.mtx -s

  # Rank a graph stored in COS and record the run
  ` + binName + ` rank cos://graphs/in-2004.mtx --save

  # Show recorded runs
  ` + binName + ` history -n 20`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	if logger == nil {
		return utils.NopLogger()
	}
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
