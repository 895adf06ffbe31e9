package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/pagerank-analysis/internal/engine"
	"github.com/pagerank-analysis/internal/formatter"
	"github.com/pagerank-analysis/internal/graph"
	"github.com/pagerank-analysis/internal/progress"
	"github.com/pagerank-analysis/internal/repository"
	"github.com/pagerank-analysis/internal/statistics"
	"github.com/pagerank-analysis/internal/storage"
	"github.com/pagerank-analysis/pkg/model"
	"github.com/pagerank-analysis/pkg/telemetry"
	"github.com/pagerank-analysis/pkg/utils"
	"github.com/pagerank-analysis/pkg/writer"
)

const cosPrefix = "cos://"

var (
	// Rank command flags
	topK         int
	maxIter      int
	damping      float64
	epsilon      float64
	workers      int
	signalReport bool
	saveRun      bool
	outputFile   string
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank <infile>",
	Short: "Compute PageRank over a Matrix-Market graph",
	Long: `Compute PageRank for the directed graph described by a Matrix-Market
coordinate file, using teleporting and the damping factor as in the original
PageRank paper, and print the K highest ranked nodes.

The input is either a local file path or a cos://<key> reference resolved
through the configured object storage.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntVarP(&topK, "top", "k", 3, "Show top K nodes")
	rankCmd.Flags().IntVarP(&maxIter, "max-iter", "m", 100, "Maximum number of iterations")
	rankCmd.Flags().Float64VarP(&damping, "damping", "d", 0.9, "Damping factor, in (0,1)")
	rankCmd.Flags().Float64VarP(&epsilon, "epsilon", "e", 1e-7, "Convergence tolerance")
	rankCmd.Flags().IntVarP(&workers, "workers", "t", 3, "Worker thread count")
	rankCmd.Flags().BoolVarP(&signalReport, "signal", "s", false, "Enable the signal reporter (SIGUSR1 prints progress)")
	rankCmd.Flags().BoolVar(&saveRun, "save", false, "Record the run in the history database")
	rankCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Export the full result as JSON (.gz to compress)")
}

// rankParams resolves the effective parameters: explicit flags beat the
// config file, which beats the built-in defaults.
func rankParams(cmd *cobra.Command) engine.Config {
	ec := engine.Config{
		Damping: cfg.Rank.Damping,
		Epsilon: cfg.Rank.Epsilon,
		MaxIter: cfg.Rank.MaxIter,
		Workers: cfg.Rank.Workers,
	}
	if cmd.Flags().Changed("damping") {
		ec.Damping = damping
	}
	if cmd.Flags().Changed("epsilon") {
		ec.Epsilon = epsilon
	}
	if cmd.Flags().Changed("max-iter") {
		ec.MaxIter = maxIter
	}
	if cmd.Flags().Changed("workers") {
		ec.Workers = workers
	}
	return ec
}

func runRank(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ec := rankParams(cmd)
	if err := ec.Validate(); err != nil {
		return err
	}

	k := cfg.Rank.TopK
	if cmd.Flags().Changed("top") {
		k = topK
	}
	if k < 1 {
		return fmt.Errorf("top-k must be positive, got %d", k)
	}

	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		log.Warn("telemetry init failed: %v", err)
	} else {
		defer shutdown(ctx)
	}
	tracer := otel.Tracer("pagerank-analysis")

	timer := utils.NewTimer("pagerank")

	// The reporter starts before parsing so an early SIGUSR1 reports the
	// parsing state.
	state := progress.NewState()
	if signalReport {
		reporter := progress.NewReporter(state, os.Stderr, log)
		reporter.Start()
		defer reporter.Stop()
	}

	input, cleanup, err := resolveInput(ctx, args[0], log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, parseSpan := tracer.Start(ctx, "graph.parse")
	timer.StartPhase("parse")
	g, err := graph.ParseFile(ctx, input, graph.Options{
		Workers:    ec.Workers,
		BufferSize: cfg.Ingest.BufferSize,
		InListCap:  cfg.Ingest.InListCap,
		Logger:     log,
		Timer:      timer,
	})
	parseDuration := timer.StopPhase("parse")
	parseSpan.End()
	if err != nil {
		return err
	}

	summary := model.GraphSummary{Nodes: g.Nodes, DeadEnds: len(g.Dead), Edges: g.Edges}
	formatter.WriteGraphInfo(os.Stdout, summary)

	ctx, computeSpan := tracer.Start(ctx, "pagerank.compute")
	timer.StartPhase("compute")
	ranks, iterations, err := engine.Run(g, ec, state, log)
	computeDuration := timer.StopPhase("compute")
	computeSpan.End()
	if err != nil {
		return err
	}

	res := &model.Result{
		RunUUID:         generateRunUUID(),
		InputFile:       args[0],
		CreatedAt:       time.Now(),
		Graph:           summary,
		Damping:         ec.Damping,
		Epsilon:         ec.Epsilon,
		MaxIter:         ec.MaxIter,
		Workers:         ec.Workers,
		Iterations:      iterations,
		Converged:       iterations < ec.MaxIter,
		SumRanks:        statistics.Sum(ranks),
		TopK:            statistics.TopK(ranks, k),
		Ranks:           ranks,
		ParseDuration:   parseDuration,
		ComputeDuration: computeDuration,
	}

	formatter.WriteStats(os.Stdout, res)
	timer.Report(log)

	if outputFile != "" {
		if err := writer.Export(res, outputFile); err != nil {
			return fmt.Errorf("failed to export result: %w", err)
		}
		log.Info("result exported to %s", outputFile)
	}

	if saveRun || cfg.History.Enabled {
		if err := recordRun(ctx, res, log); err != nil {
			return err
		}
	}

	return nil
}

// resolveInput stages cos:// references to a temporary file and returns the
// local path to parse, with a cleanup function.
func resolveInput(ctx context.Context, input string, log utils.Logger) (string, func(), error) {
	if !strings.HasPrefix(input, cosPrefix) {
		if _, err := os.Stat(input); err != nil {
			return "", nil, fmt.Errorf("input file not found: %s", input)
		}
		return input, func() {}, nil
	}

	key := strings.TrimPrefix(input, cosPrefix)
	store, err := storage.New(&cfg.Storage)
	if err != nil {
		return "", nil, err
	}

	dir, err := os.MkdirTemp("", "pagerank-*")
	if err != nil {
		return "", nil, err
	}
	staged := filepath.Join(dir, filepath.Base(key))

	log.Info("staging %s", store.GetURL(key))
	if err := store.DownloadFile(ctx, key, staged); err != nil {
		os.RemoveAll(dir)
		return "", nil, err
	}

	return staged, func() { os.RemoveAll(dir) }, nil
}

// recordRun stores the result in the history database.
func recordRun(ctx context.Context, res *model.Result, log utils.Logger) error {
	db, err := repository.NewGormDB(&cfg.History)
	if err != nil {
		return err
	}

	repo := repository.NewGormRunRepository(db)
	if err := repo.SaveRun(ctx, res); err != nil {
		return err
	}

	log.Info("run %s recorded", res.RunUUID)
	return nil
}

func generateRunUUID() string {
	return fmt.Sprintf("run-%d-%d", time.Now().UnixNano(), os.Getpid())
}
