package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pagerank-analysis/internal/repository"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded PageRank runs",
	Long:  `List the most recent runs recorded in the history database, newest first.`,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := repository.NewGormDB(&cfg.History)
	if err != nil {
		return err
	}

	repo := repository.NewGormRunRepository(db)
	runs, err := repo.ListRecentRuns(ctx, historyLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tUUID\tINPUT\tNODES\tARCS\tITER\tCONVERGED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.RunUUID, r.InputFile,
			r.Graph.Nodes, r.Graph.Edges,
			r.Iterations, r.Converged)
	}
	return w.Flush()
}
