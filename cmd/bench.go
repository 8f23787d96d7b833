package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jumpvector/core/jumpvector"
	_ "github.com/kilianp07/jumpvector/infra/handlers"
	"github.com/kilianp07/jumpvector/pkg/bench"
)

var (
	benchRounds int
	benchHTML   string
	benchFormat string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure dispatch latency of every configured code",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 100, "passes over all 256 values per code")
	benchCmd.Flags().StringVar(&benchHTML, "html", "", "write an HTML chart to this file")
	benchCmd.Flags().StringVar(&benchFormat, "format", "csv", "stdout format: csv or json")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t, err := jumpvector.Build(cfg.Table)
	if err != nil {
		return err
	}
	var codes []uint32
	seen := map[uint32]bool{}
	for _, e := range t.Entries() {
		if !seen[e.Code] {
			seen[e.Code] = true
			codes = append(codes, e.Code)
		}
	}
	if len(codes) == 0 {
		return fmt.Errorf("table has no entries")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sums, err := bench.Run(ctx, t, codes, nil, benchRounds)
	if err != nil {
		return err
	}

	switch benchFormat {
	case "json":
		err = bench.WriteJSON(cmd.OutOrStdout(), sums)
	case "csv":
		err = bench.WriteCSV(cmd.OutOrStdout(), sums)
	default:
		err = fmt.Errorf("unknown format %q", benchFormat)
	}
	if err != nil {
		return err
	}
	if benchHTML == "" {
		return nil
	}
	f, err := os.Create(benchHTML)
	if err != nil {
		return err
	}
	if err := bench.WriteHTML(f, sums); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
