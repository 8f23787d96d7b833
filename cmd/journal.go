package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jumpvector/core/journal"
)

var (
	journalSince   time.Duration
	journalCode    int
	journalOutcome string
	journalLimit   int
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Read the dispatch journal",
}

var journalQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print journal records as JSON lines",
	RunE:  queryJournal,
}

func init() {
	f := journalQueryCmd.Flags()
	f.DurationVar(&journalSince, "since", 0, "only records newer than this duration")
	f.IntVar(&journalCode, "code", -1, "only records for this code")
	f.StringVar(&journalOutcome, "outcome", "", "only records with this outcome")
	f.IntVar(&journalLimit, "limit", 100, "maximum number of records, newest kept")
	journalCmd.AddCommand(journalQueryCmd)
	rootCmd.AddCommand(journalCmd)
}

func queryJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg.Journal)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	q := journal.Query{Outcome: journalOutcome, Limit: journalLimit}
	if journalSince > 0 {
		q.Start = time.Now().Add(-journalSince)
	}
	if journalCode >= 0 {
		if journalCode > 0xFF {
			return fmt.Errorf("code %d out of range", journalCode)
		}
		c := uint32(journalCode)
		q.Code = &c
	}
	recs, err := store.Query(context.Background(), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
