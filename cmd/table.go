package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jumpvector/core/jumpvector"
	_ "github.com/kilianp07/jumpvector/infra/handlers"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect the configured jump vector",
}

var tableLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the configured entries",
	RunE:  listTable,
}

var tableTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the available handler types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range jumpvector.HandlerTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	tableCmd.AddCommand(tableLsCmd, tableTypesCmd)
	rootCmd.AddCommand(tableCmd)
}

func listTable(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t, err := jumpvector.Build(cfg.Table)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INDEX\tCODE\tTYPE")
	for i, e := range t.Entries() {
		fmt.Fprintf(w, "%d\t%d\t%s\n", i, e.Code, cfg.Table.Handlers[i].Type)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d/%d entries\n", t.Len(), t.Capacity())
	return nil
}
