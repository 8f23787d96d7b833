package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jumpvector/core/jumpvector"
	"github.com/kilianp07/jumpvector/core/operator"
	_ "github.com/kilianp07/jumpvector/infra/handlers"
)

var (
	invokeCode  uint32
	invokeValue uint8
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run one value through the configured table locally",
	RunE:  invoke,
}

func init() {
	invokeCmd.Flags().Uint32Var(&invokeCode, "code", 0, "function code")
	invokeCmd.Flags().Uint8Var(&invokeValue, "value", 0, "value passed to the handler")
	rootCmd.AddCommand(invokeCmd)
}

func invoke(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t, err := jumpvector.Build(cfg.Table)
	if err != nil {
		return err
	}
	op := operator.New(t)
	r := op.Handle(context.Background(), operator.Command{CommandID: "cli", Code: invokeCode, Value: invokeValue, Source: "cli"})
	out, err := json.Marshal(r)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
