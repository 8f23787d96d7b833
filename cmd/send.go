package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jumpvector/infra/mqtt"
)

var (
	sendCode    uint32
	sendValue   uint8
	sendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a command to a running service over MQTT and print the reply",
	RunE:  send,
}

func init() {
	sendCmd.Flags().Uint32Var(&sendCode, "code", 0, "function code")
	sendCmd.Flags().Uint8Var(&sendValue, "value", 0, "value passed to the handler")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 5*time.Second, "time to wait for the reply")
	rootCmd.AddCommand(sendCmd)
}

func send(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mc := cfg.MQTT
	mc.ClientID += "-cli"
	client, err := mqtt.NewPahoClient(mc)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()

	id, err := client.SendCommand(sendCode, sendValue)
	if err != nil {
		return err
	}
	r, err := client.WaitForReply(id, sendTimeout)
	if err != nil {
		return err
	}
	out, err := json.Marshal(r)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
