package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/hookbridge/deliverylog"
)

var (
	logsType   string
	logsStatus string
)

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsClearCmd)
	logsCmd.Flags().StringVar(&logsType, "type", "", "filter by entry type: trigger or action")
	logsCmd.Flags().StringVar(&logsStatus, "status", "", "filter by outcome: success or error")
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the delivery log, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, s, err := newBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := b.Log().List(cmd.Context(), deliverylog.Filter{
			Type:   deliverylog.Type(logsType),
			Status: deliverylog.Status(logsStatus),
		})
		if err != nil {
			return err
		}
		return printValue(cmd.OutOrStdout(), entries)
	},
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every delivery log entry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, s, err := newBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := b.Log().Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logs cleared")
		return nil
	},
}
