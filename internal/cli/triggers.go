package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	testData string
	fireData string
)

func init() {
	rootCmd.AddCommand(triggersCmd)
	triggersCmd.AddCommand(triggersListCmd, triggersTestCmd, triggersFireCmd)
	triggersTestCmd.Flags().StringVar(&testData, "data", "{}", "test data as a JSON object; an \"id\" that resolves sends the live payload")
	triggersFireCmd.Flags().StringVar(&fireData, "data", "{}", "payload as a JSON object")
}

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Inspect and exercise triggers",
}

var triggersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available triggers with enablement and destination",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, s, err := newBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		statuses, err := b.Triggers().Statuses(cmd.Context())
		if err != nil {
			return err
		}
		return printValue(cmd.OutOrStdout(), statuses)
	},
}

var triggersTestCmd = &cobra.Command{
	Use:   "test <trigger>",
	Short: "Send a test delivery for a trigger",
	Long:  "Builds a test payload and delivers it to the trigger's destination, ignoring\nenablement and conditions. The envelope carries \"test\": true.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var supplied map[string]any
		if err := json.Unmarshal([]byte(testData), &supplied); err != nil {
			return fmt.Errorf("--data: %w", err)
		}

		b, s, err := newBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		res := b.TestTrigger(cmd.Context(), args[0], supplied)
		if err := printValue(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("test failed: %s", res.Message)
		}
		return nil
	},
}

var triggersFireCmd = &cobra.Command{
	Use:   "fire <trigger>",
	Short: "Fire a trigger with a payload, honoring enablement and conditions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data map[string]any
		if err := json.Unmarshal([]byte(fireData), &data); err != nil {
			return fmt.Errorf("--data: %w", err)
		}

		b, s, err := newBridge(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		return printValue(cmd.OutOrStdout(), b.Fire(cmd.Context(), args[0], data))
	},
}
