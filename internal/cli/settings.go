package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/trigger"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change bridge settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		snap, err := settings.Load(cmd.Context(), s)
		if err != nil {
			return err
		}
		return printValue(cmd.OutOrStdout(), snap)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <json-value>",
	Short: "Set one setting from a JSON value",
	Long: "Sets one setting. The value is JSON, for example:\n\n" +
		"  hookbridge settings set engine_url '\"https://n8n.example\"'\n" +
		"  hookbridge settings set enabled_triggers '[\"post_save\"]'\n" +
		"  hookbridge settings set webhook_urls '{\"post_save\":\"https://hooks.example/x\"}'",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := json.Marshal(map[string]json.RawMessage{args[0]: json.RawMessage(args[1])})
		if err != nil {
			return fmt.Errorf("value must be valid JSON: %w", err)
		}
		var u settings.Update
		if err := json.Unmarshal(patch, &u); err != nil {
			return fmt.Errorf("decode %s: %w", args[0], err)
		}
		if len(u.WebhookURLs) > 0 {
			dests, err := trigger.ParseDestinations(u.WebhookURLs)
			if err != nil {
				return err
			}
			if u.WebhookURLs, err = json.Marshal(dests); err != nil {
				return err
			}
		}

		s, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := u.Apply(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
		return nil
	},
}
