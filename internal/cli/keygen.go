package cli

import (
	"github.com/spf13/cobra"

	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/signature"
)

var keygenApply bool

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().BoolVar(&keygenApply, "apply", false, "store the generated credentials as api_key and signing_secret")
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an inbound API key and an outbound signing secret",
	RunE: func(cmd *cobra.Command, _ []string) error {
		apiKey := signature.GenerateAPIKey()
		secret := signature.GenerateSecret()

		if keygenApply {
			s, err := openStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := settings.Set(cmd.Context(), s, settings.KeyAPIKey, apiKey); err != nil {
				return err
			}
			if err := settings.Set(cmd.Context(), s, settings.KeySigningSecret, secret); err != nil {
				return err
			}
		}

		return printValue(cmd.OutOrStdout(), map[string]string{
			"api_key":        apiKey,
			"signing_secret": secret,
		})
	},
}
