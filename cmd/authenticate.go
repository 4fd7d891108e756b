package cmd

import (
	"encoding/json"
	"github.com/arya-analytics/gatekeeper/pkg/auth"
	"github.com/arya-analytics/gatekeeper/pkg/password"
	"github.com/spf13/cobra"
)

var authenticateCmd = &cobra.Command{
	Use:   "authenticate <username> <password>",
	Short: "Authenticate a user and print the resulting principal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVerifier(cmd.Context(), func(v *auth.Verifier) error {
			creds := v.Config().Credentials(args[0], password.Raw(args[1]))
			p, err := auth.AuthenticateAsync(cmd.Context(), v, creds).Await(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		})
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)
}
