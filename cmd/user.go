package cmd

import (
	"fmt"
	"github.com/arya-analytics/gatekeeper/pkg/auth"
	"github.com/arya-analytics/gatekeeper/pkg/password"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user records",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Enroll a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scheme, err := cmd.Flags().GetString("scheme")
		if err != nil {
			return err
		}
		salt, err := cmd.Flags().GetString("salt")
		if err != nil {
			return err
		}
		if salt, err = saltOrNew(salt); err != nil {
			return err
		}
		return withVerifier(cmd.Context(), func(v *auth.Verifier) error {
			key, err := v.RegisterAsync(cmd.Context(), args[0], password.Raw(args[1]), scheme, salt).
				Await(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVerifier(cmd.Context(), func(v *auth.Verifier) error {
			users, err := v.Users(cmd.Context())
			if err != nil {
				return err
			}
			return printUsers(cmd, users)
		})
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username> <password> <new-password>",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		scheme, err := cmd.Flags().GetString("scheme")
		if err != nil {
			return err
		}
		salt, err := cmd.Flags().GetString("salt")
		if err != nil {
			return err
		}
		if salt, err = saltOrNew(salt); err != nil {
			return err
		}
		return withVerifier(cmd.Context(), func(v *auth.Verifier) error {
			creds := v.Config().Credentials(args[0], password.Raw(args[1]))
			return v.UpdatePassword(cmd.Context(), creds, password.Raw(args[2]), scheme, salt)
		})
	},
}

var userRenameCmd = &cobra.Command{
	Use:   "rename <username> <password> <new-username>",
	Short: "Change a user's username",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVerifier(cmd.Context(), func(v *auth.Verifier) error {
			creds := v.Config().Credentials(args[0], password.Raw(args[1]))
			return v.UpdateUsername(cmd.Context(), creds, args[2])
		})
	},
}

var userStaleCmd = &cobra.Command{
	Use:   "stale",
	Short: "List users whose password should be rehashed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scheme, err := cmd.Flags().GetString("scheme")
		if err != nil {
			return err
		}
		return withVerifier(cmd.Context(), func(v *auth.Verifier) error {
			users, err := v.StaleUsers(cmd.Context(), scheme)
			if err != nil {
				return err
			}
			return printUsers(cmd, users)
		})
	},
}

func printUsers(cmd *cobra.Command, users []auth.Principal) error {
	for _, u := range users {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", u.Key, u.Username); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userListCmd, userPasswdCmd, userRenameCmd, userStaleCmd)
	for _, c := range []*cobra.Command{userAddCmd, userPasswdCmd} {
		c.Flags().String("scheme", password.SchemePBKDF2, "Hash scheme.")
		c.Flags().String("salt", "", "Salt. A random salt is generated when empty.")
	}
	userStaleCmd.Flags().String("scheme", password.SchemePBKDF2, "Scheme passwords should be hashed with.")
}
