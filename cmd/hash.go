package cmd

import (
	"fmt"
	"github.com/arya-analytics/gatekeeper/pkg/password"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var hashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "Print the stored form of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		salt, err := saltOrNew(viper.GetString("salt"))
		if err != nil {
			return err
		}
		h, err := password.DefaultRegistry().Hash(viper.GetString("scheme"), salt, password.Raw(args[0]))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), h)
		return err
	},
}

func saltOrNew(salt string) (string, error) {
	if salt != "" {
		return salt, nil
	}
	return password.NewSalt()
}

func init() {
	rootCmd.AddCommand(hashCmd)
	hashCmd.Flags().String("scheme", password.SchemePBKDF2, "Hash scheme.")
	hashCmd.Flags().String("salt", "", "Salt. A random salt is generated when empty.")
	if err := viper.BindPFlags(hashCmd.Flags()); err != nil {
		panic(err)
	}
}
