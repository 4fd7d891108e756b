package cmd

import (
	"context"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"strings"
)

var rootCmd = &cobra.Command{
	Use:   "gatekeeper",
	Short: "Verify username/password credentials against a document store",
	Long: `gatekeeper hashes, enrolls and authenticates users whose records live in a
document store. Records are kept either in an embedded pebble database or in MongoDB.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile := viper.GetString("config")
		if cfgFile == "" {
			return nil
		}
		viper.SetConfigFile(cfgFile)
		return viper.ReadInConfig()
	},
}

// Execute runs the root command, cancelling its context on an interrupt.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	viper.SetEnvPrefix("gatekeeper")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file.")
	flags.Bool("debug", false, "Enable debug logging.")
	flags.String("store", storePebble, "Store backend: pebble, mongo or mem.")
	flags.StringP("data", "d", "gatekeeper-data", "Dirname the pebble store writes its data to.")
	flags.Bool("mem", false, "Keep the pebble store in memory.")
	flags.String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection string.")
	flags.String("mongo-database", "gatekeeper", "MongoDB database holding user records.")
	flags.String("collection", "", "Collection holding user records.")
	flags.String("username-field", "", "Record field holding the username.")
	flags.String("password-field", "", "Record field holding the password hash.")
	flags.String("default-scheme", "", "Hash scheme for records without a scheme tag.")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}
