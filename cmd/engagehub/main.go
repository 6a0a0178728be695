package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"engagehub/internal/cli/comments"
	"engagehub/internal/cli/config"
	"engagehub/internal/cli/metrics"
	"engagehub/internal/cli/migrate"
)

var rootCmd = &cobra.Command{
	Use:          "engagehub",
	Short:        "Engagehub administration CLI",
	Long:         "Manage the engagehub schema and configuration, and inspect comments and metrics of a running server",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "server config file (default: ./engagehub.yaml)")
	rootCmd.PersistentFlags().String("server", "", "server base URL, e.g. http://localhost:8080")
	rootCmd.PersistentFlags().String("user", "", "caller identity sent as X-User-ID")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("user.id", rootCmd.PersistentFlags().Lookup("user"))

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetEnvPrefix("ENGAGEHUB_CLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(migrate.MigrateCmd)
	rootCmd.AddCommand(config.ConfigCmd)
	rootCmd.AddCommand(metrics.MetricsCmd)
	rootCmd.AddCommand(comments.CommentsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
