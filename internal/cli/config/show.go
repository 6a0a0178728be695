package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "engagehub/pkg/config"
)

const redacted = "********"

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  "Print the configuration the server would run with, after file and ENGAGEHUB_* overrides. Secrets are masked.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := appconfig.Load(viper.GetString("config"))
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(masked(*cfg))
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func masked(cfg appconfig.Config) appconfig.Config {
	if cfg.Database.Password != "" {
		cfg.Database.Password = redacted
	}
	if cfg.Identity.JWTSecret != "" {
		cfg.Identity.JWTSecret = redacted
	}
	if cfg.Redis.Password != "" {
		cfg.Redis.Password = redacted
	}
	return cfg
}

func init() {
	ConfigCmd.AddCommand(showCmd)
}
