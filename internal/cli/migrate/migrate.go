package migrate

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"engagehub/internal/repository"
	"engagehub/pkg/config"
	"engagehub/pkg/database"
	"engagehub/pkg/utils"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	Long:  "Apply the engagement store schema to the configured database. Safe to run repeatedly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetString("config"))
		if err != nil {
			return err
		}

		db, err := database.NewDB(cfg.Database.Connection())
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer db.Close()

		ctx, cancel := utils.WithTimeout(cmd.Context())
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			return err
		}
		if err := db.ApplySchema(ctx, repository.Schema); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Schema applied to %s@%s:%d/%s\n",
			cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
		return nil
	},
}
