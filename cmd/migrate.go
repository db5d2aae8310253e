package cmd

import (
	"example.com/outcry/config"
	"example.com/outcry/internal/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var skipSeed bool

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Runs database migrations to ensure the database schema is up-to-date and
inserts the fixed job status, stage, task status and measure type rows.
This is useful for CI/CD pipelines or initial setup.`,
	RunE: runMigration,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "Only migrate tables, do not insert lookup rows")
}

// runMigration executes the database migrations
func runMigration(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := connectDatabase(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info().Msg("Running database migrations...")
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if !skipSeed {
		log.Info().Msg("Seeding lookup tables...")
		if err := database.SeedLookups(db); err != nil {
			return err
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
