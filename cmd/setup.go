package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/seedmix/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Enable at least one provider under [providers] and add its credentials\n")
	r.writePlain("2. Run 'seedmix setup database -c %s'\n", configPath)
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the example first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil && r.config == nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}
	config := r.loadConfig(cmd)

	r.logger.Info("initializing database", "path", config.Database.Path)
	if err := r.openDatabase(config); err != nil {
		return err
	}

	applied, err := shared.AppliedMigrations(r.db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v (%d migrations applied)", config.Database.Path, len(applied))
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}
