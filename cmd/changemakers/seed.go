package main

import (
	"context"
	"fmt"

	"changemakers/internal/db"
	"changemakers/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with fake changemakers and initiatives",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "initiatives",
			Usage: "Number of fake initiatives to create",
			Value: 12,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded initiatives first",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		logger := newLogger(cfg)

		app, err := buildApplication(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		logger.Info("Connected to database")

		if err := seed.SeedChangemakers(ctx, app.repos.changemakers); err != nil {
			return fmt.Errorf("failed to seed changemakers: %w", err)
		}

		repos := seed.InitiativeRepos{
			Initiatives: app.repos.initiatives,
			Milestones:  app.repos.milestones,
			Jobs:        app.repos.jobs,
		}
		if err := seed.SeedFakeInitiatives(ctx, repos, app.cascade, c.Int("initiatives"), c.Bool("reset")); err != nil {
			return fmt.Errorf("failed to seed initiatives: %w", err)
		}

		logger.Info("Seed complete")

		return nil
	},
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the database schema",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		logger := newLogger(cfg)

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, cfg.DatabaseSchema); err != nil {
			return err
		}

		logger.WithField("schema", cfg.DatabaseSchema).Info("schema applied")
		return nil
	},
}
