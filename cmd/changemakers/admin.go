package main

import (
	"context"
	"fmt"

	"changemakers/pkg/types"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v2"
)

var initiativeCommand = &cli.Command{
	Name:  "initiative",
	Usage: "Inspect or remove a single initiative",
	Subcommands: []*cli.Command{
		{
			Name:      "show",
			Usage:     "Print an initiative with its milestones, jobs and linked blog posts",
			ArgsUsage: "<initiative-id>",
			Action: withApplication(func(ctx context.Context, c *cli.Context, app *application) error {
				id := c.Args().First()
				if id == "" {
					return fmt.Errorf("initiative id is required")
				}

				found, err := app.initiatives.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if found == nil {
					return types.ErrInitiativeNotFound
				}

				jobs, err := app.catalog.ListJobs(ctx, id)
				if err != nil {
					return err
				}

				posts, err := app.repos.blog.PostsByInitiative(ctx, id)
				if err != nil {
					return err
				}

				pp.Println(found)
				pp.Println(jobs)
				pp.Println(posts)
				return nil
			}),
		},
		{
			Name:      "delete",
			Usage:     "Delete an initiative and everything that depends on it",
			ArgsUsage: "<initiative-id>",
			Action: withApplication(func(ctx context.Context, c *cli.Context, app *application) error {
				id := c.Args().First()
				if id == "" {
					return fmt.Errorf("initiative id is required")
				}

				result, err := app.cascade.DeleteInitiative(ctx, id)
				pp.Println(result)
				if err != nil {
					return err
				}
				if !result.Deleted {
					return types.ErrInitiativeNotFound
				}
				return nil
			}),
		},
	},
}

var applicationCommand = &cli.Command{
	Name:  "application",
	Usage: "Review submitted applications",
	Subcommands: []*cli.Command{
		{
			Name:      "list",
			Usage:     "List applications of one kind for an initiative",
			ArgsUsage: "<kind> <initiative-id>",
			Action: withApplication(func(ctx context.Context, c *cli.Context, app *application) error {
				kind := types.ApplicationKind(c.Args().Get(0))
				records, err := app.intake.List(ctx, kind, c.Args().Get(1))
				if err != nil {
					return err
				}

				pp.Println(records)
				return nil
			}),
		},
		{
			Name:      "review",
			Usage:     "Apply a review action (review, approve, reject, activate, complete, withdraw)",
			ArgsUsage: "<kind> <application-id> <action>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "reviewer",
					Usage:    "Changemaker ID recorded as the reviewer",
					Required: true,
				},
			},
			Action: withApplication(func(ctx context.Context, c *cli.Context, app *application) error {
				kind := types.ApplicationKind(c.Args().Get(0))
				action, ok := app.intake.Action(c.Args().Get(2))
				if !ok {
					return fmt.Errorf("unknown review action %q", c.Args().Get(2))
				}

				record, err := action(ctx, kind, c.Args().Get(1), c.String("reviewer"))
				if err != nil {
					return err
				}

				pp.Println(record)
				return nil
			}),
		},
	},
}

func withApplication(fn func(ctx context.Context, c *cli.Context, app *application) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := c.Context
		app, err := buildApplication(ctx, cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(ctx, c, app)
	}
}
