package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/usecase/companion"
)

func nexusCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "nexus",
		Usage: "Manage the long-term fact store",
		Commands: []*cli.Command{
			nexusListCommand(&cfg),
			nexusAddCommand(&cfg),
			nexusForgetCommand(&cfg),
		},
	}
}

func nexusListCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored facts",
		Flags: globalFlags(cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			entries, err := repo.ListNexusEntries(ctx)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if len(entries) == 0 {
				fmt.Fprintln(w, "No facts stored.")
				return nil
			}

			for _, e := range entries {
				fmt.Fprintf(w, "%s  [%s]  %s\n", e.ID, e.Category, e.Content)
			}
			return nil
		},
	}
}

func nexusAddCommand(cfg *config) *cli.Command {
	var category string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Preference, Rule, Secret or Fact",
			Value:       string(model.CategoryFact),
			Destination: &category,
		},
	}
	flags = append(flags, globalFlags(cfg)...)

	return &cli.Command{
		Name:      "add",
		Usage:     "Store a fact directly",
		ArgsUsage: "<content>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			content := c.Args().First()
			if content == "" {
				return goerr.New("content is required")
			}

			cat := model.NexusCategory(category)
			if err := cat.Validate(); err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			entry, inserted, err := companion.StoreFact(ctx, repo, model.NexusCandidate{Content: content, Category: cat})
			if err != nil {
				return err
			}

			if inserted {
				fmt.Fprintf(c.Root().Writer, "Stored %s [%s].\n", entry.ID, entry.Category)
			} else {
				fmt.Fprintf(c.Root().Writer, "Already known as %s [%s].\n", entry.ID, entry.Category)
			}
			return nil
		},
	}
}

func nexusForgetCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "forget",
		Usage:     "Delete one fact by ID",
		ArgsUsage: "<entry-id>",
		Flags:     globalFlags(cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			id := c.Args().First()
			if id == "" {
				return goerr.New("entry-id is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.DeleteNexusEntry(ctx, model.NexusEntryID(id)); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Forgot %s.\n", id)
			return nil
		},
	}
}
