package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aztralwrld/eve/pkg/model"
)

func patchCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "patch",
		Usage: "Manage evolution patches",
		Commands: []*cli.Command{
			patchListCommand(&cfg),
			patchToggleCommand(&cfg),
			patchDeleteCommand(&cfg),
		},
	}
}

func patchListCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List installed patches",
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

			patches, err := repo.ListPatches(ctx)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if len(patches) == 0 {
				fmt.Fprintln(w, "No patches installed.")
				return nil
			}

			for _, p := range patches {
				status := "dormant"
				if p.Active {
					status = "active"
				}
				fmt.Fprintf(w, "%s  [%s]  %s\n", p.ID, status, p.Name)
				if p.Description != "" {
					fmt.Fprintf(w, "    %s\n", p.Description)
				}
				fmt.Fprintf(w, "    modifier: %s\n", p.InstructionModifier)
			}
			return nil
		},
	}
}

func patchToggleCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Usage:     "Flip a patch between active and dormant",
		ArgsUsage: "<patch-id>",
		Flags:     globalFlags(cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			id := c.Args().First()
			if id == "" {
				return goerr.New("patch-id is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			patch, err := repo.GetPatch(ctx, model.PatchID(id))
			if err != nil {
				return err
			}

			patch.Active = !patch.Active
			if err := repo.PutPatch(ctx, patch); err != nil {
				return err
			}

			status := "dormant"
			if patch.Active {
				status = "active"
			}
			fmt.Fprintf(c.Root().Writer, "Patch %s is now %s.\n", patch.ID, status)
			return nil
		},
	}
}

func patchDeleteCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a patch permanently",
		ArgsUsage: "<patch-id>",
		Flags:     globalFlags(cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			id := c.Args().First()
			if id == "" {
				return goerr.New("patch-id is required")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.DeletePatch(ctx, model.PatchID(id)); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Patch %s deleted.\n", id)
			return nil
		},
	}
}
