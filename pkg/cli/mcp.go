package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/aztralwrld/eve/pkg/service/mcp"
)

func mcpCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the fact store over the Model Context Protocol (stdio)",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			return mcp.New(repo).Run(ctx)
		},
	}
}
