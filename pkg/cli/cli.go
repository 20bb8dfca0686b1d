package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "eve",
		Usage: "Conversational companion with long-term memory",
		Commands: []*cli.Command{
			chatCommand(),
			settingsCommand(),
			patchCommand(),
			nexusCommand(),
			transcriptCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
