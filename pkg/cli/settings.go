package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/aztralwrld/eve/pkg/model"
)

func settingsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the conversation profile",
		Commands: []*cli.Command{
			settingsShowCommand(&cfg),
			settingsSetCommand(&cfg),
			settingsResetCommand(&cfg),
		},
	}
}

func settingsShowCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the current profile",
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

			settings, err := repo.GetSettings(ctx)
			if err != nil {
				return err
			}

			printSettings(c, settings)
			return nil
		},
	}
}

func settingsSetCommand(cfg *config) *cli.Command {
	var (
		detail     int64
		creativity int64
		warmth     int64
		developer  bool
		voice      bool
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "detail",
			Usage:       "Response detail, 0-100",
			Value:       -1,
			Destination: &detail,
		},
		&cli.IntFlag{
			Name:        "creativity",
			Usage:       "Creativity (sampling temperature), 0-100",
			Value:       -1,
			Destination: &creativity,
		},
		&cli.IntFlag{
			Name:        "warmth",
			Usage:       "Conversational warmth, 0-100",
			Value:       -1,
			Destination: &warmth,
		},
		&cli.BoolFlag{
			Name:        "developer",
			Usage:       "Show telemetry after each reply",
			Destination: &developer,
		},
		&cli.BoolFlag{
			Name:        "voice",
			Usage:       "Synthesize speech for each reply",
			Destination: &voice,
		},
	}
	flags = append(flags, globalFlags(cfg)...)

	return &cli.Command{
		Name:  "set",
		Usage: "Update profile values (unset sliders keep their value)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			settings, err := repo.GetSettings(ctx)
			if err != nil {
				return err
			}

			if detail >= 0 {
				settings.Detail = int(detail)
			}
			if creativity >= 0 {
				settings.Creativity = int(creativity)
			}
			if warmth >= 0 {
				settings.Warmth = int(warmth)
			}
			if c.IsSet("developer") {
				settings.DeveloperMode = developer
			}
			if c.IsSet("voice") {
				settings.EnableVoice = voice
			}

			settings = settings.Clamp()
			if err := repo.PutSettings(ctx, settings); err != nil {
				return err
			}

			printSettings(c, settings)
			return nil
		},
	}
}

func settingsResetCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Restore the default profile",
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

			settings := model.DefaultSettings()
			if err := repo.PutSettings(ctx, settings); err != nil {
				return err
			}

			printSettings(c, settings)
			return nil
		},
	}
}

func printSettings(c *cli.Command, s model.Settings) {
	w := c.Root().Writer
	fmt.Fprintf(w, "detail:     %d\n", s.Detail)
	fmt.Fprintf(w, "creativity: %d\n", s.Creativity)
	fmt.Fprintf(w, "warmth:     %d\n", s.Warmth)
	fmt.Fprintf(w, "developer:  %t\n", s.DeveloperMode)
	fmt.Fprintf(w, "voice:      %t\n", s.EnableVoice)
}
