package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aztralwrld/eve/pkg/model"
)

func transcriptCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "transcript",
		Usage: "Inspect, export or clear the conversation history",
		Commands: []*cli.Command{
			transcriptShowCommand(&cfg),
			transcriptExportCommand(&cfg),
			transcriptClearCommand(&cfg),
		},
	}
}

func transcriptShowCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the transcript",
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

			messages, err := repo.ListMessages(ctx)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			for _, msg := range messages {
				speaker := "you"
				if msg.Role == model.RoleModel {
					speaker = "eve"
				}
				fmt.Fprintf(w, "[%s] %s> %s\n", msg.CreatedAt.Format(time.RFC3339), speaker, msg.Content)
				if msg.Attachment != "" {
					fmt.Fprintln(w, "    (attachment)")
				}
				if msg.ImageURL != "" {
					fmt.Fprintln(w, "    (generated image)")
				}
			}
			return nil
		},
	}
}

func transcriptExportCommand(cfg *config) *cli.Command {
	var output string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file path, or a bucket key when --bucket is set",
			Destination: &output,
		},
	}
	flags = append(flags, globalFlags(cfg)...)
	flags = append(flags, llmFlags(cfg)...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export the transcript as JSON",
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

			messages, err := repo.ListMessages(ctx)
			if err != nil {
				return err
			}

			var w io.WriteCloser
			switch {
			case cfg.bucket != "":
				storage, err := cfg.newStorage(ctx)
				if err != nil {
					return err
				}
				key := output
				if key == "" {
					key = fmt.Sprintf("transcripts/%s.json", time.Now().Format("2006-01-02T15-04-05"))
				}
				w, err = storage.Put(ctx, key)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "Exporting to %s\n", key)

			case output != "":
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", output))
				}
				w = f

			default:
				return goerr.New("either --output or --bucket is required")
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(messages); err != nil {
				_ = w.Close()
				return goerr.Wrap(err, "failed to encode transcript")
			}
			if err := w.Close(); err != nil {
				return goerr.Wrap(err, "failed to finalize export")
			}
			return nil
		},
	}
}

func transcriptClearCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Wipe the transcript and the fact store",
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

			if err := repo.ClearMessages(ctx); err != nil {
				return err
			}
			if err := repo.ClearNexus(ctx); err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, "Memory cleared.")
			return nil
		},
	}
}
