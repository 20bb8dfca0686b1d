package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aztralwrld/eve/pkg/adapter"
	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/usecase/companion"
	"github.com/aztralwrld/eve/pkg/utils/logging"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.setup(); err != nil {
				return err
			}

			uc, repo, err := cfg.newCompanion(ctx)
			if errors.Is(err, model.ErrNoCredentials) {
				logging.From(ctx).Warn("chat disabled", "error", err)
				fmt.Fprintln(c.Root().Writer, "Chat is disabled: no model credentials configured. Set GEMINI_API_KEY to enable it.")
				return nil
			}
			if err != nil {
				return err
			}
			defer repo.Close()

			var archive adapter.Storage
			if cfg.bucket != "" {
				archive, err = cfg.newStorage(ctx)
				if err != nil {
					logging.From(ctx).Warn("media archive disabled", "error", err)
				}
			}

			rl, err := readline.New("you> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize prompt")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintln(w, "Session started. Type 'exit' to quit, /attach <path> to send a file, /clear to wipe memory.")

			var attachment string
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "prompt read failed")
				}

				input := strings.TrimSpace(line)
				switch {
				case input == "":
					continue
				case input == "exit" || input == "quit":
					fmt.Fprintln(w, "Session ended.")
					return nil
				case input == "/clear":
					if err := uc.ClearMemory(ctx); err != nil {
						return err
					}
					fmt.Fprintln(w, "Memory cleared.")
					continue
				case strings.HasPrefix(input, "/attach "):
					uri, err := loadAttachment(strings.TrimSpace(strings.TrimPrefix(input, "/attach ")))
					if err != nil {
						fmt.Fprintf(w, "attach failed: %s\n", err)
						continue
					}
					attachment = uri
					fmt.Fprintln(w, "Attachment staged for the next message.")
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				sp.Suffix = " thinking..."
				sp.Start()
				out, err := uc.Chat(ctx, input, attachment)
				sp.Stop()
				attachment = ""

				if err != nil {
					return goerr.Wrap(err, "turn failed")
				}

				settings, err := uc.Settings(ctx)
				if err != nil {
					return err
				}
				printReply(ctx, w, out, archive, settings.DeveloperMode)

				if out.Proposal != nil {
					if err := promptProposal(ctx, w, rl, uc, out.Proposal); err != nil {
						return err
					}
				}
			}

			fmt.Fprintln(w, "\nSession ended.")
			return nil
		},
	}
}

func printReply(ctx context.Context, w io.Writer, out *companion.ChatOutput, archive adapter.Storage, developer bool) {
	fmt.Fprintf(w, "eve> %s\n", out.Reply.Content)

	if developer && out.Reply.State != nil {
		st := out.Reply.State
		fmt.Fprintf(w, "  [zone=%s load=%.2f align=%.2f mode=%s resonance=%s]\n",
			st.ActiveZone, st.ComplexityLoad, st.ContextAlignment, st.CreativeMode, st.ResonanceLevel)
		if st.ValueTension != "" {
			fmt.Fprintf(w, "  [tension: %s]\n", st.ValueTension)
		}
	}

	if out.Reply.ImageURL != "" {
		describeMedia(ctx, w, archive, out.Reply.ID, "image", out.Reply.ImageURL)
	}
	if out.Reply.AudioData != "" {
		fmt.Fprintf(w, "  [audio generated, %d bytes base64]\n", len(out.Reply.AudioData))
	}
}

// describeMedia archives a generated image when a bucket is configured, and
// otherwise just announces it
func describeMedia(ctx context.Context, w io.Writer, archive adapter.Storage, id model.MessageID, kind, dataURI string) {
	if archive == nil {
		fmt.Fprintf(w, "  [%s generated, inline only]\n", kind)
		return
	}

	mimeType, data, err := model.DecodeDataURI(dataURI)
	if err != nil {
		logging.From(ctx).Warn("cannot archive malformed media", "error", err)
		return
	}

	object := fmt.Sprintf("media/%s", id)
	wc, err := archive.Put(ctx, object)
	if err != nil {
		logging.From(ctx).Warn("media archive unavailable", "error", err)
		return
	}
	if _, err := wc.Write(data); err != nil {
		logging.From(ctx).Warn("media archive write failed", "error", err)
		_ = wc.Close()
		return
	}
	if err := wc.Close(); err != nil {
		logging.From(ctx).Warn("media archive close failed", "error", err)
		return
	}

	fmt.Fprintf(w, "  [%s archived as %s (%s)]\n", kind, object, mimeType)
}

func promptProposal(ctx context.Context, w io.Writer, rl *readline.Instance, uc *companion.UseCase, p *model.Proposal) error {
	fmt.Fprintf(w, "\nProposal: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
	fmt.Fprintf(w, "  modifier: %s\n", p.InstructionModifier)

	rl.SetPrompt("accept? [y/N] ")
	defer rl.SetPrompt("you> ")

	line, err := rl.Readline()
	if err != nil {
		return nil
	}

	if strings.EqualFold(strings.TrimSpace(line), "y") {
		patch, err := uc.AcceptProposal(ctx, *p)
		if err != nil {
			return goerr.Wrap(err, "failed to accept proposal")
		}
		fmt.Fprintf(w, "Patch %s installed and active.\n", patch.ID)
	} else {
		fmt.Fprintln(w, "Proposal declined.")
	}
	return nil
}

// loadAttachment reads a local file into a data URI, sniffing the MIME type
// from content
func loadAttachment(path string) (string, error) {
	if path == "" {
		return "", goerr.New("attachment path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read attachment", goerr.V("path", path))
	}

	return model.EncodeDataURI(http.DetectContentType(data), data), nil
}
