// Package companion ties the durable state (transcript, settings, patches,
// nexus facts) to the conversation core: it owns session freshness, persists
// both sides of every turn, and applies the structured segments a reply
// surfaced.
package companion

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aztralwrld/eve/pkg/adapter"
	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/repository"
	"github.com/aztralwrld/eve/pkg/usecase/conversation"
	"github.com/aztralwrld/eve/pkg/utils/logging"
)

type UseCase struct {
	repo repository.Repository
	conv *conversation.UseCase
	base string
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithBaseInstruction overrides the embedded persona instruction
func WithBaseInstruction(base string) Option {
	return func(uc *UseCase) {
		uc.base = base
	}
}

// New creates a companion UseCase instance
func New(repo repository.Repository, gemini adapter.Gemini, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		conv: conversation.New(gemini),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ChatOutput is the outcome of one turn as seen by the caller: the persisted
// reply plus a proposal pending user decision, if any
type ChatOutput struct {
	Reply    *model.Message
	Proposal *model.Proposal
}

// Chat runs one full turn: snapshot durable state, ensure the session is
// current, send, persist both messages, and store a surfaced fact. The
// proposal is returned rather than stored; it becomes a patch only through
// AcceptProposal.
func (u *UseCase) Chat(ctx context.Context, text, attachment string) (*ChatOutput, error) {
	if strings.TrimSpace(text) == "" && attachment == "" {
		return nil, goerr.New("turn has neither text nor attachment")
	}

	settings, err := u.repo.GetSettings(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load settings")
	}
	patches, err := u.repo.ListPatches(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load patches")
	}
	facts, err := u.repo.ListNexusEntries(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load nexus entries")
	}
	history, err := u.repo.ListMessages(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load transcript")
	}

	u.conv.Ensure(ctx, conversation.EnsureInput{
		Base:     u.base,
		Settings: settings,
		History:  history,
		Patches:  patches,
		Facts:    facts,
	})

	result, err := u.conv.SendTurn(ctx, conversation.TurnInput{
		Text:       text,
		Settings:   settings,
		Attachment: attachment,
	})
	if err != nil {
		return nil, err
	}

	userMsg := model.NewUserMessage(text, attachment)
	if err := u.repo.PutMessage(ctx, userMsg); err != nil {
		return nil, goerr.Wrap(err, "failed to persist user message")
	}

	reply := model.NewModelMessage(result.Text)
	reply.State = result.State
	reply.ImageURL = result.ImageURL
	reply.AudioData = result.AudioData
	if err := u.repo.PutMessage(ctx, reply); err != nil {
		return nil, goerr.Wrap(err, "failed to persist reply")
	}

	if result.Fact != nil {
		if err := u.rememberFact(ctx, *result.Fact); err != nil {
			// The turn already succeeded; losing one fact is not worth failing it
			logging.From(ctx).Warn("failed to store nexus fact", "error", err)
		}
	}

	return &ChatOutput{Reply: reply, Proposal: result.Proposal}, nil
}

// Transcript returns the full conversation in order
func (u *UseCase) Transcript(ctx context.Context) ([]*model.Message, error) {
	return u.repo.ListMessages(ctx)
}

// ClearMemory wipes the transcript and the nexus store, and discards the
// live session so the next turn starts from a clean context
func (u *UseCase) ClearMemory(ctx context.Context) error {
	if err := u.repo.ClearMessages(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear transcript")
	}
	if err := u.repo.ClearNexus(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear nexus store")
	}
	u.conv.Dispose()
	return nil
}

// Settings returns the stored profile
func (u *UseCase) Settings(ctx context.Context) (model.Settings, error) {
	return u.repo.GetSettings(ctx)
}

// UpdateSettings stores a clamped profile. The next Chat call sees a changed
// assembled context and recreates the session.
func (u *UseCase) UpdateSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	clamped := settings.Clamp()
	if err := u.repo.PutSettings(ctx, clamped); err != nil {
		return model.Settings{}, goerr.Wrap(err, "failed to store settings")
	}
	return clamped, nil
}

// ResetSettings restores the default profile
func (u *UseCase) ResetSettings(ctx context.Context) (model.Settings, error) {
	return u.UpdateSettings(ctx, model.DefaultSettings())
}
