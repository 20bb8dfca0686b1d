// Package conversation implements the structured multi-channel response
// protocol between the companion and the remote model: session lifecycle,
// segment extraction from raw replies, and generation side effects.
package conversation

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aztralwrld/eve/pkg/adapter"
	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/utils/logging"
)

// FallbackReply is the fixed user-visible reply when the send step itself
// fails. Partial failures (image or speech synthesis) are invisible except
// for the corresponding field being absent.
const FallbackReply = "I am experiencing a sensory disruption. Connection unstable."

// UseCase is the turn orchestrator: the public entry point for one user
// turn. A turn runs end-to-end sequentially: send, parse, image synthesis,
// speech synthesis.
type UseCase struct {
	manager *Manager
	effects *Dispatcher
}

func New(gemini adapter.Gemini) *UseCase {
	return &UseCase{
		manager: NewManager(gemini),
		effects: NewDispatcher(gemini),
	}
}

// Ensure rebuilds the session when the durable-state snapshot changed
func (u *UseCase) Ensure(ctx context.Context, input EnsureInput) {
	u.manager.Ensure(ctx, input)
}

// Dispose discards the live session
func (u *UseCase) Dispose() {
	u.manager.Dispose()
}

// TurnInput is one user turn
type TurnInput struct {
	Text       string
	Settings   model.Settings
	Attachment string // data URI, optional
}

// TurnResult is the normalized outcome of one turn. The caller is
// responsible for turning Proposal/Fact/State into durable updates; this
// layer only extracts and surfaces them once.
type TurnResult struct {
	Text      string
	State     *model.State
	Proposal  *model.Proposal
	Fact      *model.NexusCandidate
	ImageURL  string
	AudioData string
}

// SendTurn drives one full turn. Transport failures on the send step degrade
// to the fixed fallback reply; side-effect failures only blank their field.
// The only error returned is ErrSessionUnavailable when lazy bootstrap
// fails.
func (u *UseCase) SendTurn(ctx context.Context, input TurnInput) (*TurnResult, error) {
	if !u.manager.Live() {
		u.manager.Ensure(ctx, EnsureInput{Settings: input.Settings})
		if !u.manager.Live() {
			return nil, goerr.Wrap(model.ErrSessionUnavailable, "session bootstrap failed")
		}
	}

	raw, err := u.manager.Send(ctx, input.Text, input.Attachment)
	if err != nil {
		logging.From(ctx).Error("turn send failed", "error", err)
		return &TurnResult{Text: FallbackReply}, nil
	}

	parsed := ParseReply(raw)
	result := &TurnResult{
		Text:     parsed.Text,
		State:    parsed.State,
		Proposal: parsed.Proposal,
		Fact:     parsed.Fact,
	}

	if parsed.VisionPrompt != "" {
		imageURL, err := u.effects.GenerateImage(ctx, parsed.VisionPrompt)
		if err != nil {
			logging.From(ctx).Warn("image generation failed", "error", err)
		} else {
			result.ImageURL = imageURL
		}
	}

	if input.Settings.EnableVoice && result.Text != "" {
		audio, err := u.effects.GenerateSpeech(ctx, result.Text)
		if err != nil {
			logging.From(ctx).Warn("speech generation failed", "error", err)
		} else {
			result.AudioData = audio
		}
	}

	return result, nil
}
