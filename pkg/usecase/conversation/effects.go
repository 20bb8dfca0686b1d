package conversation

import (
	"context"
	"encoding/base64"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aztralwrld/eve/pkg/adapter"
	"github.com/aztralwrld/eve/pkg/model"
)

// Dispatcher runs the per-turn generation side effects. Both calls are
// independent and their failures are non-fatal to the turn; the caller logs
// the error and leaves the corresponding field absent.
type Dispatcher struct {
	gemini adapter.Gemini
}

func NewDispatcher(gemini adapter.Gemini) *Dispatcher {
	return &Dispatcher{gemini: gemini}
}

// GenerateImage synthesizes one image from a vision prompt and returns it as
// a renderable data URI
func (d *Dispatcher) GenerateImage(ctx context.Context, visionPrompt string) (string, error) {
	resp, err := d.gemini.GenerateImage(ctx, visionPrompt)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", goerr.New("image response has no candidates")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil {
			return model.EncodeDataURI(part.InlineData.MIMEType, part.InlineData.Data), nil
		}
	}

	return "", goerr.New("image response has no inline payload")
}

// GenerateSpeech synthesizes speech for the cleaned prose and returns the
// raw PCM payload base64-encoded
func (d *Dispatcher) GenerateSpeech(ctx context.Context, text string) (string, error) {
	resp, err := d.gemini.GenerateSpeech(ctx, text)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", goerr.New("speech response has no candidates")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil {
			return base64.StdEncoding.EncodeToString(part.InlineData.Data), nil
		}
	}

	return "", goerr.New("speech response has no inline payload")
}
