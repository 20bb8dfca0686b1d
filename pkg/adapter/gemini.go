package adapter

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Chat is one live conversation bound to a system instruction and replayed
// history. The concrete genai chat satisfies it directly.
type Chat interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Gemini interface {
	StartChat(ctx context.Context, config *genai.GenerateContentConfig, history []*genai.Content) (Chat, error)
	GenerateImage(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
	GenerateSpeech(ctx context.Context, text string) (*genai.GenerateContentResponse, error)
}

type GeminiClient struct {
	client      *genai.Client
	chatModel   string
	imageModel  string
	speechModel string
	voiceName   string
	aspectRatio string
}

type GeminiOption func(*GeminiClient)

func WithChatModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.chatModel = model
	}
}

func WithImageModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.imageModel = model
	}
}

func WithSpeechModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.speechModel = model
	}
}

func WithVoice(name string) GeminiOption {
	return func(g *GeminiClient) {
		g.voiceName = name
	}
}

// NewGemini creates a client against the Gemini API. An empty apiKey is
// rejected here so the caller can degrade to a disabled companion instead of
// failing on the first turn.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, goerr.New("api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:      client,
		chatModel:   "gemini-3-flash-preview",
		imageModel:  "gemini-2.5-flash-image",
		speechModel: "gemini-2.5-flash-preview-tts",
		voiceName:   "Kore",
		aspectRatio: "3:4",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) StartChat(ctx context.Context, config *genai.GenerateContentConfig, history []*genai.Content) (Chat, error) {
	chat, err := g.client.Chats.Create(ctx, g.chatModel, config, history)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini chat")
	}

	return chat, nil
}

func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: g.aspectRatio,
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, genai.Text(prompt), config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate image")
	}

	return resp, nil
}

func (g *GeminiClient) GenerateSpeech(ctx context.Context, text string) (*genai.GenerateContentResponse, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voiceName},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.speechModel, genai.Text(text), config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate speech")
	}

	return resp, nil
}
