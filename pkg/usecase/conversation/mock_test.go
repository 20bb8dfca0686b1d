package conversation_test

import (
	"context"

	"google.golang.org/genai"

	"github.com/aztralwrld/eve/pkg/adapter"
)

type mockChat struct {
	replies []string
	sendErr error
	calls   [][]genai.Part
}

func (m *mockChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	m.calls = append(m.calls, parts)
	if m.sendErr != nil {
		return nil, m.sendErr
	}

	reply := ""
	if len(m.replies) > 0 {
		reply = m.replies[0]
		if len(m.replies) > 1 {
			m.replies = m.replies[1:]
		}
	}
	return textResponse(reply), nil
}

type mockGemini struct {
	chat        *mockChat
	startErr    error
	startCount  int
	lastConfig  *genai.GenerateContentConfig
	lastHistory []*genai.Content

	imageResp *genai.GenerateContentResponse
	imageErr  error
	imageFor  string

	speechResp  *genai.GenerateContentResponse
	speechErr   error
	speechCalls int
}

func (m *mockGemini) StartChat(ctx context.Context, config *genai.GenerateContentConfig, history []*genai.Content) (adapter.Chat, error) {
	m.startCount++
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.lastConfig = config
	m.lastHistory = history
	if m.chat == nil {
		m.chat = &mockChat{}
	}
	return m.chat, nil
}

func (m *mockGemini) GenerateImage(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	m.imageFor = prompt
	if m.imageErr != nil {
		return nil, m.imageErr
	}
	return m.imageResp, nil
}

func (m *mockGemini) GenerateSpeech(ctx context.Context, text string) (*genai.GenerateContentResponse, error) {
	m.speechCalls++
	if m.speechErr != nil {
		return nil, m.speechErr
	}
	return m.speechResp, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func inlineResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			}}},
		},
	}
}
