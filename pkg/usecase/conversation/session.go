package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"

	"github.com/aztralwrld/eve/pkg/adapter"
	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/prompt"
	"github.com/aztralwrld/eve/pkg/utils/logging"
)

// Manager owns the single live chat session. A session is entirely derived
// state: it is rebuilt from the assembled context and the transcript
// whenever either changes, and holds nothing that cannot be rederived.
//
// The mutex also serializes Ensure against an in-flight Send: a recreation
// triggered by a settings/patch/fact change must not land while a reply is
// on the wire.
type Manager struct {
	gemini adapter.Gemini

	mu          sync.Mutex
	chat        adapter.Chat
	lastContext string
}

func NewManager(gemini adapter.Gemini) *Manager {
	return &Manager{gemini: gemini}
}

// EnsureInput is the full durable-state snapshot a session derives from
type EnsureInput struct {
	// Base overrides the embedded core instruction when non-empty
	Base     string
	Settings model.Settings
	History  []*model.Message
	Patches  []*model.Patch
	Facts    []*model.NexusEntry
}

// Ensure makes the live session match the given snapshot. The assembled
// context is diffed against the one the live session was built with;
// recreation happens only when they differ or no session exists yet.
// Construction failures are logged and leave the session absent so the next
// call retries; Ensure never fails outward.
func (m *Manager) Ensure(ctx context.Context, input EnsureInput) {
	assembled := prompt.Assemble(prompt.Input{
		Base:     input.Base,
		Settings: input.Settings,
		Facts:    input.Facts,
		Patches:  input.Patches,
	})

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chat != nil && m.lastContext == assembled {
		return
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(assembled, ""),
		Temperature:       genai.Ptr(input.Settings.Temperature()),
	}

	chat, err := m.gemini.StartChat(ctx, config, replayHistory(ctx, input.History))
	if err != nil {
		logging.From(ctx).Warn("failed to create session, leaving it absent", "error", err)
		m.chat = nil
		m.lastContext = ""
		return
	}

	m.chat = chat
	m.lastContext = assembled
}

// Live reports whether a session is currently bound
func (m *Manager) Live() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chat != nil
}

// Dispose discards the live session, if any
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat = nil
	m.lastContext = ""
}

// Send forwards one user turn and returns the raw reply text. A malformed
// attachment is dropped silently and the turn goes out text-only.
func (m *Manager) Send(ctx context.Context, text, attachment string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.chat == nil {
		return "", goerr.Wrap(model.ErrSessionUnavailable, "send attempted with no live session")
	}

	var parts []genai.Part
	if text != "" {
		parts = append(parts, genai.Part{Text: text})
	}
	if attachment != "" {
		mimeType, data, err := model.DecodeDataURI(attachment)
		if err != nil {
			logging.From(ctx).Warn("dropping malformed attachment", "error", err)
		} else {
			parts = append(parts, genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}})
		}
	}
	if len(parts) == 0 {
		parts = append(parts, genai.Part{Text: text})
	}

	resp, err := m.chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to send message")
	}

	return resp.Text(), nil
}

// replayHistory converts prior turns into session history. Turns with no
// usable payload are skipped; an undecodable attachment contributes only the
// turn's text part.
func replayHistory(ctx context.Context, messages []*model.Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		if msg.Empty() {
			continue
		}

		var parts []*genai.Part
		if strings.TrimSpace(msg.Content) != "" {
			parts = append(parts, genai.NewPartFromText(msg.Content))
		}
		if msg.Attachment != "" {
			if mimeType, data, err := model.DecodeDataURI(msg.Attachment); err != nil {
				logging.From(ctx).Warn("skipping undecodable attachment in history", "message", msg.ID)
			} else {
				parts = append(parts, genai.NewPartFromBytes(data, mimeType))
			}
		}
		if len(parts) == 0 {
			continue
		}

		contents = append(contents, genai.NewContentFromParts(parts, genaiRole(msg.Role)))
	}
	return contents
}

func genaiRole(r model.Role) genai.Role {
	if r == model.RoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}
