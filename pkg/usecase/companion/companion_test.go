package companion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/aztralwrld/eve/pkg/adapter"
	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/usecase/companion"
)

// memoryRepo is an in-memory Repository for exercising the usecase without a
// database
type memoryRepo struct {
	messages []*model.Message
	settings *model.Settings
	patches  []*model.Patch
	nexus    []*model.NexusEntry
}

func (r *memoryRepo) PutMessage(ctx context.Context, msg *model.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *memoryRepo) ListMessages(ctx context.Context) ([]*model.Message, error) {
	return r.messages, nil
}

func (r *memoryRepo) ClearMessages(ctx context.Context) error {
	r.messages = nil
	return nil
}

func (r *memoryRepo) GetSettings(ctx context.Context) (model.Settings, error) {
	if r.settings == nil {
		return model.DefaultSettings(), nil
	}
	return *r.settings, nil
}

func (r *memoryRepo) PutSettings(ctx context.Context, settings model.Settings) error {
	r.settings = &settings
	return nil
}

func (r *memoryRepo) PutPatch(ctx context.Context, patch *model.Patch) error {
	for i, p := range r.patches {
		if p.ID == patch.ID {
			r.patches[i] = patch
			return nil
		}
	}
	r.patches = append(r.patches, patch)
	return nil
}

func (r *memoryRepo) GetPatch(ctx context.Context, id model.PatchID) (*model.Patch, error) {
	for _, p := range r.patches {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *memoryRepo) ListPatches(ctx context.Context) ([]*model.Patch, error) {
	return r.patches, nil
}

func (r *memoryRepo) DeletePatch(ctx context.Context, id model.PatchID) error {
	for i, p := range r.patches {
		if p.ID == id {
			r.patches = append(r.patches[:i], r.patches[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memoryRepo) PutNexusEntry(ctx context.Context, entry *model.NexusEntry) error {
	r.nexus = append(r.nexus, entry)
	return nil
}

func (r *memoryRepo) ListNexusEntries(ctx context.Context) ([]*model.NexusEntry, error) {
	return r.nexus, nil
}

func (r *memoryRepo) DeleteNexusEntry(ctx context.Context, id model.NexusEntryID) error {
	for i, e := range r.nexus {
		if e.ID == id {
			r.nexus = append(r.nexus[:i], r.nexus[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (r *memoryRepo) ClearNexus(ctx context.Context) error {
	r.nexus = nil
	return nil
}

func (r *memoryRepo) Close() error { return nil }

type scriptedChat struct {
	replies []string
	sendErr error
}

func (c *scriptedChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if c.sendErr != nil {
		return nil, c.sendErr
	}
	reply := ""
	if len(c.replies) > 0 {
		reply = c.replies[0]
		if len(c.replies) > 1 {
			c.replies = c.replies[1:]
		}
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: reply}}}},
		},
	}, nil
}

type scriptedGemini struct {
	chat       *scriptedChat
	startCount int
}

func (g *scriptedGemini) StartChat(ctx context.Context, config *genai.GenerateContentConfig, history []*genai.Content) (adapter.Chat, error) {
	g.startCount++
	return g.chat, nil
}

func (g *scriptedGemini) GenerateImage(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("not scripted")
}

func (g *scriptedGemini) GenerateSpeech(ctx context.Context, text string) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("not scripted")
}

func newTestUseCase(replies ...string) (*companion.UseCase, *memoryRepo, *scriptedGemini) {
	repo := &memoryRepo{}
	gemini := &scriptedGemini{chat: &scriptedChat{replies: replies}}
	return companion.New(repo, gemini), repo, gemini
}

func TestChatPersistsBothTurns(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUseCase(
		`Hello back. <<< {"complexityLoad": 0.2, "contextAlignment": 0.9, "activeZone": "Interface Hall"} >>>`,
	)

	out, err := uc.Chat(ctx, "hello", "")
	gt.NoError(t, err)
	gt.Equal(t, out.Reply.Content, "Hello back.")
	gt.V(t, out.Reply.State).NotNil()
	gt.True(t, out.Proposal == nil)

	gt.A(t, repo.messages).Length(2)
	gt.Equal(t, repo.messages[0].Role, model.RoleUser)
	gt.Equal(t, repo.messages[0].Content, "hello")
	gt.Equal(t, repo.messages[1].Role, model.RoleModel)
}

func TestChatRejectsEmptyTurn(t *testing.T) {
	uc, _, _ := newTestUseCase()

	_, err := uc.Chat(context.Background(), "   ", "")
	gt.Error(t, err)
}

func TestChatStoresSurfacedFact(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUseCase(
		`Noted. <<<NEXUS {"content": "User plays the cello", "category": "Fact"} NEXUS>>>`,
		`Yes, I remember. <<<NEXUS {"content": "User plays the cello", "category": "Fact"} NEXUS>>>`,
	)

	_, err := uc.Chat(ctx, "I play the cello", "")
	gt.NoError(t, err)
	gt.A(t, repo.nexus).Length(1)
	gt.Equal(t, repo.nexus[0].Content, "User plays the cello")

	// The same fact surfaced again is not duplicated
	_, err = uc.Chat(ctx, "do you remember my instrument?", "")
	gt.NoError(t, err)
	gt.A(t, repo.nexus).Length(1)
}

func TestChatSurfacesProposal(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUseCase(
		`An idea. <<<PROPOSAL {"name": "Recap", "instructionModifier": "End each reply with a one-line recap."} PROPOSAL>>>`,
	)

	out, err := uc.Chat(ctx, "any suggestions?", "")
	gt.NoError(t, err)
	gt.V(t, out.Proposal).NotNil()
	gt.Equal(t, out.Proposal.Name, "Recap")

	// Surfacing alone stores nothing
	gt.A(t, repo.patches).Length(0)

	patch, err := uc.AcceptProposal(ctx, *out.Proposal)
	gt.NoError(t, err)
	gt.True(t, patch.Active)
	gt.A(t, repo.patches).Length(1)
}

func TestChatSessionReusedAcrossTurns(t *testing.T) {
	ctx := context.Background()
	uc, _, gemini := newTestUseCase("first", "second")

	_, err := uc.Chat(ctx, "one", "")
	gt.NoError(t, err)
	_, err = uc.Chat(ctx, "two", "")
	gt.NoError(t, err)
	gt.Equal(t, gemini.startCount, 1)
}

func TestChatSessionRecreatedAfterSettingsChange(t *testing.T) {
	ctx := context.Background()
	uc, _, gemini := newTestUseCase("first", "second")

	_, err := uc.Chat(ctx, "one", "")
	gt.NoError(t, err)

	settings := model.DefaultSettings()
	settings.Detail = 90
	_, err = uc.UpdateSettings(ctx, settings)
	gt.NoError(t, err)

	_, err = uc.Chat(ctx, "two", "")
	gt.NoError(t, err)
	gt.Equal(t, gemini.startCount, 2)
}

func TestChatFallbackOnTransportError(t *testing.T) {
	ctx := context.Background()
	repo := &memoryRepo{}
	gemini := &scriptedGemini{chat: &scriptedChat{sendErr: errors.New("deadline exceeded")}}
	uc := companion.New(repo, gemini)

	out, err := uc.Chat(ctx, "hello?", "")
	gt.NoError(t, err)
	gt.Equal(t, out.Reply.Content, "I am experiencing a sensory disruption. Connection unstable.")

	// Both turns are still persisted so the transcript shows the disruption
	gt.A(t, repo.messages).Length(2)
}

func TestAcceptProposalRequiresModifier(t *testing.T) {
	uc, _, _ := newTestUseCase()

	_, err := uc.AcceptProposal(context.Background(), model.Proposal{Name: "Empty"})
	gt.Error(t, err)
}

func TestTogglePatch(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestUseCase()

	patch, err := uc.AcceptProposal(ctx, model.Proposal{Name: "Recap", InstructionModifier: "Recap."})
	gt.NoError(t, err)

	toggled, err := uc.TogglePatch(ctx, patch.ID)
	gt.NoError(t, err)
	gt.False(t, toggled.Active)

	toggled, err = uc.TogglePatch(ctx, patch.ID)
	gt.NoError(t, err)
	gt.True(t, toggled.Active)
}

func TestTogglePatchNotFound(t *testing.T) {
	uc, _, _ := newTestUseCase()

	_, err := uc.TogglePatch(context.Background(), model.NewPatchID())
	gt.Error(t, err)
}

func TestDeletePatch(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUseCase()

	patch, err := uc.AcceptProposal(ctx, model.Proposal{Name: "Recap", InstructionModifier: "Recap."})
	gt.NoError(t, err)

	gt.NoError(t, uc.DeletePatch(ctx, patch.ID))
	gt.A(t, repo.patches).Length(0)
}

func TestNexusEntryLifecycle(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestUseCase()

	entry, err := uc.AddNexusEntry(ctx, "User dislikes small talk", model.CategoryPreference)
	gt.NoError(t, err)
	gt.Equal(t, entry.Category, model.CategoryPreference)

	entries, err := uc.NexusEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)

	gt.NoError(t, uc.ForgetNexusEntry(ctx, entry.ID))

	entries, err = uc.NexusEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}

func TestAddNexusEntryDedup(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUseCase()

	first, err := uc.AddNexusEntry(ctx, "User plays the cello", model.CategoryFact)
	gt.NoError(t, err)

	// The same content again returns the existing entry, category included
	second, err := uc.AddNexusEntry(ctx, "User plays the cello", model.CategoryPreference)
	gt.NoError(t, err)
	gt.Equal(t, second.ID, first.ID)
	gt.Equal(t, second.Category, model.CategoryFact)
	gt.A(t, repo.nexus).Length(1)
}

func TestStoreFactDedupAcrossPaths(t *testing.T) {
	ctx := context.Background()
	uc, repo, _ := newTestUseCase(
		`Noted. <<<NEXUS {"content": "User plays the cello", "category": "Fact"} NEXUS>>>`,
	)

	// Direct add first, then the same fact surfaced by a reply
	_, err := uc.AddNexusEntry(ctx, "User plays the cello", model.CategoryFact)
	gt.NoError(t, err)

	_, err = uc.Chat(ctx, "I play the cello", "")
	gt.NoError(t, err)
	gt.A(t, repo.nexus).Length(1)
}

func TestStoreFactRejectsEmptyContent(t *testing.T) {
	_, _, err := companion.StoreFact(context.Background(), &memoryRepo{}, model.NexusCandidate{Content: "   "})
	gt.Error(t, err)
}

func TestAddNexusEntryRejectsInvalidCategory(t *testing.T) {
	uc, _, _ := newTestUseCase()

	_, err := uc.AddNexusEntry(context.Background(), "something", model.NexusCategory("Whim"))
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidCategory))
}

func TestClearMemory(t *testing.T) {
	ctx := context.Background()
	uc, repo, gemini := newTestUseCase("hi", "fresh start")

	_, err := uc.Chat(ctx, "hello", "")
	gt.NoError(t, err)
	_, err = uc.AddNexusEntry(ctx, "User plays the cello", model.CategoryFact)
	gt.NoError(t, err)

	gt.NoError(t, uc.ClearMemory(ctx))
	gt.A(t, repo.messages).Length(0)
	gt.A(t, repo.nexus).Length(0)

	// The disposed session is rebuilt on the next turn
	_, err = uc.Chat(ctx, "who am I?", "")
	gt.NoError(t, err)
	gt.Equal(t, gemini.startCount, 2)
}

func TestUpdateSettingsClamps(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newTestUseCase()

	stored, err := uc.UpdateSettings(ctx, model.Settings{Detail: 150, Creativity: -5, Warmth: 80})
	gt.NoError(t, err)
	gt.Equal(t, stored.Detail, 100)
	gt.Equal(t, stored.Creativity, 0)
	gt.Equal(t, stored.Warmth, 80)
}
