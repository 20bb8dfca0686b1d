package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/repository"
	"github.com/m-mizutani/gt"
)

func newTestRepo(t *testing.T) repository.Repository {
	t.Helper()
	repo, err := repository.NewSQLite(filepath.Join(t.TempDir(), "eve.db"))
	gt.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteMessages(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := model.NewUserMessage("hello", "")
	second := model.NewModelMessage("hi there")
	second.State = &model.State{
		ComplexityLoad:   0.2,
		ContextAlignment: 0.9,
		ActiveZone:       model.ZoneStudio,
		CreativeMode:     model.ModeAssistive,
		ResonanceLevel:   model.ResonanceMedium,
	}
	second.ImageURL = model.EncodeDataURI("image/png", []byte{1, 2, 3})

	gt.NoError(t, repo.PutMessage(ctx, first))
	gt.NoError(t, repo.PutMessage(ctx, second))

	messages, err := repo.ListMessages(ctx)
	gt.NoError(t, err)
	gt.A(t, messages).Length(2)

	gt.Equal(t, messages[0].ID, first.ID)
	gt.Equal(t, messages[0].Role, model.RoleUser)
	gt.Equal(t, messages[1].Content, "hi there")
	gt.V(t, messages[1].State).NotNil()
	gt.Equal(t, messages[1].State.ActiveZone, model.ZoneStudio)
	gt.Equal(t, messages[1].ImageURL, second.ImageURL)

	gt.NoError(t, repo.ClearMessages(ctx))
	messages, err = repo.ListMessages(ctx)
	gt.NoError(t, err)
	gt.A(t, messages).Length(0)
}

func TestSQLiteSettings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	// Defaults when nothing stored yet
	settings, err := repo.GetSettings(ctx)
	gt.NoError(t, err)
	gt.Equal(t, settings, model.DefaultSettings())

	settings.Detail = 90
	settings.EnableVoice = true
	gt.NoError(t, repo.PutSettings(ctx, settings))

	loaded, err := repo.GetSettings(ctx)
	gt.NoError(t, err)
	gt.Equal(t, loaded.Detail, 90)
	gt.True(t, loaded.EnableVoice)

	// Overwrite, not append
	loaded.Detail = 10
	gt.NoError(t, repo.PutSettings(ctx, loaded))
	reloaded, err := repo.GetSettings(ctx)
	gt.NoError(t, err)
	gt.Equal(t, reloaded.Detail, 10)
}

func TestSQLitePatches(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	patch := model.NewPatch(model.Proposal{
		Name:                "Empathic Deepening v1",
		Description:         "More continuity",
		Logic:               "The user values being remembered",
		InstructionModifier: "You must now prioritize emotional continuity.",
	})
	gt.NoError(t, repo.PutPatch(ctx, patch))

	loaded, err := repo.GetPatch(ctx, patch.ID)
	gt.NoError(t, err)
	gt.Equal(t, loaded.Name, patch.Name)
	gt.True(t, loaded.Active)

	// Toggle off via overwrite
	loaded.Active = false
	gt.NoError(t, repo.PutPatch(ctx, loaded))
	toggled, err := repo.GetPatch(ctx, patch.ID)
	gt.NoError(t, err)
	gt.False(t, toggled.Active)

	gt.NoError(t, repo.DeletePatch(ctx, patch.ID))
	_, err = repo.GetPatch(ctx, patch.ID)
	gt.Error(t, err)
}

func TestSQLiteNexus(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := &model.NexusEntry{
		ID:        model.NewNexusEntryID(),
		Content:   "Likes black coffee",
		Category:  model.CategoryPreference,
		CreatedAt: time.Now(),
	}
	second := &model.NexusEntry{
		ID:        model.NewNexusEntryID(),
		Content:   "Never call before 9am",
		Category:  model.CategoryRule,
		CreatedAt: time.Now().Add(time.Second),
	}

	gt.NoError(t, repo.PutNexusEntry(ctx, first))
	gt.NoError(t, repo.PutNexusEntry(ctx, second))

	entries, err := repo.ListNexusEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(2)
	gt.Equal(t, entries[0].Content, "Likes black coffee")
	gt.Equal(t, entries[1].Category, model.CategoryRule)

	gt.NoError(t, repo.DeleteNexusEntry(ctx, first.ID))
	entries, err = repo.ListNexusEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)

	gt.NoError(t, repo.ClearNexus(ctx))
	entries, err = repo.ListNexusEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}
