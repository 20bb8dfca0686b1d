package mcp

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/repository"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := repository.NewSQLite(filepath.Join(t.TempDir(), "eve.db"))
	gt.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	gt.A(t, result.Content).Length(1)
	text, ok := result.Content[0].(*mcp.TextContent)
	gt.True(t, ok)
	return text.Text
}

func TestStoreAndRecall(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	result, _, err := s.store(ctx, nil, &storeParams{Content: "User prefers tea", Category: "Preference"})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Preference")

	result, _, err = s.recall(ctx, nil, &recallParams{})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("User prefers tea")
}

func TestStoreDefaultsToFact(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	result, _, err := s.store(ctx, nil, &storeParams{Content: "User lives in Osaka"})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("[Fact]")
}

func TestStoreDedup(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, _, err := s.store(ctx, nil, &storeParams{Content: "User prefers tea", Category: "Preference"})
	gt.NoError(t, err)

	result, _, err := s.store(ctx, nil, &storeParams{Content: "User prefers tea", Category: "Preference"})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("Already stored")

	entries, err := s.repo.ListNexusEntries(ctx)
	gt.NoError(t, err)
	gt.A(t, entries).Length(1)
}

func TestStoreRejectsEmptyContent(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.store(context.Background(), nil, &storeParams{Content: "  "})
	gt.Error(t, err)
}

func TestRecallCategoryFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	_, _, err := s.store(ctx, nil, &storeParams{Content: "User prefers tea", Category: "Preference"})
	gt.NoError(t, err)
	_, _, err = s.store(ctx, nil, &storeParams{Content: "User lives in Osaka", Category: "Fact"})
	gt.NoError(t, err)

	result, _, err := s.recall(ctx, nil, &recallParams{Category: "preference"})
	gt.NoError(t, err)
	text := resultText(t, result)
	gt.S(t, text).Contains("User prefers tea")
	gt.S(t, text).NotContains("Osaka")
}

func TestRecallEmpty(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.recall(context.Background(), nil, &recallParams{})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("No facts stored")
}

func TestForget(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t)

	entry := model.NewNexusEntry(model.NexusCandidate{Content: "temporary", Category: model.CategoryFact})
	gt.NoError(t, s.repo.PutNexusEntry(ctx, entry))

	_, _, err := s.forget(ctx, nil, &forgetParams{ID: string(entry.ID)})
	gt.NoError(t, err)

	result, _, err := s.recall(ctx, nil, &recallParams{})
	gt.NoError(t, err)
	gt.S(t, resultText(t, result)).Contains("No facts stored")
}
