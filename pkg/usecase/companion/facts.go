package companion

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aztralwrld/eve/pkg/model"
	"github.com/aztralwrld/eve/pkg/repository"
)

// StoreFact inserts a fact unless an entry with identical content already
// exists. Dedup is by exact content match and the existing entry wins,
// category included. Returns the stored or existing entry and whether an
// insert happened. Every insertion path (surfaced candidates, direct CLI
// adds, MCP stores) goes through here.
func StoreFact(ctx context.Context, repo repository.Repository, candidate model.NexusCandidate) (*model.NexusEntry, bool, error) {
	if strings.TrimSpace(candidate.Content) == "" {
		return nil, false, goerr.New("nexus entry content is empty")
	}

	existing, err := repo.ListNexusEntries(ctx)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to list nexus entries")
	}
	for _, entry := range existing {
		if entry.Content == candidate.Content {
			return entry, false, nil
		}
	}

	entry := model.NewNexusEntry(candidate)
	if err := repo.PutNexusEntry(ctx, entry); err != nil {
		return nil, false, goerr.Wrap(err, "failed to store nexus entry")
	}
	return entry, true, nil
}

// rememberFact stores a surfaced nexus candidate. Candidates with empty
// content are dropped silently; they arrive from an unreliable channel.
func (u *UseCase) rememberFact(ctx context.Context, candidate model.NexusCandidate) error {
	if strings.TrimSpace(candidate.Content) == "" {
		return nil
	}

	_, _, err := StoreFact(ctx, u.repo, candidate)
	return err
}

// NexusEntries returns all stored facts
func (u *UseCase) NexusEntries(ctx context.Context) ([]*model.NexusEntry, error) {
	return u.repo.ListNexusEntries(ctx)
}

// AddNexusEntry stores a fact entered by the user directly. Content
// identical to an existing entry returns that entry without inserting.
func (u *UseCase) AddNexusEntry(ctx context.Context, content string, category model.NexusCategory) (*model.NexusEntry, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}

	entry, _, err := StoreFact(ctx, u.repo, model.NexusCandidate{Content: content, Category: category})
	return entry, err
}

// ForgetNexusEntry removes one fact by ID
func (u *UseCase) ForgetNexusEntry(ctx context.Context, id model.NexusEntryID) error {
	if err := u.repo.DeleteNexusEntry(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete nexus entry", goerr.V("id", id))
	}
	return nil
}
