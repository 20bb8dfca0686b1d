package repository

import (
	"context"

	"github.com/aztralwrld/eve/pkg/model"
)

// Repository persists the four durable collections: the turn transcript, the
// settings profile, the evolution patches, and the nexus fact store. The
// conversation core only reads snapshots of these; sessions and telemetry
// are derived state and never stored here.
type Repository interface {
	// PutMessage appends a message to the transcript
	PutMessage(ctx context.Context, msg *model.Message) error

	// ListMessages returns the transcript in conversation order
	ListMessages(ctx context.Context) ([]*model.Message, error)

	// ClearMessages wipes the transcript
	ClearMessages(ctx context.Context) error

	// GetSettings returns the stored profile, or defaults when none exists
	GetSettings(ctx context.Context) (model.Settings, error)

	// PutSettings stores the profile
	PutSettings(ctx context.Context, settings model.Settings) error

	// PutPatch inserts or replaces a patch
	PutPatch(ctx context.Context, patch *model.Patch) error

	// GetPatch retrieves a patch by ID
	GetPatch(ctx context.Context, id model.PatchID) (*model.Patch, error)

	// ListPatches returns all patches in creation order
	ListPatches(ctx context.Context) ([]*model.Patch, error)

	// DeletePatch removes a patch permanently
	DeletePatch(ctx context.Context, id model.PatchID) error

	// PutNexusEntry inserts a fact entry
	PutNexusEntry(ctx context.Context, entry *model.NexusEntry) error

	// ListNexusEntries returns all fact entries in creation order
	ListNexusEntries(ctx context.Context) ([]*model.NexusEntry, error)

	// DeleteNexusEntry removes a fact entry
	DeleteNexusEntry(ctx context.Context, id model.NexusEntryID) error

	// ClearNexus wipes the fact store
	ClearNexus(ctx context.Context) error

	// Close releases the underlying backend
	Close() error
}
