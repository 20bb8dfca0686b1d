package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aztralwrld/eve/pkg/model"
)

const (
	collectionMessages = "messages"
	collectionPatches  = "patches"
	collectionNexus    = "nexus"
	collectionSettings = "settings"
	docSettingsProfile = "profile"
)

// firestoreRepo implements Repository on Firestore for cloud-synced use
type firestoreRepo struct {
	client *firestore.Client
}

// NewFirestore creates a Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &firestoreRepo{client: client}, nil
}

// Firestore documents use flat structs instead of the embedded model types
// so the stored field layout stays independent of the Go type shapes.

type messageDoc struct {
	ID         string       `firestore:"id"`
	Role       string       `firestore:"role"`
	Content    string       `firestore:"content"`
	CreatedAt  time.Time    `firestore:"created_at"`
	Attachment string       `firestore:"attachment"`
	State      *model.State `firestore:"state"`
	ImageURL   string       `firestore:"image_url"`
	AudioData  string       `firestore:"audio_data"`
}

type patchDoc struct {
	ID                  string    `firestore:"id"`
	Name                string    `firestore:"name"`
	Description         string    `firestore:"description"`
	Logic               string    `firestore:"logic"`
	InstructionModifier string    `firestore:"instruction_modifier"`
	CreatedAt           time.Time `firestore:"created_at"`
	Active              bool      `firestore:"active"`
}

type nexusDoc struct {
	ID        string    `firestore:"id"`
	Content   string    `firestore:"content"`
	Category  string    `firestore:"category"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (r *firestoreRepo) PutMessage(ctx context.Context, msg *model.Message) error {
	doc := &messageDoc{
		ID:         string(msg.ID),
		Role:       string(msg.Role),
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
		Attachment: msg.Attachment,
		State:      msg.State,
		ImageURL:   msg.ImageURL,
		AudioData:  msg.AudioData,
	}

	if _, err := r.client.Collection(collectionMessages).Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put message", goerr.V("id", msg.ID))
	}
	return nil
}

func (r *firestoreRepo) ListMessages(ctx context.Context) ([]*model.Message, error) {
	iter := r.client.Collection(collectionMessages).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var messages []*model.Message
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages")
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message", goerr.V("doc", snap.Ref.ID))
		}

		messages = append(messages, &model.Message{
			ID:         model.MessageID(doc.ID),
			Role:       model.Role(doc.Role),
			Content:    doc.Content,
			CreatedAt:  doc.CreatedAt,
			Attachment: doc.Attachment,
			State:      doc.State,
			ImageURL:   doc.ImageURL,
			AudioData:  doc.AudioData,
		})
	}

	return messages, nil
}

func (r *firestoreRepo) ClearMessages(ctx context.Context) error {
	return r.clearCollection(ctx, collectionMessages)
}

func (r *firestoreRepo) GetSettings(ctx context.Context) (model.Settings, error) {
	snap, err := r.client.Collection(collectionSettings).Doc(docSettingsProfile).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, goerr.Wrap(err, "failed to get settings")
	}

	var settings model.Settings
	if err := snap.DataTo(&settings); err != nil {
		return model.Settings{}, goerr.Wrap(err, "failed to decode settings")
	}
	return settings, nil
}

func (r *firestoreRepo) PutSettings(ctx context.Context, settings model.Settings) error {
	if _, err := r.client.Collection(collectionSettings).Doc(docSettingsProfile).Set(ctx, settings); err != nil {
		return goerr.Wrap(err, "failed to put settings")
	}
	return nil
}

func (r *firestoreRepo) PutPatch(ctx context.Context, patch *model.Patch) error {
	doc := &patchDoc{
		ID:                  string(patch.ID),
		Name:                patch.Name,
		Description:         patch.Description,
		Logic:               patch.Logic,
		InstructionModifier: patch.InstructionModifier,
		CreatedAt:           patch.CreatedAt,
		Active:              patch.Active,
	}

	if _, err := r.client.Collection(collectionPatches).Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put patch", goerr.V("id", patch.ID))
	}
	return nil
}

func (r *firestoreRepo) GetPatch(ctx context.Context, id model.PatchID) (*model.Patch, error) {
	snap, err := r.client.Collection(collectionPatches).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, goerr.Wrap(model.ErrNotFound, "patch not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get patch", goerr.V("id", id))
	}

	var doc patchDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode patch", goerr.V("id", id))
	}
	return patchFromDoc(&doc), nil
}

func (r *firestoreRepo) ListPatches(ctx context.Context) ([]*model.Patch, error) {
	iter := r.client.Collection(collectionPatches).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var patches []*model.Patch
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate patches")
		}

		var doc patchDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode patch", goerr.V("doc", snap.Ref.ID))
		}
		patches = append(patches, patchFromDoc(&doc))
	}

	return patches, nil
}

func (r *firestoreRepo) DeletePatch(ctx context.Context, id model.PatchID) error {
	if _, err := r.client.Collection(collectionPatches).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete patch", goerr.V("id", id))
	}
	return nil
}

func (r *firestoreRepo) PutNexusEntry(ctx context.Context, entry *model.NexusEntry) error {
	doc := &nexusDoc{
		ID:        string(entry.ID),
		Content:   entry.Content,
		Category:  string(entry.Category),
		CreatedAt: entry.CreatedAt,
	}

	if _, err := r.client.Collection(collectionNexus).Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put nexus entry", goerr.V("id", entry.ID))
	}
	return nil
}

func (r *firestoreRepo) ListNexusEntries(ctx context.Context) ([]*model.NexusEntry, error) {
	iter := r.client.Collection(collectionNexus).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var entries []*model.NexusEntry
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate nexus entries")
		}

		var doc nexusDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode nexus entry", goerr.V("doc", snap.Ref.ID))
		}

		entries = append(entries, &model.NexusEntry{
			ID:        model.NexusEntryID(doc.ID),
			Content:   doc.Content,
			Category:  model.NexusCategory(doc.Category),
			CreatedAt: doc.CreatedAt,
		})
	}

	return entries, nil
}

func (r *firestoreRepo) DeleteNexusEntry(ctx context.Context, id model.NexusEntryID) error {
	if _, err := r.client.Collection(collectionNexus).Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete nexus entry", goerr.V("id", id))
	}
	return nil
}

func (r *firestoreRepo) ClearNexus(ctx context.Context) error {
	return r.clearCollection(ctx, collectionNexus)
}

func (r *firestoreRepo) Close() error {
	return r.client.Close()
}

func (r *firestoreRepo) clearCollection(ctx context.Context, name string) error {
	iter := r.client.Collection(name).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate collection", goerr.V("collection", name))
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete document", goerr.V("doc", snap.Ref.ID))
		}
	}

	return nil
}

func patchFromDoc(doc *patchDoc) *model.Patch {
	return &model.Patch{
		Proposal: model.Proposal{
			Name:                doc.Name,
			Description:         doc.Description,
			Logic:               doc.Logic,
			InstructionModifier: doc.InstructionModifier,
		},
		ID:        model.PatchID(doc.ID),
		CreatedAt: doc.CreatedAt,
		Active:    doc.Active,
	}
}
