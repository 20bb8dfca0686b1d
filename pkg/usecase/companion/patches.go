package companion

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aztralwrld/eve/pkg/model"
)

// AcceptProposal turns a surfaced proposal into an active patch. The next
// turn's assembled context includes it, which recreates the session.
func (u *UseCase) AcceptProposal(ctx context.Context, proposal model.Proposal) (*model.Patch, error) {
	if proposal.Name == "" || proposal.InstructionModifier == "" {
		return nil, goerr.New("proposal is missing name or instruction modifier")
	}

	patch := model.NewPatch(proposal)
	if err := u.repo.PutPatch(ctx, patch); err != nil {
		return nil, goerr.Wrap(err, "failed to store patch")
	}
	return patch, nil
}

// Patches returns all stored patches, active or not
func (u *UseCase) Patches(ctx context.Context) ([]*model.Patch, error) {
	return u.repo.ListPatches(ctx)
}

// TogglePatch flips one patch between active and dormant
func (u *UseCase) TogglePatch(ctx context.Context, id model.PatchID) (*model.Patch, error) {
	patch, err := u.repo.GetPatch(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load patch", goerr.V("id", id))
	}

	patch.Active = !patch.Active
	if err := u.repo.PutPatch(ctx, patch); err != nil {
		return nil, goerr.Wrap(err, "failed to store patch", goerr.V("id", id))
	}
	return patch, nil
}

// DeletePatch removes one patch entirely
func (u *UseCase) DeletePatch(ctx context.Context, id model.PatchID) error {
	if err := u.repo.DeletePatch(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete patch", goerr.V("id", id))
	}
	return nil
}
