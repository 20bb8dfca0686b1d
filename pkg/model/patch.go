package model

import (
	"time"

	"github.com/google/uuid"
)

type PatchID string

// NewPatchID generates a new unique PatchID
func NewPatchID() PatchID {
	return PatchID(uuid.New().String())
}

// Proposal is a self-modification suggestion extracted from a model reply.
// It becomes a Patch only when the user accepts it.
type Proposal struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	Logic               string `json:"logic"`
	InstructionModifier string `json:"instructionModifier"`
}

// Patch is an accepted instruction fragment. Only active patches participate
// in context assembly; toggling or deleting one invalidates the session.
type Patch struct {
	Proposal

	ID        PatchID   `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// NewPatch accepts a proposal into an active patch
func NewPatch(p Proposal) *Patch {
	return &Patch{
		Proposal:  p,
		ID:        NewPatchID(),
		CreatedAt: time.Now(),
		Active:    true,
	}
}

// ActivePatches filters a patch list down to the active ones, keeping order
func ActivePatches(patches []*Patch) []*Patch {
	var active []*Patch
	for _, p := range patches {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}
