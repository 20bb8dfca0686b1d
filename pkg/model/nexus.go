package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type NexusEntryID string

// NewNexusEntryID generates a new unique NexusEntryID
func NewNexusEntryID() NexusEntryID {
	return NexusEntryID(uuid.New().String())
}

type NexusCategory string

const (
	CategoryPreference NexusCategory = "Preference"
	CategoryRule       NexusCategory = "Rule"
	CategorySecret     NexusCategory = "Secret"
	CategoryFact       NexusCategory = "Fact"
)

// Validate checks if the category is one of the four known kinds
func (c NexusCategory) Validate() error {
	switch c {
	case CategoryPreference, CategoryRule, CategorySecret, CategoryFact:
		return nil
	default:
		return goerr.Wrap(ErrInvalidCategory, "unknown category", goerr.V("category", c))
	}
}

// NexusEntry is one long-term fact about the user. Entries are deduplicated
// by exact content match before insertion.
type NexusEntry struct {
	ID        NexusEntryID  `json:"id"`
	Content   string        `json:"content"`
	Category  NexusCategory `json:"category"`
	CreatedAt time.Time     `json:"createdAt"`
}

// NexusCandidate is the partial entry extracted from a model reply, before
// the caller assigns identity and persists it
type NexusCandidate struct {
	Content  string        `json:"content"`
	Category NexusCategory `json:"category"`
}

// NewNexusEntry creates a durable entry from a candidate. An unknown or
// missing category falls back to Fact, mirroring how candidates arrive from
// an unreliable channel.
func NewNexusEntry(c NexusCandidate) *NexusEntry {
	category := c.Category
	if category.Validate() != nil {
		category = CategoryFact
	}
	return &NexusEntry{
		ID:        NewNexusEntryID(),
		Content:   c.Content,
		Category:  category,
		CreatedAt: time.Now(),
	}
}
