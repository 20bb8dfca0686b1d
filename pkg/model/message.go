package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageID string

// NewMessageID generates a new unique MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Validate checks if the role is valid
func (r Role) Validate() error {
	switch r {
	case RoleUser, RoleModel:
		return nil
	default:
		return ErrInvalidRole
	}
}

// Message is one exchange unit in the transcript. Once appended it is never
// mutated; the transcript is an append-only sequence in conversation order.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// Attachment is a user-supplied inline image as a data URI
	Attachment string `json:"attachment,omitempty"`

	// Model-turn only fields
	State     *State `json:"state,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	AudioData string `json:"audioData,omitempty"`
}

// NewUserMessage creates a user message with a fresh ID and timestamp
func NewUserMessage(content, attachment string) *Message {
	return &Message{
		ID:         NewMessageID(),
		Role:       RoleUser,
		Content:    content,
		CreatedAt:  time.Now(),
		Attachment: attachment,
	}
}

// NewModelMessage creates a model message with a fresh ID and timestamp
func NewModelMessage(content string) *Message {
	return &Message{
		ID:        NewMessageID(),
		Role:      RoleModel,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Empty reports whether the message carries neither text nor an attachment.
// Empty messages are skipped when replaying history into a session.
func (m *Message) Empty() bool {
	return strings.TrimSpace(m.Content) == "" && m.Attachment == ""
}
