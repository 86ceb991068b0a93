// Package conversation reads chat exports and turns them into the request
// body of the analysis service.
//
// Two export formats are understood:
//
//   - claude: the conversations.json file of a Claude data export, where each
//     chat carries a uuid, a list of chat_messages and rich content blocks
//   - kura: the normalized format used by the analysis service itself
//
// Both are converted into []Conversation. Use [LoadFiles] to read several
// exports at once.
package conversation

import (
	"github.com/matzehuels/clustermap/pkg/errors"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn of a conversation.
type Message struct {
	CreatedAt string `json:"created_at"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
}

// Conversation is one chat in the normalized format.
type Conversation struct {
	ChatID    string    `json:"chat_id"`
	CreatedAt string    `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// Validate checks the fields the analysis service relies on.
func (c Conversation) Validate() error {
	if c.ChatID == "" {
		return errors.New(errors.ErrCodeInvalidConversation, "missing chat_id")
	}
	if c.CreatedAt == "" {
		return errors.New(errors.ErrCodeInvalidConversation, "chat %s: missing created_at", c.ChatID)
	}
	if c.Messages == nil {
		return errors.New(errors.ErrCodeInvalidConversation, "chat %s: missing messages", c.ChatID)
	}
	for i, m := range c.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return errors.New(errors.ErrCodeInvalidConversation, "chat %s: message %d: invalid role %q", c.ChatID, i, m.Role)
		}
		if m.CreatedAt == "" {
			return errors.New(errors.ErrCodeInvalidConversation, "chat %s: message %d: missing created_at", c.ChatID, i)
		}
	}
	return nil
}

// ValidateAll validates every conversation and rejects repeated chat ids.
func ValidateAll(convs []Conversation) error {
	seen := make(map[string]bool, len(convs))
	for _, c := range convs {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.ChatID] {
			return errors.New(errors.ErrCodeInvalidConversation, "duplicate chat_id %s", c.ChatID)
		}
		seen[c.ChatID] = true
	}
	return nil
}

// MessageCount returns the total number of messages in convs.
func MessageCount(convs []Conversation) int {
	n := 0
	for _, c := range convs {
		n += len(c.Messages)
	}
	return n
}

// AnalyseRequest is the body of the analysis call.
type AnalyseRequest struct {
	Data               []Conversation `json:"data"`
	MaxClusters        *int           `json:"max_clusters"`
	DisableCheckpoints bool           `json:"disable_checkpoints"`
}
