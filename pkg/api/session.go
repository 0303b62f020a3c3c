package api

import "github.com/google/uuid"

// ChatSession is an append-only conversation owned by the caller. It is not
// safe for concurrent mutation; callers must serialize access to one session.
type ChatSession struct {
	ID       string        `json:"id"`
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

func NewChatSession(model string) *ChatSession {
	return &ChatSession{
		ID:    uuid.NewString(),
		Model: model,
	}
}

// Append records one completed exchange. Messages are never reordered or
// deleted. If the provider issued its own conversation id, it replaces the
// locally generated one.
func (s *ChatSession) Append(msg ChatMessage, providerID string) {
	s.Messages = append(s.Messages, msg)
	if providerID != "" {
		s.ID = providerID
	}
}

// History returns the ordered message list for request encoding.
func (s *ChatSession) History() []ChatMessage {
	return s.Messages
}
