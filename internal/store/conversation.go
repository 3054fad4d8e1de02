// internal/store/conversation.go
package store

import (
	"context"
	"sync"
	"time"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

// ConversationStore persists per-thread chat history. Appended history must
// come back in insertion order on the next Get, with Kind intact.
type ConversationStore interface {
	Get(ctx context.Context, threadID string) ([]models.Message, error)
	Append(ctx context.Context, threadID string, msg models.Message) error
	Clear(ctx context.Context, threadID string) error
}

// MemoryConversationStore is the process-local default backend.
type MemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string][]models.Message
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		conversations: make(map[string][]models.Message),
	}
}

func (s *MemoryConversationStore) Get(ctx context.Context, threadID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.conversations[threadID]
	out := make([]models.Message, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryConversationStore) Append(ctx context.Context, threadID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[threadID]; !ok {
		s.conversations[threadID] = []models.Message{{
			Role:      "system",
			Content:   models.SystemPrompt,
			Timestamp: time.Now(),
		}}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.conversations[threadID] = append(s.conversations[threadID], msg)
	return nil
}

func (s *MemoryConversationStore) Clear(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, threadID)
	return nil
}
