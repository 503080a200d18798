package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"telebot/internal/domain/models"
)

// CreateMessage stores a message with a fresh ID and created_at
func (s *Store) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	message.ID = uuid.NewString()
	message.CreatedAt = s.tick()

	stored := *message
	if message.ProjectID != nil {
		pid := *message.ProjectID
		stored.ProjectID = &pid
	}
	s.messages[message.ID] = &storedMessage{msg: stored, seq: s.nextSeq()}

	if s.retention > 0 && message.ProjectID != nil {
		s.enforceRetention(*message.ProjectID)
	}
	return nil
}

// ListByProject returns the project's messages, oldest first
func (s *Store) ListByProject(ctx context.Context, projectID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	stored := s.collect(projectID)
	s.mu.RUnlock()

	messages := make([]models.ChatMessage, 0, len(stored))
	for _, m := range stored {
		msg := m.msg
		pid := *m.msg.ProjectID
		msg.ProjectID = &pid
		messages = append(messages, msg)
	}
	return messages, nil
}

// DeleteByProject removes all messages of the project
func (s *Store) DeleteByProject(ctx context.Context, projectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, m := range s.messages {
		if m.msg.ProjectID != nil && *m.msg.ProjectID == projectID {
			delete(s.messages, id)
		}
	}
	return true, nil
}

// collect returns the project's messages sorted by (created_at, insertion).
// Must be called with mu held.
func (s *Store) collect(projectID string) []*storedMessage {
	var out []*storedMessage
	for _, m := range s.messages {
		if m.msg.ProjectID != nil && *m.msg.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].msg.CreatedAt.Equal(out[j].msg.CreatedAt) {
			return out[i].seq < out[j].seq
		}
		return out[i].msg.CreatedAt.Before(out[j].msg.CreatedAt)
	})
	return out
}

// enforceRetention evicts the oldest messages beyond the retention cap.
// Must be called with mu held for writing.
func (s *Store) enforceRetention(projectID string) {
	stored := s.collect(projectID)
	excess := len(stored) - s.retention
	if excess <= 0 {
		return
	}
	for _, m := range stored[:excess] {
		delete(s.messages, m.msg.ID)
	}
	s.logger.Debug("messages evicted",
		"project_id", projectID,
		"evicted", excess,
		"retention", s.retention,
	)
}
