package store

import "ripple/internal/models"

// SetChatMessages replaces the message history for a chat room.
func (s *Store) SetChatMessages(chatID uint, messages []models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{}, len(messages))
	kept := make([]models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.ID != "" {
			if _, dup := ids[m.ID]; dup {
				continue
			}
			ids[m.ID] = struct{}{}
		}
		kept = append(kept, m)
	}
	s.chats[chatID] = kept
	s.chatIDs[chatID] = ids
}

// AddChatMessage appends one message to a chat room's list, creating the
// list when absent. Appends are keyed by message ID to absorb transport
// redelivery.
func (s *Store) AddChatMessage(chatID uint, message models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID != "" {
		if s.chatIDs[chatID] == nil {
			s.chatIDs[chatID] = make(map[string]struct{})
		}
		if _, dup := s.chatIDs[chatID][message.ID]; dup {
			return
		}
		s.chatIDs[chatID][message.ID] = struct{}{}
	}
	s.chats[chatID] = append(s.chats[chatID], message)
}

// ChatMessages returns a copy of a chat room's messages in arrival order.
func (s *Store) ChatMessages(chatID uint) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatMessage, len(s.chats[chatID]))
	copy(out, s.chats[chatID])
	return out
}
