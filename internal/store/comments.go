package store

import "ripple/internal/models"

// SetComments replaces the full comment list for a post, used after a
// full re-fetch on post-detail mount.
func (s *Store) SetComments(postID uint, comments []models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{}, len(comments))
	kept := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != "" {
			if _, dup := ids[c.ID]; dup {
				continue
			}
			ids[c.ID] = struct{}{}
		}
		kept = append(kept, c)
	}
	s.comments[postID] = kept
	s.commentIDs[postID] = ids
}

// AddComment appends one comment to a post's list, creating the list when
// absent. Appends are keyed by comment ID: a redelivered event (e.g.
// after a reconnect) is ignored. Ordering is strictly arrival order.
func (s *Store) AddComment(postID uint, comment models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if comment.ID != "" {
		if s.commentIDs[postID] == nil {
			s.commentIDs[postID] = make(map[string]struct{})
		}
		if _, dup := s.commentIDs[postID][comment.ID]; dup {
			return
		}
		s.commentIDs[postID][comment.ID] = struct{}{}
	}
	s.comments[postID] = append(s.comments[postID], comment)
}

// Comments returns a copy of the comment list for a post in arrival order.
func (s *Store) Comments(postID uint) []models.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Comment, len(s.comments[postID]))
	copy(out, s.comments[postID])
	return out
}
