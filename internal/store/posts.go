package store

import "ripple/internal/models"

// BeginFeedFetch advances the feed request generation and returns the
// value the enclosing fetch must present to ApplyFeedPage. Responses for
// abandoned views arrive with an old generation and are discarded instead
// of overwriting fresher state.
func (s *Store) BeginFeedFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedGen++
	return s.feedGen
}

// ApplyFeedPage installs one page of feed results. The first page replaces
// the collection; later pages extend it. Posts flagged deleted are
// filtered out. Returns false when the page was stale and ignored.
func (s *Store) ApplyFeedPage(gen uint64, page *models.FeedPage) bool {
	if page == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.feedGen {
		return false
	}

	kept := make([]models.Post, 0, len(page.Posts))
	for _, p := range page.Posts {
		if p.Deleted {
			continue
		}
		p.LikedBy = dedupeLikes(p.LikedBy)
		p.LikesCount = len(p.LikedBy)
		kept = append(kept, p)
	}

	if page.Page <= 1 {
		s.posts = kept
	} else {
		s.posts = append(s.posts, kept...)
	}
	s.page = page.Page
	s.hasMore = page.HasMore
	s.cursor = page.Cursor
	s.rebuildIndex()
	return true
}

// PrependPost places a newly created post at the head of the feed.
func (s *Store) PrependPost(post models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.LikedBy = dedupeLikes(post.LikedBy)
	post.LikesCount = len(post.LikedBy)
	s.posts = append([]models.Post{post}, s.posts...)
	s.rebuildIndex()
}

// LikeSnapshot captures a post's like state before an optimistic toggle.
type LikeSnapshot struct {
	LikedBy    []uint
	LikesCount int
	Liked      bool
	// Version identifies the toggle invocation the snapshot belongs to.
	Version uint64
}

// BeginLikeToggle snapshots the post's like state and assigns the toggle
// its version. The second return is false when the post is unknown.
func (s *Store) BeginLikeToggle(postID uint) (LikeSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.postIndex[postID]
	if !ok {
		return LikeSnapshot{}, false
	}
	s.toggleSeq[postID]++

	p := s.posts[i]
	return LikeSnapshot{
		LikedBy:    append([]uint(nil), p.LikedBy...),
		LikesCount: p.LikesCount,
		Liked:      p.Liked,
		Version:    s.toggleSeq[postID],
	}, true
}

// ApplyLikeToggle flips userID's membership in the post's like set to
// nowLiked and adjusts the count. Idempotent: setting an already-present
// state changes nothing. No-op when the post is unknown.
func (s *Store) ApplyLikeToggle(postID, userID uint, nowLiked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.postIndex[postID]
	if !ok {
		return
	}
	p := &s.posts[i]

	present := likeIndex(p.LikedBy, userID) >= 0
	if nowLiked && !present {
		p.LikedBy = append(p.LikedBy, userID)
	} else if !nowLiked && present {
		j := likeIndex(p.LikedBy, userID)
		p.LikedBy = append(p.LikedBy[:j], p.LikedBy[j+1:]...)
	}
	p.LikesCount = len(p.LikedBy)
	p.Liked = likeIndex(p.LikedBy, userID) >= 0
}

// RollbackLikeToggle restores the pre-toggle snapshot after a failed
// confirmation. The rollback is discarded when a later toggle has already
// run on the post, so a failing earlier call cannot clobber a newer state
// (last-confirmed-wins).
func (s *Store) RollbackLikeToggle(postID uint, snap LikeSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Version != s.toggleSeq[postID] {
		return false
	}
	i, ok := s.postIndex[postID]
	if !ok {
		return false
	}
	p := &s.posts[i]
	p.LikedBy = append([]uint(nil), snap.LikedBy...)
	p.LikesCount = snap.LikesCount
	p.Liked = snap.Liked
	return true
}

// Posts returns a copy of the feed in display order.
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Post returns a copy of one post by ID.
func (s *Store) Post(postID uint) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.postIndex[postID]
	if !ok {
		return models.Post{}, false
	}
	return s.posts[i], true
}

// HasMore reports whether more feed pages exist past the loaded ones.
func (s *Store) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore
}

// Cursor returns the continuation token of the last applied page.
func (s *Store) Cursor() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

func likeIndex(likes []uint, userID uint) int {
	for i, id := range likes {
		if id == userID {
			return i
		}
	}
	return -1
}

func dedupeLikes(likes []uint) []uint {
	if len(likes) < 2 {
		return likes
	}
	seen := make(map[uint]struct{}, len(likes))
	out := likes[:0]
	for _, id := range likes {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
