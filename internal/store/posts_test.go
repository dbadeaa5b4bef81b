package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/models"
)

func feedPage(page int, hasMore bool, posts ...models.Post) *models.FeedPage {
	return &models.FeedPage{Posts: posts, Page: page, HasMore: hasMore}
}

func seedFeed(t *testing.T, s *Store, posts ...models.Post) {
	t.Helper()
	gen := s.BeginFeedFetch()
	require.True(t, s.ApplyFeedPage(gen, feedPage(1, false, posts...)))
}

func TestApplyFeedPage_ReplaceAndAppend(t *testing.T) {
	s := New()

	gen := s.BeginFeedFetch()
	require.True(t, s.ApplyFeedPage(gen, feedPage(1, true,
		models.Post{ID: 1}, models.Post{ID: 2})))

	gen = s.BeginFeedFetch()
	require.True(t, s.ApplyFeedPage(gen, feedPage(2, false, models.Post{ID: 3})))

	posts := s.Posts()
	require.Len(t, posts, 3)
	assert.Equal(t, uint(1), posts[0].ID)
	assert.Equal(t, uint(3), posts[2].ID)
	assert.False(t, s.HasMore())

	// A fresh first page resets the collection.
	gen = s.BeginFeedFetch()
	require.True(t, s.ApplyFeedPage(gen, feedPage(1, false, models.Post{ID: 9})))
	posts = s.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, uint(9), posts[0].ID)
}

func TestApplyFeedPage_DiscardsStaleGeneration(t *testing.T) {
	s := New()
	seedFeed(t, s, models.Post{ID: 1})

	stale := s.BeginFeedFetch()
	fresh := s.BeginFeedFetch()
	require.True(t, s.ApplyFeedPage(fresh, feedPage(1, false, models.Post{ID: 2})))

	// The stale response arrives late and must not overwrite fresher state.
	assert.False(t, s.ApplyFeedPage(stale, feedPage(1, false, models.Post{ID: 99})))
	posts := s.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, uint(2), posts[0].ID)
}

func TestApplyFeedPage_FiltersDeletedAndDedupesLikes(t *testing.T) {
	s := New()
	gen := s.BeginFeedFetch()
	require.True(t, s.ApplyFeedPage(gen, feedPage(1, false,
		models.Post{ID: 1, LikedBy: []uint{5, 5, 6}},
		models.Post{ID: 2, Deleted: true},
	)))

	posts := s.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, []uint{5, 6}, posts[0].LikedBy)
	assert.Equal(t, 2, posts[0].LikesCount)
}

func TestPrependPost(t *testing.T) {
	s := New()
	seedFeed(t, s, models.Post{ID: 1})

	s.PrependPost(models.Post{ID: 2, Content: "new"})

	posts := s.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, uint(2), posts[0].ID)

	got, ok := s.Post(2)
	require.True(t, ok)
	assert.Equal(t, "new", got.Content)
}

func TestApplyLikeToggle_Idempotent(t *testing.T) {
	s := New()
	seedFeed(t, s, models.Post{ID: 1, LikedBy: []uint{8}, LikesCount: 1})

	s.ApplyLikeToggle(1, 5, true)
	s.ApplyLikeToggle(1, 5, true)

	p, ok := s.Post(1)
	require.True(t, ok)
	assert.Equal(t, []uint{8, 5}, p.LikedBy)
	assert.Equal(t, 2, p.LikesCount)
	assert.True(t, p.Liked)

	s.ApplyLikeToggle(1, 5, false)
	s.ApplyLikeToggle(1, 5, false)

	p, _ = s.Post(1)
	assert.Equal(t, []uint{8}, p.LikedBy)
	assert.Equal(t, 1, p.LikesCount)
	assert.False(t, p.Liked)
}

func TestApplyLikeToggle_UnknownPostIsNoop(t *testing.T) {
	s := New()
	s.ApplyLikeToggle(404, 5, true)
	assert.Empty(t, s.Posts())
}

func TestRollbackLikeToggle_RestoresSnapshot(t *testing.T) {
	s := New()
	seedFeed(t, s, models.Post{ID: 1, LikedBy: []uint{8}, LikesCount: 1})

	snap, ok := s.BeginLikeToggle(1)
	require.True(t, ok)
	s.ApplyLikeToggle(1, 5, true)

	require.True(t, s.RollbackLikeToggle(1, snap))
	p, _ := s.Post(1)
	assert.Equal(t, []uint{8}, p.LikedBy)
	assert.Equal(t, 1, p.LikesCount)
	assert.False(t, p.Liked)
}

func TestRollbackLikeToggle_DiscardedAfterNewerToggle(t *testing.T) {
	s := New()
	seedFeed(t, s, models.Post{ID: 1})

	// First toggle: like, confirmation still pending.
	first, ok := s.BeginLikeToggle(1)
	require.True(t, ok)
	s.ApplyLikeToggle(1, 5, true)

	// Second toggle runs before the first fails: unlike, confirmed.
	_, ok = s.BeginLikeToggle(1)
	require.True(t, ok)
	s.ApplyLikeToggle(1, 5, false)

	// The late rollback of the first toggle must not clobber the newer
	// confirmed state.
	assert.False(t, s.RollbackLikeToggle(1, first))
	p, _ := s.Post(1)
	assert.False(t, p.Liked)
	assert.Equal(t, 0, p.LikesCount)
}

func TestBeginLikeToggle_UnknownPost(t *testing.T) {
	s := New()
	_, ok := s.BeginLikeToggle(7)
	assert.False(t, ok)
}
