package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/api"
	"ripple/internal/models"
	"ripple/internal/store"
)

type fakeFeedAPI struct {
	pages       map[int]*models.FeedPage
	fetchErr    error
	created     []api.CreatePostInput
	createdPost *models.Post
	comments    []models.Comment
	// onFetch runs before the response is returned, to interleave a
	// competing fetch.
	onFetch func()
}

func (f *fakeFeedAPI) FetchPosts(_ context.Context, page int) (*models.FeedPage, error) {
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.pages[page], nil
}

func (f *fakeFeedAPI) CreatePost(_ context.Context, in api.CreatePostInput) (*models.Post, error) {
	f.created = append(f.created, in)
	return f.createdPost, nil
}

func (f *fakeFeedAPI) FetchComments(_ context.Context, _ uint) ([]models.Comment, error) {
	return f.comments, nil
}

func TestFeedService_RefreshAndLoadPage(t *testing.T) {
	feedAPI := &fakeFeedAPI{pages: map[int]*models.FeedPage{
		1: {Posts: []models.Post{{ID: 1}, {ID: 2}}, Page: 1, HasMore: true},
		2: {Posts: []models.Post{{ID: 3}}, Page: 2, HasMore: false},
	}}
	st := store.New()
	svc := NewFeedService(feedAPI, &fakeUploader{}, st)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Len(t, st.Posts(), 2)
	assert.True(t, st.HasMore())

	require.NoError(t, svc.LoadPage(context.Background(), 2))
	assert.Len(t, st.Posts(), 3)
	assert.False(t, st.HasMore())
}

func TestFeedService_AbandonedFetchDiscarded(t *testing.T) {
	st := store.New()
	feedAPI := &fakeFeedAPI{pages: map[int]*models.FeedPage{
		1: {Posts: []models.Post{{ID: 1}}, Page: 1},
	}}
	svc := NewFeedService(feedAPI, &fakeUploader{}, st)

	// A second refresh starts while the first request is in flight; the
	// first response comes back against a stale generation.
	feedAPI.onFetch = func() {
		feedAPI.onFetch = nil
		inner := &fakeFeedAPI{pages: map[int]*models.FeedPage{
			1: {Posts: []models.Post{{ID: 2}}, Page: 1},
		}}
		require.NoError(t, NewFeedService(inner, &fakeUploader{}, st).Refresh(context.Background()))
	}

	require.NoError(t, svc.Refresh(context.Background()))
	posts := st.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, uint(2), posts[0].ID)
}

func TestFeedService_FetchErrorLeavesStateUntouched(t *testing.T) {
	st := store.New()
	gen := st.BeginFeedFetch()
	require.True(t, st.ApplyFeedPage(gen, &models.FeedPage{Posts: []models.Post{{ID: 1}}, Page: 1}))

	feedAPI := &fakeFeedAPI{fetchErr: models.NewNetworkError(assert.AnError)}
	svc := NewFeedService(feedAPI, &fakeUploader{}, st)

	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNetwork))
	assert.Len(t, st.Posts(), 1)
}

func TestFeedService_LoadComments(t *testing.T) {
	st := store.New()
	feedAPI := &fakeFeedAPI{comments: []models.Comment{
		{ID: "a", Content: "first"},
		{ID: "b", Content: "second"},
	}}
	svc := NewFeedService(feedAPI, &fakeUploader{}, st)

	require.NoError(t, svc.LoadComments(context.Background(), 9))
	got := st.Comments(9)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
}

func TestFeedService_CreatePostValidation(t *testing.T) {
	svc := NewFeedService(&fakeFeedAPI{}, &fakeUploader{}, store.New())

	_, err := svc.CreatePost(context.Background(), "", nil)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestFeedService_CreatePostPrepends(t *testing.T) {
	st := store.New()
	gen := st.BeginFeedFetch()
	require.True(t, st.ApplyFeedPage(gen, &models.FeedPage{Posts: []models.Post{{ID: 1}}, Page: 1}))

	feedAPI := &fakeFeedAPI{createdPost: &models.Post{ID: 2, Content: "fresh"}}
	svc := NewFeedService(feedAPI, &fakeUploader{}, st)

	post, err := svc.CreatePost(context.Background(), "fresh", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), post.ID)

	posts := st.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, uint(2), posts[0].ID)
	require.Len(t, feedAPI.created, 1)
	assert.Equal(t, "fresh", feedAPI.created[0].Content)
}
