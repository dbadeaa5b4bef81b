package service

import (
	"context"

	"ripple/internal/api"
	"ripple/internal/media"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/store"
)

// FeedAPI is the slice of the REST client the feed coordinator needs.
type FeedAPI interface {
	FetchPosts(ctx context.Context, page int) (*models.FeedPage, error)
	CreatePost(ctx context.Context, in api.CreatePostInput) (*models.Post, error)
	FetchComments(ctx context.Context, postID uint) ([]models.Comment, error)
}

// Uploader is the slice of the REST client that pushes media bytes.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// FeedService coordinates feed pagination and post creation. Fetches
// carry a store generation so a response for an abandoned view is
// discarded instead of overwriting fresher state.
type FeedService struct {
	api      FeedAPI
	uploader Uploader
	store    *store.Store
}

// NewFeedService creates a FeedService.
func NewFeedService(feedAPI FeedAPI, uploader Uploader, st *store.Store) *FeedService {
	return &FeedService{api: feedAPI, uploader: uploader, store: st}
}

// Refresh fetches the first feed page, replacing the loaded collection.
func (s *FeedService) Refresh(ctx context.Context) error {
	return s.fetchPage(ctx, 1)
}

// LoadPage fetches one specific page, extending the collection for pages
// past the first.
func (s *FeedService) LoadPage(ctx context.Context, page int) error {
	return s.fetchPage(ctx, page)
}

func (s *FeedService) fetchPage(ctx context.Context, page int) error {
	gen := s.store.BeginFeedFetch()
	feed, err := s.api.FetchPosts(ctx, page)
	if err != nil {
		return err
	}
	if !s.store.ApplyFeedPage(gen, feed) {
		observability.StaleResponsesTotal.Inc()
	}
	return nil
}

// LoadComments re-fetches the full comment list for a post, replacing the
// local list. Live new_comment events append on top afterwards.
func (s *FeedService) LoadComments(ctx context.Context, postID uint) error {
	comments, err := s.api.FetchComments(ctx, postID)
	if err != nil {
		return err
	}
	s.store.SetComments(postID, comments)
	return nil
}

// CreatePost uploads any local images, publishes the post, and prepends
// the server's copy to the feed.
func (s *FeedService) CreatePost(ctx context.Context, content string, imagePaths []string) (*models.Post, error) {
	if content == "" && len(imagePaths) == 0 {
		return nil, models.NewValidationError("post content or an image is required")
	}

	urls := make([]string, 0, len(imagePaths))
	for _, path := range imagePaths {
		attachment, err := media.PrepareImageFile(path)
		if err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, attachment.Filename, attachment.ContentType, attachment.Data)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	post, err := s.api.CreatePost(ctx, api.CreatePostInput{Content: content, ImageURLs: urls})
	if err != nil {
		return nil, err
	}
	s.store.PrependPost(*post)
	return post, nil
}
