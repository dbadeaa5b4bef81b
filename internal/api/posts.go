package api

import (
	"context"
	"fmt"
	"net/http"

	"ripple/internal/models"
)

// FetchPosts retrieves one page of the feed.
func (c *Client) FetchPosts(ctx context.Context, page int) (*models.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	var feed models.FeedPage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts?page=%d", page), nil, &feed, true); err != nil {
		return nil, err
	}
	return &feed, nil
}

// CreatePostInput carries the fields for a new post.
type CreatePostInput struct {
	Content   string   `json:"content"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// CreatePost publishes a new post and returns it as stored by the server.
func (c *Client) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" && len(in.ImageURLs) == 0 {
		return nil, models.NewValidationError("post content or an image is required")
	}
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/posts", in, &post, true); err != nil {
		return nil, err
	}
	return &post, nil
}

// LikePost records the current user's like on the post.
func (c *Client) LikePost(ctx context.Context, postID uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/like", postID), nil, nil, true)
}

// UnlikePost removes the current user's like from the post.
func (c *Client) UnlikePost(ctx context.Context, postID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d/like", postID), nil, nil, true)
}

// FetchComments retrieves the full comment list for a post, used on
// post-detail mount before live events take over.
func (c *Client) FetchComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), nil, &comments, true); err != nil {
		return nil, err
	}
	return comments, nil
}
