package models

import "time"

// Post represents a feed post.
type Post struct {
	ID        uint     `json:"id"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"image_urls,omitempty"`
	UserID    uint     `json:"user_id"`
	User      User     `json:"user"`
	// LikedBy is the set of user IDs that liked the post. The backend
	// guarantees uniqueness; the local store re-enforces it on every
	// transition.
	LikedBy    []uint `json:"liked_by,omitempty"`
	LikesCount int    `json:"likes_count"`
	// Liked indicates whether the current user liked this post (computed)
	Liked     bool      `json:"liked"`
	Deleted   bool      `json:"deleted,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedPage is one page of the paginated feed.
type FeedPage struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
	// Cursor is the opaque continuation token for the next page, empty
	// when HasMore is false.
	Cursor string `json:"cursor,omitempty"`
}
