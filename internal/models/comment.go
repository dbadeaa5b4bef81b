package models

import "time"

// Comment represents a comment on a post. Comments are append-only per
// post; ordering is arrival order (fetch results first, then live events).
type Comment struct {
	ID        string    `json:"id"`
	PostID    uint      `json:"post_id"`
	UserID    uint      `json:"user_id"`
	User      User      `json:"user"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	VideoURL  string    `json:"video_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
