package models

import "time"

// ChatRoom represents a group chat the current user participates in.
type ChatRoom struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	Participants []User `json:"participants,omitempty"`
}

// ChatMessage represents a message in a chat room. Messages are
// append-only per room; ordering is arrival order.
type ChatMessage struct {
	ID        string    `json:"id"`
	ChatID    uint      `json:"chat_id"`
	SenderID  uint      `json:"sender_id"`
	Sender    User      `json:"sender"`
	Text      string    `json:"text,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
