// Package realtime owns the single websocket connection to the Ripple
// backend: its lifecycle, event dispatch, and room membership.
package realtime

import "encoding/json"

// Event type constants prevent typos in event names.
const (
	EventJoinPost    = "join_post"
	EventLeavePost   = "leave_post"
	EventJoinChat    = "join_chat"
	EventLeaveChat   = "leave_chat"
	EventSendComment = "send_comment"
	EventNewComment  = "new_comment"
	EventSendMessage = "send_message"
	EventNewMessage  = "new_message"
)

// Envelope is the wire format for every realtime event in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RoomPayload is the payload for join/leave events.
type RoomPayload struct {
	RoomID uint `json:"room_id"`
}

// SendCommentPayload is the payload for send_comment events. The comment
// reaches the local store only through the echoed new_comment event.
type SendCommentPayload struct {
	PostID   uint   `json:"post_id"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
}

// SendMessagePayload is the payload for send_message events.
type SendMessagePayload struct {
	ChatID   uint   `json:"chat_id"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}
