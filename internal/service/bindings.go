package service

import (
	"context"
	"encoding/json"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/realtime"
	"ripple/internal/store"
)

// Subscriber is the slice of the realtime manager that registers event
// handlers.
type Subscriber interface {
	On(event string, h realtime.Handler) func()
}

// BindStore subscribes the store's append transitions to the live events
// the client consumes. Malformed payloads are logged and skipped; the
// store never sees them. Returns an unsubscribe function for teardown.
func BindStore(conn Subscriber, st *store.Store) func() {
	logger := observability.NewConnLogger("bindings")

	offComment := conn.On(realtime.EventNewComment, func(payload json.RawMessage) {
		var comment models.Comment
		if err := json.Unmarshal(payload, &comment); err != nil {
			logger.LogError(context.Background(), err, "decode new_comment")
			return
		}
		st.AddComment(comment.PostID, comment)
	})

	offMessage := conn.On(realtime.EventNewMessage, func(payload json.RawMessage) {
		var message models.ChatMessage
		if err := json.Unmarshal(payload, &message); err != nil {
			logger.LogError(context.Background(), err, "decode new_message")
			return
		}
		st.AddChatMessage(message.ChatID, message)
	})

	return func() {
		offComment()
		offMessage()
	}
}
