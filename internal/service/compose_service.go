package service

import (
	"context"

	"ripple/internal/media"
	"ripple/internal/models"
	"ripple/internal/realtime"
	"ripple/internal/store"
)

// Connection is the slice of the realtime manager the compose coordinator
// needs.
type Connection interface {
	Connected() bool
	Emit(event string, payload interface{}) error
}

// CommentMedia describes an optional attachment for a comment or chat
// message. A local image is uploaded before the send; remote URLs pass
// through unchanged.
type CommentMedia struct {
	LocalImagePath string
	ImageURL       string
	VideoURL       string
}

func (m *CommentMedia) empty() bool {
	return m == nil || (m.LocalImagePath == "" && m.ImageURL == "" && m.VideoURL == "")
}

// ComposeService sends comments and chat messages over the realtime
// connection. Sends are not optimistic: the item reaches the local store
// only when the server echoes it back into the joined room, so there is
// nothing to roll back.
type ComposeService struct {
	conn     Connection
	uploader Uploader
	store    *store.Store
}

// NewComposeService creates a ComposeService.
func NewComposeService(conn Connection, uploader Uploader, st *store.Store) *ComposeService {
	return &ComposeService{conn: conn, uploader: uploader, store: st}
}

// SendComment validates, uploads any local media, and emits send_comment.
// Order of failure: ValidationError before any I/O, NotConnected before
// the upload, UploadError before the emit — a failed upload never
// partially sends the text.
func (s *ComposeService) SendComment(ctx context.Context, postID uint, text string, m *CommentMedia) error {
	if text == "" && m.empty() {
		return models.NewValidationError("comment text or an attachment is required")
	}
	if !s.conn.Connected() {
		return models.NewNotConnectedError("cannot send comment, realtime connection is down")
	}

	payload := realtime.SendCommentPayload{PostID: postID, Content: text}
	if m != nil {
		payload.ImageURL = m.ImageURL
		payload.VideoURL = m.VideoURL
		if m.LocalImagePath != "" {
			url, err := s.uploadLocalImage(ctx, m.LocalImagePath)
			if err != nil {
				return err
			}
			payload.ImageURL = url
		}
	}

	return s.conn.Emit(realtime.EventSendComment, payload)
}

// SendChatMessage mirrors SendComment for a chat room.
func (s *ComposeService) SendChatMessage(ctx context.Context, chatID uint, text string, m *CommentMedia) error {
	if text == "" && m.empty() {
		return models.NewValidationError("message text or an attachment is required")
	}
	if !s.conn.Connected() {
		return models.NewNotConnectedError("cannot send message, realtime connection is down")
	}

	payload := realtime.SendMessagePayload{ChatID: chatID, Text: text}
	if m != nil {
		payload.ImageURL = m.ImageURL
		if m.LocalImagePath != "" {
			url, err := s.uploadLocalImage(ctx, m.LocalImagePath)
			if err != nil {
				return err
			}
			payload.ImageURL = url
		}
	}

	return s.conn.Emit(realtime.EventSendMessage, payload)
}

func (s *ComposeService) uploadLocalImage(ctx context.Context, path string) (string, error) {
	attachment, err := media.PrepareImageFile(path)
	if err != nil {
		return "", err
	}
	return s.uploader.Upload(ctx, attachment.Filename, attachment.ContentType, attachment.Data)
}
