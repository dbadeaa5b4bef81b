package api

import (
	"context"
	"fmt"
	"net/http"

	"ripple/internal/models"
)

// Community represents a community the user can browse or join.
type Community struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
	MemberCount int    `json:"member_count"`
	Joined      bool   `json:"joined"`
}

// ListCommunities retrieves the communities visible to the current user.
func (c *Client) ListCommunities(ctx context.Context) ([]Community, error) {
	var communities []Community
	if err := c.do(ctx, http.MethodGet, "/community", nil, &communities, true); err != nil {
		return nil, err
	}
	return communities, nil
}

// JoinCommunity adds the current user to the community.
func (c *Client) JoinCommunity(ctx context.Context, communityID uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/community/%d/join", communityID), nil, nil, true)
}

// FetchChats retrieves the chat rooms the current user participates in.
func (c *Client) FetchChats(ctx context.Context) ([]models.ChatRoom, error) {
	var chats []models.ChatRoom
	if err := c.do(ctx, http.MethodGet, "/chats", nil, &chats, true); err != nil {
		return nil, err
	}
	return chats, nil
}

// FetchChatMessages retrieves the message history for a chat room.
func (c *Client) FetchChatMessages(ctx context.Context, chatID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chats/%d/messages", chatID), nil, &messages, true); err != nil {
		return nil, err
	}
	return messages, nil
}
