package sdk

import (
	"context"
	"net/url"
	"strconv"
)

// CreateConversation opens, or returns, the conversation with recipientId
func (c *Client) CreateConversation(ctx context.Context, recipientId string) (*ConversationInfo, error) {
	var result ConversationInfo
	body := map[string]string{"recipientId": recipientId}
	if err := c.post(ctx, "/v1/conversations", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListConversations lists the caller's conversations, most recent first
func (c *Client) ListConversations(ctx context.Context) ([]*ConversationInfo, error) {
	var result []*ConversationInfo
	if err := c.get(ctx, "/v1/conversations", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetMessages fetches the page of messages older than cursor; an empty cursor starts at the newest
func (c *Client) GetMessages(ctx context.Context, conversationId string, limit int, cursor string) (*MessagePage, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var result MessagePage
	if err := c.get(ctx, "/v1/conversations/"+conversationId+"/messages", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkSeen marks the conversation read up to its last message
func (c *Client) MarkSeen(ctx context.Context, conversationId string) (*SeenStatus, error) {
	var result SeenStatus
	if err := c.patch(ctx, "/v1/conversations/"+conversationId+"/seen", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
