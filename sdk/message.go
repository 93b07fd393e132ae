package sdk

import "context"

// SendDirectMessage sends a message to a conversation or to a recipient
func (c *Client) SendDirectMessage(ctx context.Context, req *SendDirectMessageRequest) (*SendResult, error) {
	var result SendResult
	if err := c.post(ctx, "/v1/messages/direct", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendText is a convenience method to send a text message to a recipient
func (c *Client) SendText(ctx context.Context, recipientId, text string) (*SendResult, error) {
	return c.SendDirectMessage(ctx, &SendDirectMessageRequest{
		RecipientId: recipientId,
		Content:     text,
	})
}
