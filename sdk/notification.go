package sdk

import (
	"context"
	"net/url"
	"strconv"
)

// ListNotifications lists the caller's notifications, newest first
func (c *Client) ListNotifications(ctx context.Context, opts ListNotificationsOptions) (*NotificationPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.UnreadOnly {
		query.Set("unread", "true")
	}

	var result NotificationPage
	if err := c.get(ctx, "/v1/notifications", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkNotificationRead marks one notification read
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (*Notification, error) {
	var result Notification
	if err := c.patch(ctx, "/v1/notifications/"+id+"/read", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkAllNotificationsRead marks every notification read and returns how many changed
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int64, error) {
	var result struct {
		Count int64 `json:"count"`
	}
	if err := c.patch(ctx, "/v1/notifications/read-all", nil, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// DeleteNotification removes one notification
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.delete(ctx, "/v1/notifications/"+id)
}

// CreateNotification notifies one user. Admin only.
func (c *Client) CreateNotification(ctx context.Context, req *CreateNotificationRequest) (*Notification, error) {
	var result Notification
	if err := c.post(ctx, "/v1/notifications", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Broadcast notifies many users and returns how many were notified. Admin only.
func (c *Client) Broadcast(ctx context.Context, req *BroadcastRequest) (int, error) {
	var result struct {
		Count int `json:"count"`
	}
	if err := c.post(ctx, "/v1/notifications/broadcast", req, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}
