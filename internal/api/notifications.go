package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out []Notification
	err := c.doJSON(ctx, http.MethodGet, "/api/notifications", nil, nil, &out)
	return out, err
}

func (c *Client) NotificationPage(ctx context.Context, page, size int) (Page[Notification], error) {
	if size <= 0 {
		size = defaultPageSize
	}
	q := url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
	var out Page[Notification]
	err := c.doJSON(ctx, http.MethodGet, "/api/notifications/page", q, nil, &out)
	return out, err
}

// UnreadCount returns the number of unread notifications. The endpoint
// answers with a bare JSON number.
func (c *Client) UnreadCount(ctx context.Context) (int64, error) {
	var out int64
	err := c.doJSON(ctx, http.MethodGet, "/api/notifications/count", nil, nil, &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPut, idPath("/api/notifications/%d/lu", id), nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPut, "/api/notifications/toutes-lues", nil, nil, nil)
}
