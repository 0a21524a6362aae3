package api

import (
	"context"
	"net/http"
)

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/stats", nil, nil, &out)
	return out, err
}
