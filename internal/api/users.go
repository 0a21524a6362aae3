package api

import (
	"context"
	"net/http"
)

func (c *Client) MyProfile(ctx context.Context) (Profile, error) {
	var out Profile
	err := c.doJSON(ctx, http.MethodGet, "/api/users/me", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateMyProfile(ctx context.Context, p Profile) (Profile, error) {
	var out Profile
	err := c.doJSON(ctx, http.MethodPut, "/api/users/me", nil, p, &out)
	return out, err
}

func (c *Client) ChangePassword(ctx context.Context, change PasswordChange) error {
	return c.doJSON(ctx, http.MethodPut, "/api/users/me/password", nil, change, nil)
}

func (c *Client) User(ctx context.Context, id int64) (Profile, error) {
	var out Profile
	err := c.doJSON(ctx, http.MethodGet, idPath("/api/users/%d", id), nil, nil, &out)
	return out, err
}
